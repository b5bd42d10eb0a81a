// Package todo implements the date-keyed document persistence protocol: one
// opaque JSON document per calendar day, stored under a deterministic file
// name in a single remote folder.
package todo

import (
	"strings"
	"time"
)

const keyExt = ".json"

// Key derives the document name for the given date: three-letter weekday,
// two-digit day of month, three-letter month, lower-cased, plus the JSON
// extension. Example: "mon05jan.json".
func Key(t time.Time) string {
	return strings.ToLower(t.Format("Mon02Jan")) + keyExt
}

// TodayKey returns the document name for the current date. Call it fresh on
// every request; a cached value would keep serving yesterday's key past
// midnight.
func TodayKey() string {
	return Key(time.Now())
}
