package adapter

import (
	"errors"
)

// ErrNotFound is returned when a requested file does not exist in the store.
var ErrNotFound = errors.New("resource not found")
