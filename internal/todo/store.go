package todo

import (
	"context"
	"fmt"

	"github.com/tododrive/backend/internal/adapter"
)

// Store persists one document per day through a StorageAdapter. The remote
// store's real primary key is the store-assigned file ID; the file name is
// only a lookup index. Upsert therefore has to be emulated as
// list-by-name followed by update-or-create.
//
// Save is not atomic: two concurrent Save calls for a never-before-seen key
// can both observe "no match" and both create, leaving two files with the
// same name. That is accepted for the single-user-per-session usage model;
// reads stay deterministic via pickAuthoritative.
type Store struct {
	storage adapter.StorageAdapter
}

// NewStore creates a Store over the given adapter.
func NewStore(storage adapter.StorageAdapter) *Store {
	return &Store{storage: storage}
}

// Fetch returns the raw content of the document stored under key, or
// (nil, nil) when no document exists for that key. Absence is a normal state,
// not an error. The content is passed through verbatim, unparsed.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	matches, err := s.storage.FindByName(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", key, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	target := pickAuthoritative(matches)
	f, err := s.storage.GetFile(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %q: %w", key, err)
	}
	return f.Content, nil
}

// Save writes payload under key, overwriting the existing document in full if
// one exists and creating it otherwise. There is no merge and no partial
// write: the operation either fully succeeds or fails.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	matches, err := s.storage.FindByName(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to look up %q: %w", key, err)
	}

	if len(matches) > 0 {
		target := pickAuthoritative(matches)
		if _, err := s.storage.SaveFile(ctx, target.ID, payload); err != nil {
			return fmt.Errorf("failed to update %q: %w", key, err)
		}
		return nil
	}

	if _, err := s.storage.CreateFile(ctx, key, payload); err != nil {
		return fmt.Errorf("failed to create %q: %w", key, err)
	}
	return nil
}

// pickAuthoritative selects among duplicate-named files the one with the
// lexicographically smallest file ID, so reads and updates target the same
// file regardless of the order the store happens to list them in.
func pickAuthoritative(matches []adapter.FileMetadata) adapter.FileMetadata {
	target := matches[0]
	for _, m := range matches[1:] {
		if m.ID < target.ID {
			target = m
		}
	}
	return target
}
