package adapter

import (
	"context"
	"time"
)

// FileMetadata describes a file stored in the remote object store. ID is the
// store-assigned primary key; Name is an application-level attribute that the
// store does not enforce as unique.
type FileMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MIMEType     string    `json:"mimeType"`
	ModifiedTime time.Time `json:"modifiedTime"`
	Size         int64     `json:"size"`
}

// File represents a file with its content.
type File struct {
	FileMetadata
	Content []byte `json:"content"`
}

// StorageAdapter defines the interface for interacting with the remote object
// store, scoped to one folder. It exposes exactly the operations the
// date-keyed upsert protocol needs; the abstraction keeps Google Drive
// swappable for the in-memory implementation used in tests and dev mode.
type StorageAdapter interface {
	// FindByName lists files in the folder whose name equals name exactly.
	// Multiple matches are possible; callers apply their own tie-break.
	FindByName(ctx context.Context, name string) ([]FileMetadata, error)

	// GetFile retrieves a file's content and metadata by its ID.
	GetFile(ctx context.Context, fileID string) (*File, error)

	// CreateFile creates a new file in the folder, stored as application/json.
	CreateFile(ctx context.Context, name string, content []byte) (*FileMetadata, error)

	// SaveFile replaces an existing file's content entirely.
	SaveFile(ctx context.Context, fileID string, content []byte) (*FileMetadata, error)

	// EnsureRootFolder finds or creates the app folder and returns its ID.
	// Used at first login when no folder is configured.
	EnsureRootFolder(ctx context.Context, name string) (string, error)
}
