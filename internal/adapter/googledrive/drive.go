package googledrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tododrive/backend/internal/adapter"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	jsonMIMEType   = "application/json"
	folderMIMEType = "application/vnd.google-apps.folder"

	metadataFields = "id, name, mimeType, modifiedTime, size"
)

// DriveAdapter implements adapter.StorageAdapter for Google Drive, scoped to
// one folder holding the daily documents.
type DriveAdapter struct {
	service      *drive.Service
	BaseFolderID string
}

// NewDriveAdapter creates a new DriveAdapter.
// client should be an authenticated http.Client with the user's credentials.
func NewDriveAdapter(ctx context.Context, client *http.Client, baseFolderID string) (*DriveAdapter, error) {
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %v", err)
	}
	return &DriveAdapter{service: srv, BaseFolderID: baseFolderID}, nil
}

func (d *DriveAdapter) folderID() string {
	if d.BaseFolderID != "" {
		return d.BaseFolderID
	}
	return "root"
}

// nameQuery builds the Drive query that looks up files by exact name within
// the folder. Drive treats the name as a non-unique attribute, so this can
// legitimately return more than one file.
func nameQuery(name, folderID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", name, folderID)
}

// FindByName lists files in the base folder whose name equals name.
func (d *DriveAdapter) FindByName(ctx context.Context, name string) ([]adapter.FileMetadata, error) {
	r, err := d.service.Files.List().
		Q(nameQuery(name, d.folderID())).
		Fields(googleapi.Field("files(" + metadataFields + ")")).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list files named %q: %v", name, err)
	}

	files := []adapter.FileMetadata{}
	for _, f := range r.Files {
		if f.MimeType == folderMIMEType {
			continue
		}
		files = append(files, toMetadata(f))
	}
	return files, nil
}

// GetFile retrieves a file's content and metadata by its ID.
func (d *DriveAdapter) GetFile(ctx context.Context, fileID string) (*adapter.File, error) {
	f, err := d.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Fields(metadataFields).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, adapter.ErrNotFound
		}
		return nil, fmt.Errorf("unable to get file metadata: %v", err)
	}

	resp, err := d.service.Files.Get(fileID).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download file: %v", err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read file content: %v", err)
	}

	return &adapter.File{
		FileMetadata: toMetadata(f),
		Content:      content,
	}, nil
}

// CreateFile creates a new JSON file in the base folder.
func (d *DriveAdapter) CreateFile(ctx context.Context, name string, content []byte) (*adapter.FileMetadata, error) {
	f := &drive.File{
		Name:     name,
		MimeType: jsonMIMEType,
		Parents:  []string{d.folderID()},
	}
	res, err := d.service.Files.Create(f).
		Media(bytes.NewReader(content)).
		SupportsAllDrives(true).
		Fields(metadataFields).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to create file: %v", err)
	}

	meta := toMetadata(res)
	return &meta, nil
}

// SaveFile replaces an existing file's content. The whole prior content is
// overwritten; there is no merge.
func (d *DriveAdapter) SaveFile(ctx context.Context, fileID string, content []byte) (*adapter.FileMetadata, error) {
	res, err := d.service.Files.Update(fileID, &drive.File{}).
		Media(bytes.NewReader(content)).
		SupportsAllDrives(true).
		Fields(metadataFields).
		Do()
	if err != nil {
		if isNotFound(err) {
			return nil, adapter.ErrNotFound
		}
		return nil, fmt.Errorf("unable to update file: %v", err)
	}

	meta := toMetadata(res)
	return &meta, nil
}

// EnsureRootFolder ensures the app folder exists under 'root' and returns its ID.
func (d *DriveAdapter) EnsureRootFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and 'root' in parents and trashed = false", name, folderMIMEType)
	r, err := d.service.Files.List().Q(q).Fields("files(id)").Do()
	if err != nil {
		return "", fmt.Errorf("unable to search for root folder: %v", err)
	}
	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	folder := &drive.File{
		Name:     name,
		MimeType: folderMIMEType,
		Parents:  []string{"root"},
	}
	res, err := d.service.Files.Create(folder).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("unable to create root folder: %v", err)
	}
	return res.Id, nil
}

func toMetadata(f *drive.File) adapter.FileMetadata {
	modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
	return adapter.FileMetadata{
		ID:           f.Id,
		Name:         f.Name,
		MIMEType:     f.MimeType,
		ModifiedTime: modTime,
		Size:         f.Size,
	}
}

func isNotFound(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code == 404
	}
	return false
}
