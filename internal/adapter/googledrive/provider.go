package googledrive

import (
	"context"
	"fmt"

	"github.com/tododrive/backend/internal/adapter"
	"github.com/tododrive/backend/internal/auth"
)

// Provider implements adapter.StorageProvider for Google Drive.
type Provider struct {
	authService *auth.AuthService

	// DefaultFolderID is the environment-configured folder holding the daily
	// documents. When empty, the user's stored BaseFolderID (created at first
	// login) is used instead.
	DefaultFolderID string
}

// NewProvider creates a new Google Drive provider.
func NewProvider(authService *auth.AuthService, defaultFolderID string) *Provider {
	return &Provider{authService: authService, DefaultFolderID: defaultFolderID}
}

// GetAdapter returns a DriveAdapter authenticated as the given user.
func (p *Provider) GetAdapter(ctx context.Context, userID string) (adapter.StorageAdapter, error) {
	folderID := p.DefaultFolderID
	if folderID == "" {
		if token, err := p.authService.GetUserToken(ctx, userID); err == nil {
			folderID = token.BaseFolderID
		}
	}

	client, err := p.authService.GetClient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}

	storage, err := NewDriveAdapter(ctx, client, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive adapter: %w", err)
	}

	return storage, nil
}
