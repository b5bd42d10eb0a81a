package memory

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/tododrive/backend/internal/adapter"
	"github.com/tododrive/backend/internal/auth"
)

func getTableName() *string {
	name := os.Getenv("FILE_STORE_TABLE")
	if name == "" {
		name = "FileStore"
	}
	return aws.String(name)
}

// MemoryAdapter implements adapter.StorageAdapter.
// If client is nil, it uses an in-memory map (for tests).
// If client is set, it uses DynamoDB (for dev mode persistence).
//
// Like the real store, it does not enforce name uniqueness: CreateFile with a
// name that already exists produces a second file with that name.
type MemoryAdapter struct {
	client *dynamodb.Client
	userID string

	// Fallback for tests
	files map[string]*adapter.File
	mu    sync.RWMutex

	BaseFolderID string
}

// FileItem is the DynamoDB row shape for dev mode persistence.
type FileItem struct {
	PK           string    `dynamodbav:"pk"`
	UserID       string    `dynamodbav:"user_id"`
	ID           string    `dynamodbav:"id"`
	Name         string    `dynamodbav:"name"`
	MIMEType     string    `dynamodbav:"mime_type"`
	ModifiedTime time.Time `dynamodbav:"modified_time"`
	Size         int64     `dynamodbav:"size"`
	Content      []byte    `dynamodbav:"content"`
	TTL          int64     `dynamodbav:"ttl"`
}

func NewMemoryAdapter(client *dynamodb.Client, userID string, baseFolderID string) *MemoryAdapter {
	return &MemoryAdapter{
		client:       client,
		userID:       userID,
		files:        make(map[string]*adapter.File),
		BaseFolderID: baseFolderID,
	}
}

func (m *MemoryAdapter) FindByName(ctx context.Context, name string) ([]adapter.FileMetadata, error) {
	if m.client == nil {
		return m.findByNameMap(ctx, name)
	}

	// Scan and filter (inefficient but fine for dev)
	out, err := m.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        getTableName(),
		FilterExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: m.userID},
		},
	})
	if err != nil {
		return nil, err
	}

	var items []FileItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}

	files := []adapter.FileMetadata{}
	for _, item := range items {
		if item.Name != name {
			continue
		}
		files = append(files, adapter.FileMetadata{
			ID:           item.ID,
			Name:         item.Name,
			MIMEType:     item.MIMEType,
			ModifiedTime: item.ModifiedTime,
			Size:         item.Size,
		})
	}
	return files, nil
}

func (m *MemoryAdapter) GetFile(ctx context.Context, fileID string) (*adapter.File, error) {
	if m.client == nil {
		return m.getFileMap(ctx, fileID)
	}

	out, err := m.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: getTableName(),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: fileID},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, adapter.ErrNotFound
	}

	var item FileItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, err
	}

	return &adapter.File{
		FileMetadata: adapter.FileMetadata{
			ID:           item.ID,
			Name:         item.Name,
			MIMEType:     item.MIMEType,
			ModifiedTime: item.ModifiedTime,
			Size:         item.Size,
		},
		Content: item.Content,
	}, nil
}

func (m *MemoryAdapter) CreateFile(ctx context.Context, name string, content []byte) (*adapter.FileMetadata, error) {
	if m.client == nil {
		return m.createFileMap(ctx, name, content)
	}

	f := &adapter.File{
		FileMetadata: adapter.FileMetadata{
			ID:           uuid.New().String(),
			Name:         name,
			MIMEType:     "application/json",
			ModifiedTime: time.Now(),
			Size:         int64(len(content)),
		},
		Content: content,
	}

	if err := m.putItem(ctx, f); err != nil {
		return nil, err
	}
	return &f.FileMetadata, nil
}

func (m *MemoryAdapter) SaveFile(ctx context.Context, fileID string, content []byte) (*adapter.FileMetadata, error) {
	if m.client == nil {
		return m.saveFileMap(ctx, fileID, content)
	}

	f, err := m.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	f.Content = content
	f.ModifiedTime = time.Now()
	f.Size = int64(len(content))

	if err := m.putItem(ctx, f); err != nil {
		return nil, err
	}
	return &f.FileMetadata, nil
}

func (m *MemoryAdapter) EnsureRootFolder(ctx context.Context, name string) (string, error) {
	if m.client == nil {
		return m.ensureRootFolderMap(ctx, name)
	}

	out, err := m.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        getTableName(),
		FilterExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: m.userID},
		},
	})
	if err == nil {
		var items []FileItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err == nil {
			for _, item := range items {
				if item.Name == name && item.MIMEType == "application/vnd.google-apps.folder" {
					return item.ID, nil
				}
			}
		}
	}

	f := &adapter.File{
		FileMetadata: adapter.FileMetadata{
			ID:           uuid.New().String(),
			Name:         name,
			MIMEType:     "application/vnd.google-apps.folder",
			ModifiedTime: time.Now(),
		},
	}
	if err := m.putItem(ctx, f); err != nil {
		return "", err
	}
	return f.ID, nil
}

func (m *MemoryAdapter) putItem(ctx context.Context, f *adapter.File) error {
	item := FileItem{
		PK:           f.ID,
		UserID:       m.userID,
		ID:           f.ID,
		Name:         f.Name,
		MIMEType:     f.MIMEType,
		ModifiedTime: f.ModifiedTime,
		Size:         f.Size,
		Content:      f.Content,
		TTL:          time.Now().Add(60 * time.Minute).Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: getTableName(),
		Item:      av,
	})
	return err
}

// --- Map Implementations (Fallback) ---

func (m *MemoryAdapter) findByNameMap(ctx context.Context, name string) ([]adapter.FileMetadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := []adapter.FileMetadata{}
	for _, f := range m.files {
		if f.Name == name && f.MIMEType != "application/vnd.google-apps.folder" {
			files = append(files, f.FileMetadata)
		}
	}
	return files, nil
}

func (m *MemoryAdapter) getFileMap(ctx context.Context, fileID string) (*adapter.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[fileID]
	if !ok {
		return nil, adapter.ErrNotFound
	}
	content := make([]byte, len(f.Content))
	copy(content, f.Content)
	return &adapter.File{
		FileMetadata: f.FileMetadata,
		Content:      content,
	}, nil
}

func (m *MemoryAdapter) createFileMap(ctx context.Context, name string, content []byte) (*adapter.FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	f := &adapter.File{
		FileMetadata: adapter.FileMetadata{
			ID:           id,
			Name:         name,
			MIMEType:     "application/json",
			ModifiedTime: time.Now(),
			Size:         int64(len(content)),
		},
		Content: content,
	}
	m.files[id] = f
	return &f.FileMetadata, nil
}

func (m *MemoryAdapter) saveFileMap(ctx context.Context, fileID string, content []byte) (*adapter.FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[fileID]
	if !ok {
		return nil, adapter.ErrNotFound
	}
	f.Content = content
	f.ModifiedTime = time.Now()
	f.Size = int64(len(content))
	return &f.FileMetadata, nil
}

func (m *MemoryAdapter) ensureRootFolderMap(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.Name == name && f.MIMEType == "application/vnd.google-apps.folder" {
			return f.ID, nil
		}
	}
	id := uuid.New().String()
	m.files[id] = &adapter.File{
		FileMetadata: adapter.FileMetadata{
			ID:           id,
			Name:         name,
			MIMEType:     "application/vnd.google-apps.folder",
			ModifiedTime: time.Now(),
		},
	}
	return id, nil
}

// Provider implements adapter.StorageProvider backed by DynamoDB (or a map if
// the client is nil). One adapter is kept per user so in-memory state survives
// across requests within a process.
type Provider struct {
	client      *dynamodb.Client
	authService *auth.AuthService
	stores      map[string]*MemoryAdapter
	mu          sync.Mutex
}

func NewProvider(client *dynamodb.Client, authService *auth.AuthService) *Provider {
	return &Provider{
		client:      client,
		authService: authService,
		stores:      make(map[string]*MemoryAdapter),
	}
}

func (p *Provider) GetAdapter(ctx context.Context, userID string) (adapter.StorageAdapter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.stores[userID]; !ok {
		var baseFolderID string
		if p.authService != nil {
			if token, err := p.authService.GetUserToken(ctx, userID); err == nil {
				baseFolderID = token.BaseFolderID
			}
		}
		p.stores[userID] = NewMemoryAdapter(p.client, userID, baseFolderID)
	}
	return p.stores[userID], nil
}
