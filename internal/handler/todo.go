package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tododrive/backend/internal/adapter"
	"github.com/tododrive/backend/internal/todo"
)

// TodoHandler serves today's todo document. The document body is opaque to
// the backend; it is stored and returned byte for byte.
type TodoHandler struct {
	storageProvider adapter.StorageProvider
	jwtSecret       string
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(provider adapter.StorageProvider, jwtSecret string) *TodoHandler {
	return &TodoHandler{storageProvider: provider, jwtSecret: jwtSecret}
}

// getStore builds a date-keyed store for the given user.
func (h *TodoHandler) getStore(ctx context.Context, userID string) (*todo.Store, error) {
	storage, err := h.storageProvider.GetAdapter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage adapter: %w", err)
	}
	return todo.NewStore(storage), nil
}

// GetTodos returns today's todo document, or an empty list if none exists yet.
func (h *TodoHandler) GetTodos(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorizedResponse(), nil
	}

	store, err := h.getStore(ctx, userID)
	if err != nil {
		fmt.Printf("getStore error: %v\n", err)
		return internalErrorResponse(), nil
	}

	content, err := store.Fetch(ctx, todo.TodayKey())
	if err != nil {
		fmt.Printf("Fetch error: %v\n", err)
		return internalErrorResponse(), nil
	}
	if content == nil {
		// A day with no saved list yet is an empty list, not an error.
		content = []byte("[]")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(content),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

// SaveTodos replaces today's todo document with the request body.
func (h *TodoHandler) SaveTodos(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	userID, err := GetUserID(req, h.jwtSecret)
	if err != nil {
		return unauthorizedResponse(), nil
	}

	store, err := h.getStore(ctx, userID)
	if err != nil {
		fmt.Printf("getStore error: %v\n", err)
		return internalErrorResponse(), nil
	}

	if err := store.Save(ctx, todo.TodayKey(), []byte(req.Body)); err != nil {
		fmt.Printf("Save error: %v\n", err)
		return internalErrorResponse(), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       `{"success":true}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}
