package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/oauth2"

	"github.com/tododrive/backend/internal/adapter/memory"
	"github.com/tododrive/backend/internal/auth"
	"github.com/tododrive/backend/internal/crypto"
	"github.com/tododrive/backend/internal/handler"
)

func authHandler() *handler.AuthHandler {
	authService := auth.NewAuthService(
		&oauth2.Config{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			RedirectURL:  "http://localhost:8080/auth/google/callback",
		},
		nil,
		"test-tokens-table",
		crypto.NewMockEncryptor(),
	)
	provider := memory.NewProvider(nil, authService)
	return handler.NewAuthHandler(authService, provider, testJWTSecret)
}

func TestAuthHandler_Login_RedirectsToGoogle(t *testing.T) {
	h := authHandler()

	resp, err := h.Login(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.StatusCode)
	}

	location := resp.Headers["Location"]
	if !strings.Contains(location, "test-client-id") {
		t.Errorf("Expected auth URL with client ID, got %q", location)
	}
	if !strings.Contains(location, "access_type=offline") {
		t.Errorf("Expected offline access request, got %q", location)
	}
}

func TestAuthHandler_Login_UniqueStatePerRequest(t *testing.T) {
	h := authHandler()
	ctx := context.Background()

	r1, _ := h.Login(ctx, events.APIGatewayProxyRequest{})
	r2, _ := h.Login(ctx, events.APIGatewayProxyRequest{})
	if r1.Headers["Location"] == r2.Headers["Location"] {
		t.Error("Expected a fresh state per login request")
	}
}

func TestAuthHandler_Callback_MissingCode(t *testing.T) {
	h := authHandler()

	resp, err := h.Callback(context.Background(), events.APIGatewayProxyRequest{
		QueryStringParameters: map[string]string{},
	})
	if err != nil {
		t.Fatalf("Callback returned error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected redirect on failure, got %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Headers["Location"], "error=auth_failed") {
		t.Errorf("Expected error redirect, got %q", resp.Headers["Location"])
	}
}

func TestAuthHandler_GetUser(t *testing.T) {
	h := authHandler()

	resp, err := h.GetUser(context.Background(), makeRequest("GET", "/auth/user", ""))
	if err != nil {
		t.Fatalf("GetUser returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", resp.StatusCode, resp.Body)
	}

	var profile map[string]string
	if err := json.Unmarshal([]byte(resp.Body), &profile); err != nil {
		t.Fatalf("Failed to unmarshal profile: %v", err)
	}
	if profile["id"] != testUserID {
		t.Errorf("Expected id %q, got %q", testUserID, profile["id"])
	}
	if profile["email"] != "user@example.com" {
		t.Errorf("Expected session email, got %q", profile["email"])
	}
	if profile["name"] != "Test User" {
		t.Errorf("Expected session name, got %q", profile["name"])
	}
}

func TestAuthHandler_GetUser_Unauthenticated(t *testing.T) {
	h := authHandler()

	resp, _ := h.GetUser(context.Background(), events.APIGatewayProxyRequest{
		Headers: map[string]string{},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
	if resp.Body != `{"error":"Not authenticated"}` {
		t.Errorf("Unexpected error body: %s", resp.Body)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := authHandler()

	resp, err := h.Logout(context.Background(), makeRequest("GET", "/auth/logout", ""))
	if err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.StatusCode)
	}

	cookies := resp.MultiValueHeaders["Set-Cookie"]
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 Set-Cookie header, got %d", len(cookies))
	}
	if !strings.Contains(cookies[0], "session_token=;") {
		t.Errorf("Expected cleared session cookie, got %q", cookies[0])
	}
	if !strings.Contains(cookies[0], "Max-Age=0") {
		t.Errorf("Expected Max-Age=0, got %q", cookies[0])
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := authHandler()

	resp, _ := h.Logout(context.Background(), events.APIGatewayProxyRequest{
		Headers: map[string]string{},
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
}
