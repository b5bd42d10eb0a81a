package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/tododrive/backend/internal/adapter"
	"github.com/tododrive/backend/internal/auth"
)

// rootFolderName is the Drive folder created for users that have no folder
// configured yet.
const rootFolderName = "DailyTodos"

// AuthHandler handles authentication requests.
type AuthHandler struct {
	authService     *auth.AuthService
	storageProvider adapter.StorageProvider
	jwtSecret       string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s *auth.AuthService, sp adapter.StorageProvider, jwtSecret string) *AuthHandler {
	return &AuthHandler{authService: s, storageProvider: sp, jwtSecret: jwtSecret}
}

// Login initiates the Google OAuth2 flow.
func (h *AuthHandler) Login(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	// TODO: Persist the state in a short-lived cookie and verify it in Callback to prevent CSRF
	state := uuid.New().String()
	url := h.authService.GenerateAuthURL(state)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": url,
		},
	}, nil
}

// Callback handles the OAuth2 callback from Google. On success it stores the
// refresh token server-side and issues an identity-only session cookie.
func (h *AuthHandler) Callback(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	code := req.QueryStringParameters["code"]
	if code == "" {
		return redirectWithError(), nil
	}

	token, err := h.authService.ExchangeCode(ctx, code)
	if err != nil {
		fmt.Printf("ExchangeCode error: %v\n", err)
		return redirectWithError(), nil
	}

	// Get User Info from Google
	oauth2Service, err := goauth2.NewService(ctx, option.WithTokenSource(h.authService.Config().TokenSource(ctx, token)))
	if err != nil {
		fmt.Printf("NewService error: %v\n", err)
		return redirectWithError(), nil
	}

	userinfo, err := oauth2Service.Userinfo.Get().Do()
	if err != nil {
		fmt.Printf("Userinfo error: %v\n", err)
		return redirectWithError(), nil
	}

	// Google Subject ID is the stable user key.
	userID := userinfo.Id

	if err := h.authService.SaveToken(ctx, userID, token); err != nil {
		// Subsequent logins may not return a refresh token; the stored one
		// keeps working, so proceed with the session.
		fmt.Printf("SaveToken error: %v\n", err)
	}

	h.ensureUserFolder(ctx, userID)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": userinfo.Email,
		"name":  userinfo.Name,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := jwtToken.SignedString([]byte(h.jwtSecret))
	if err != nil {
		fmt.Printf("SignedString error: %v\n", err)
		return redirectWithError(), nil
	}

	cookie := fmt.Sprintf("session_token=%s; HttpOnly; Path=/; Max-Age=86400; SameSite=%s; Secure", signedToken, cookieSameSite())

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": fmt.Sprintf("%s/dashboard", frontendURL()),
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {cookie},
		},
	}, nil
}

// ensureUserFolder makes sure the user has a Drive folder for their
// documents. With a deployment-wide DRIVE_FOLDER_ID nothing is created.
func (h *AuthHandler) ensureUserFolder(ctx context.Context, userID string) {
	if os.Getenv("DRIVE_FOLDER_ID") != "" {
		return
	}
	if ut, err := h.authService.GetUserToken(ctx, userID); err == nil && ut.BaseFolderID != "" {
		return
	}

	storage, err := h.storageProvider.GetAdapter(ctx, userID)
	if err != nil {
		fmt.Printf("GetAdapter error: %v\n", err)
		return
	}
	folderID, err := storage.EnsureRootFolder(ctx, rootFolderName)
	if err != nil {
		fmt.Printf("EnsureRootFolder error: %v\n", err)
		return
	}
	if err := h.authService.UpdateBaseFolderID(ctx, userID, folderID); err != nil {
		fmt.Printf("UpdateBaseFolderID error: %v\n", err)
	}
}

// GetUser returns the identity of the current session.
func (h *AuthHandler) GetUser(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	claims, err := GetSessionClaims(req, h.jwtSecret)
	if err != nil {
		return unauthorizedResponse(), nil
	}

	profile := map[string]string{
		"id":    claims.UserID,
		"email": claims.Email,
		"name":  claims.Name,
	}

	body, _ := json.Marshal(profile)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}

// Logout clears the session cookie and sends the user back to the frontend.
// The server-side refresh token is kept so the next login skips re-consent.
func (h *AuthHandler) Logout(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if _, err := GetSessionClaims(req, h.jwtSecret); err != nil {
		return unauthorizedResponse(), nil
	}

	cookie := fmt.Sprintf("session_token=; HttpOnly; Path=/; Max-Age=0; SameSite=%s; Secure", cookieSameSite())

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": frontendURL(),
		},
		MultiValueHeaders: map[string][]string{
			"Set-Cookie": {cookie},
		},
	}, nil
}

func frontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// cookieSameSite picks the SameSite attribute for the session cookie.
// Production serves frontend and API from different origins, so None is
// required for the cookie to accompany cross-site requests.
func cookieSameSite() string {
	if os.Getenv("DEV_MODE") == "true" {
		return "Lax"
	}
	return "None"
}

func redirectWithError() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusFound,
		Headers: map[string]string{
			"Location": fmt.Sprintf("%s/?error=auth_failed", frontendURL()),
		},
	}
}

func unauthorizedResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"error":"Not authenticated"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

func internalErrorResponse() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}
