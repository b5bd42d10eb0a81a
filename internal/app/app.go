// Package app wires configuration, storage, auth, and mail transports into a
// single API Gateway request handler.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tododrive/backend/internal/adapter"
	"github.com/tododrive/backend/internal/adapter/googledrive"
	"github.com/tododrive/backend/internal/adapter/memory"
	"github.com/tododrive/backend/internal/auth"
	"github.com/tododrive/backend/internal/crypto"
	"github.com/tododrive/backend/internal/handler"
	"github.com/tododrive/backend/internal/mailer"
	"github.com/tododrive/backend/internal/secret"
)

// App holds the dependencies for the Lambda function.
type App struct {
	authHandler      *handler.AuthHandler
	todoHandler      *handler.TodoHandler
	reminderHandler  *handler.ReminderHandler
	apiGatewaySecret string
}

// NewApp initializes the application dependencies.
func NewApp(ctx context.Context) *App {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		panic(fmt.Sprintf("unable to load SDK config, %v", err))
	}

	devMode := os.Getenv("DEV_MODE") == "true"

	// DynamoDB Client
	dynamoClient := dynamodb.NewFromConfig(cfg)

	// Refresh token encryption
	var encryptor crypto.Encryptor
	if devMode {
		encryptor = crypto.NewMockEncryptor()
		fmt.Println("Using MockEncryptor (DEV_MODE=true)")
	} else {
		kmsClient := kms.NewFromConfig(cfg)
		kmsKeyID := os.Getenv("KMS_KEY_ID")
		if kmsKeyID == "" {
			kmsKeyID = "alias/tododrive-token-key"
		}
		encryptor = crypto.NewKMSService(kmsClient, kmsKeyID)
	}

	userTokensTable := os.Getenv("USER_TOKENS_TABLE")
	if userTokensTable == "" {
		userTokensTable = "UserTokens"
	}

	// ---------- Secret Resolver ----------
	var resolver secret.Resolver
	if devMode {
		resolver = secret.NewEnvResolver()
		fmt.Println("Using EnvResolver (DEV_MODE=true)")
	} else {
		resolver = secret.NewSSMResolver(ssm.NewFromConfig(cfg))
		fmt.Println("Using SSMResolver (SSM Parameter Store)")
	}

	googleClientSecretParam := os.Getenv("GOOGLE_CLIENT_SECRET_PARAM")
	if googleClientSecretParam == "" {
		googleClientSecretParam = "/tododrive/google-client-secret"
	}
	googleClientSecret, err := resolver.GetSecret(ctx, googleClientSecretParam)
	if err != nil {
		log.Printf("WARNING: failed to resolve GOOGLE_CLIENT_SECRET: %v", err)
	}

	jwtSecretParam := os.Getenv("JWT_SECRET_PARAM")
	if jwtSecretParam == "" {
		jwtSecretParam = "/tododrive/jwt-secret"
	}
	jwtSecret, err := resolver.GetSecret(ctx, jwtSecretParam)
	if err != nil {
		log.Printf("WARNING: failed to resolve JWT_SECRET: %v", err)
		jwtSecret = "default-dev-secret"
	}

	apiGatewaySecretParam := os.Getenv("API_GATEWAY_SECRET_PARAM")
	if apiGatewaySecretParam == "" {
		apiGatewaySecretParam = "/tododrive/api-gateway-secret"
	}
	apiGatewaySecret, err := resolver.GetSecret(ctx, apiGatewaySecretParam)
	if err != nil {
		log.Printf("WARNING: failed to resolve API_GATEWAY_SECRET: %v", err)
	}

	// OAuth2 Config
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if redirectURL == "" {
		if devMode {
			redirectURL = "http://localhost:8080/auth/google/callback"
		} else {
			redirectURL = frontendURL() + "/api/auth/google/callback"
		}
	}

	oauthConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: googleClientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/drive.file",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	authService := auth.NewAuthService(oauthConfig, dynamoClient, userTokensTable, encryptor)

	// Storage Provider
	var storageProvider adapter.StorageProvider
	if devMode {
		// DynamoDB-backed "Memory" provider for persistence in LocalStack
		storageProvider = memory.NewProvider(dynamoClient, authService)
		fmt.Println("Using MemoryProvider (DEV_MODE=true) with DynamoDB persistence")
	} else {
		storageProvider = googledrive.NewProvider(authService, os.Getenv("DRIVE_FOLDER_ID"))
	}

	// Mail transport
	dispatcher := newDispatcher(ctx, resolver)

	return &App{
		authHandler:      handler.NewAuthHandler(authService, storageProvider, jwtSecret),
		todoHandler:      handler.NewTodoHandler(storageProvider, jwtSecret),
		reminderHandler:  handler.NewReminderHandler(dispatcher, jwtSecret, frontendURL()),
		apiGatewaySecret: apiGatewaySecret,
	}
}

// newDispatcher builds the reminder mail pipeline. MAIL_PROVIDER selects the
// transport; SMTP is the default.
func newDispatcher(ctx context.Context, resolver secret.Resolver) *mailer.Dispatcher {
	serviceName := os.Getenv("MAIL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = "TodoDrive"
	}
	template := mailer.NewTemplate(serviceName, frontendURL())

	from := os.Getenv("MAIL_FROM")
	fromName := os.Getenv("MAIL_FROM_NAME")

	var sender mailer.Sender
	if os.Getenv("MAIL_PROVIDER") == "sendgrid" {
		apiKeyParam := os.Getenv("SENDGRID_API_KEY_PARAM")
		if apiKeyParam == "" {
			apiKeyParam = "/tododrive/sendgrid-api-key"
		}
		apiKey, err := resolver.GetSecret(ctx, apiKeyParam)
		if err != nil {
			log.Printf("WARNING: failed to resolve SENDGRID_API_KEY: %v", err)
		}
		sender = mailer.NewSendGridSender(apiKey, from, fromName)
		fmt.Println("Using SendGridSender (MAIL_PROVIDER=sendgrid)")
	} else {
		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}
		smtpPassword := os.Getenv("SMTP_PASSWORD")
		if smtpPassword == "" {
			if resolved, err := resolver.GetSecret(ctx, "/tododrive/smtp-password"); err == nil {
				smtpPassword = resolved
			}
		}
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     port,
			Username: os.Getenv("SMTP_USERNAME"),
			Password: smtpPassword,
			TLS:      os.Getenv("SMTP_TLS") == "true",
			From:     from,
			FromName: fromName,
		})
	}

	return mailer.NewDispatcher(template, sender)
}

// HandleRequest routes API Gateway requests to the appropriate handler.
func (app *App) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	path := req.Path
	method := req.HTTPMethod

	fmt.Printf("Request: %s %s\n", method, path)

	// CORS Preflight
	if method == "OPTIONS" {
		return corsResponse(events.APIGatewayProxyResponse{StatusCode: 204}), nil
	}

	// Security: Verify Request Origin (CloudFront only)
	if os.Getenv("DEV_MODE") != "true" {
		if req.Headers["X-Origin-Verify"] != app.apiGatewaySecret && req.Headers["x-origin-verify"] != app.apiGatewaySecret {
			fmt.Printf("Security Block: Missing or invalid X-Origin-Verify header\n")
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusForbidden,
				Body:       "Forbidden: Access denied",
			}, nil
		}
	}

	// /auth
	if strings.HasPrefix(path, "/auth") {
		if path == "/auth/google" && method == "GET" {
			return corsResponse(must(app.authHandler.Login(ctx, req))), nil
		}
		if path == "/auth/google/callback" && method == "GET" {
			return corsResponse(must(app.authHandler.Callback(ctx, req))), nil
		}
		if path == "/auth/logout" && method == "GET" {
			return corsResponse(must(app.authHandler.Logout(ctx, req))), nil
		}
		if path == "/auth/user" && method == "GET" {
			return corsResponse(must(app.authHandler.GetUser(ctx, req))), nil
		}
	}

	// /api
	if path == "/api/todos" && method == "GET" {
		return corsResponse(must(app.todoHandler.GetTodos(ctx, req))), nil
	}
	if path == "/api/todos" && method == "POST" {
		return corsResponse(must(app.todoHandler.SaveTodos(ctx, req))), nil
	}
	if path == "/api/send-reminder" && method == "POST" {
		return corsResponse(must(app.reminderHandler.SendReminder(ctx, req))), nil
	}

	return corsResponse(events.APIGatewayProxyResponse{
		StatusCode: http.StatusNotFound,
		Body:       fmt.Sprintf("Not Found: %s %s", method, path),
	}), nil
}

func frontendURL() string {
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		return url
	}
	return "http://localhost:3000"
}

// corsResponse adds CORS headers to an API Gateway response.
func corsResponse(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	resp.Headers["Access-Control-Allow-Origin"] = frontendURL()
	resp.Headers["Access-Control-Allow-Credentials"] = "true"
	resp.Headers["Access-Control-Allow-Methods"] = "GET,POST,OPTIONS"
	resp.Headers["Access-Control-Allow-Headers"] = "Content-Type,Authorization"
	return resp
}

// must unwraps a handler response, ignoring the error.
func must(resp events.APIGatewayProxyResponse, err error) events.APIGatewayProxyResponse {
	if err != nil {
		fmt.Printf("Handler error: %v\n", err)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError, Body: "Internal Server Error"}
	}
	return resp
}
