package handler_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tododrive/backend/internal/handler"
	"github.com/tododrive/backend/internal/mailer"
)

func reminderHandler(mock *mailer.MockSender) *handler.ReminderHandler {
	dispatcher := mailer.NewDispatcher(mailer.NewTemplate("TodoDrive", "http://localhost:3000"), mock)
	return handler.NewReminderHandler(dispatcher, testJWTSecret, "http://localhost:3000")
}

func TestReminderHandler_SendReminder(t *testing.T) {
	mock := &mailer.MockSender{}
	h := reminderHandler(mock)

	body := `{"taskName":"Finish slides","dueDate":"2026-01-09","priority":"high","taskId":"task-7"}`
	resp, err := h.SendReminder(context.Background(), makeRequest("POST", "/api/send-reminder", body))
	if err != nil {
		t.Fatalf("SendReminder returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 OK, got %d: %s", resp.StatusCode, resp.Body)
	}
	if resp.Body != `{"message":"Reminder sent"}` {
		t.Errorf("Unexpected response body: %s", resp.Body)
	}

	if len(mock.HTMLCalls) != 1 {
		t.Fatalf("Expected 1 email, got %d", len(mock.HTMLCalls))
	}
	call := mock.HTMLCalls[0]
	// Recipient comes from the session, not the request body.
	if call.To != "user@example.com" {
		t.Errorf("Expected session email as recipient, got %q", call.To)
	}
	if call.Subject != "Reminder: Finish slides" {
		t.Errorf("Unexpected subject: %q", call.Subject)
	}
	if !strings.Contains(call.HTMLBody, "task=task-7") {
		t.Error("Email body missing task link")
	}
	if !strings.Contains(call.HTMLBody, "2026-01-09") {
		t.Error("Email body missing due date")
	}
}

func TestReminderHandler_Unauthenticated(t *testing.T) {
	mock := &mailer.MockSender{}
	h := reminderHandler(mock)

	req := events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/api/send-reminder",
		Body:       `{"taskName":"x"}`,
		Headers:    map[string]string{},
	}
	resp, _ := h.SendReminder(context.Background(), req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", resp.StatusCode)
	}
	if len(mock.HTMLCalls) != 0 {
		t.Errorf("No email must be sent for unauthenticated requests, got %d", len(mock.HTMLCalls))
	}
}

func TestReminderHandler_InvalidBody(t *testing.T) {
	mock := &mailer.MockSender{}
	h := reminderHandler(mock)

	resp, _ := h.SendReminder(context.Background(), makeRequest("POST", "/api/send-reminder", "{not json"))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	if len(mock.HTMLCalls) != 0 {
		t.Errorf("No email must be sent for malformed requests, got %d", len(mock.HTMLCalls))
	}
}

func TestReminderHandler_TransportFailure(t *testing.T) {
	mock := &mailer.MockSender{
		SendHTMLFunc: func(to, subject, htmlBody, textBody string) error {
			return errors.New("smtp: connection refused")
		},
	}
	h := reminderHandler(mock)

	body := `{"taskName":"Finish slides","dueDate":"2026-01-09","priority":"high","taskId":"task-7"}`
	resp, _ := h.SendReminder(context.Background(), makeRequest("POST", "/api/send-reminder", body))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", resp.StatusCode)
	}
	if resp.Body != `{"error":"Failed to send reminder"}` {
		t.Errorf("Unexpected error body: %s", resp.Body)
	}
}
