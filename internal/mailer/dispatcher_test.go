package mailer

import (
	"errors"
	"strings"
	"testing"

	"github.com/tododrive/backend/internal/model"
)

func testReminder() model.TaskReminder {
	return model.TaskReminder{
		TaskName:       "Submit expense report",
		DueDate:        "2026-01-09",
		Priority:       "medium",
		TaskID:         "task-42",
		RecipientEmail: "user@example.com",
		RecipientName:  "Sam",
		TaskLink:       "http://localhost:3000/dashboard?task=task-42",
	}
}

func TestDispatcher_SendTaskReminder(t *testing.T) {
	mock := &MockSender{}
	d := NewDispatcher(NewTemplate("TodoDrive", "http://localhost:3000"), mock)

	if err := d.SendTaskReminder(testReminder()); err != nil {
		t.Fatalf("SendTaskReminder failed: %v", err)
	}

	if len(mock.HTMLCalls) != 1 {
		t.Fatalf("Expected 1 HTML send, got %d", len(mock.HTMLCalls))
	}
	call := mock.HTMLCalls[0]
	if call.To != "user@example.com" {
		t.Errorf("Expected recipient user@example.com, got %q", call.To)
	}
	if call.Subject != "Reminder: Submit expense report" {
		t.Errorf("Unexpected subject: %q", call.Subject)
	}
	if !strings.Contains(call.HTMLBody, "Submit expense report") {
		t.Error("HTML body missing task name")
	}
	if !strings.Contains(call.TextBody, "2026-01-09") {
		t.Error("Text body missing due date")
	}
	if !strings.Contains(call.HTMLBody, "task=task-42") {
		t.Error("HTML body missing task link")
	}
}

func TestDispatcher_SendTaskReminder_TransportFailure(t *testing.T) {
	mock := &MockSender{
		SendHTMLFunc: func(to, subject, htmlBody, textBody string) error {
			return errors.New("connection refused")
		},
	}
	d := NewDispatcher(NewTemplate("TodoDrive", "http://localhost:3000"), mock)

	err := d.SendTaskReminder(testReminder())
	if err == nil {
		t.Fatal("Expected error from failing transport, got nil")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Expected wrapped transport error, got: %v", err)
	}
	// Exactly one attempt; no retries.
	if len(mock.HTMLCalls) != 1 {
		t.Errorf("Expected exactly 1 attempt, got %d", len(mock.HTMLCalls))
	}
}
