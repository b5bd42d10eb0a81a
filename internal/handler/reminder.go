package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/tododrive/backend/internal/mailer"
	"github.com/tododrive/backend/internal/model"
)

// ReminderHandler sends task reminder emails to the authenticated user.
type ReminderHandler struct {
	dispatcher  *mailer.Dispatcher
	jwtSecret   string
	frontendURL string
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(dispatcher *mailer.Dispatcher, jwtSecret, frontendURL string) *ReminderHandler {
	return &ReminderHandler{dispatcher: dispatcher, jwtSecret: jwtSecret, frontendURL: frontendURL}
}

// SendReminder emails a reminder for one task to the session's own address.
// The recipient comes from the verified session, never from the request body.
func (h *ReminderHandler) SendReminder(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	claims, err := GetSessionClaims(req, h.jwtSecret)
	if err != nil {
		return unauthorizedResponse(), nil
	}

	var input struct {
		TaskName string `json:"taskName"`
		DueDate  string `json:"dueDate"`
		Priority string `json:"priority"`
		TaskID   string `json:"taskId"`
	}
	if err := json.Unmarshal([]byte(req.Body), &input); err != nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error":"Invalid request body"}`,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		}, nil
	}

	reminder := model.TaskReminder{
		TaskName:       input.TaskName,
		DueDate:        input.DueDate,
		Priority:       input.Priority,
		TaskID:         input.TaskID,
		RecipientEmail: claims.Email,
		RecipientName:  claims.Name,
		TaskLink:       fmt.Sprintf("%s/dashboard?task=%s", h.frontendURL, input.TaskID),
	}

	if err := h.dispatcher.SendTaskReminder(reminder); err != nil {
		fmt.Printf("SendTaskReminder error: %v\n", err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error":"Failed to send reminder"}`,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
		}, nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Body:       `{"message":"Reminder sent"}`,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}, nil
}
