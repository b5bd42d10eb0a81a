package mailer

import (
	"fmt"
	"time"

	hermes "github.com/ideamans/hermes"
)

// Template generates reminder email bodies using Hermes.
type Template struct {
	serviceName string
	baseURL     string
}

// NewTemplate creates a new reminder template generator.
// baseURL is the frontend origin; it appears as the product link in the footer.
func NewTemplate(serviceName, baseURL string) *Template {
	return &Template{
		serviceName: serviceName,
		baseURL:     baseURL,
	}
}

// GenerateReminderEmail renders HTML and plain text bodies for a task
// reminder. taskLink points at the task in the frontend dashboard.
func (t *Template) GenerateReminderEmail(recipientName, taskName, dueDate, priority, taskLink string) (htmlBody, textBody string, err error) {
	h := hermes.Hermes{
		Product: hermes.Product{
			Name:      t.serviceName,
			Link:      t.baseURL,
			Copyright: fmt.Sprintf("© %d %s", time.Now().Year(), t.serviceName),
		},
	}

	email := hermes.Email{
		Body: hermes.Body{
			Name: recipientName,
			Intros: []string{
				fmt.Sprintf("This is a reminder for your task: %s", taskName),
				fmt.Sprintf("Due date: %s", dueDate),
				fmt.Sprintf("Priority: %s", priority),
			},
			Actions: []hermes.Action{
				{
					Instructions: "Open your dashboard to review or complete this task:",
					Button: hermes.Button{
						Color: "#3B82F6",
						Text:  "View Task",
						Link:  taskLink,
					},
				},
			},
			Outros: []string{
				"You received this email because you requested a reminder for this task.",
			},
		},
	}

	htmlBody, err = h.GenerateHTML(email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate HTML email: %w", err)
	}

	textBody, err = h.GeneratePlainText(email)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate plain text email: %w", err)
	}

	return htmlBody, textBody, nil
}
