package mailer

import (
	"fmt"

	"github.com/tododrive/backend/internal/model"
)

// Dispatcher renders a reminder and hands it to the configured transport.
// Delivery is fire-and-forget: a failure is reported to the caller but
// nothing is queued or retried.
type Dispatcher struct {
	template *Template
	sender   Sender
}

// NewDispatcher creates a Dispatcher over the given template and transport.
func NewDispatcher(template *Template, sender Sender) *Dispatcher {
	return &Dispatcher{
		template: template,
		sender:   sender,
	}
}

// SendTaskReminder renders and sends a reminder email for the given task.
func (d *Dispatcher) SendTaskReminder(r model.TaskReminder) error {
	htmlBody, textBody, err := d.template.GenerateReminderEmail(
		r.RecipientName, r.TaskName, r.DueDate, r.Priority, r.TaskLink,
	)
	if err != nil {
		return fmt.Errorf("failed to render reminder email: %w", err)
	}

	subject := fmt.Sprintf("Reminder: %s", r.TaskName)
	if err := d.sender.SendHTML(r.RecipientEmail, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}

	return nil
}
