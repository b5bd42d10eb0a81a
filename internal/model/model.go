package model

import "time"

// UserToken represents the user's OAuth2 credentials stored in DynamoDB.
// Only the refresh token is persisted, encrypted at rest; access tokens are
// minted on demand from it.
type UserToken struct {
	UserID                string    `json:"user_id" dynamodbav:"user_id"`
	EncryptedRefreshToken string    `json:"encrypted_refresh_token" dynamodbav:"encrypted_refresh_token"`
	BaseFolderID          string    `json:"base_folder_id" dynamodbav:"base_folder_id"` // Drive folder holding the daily documents
	UpdatedAt             time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// TaskReminder carries everything one reminder email needs. It is built per
// request from the client payload plus the session identity and is never
// persisted.
type TaskReminder struct {
	TaskName       string `json:"taskName"`
	DueDate        string `json:"dueDate"`
	Priority       string `json:"priority"`
	TaskID         string `json:"taskId"`
	RecipientEmail string `json:"-"`
	RecipientName  string `json:"-"`
	TaskLink       string `json:"-"`
}
