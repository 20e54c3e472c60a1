package model

import (
	"time"

	"github.com/google/uuid"

	loanModel "booklend-backend/internal/domains/loan/model"
)

// Notification is one persisted in-app message. Created exclusively by the
// transition worker; the API only reads and marks them.
type Notification struct {
	ID        uuid.UUID           `json:"id" db:"id"`
	UserID    uuid.UUID           `json:"user_id" db:"user_id"`
	Type      loanModel.EventType `json:"type" db:"type"`
	Title     string              `json:"title" db:"title"`
	Body      string              `json:"body" db:"body"`
	BookID    *uuid.UUID          `json:"book_id,omitempty" db:"book_id"`
	Unread    bool                `json:"unread" db:"unread"`
	ReadAt    *time.Time          `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
}

// ListOptions pages a user's notifications, newest first.
type ListOptions struct {
	Limit  int
	Offset int
}

const DefaultListLimit = 20
