package model

import (
	"github.com/google/uuid"
)

// EventType names a committed transition for the notification pipeline.
type EventType string

const (
	EventBookRequested    EventType = "book_requested"
	EventRequestAccepted  EventType = "request_accepted"
	EventRequestRejected  EventType = "request_rejected"
	EventRequestCancelled EventType = "request_cancelled"
	EventBookReturned     EventType = "book_returned"
)

// TransitionEvent is emitted exactly once per committed transition, strictly
// after the transaction. The counterpart is the user to notify (owner for
// borrower-initiated transitions and vice versa).
type TransitionEvent struct {
	Type               EventType `json:"type"`
	BookID             uuid.UUID `json:"book_id"`
	BookTitle          string    `json:"book_title"`
	LoanID             uuid.UUID `json:"loan_id"`
	ActorID            uuid.UUID `json:"actor_id"`
	ActorName          string    `json:"actor_name,omitempty"`
	CounterpartUserID  uuid.UUID `json:"counterpart_user_id"`
	// CancelledByBorrower mirrors the book flag so the dispatcher can
	// suppress an owner-facing "rejected" message for a cancellation the
	// owner did not initiate.
	CancelledByBorrower bool `json:"cancelled_by_borrower"`
}
