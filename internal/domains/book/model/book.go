package model

import (
	"time"

	"github.com/google/uuid"

	"booklend-backend/internal/shared/geo"
)

// BookStatus is the lending state of a book. It always moves in lockstep
// with the current loan inside one transaction.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusRequested BookStatus = "requested"
	BookStatusLoaned    BookStatus = "loaned"
)

func (s BookStatus) IsValid() bool {
	switch s {
	case BookStatusAvailable, BookStatusRequested, BookStatusLoaned:
		return true
	}
	return false
}

func (s BookStatus) String() string {
	return string(s)
}

// Borrowed reports whether the book is tied up by an active loan record.
func (s BookStatus) Borrowed() bool {
	return s == BookStatusRequested || s == BookStatusLoaned
}

// Location is where the book physically lives (the owner's saved location at
// creation time).
type Location struct {
	Latitude         float64 `json:"latitude" db:"latitude"`
	Longitude        float64 `json:"longitude" db:"longitude"`
	FormattedAddress *string `json:"formatted_address" db:"formatted_address"`
}

func (l Location) Point() geo.Point {
	return geo.Point{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Book is the aggregate root. BorrowerID and CurrentLoanID are both set iff
// Status is requested/loaned, both nil iff Status is available.
type Book struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	Author   string    `json:"author" db:"author"`
	ImageURL string    `json:"image_url" db:"image_url"`
	OwnerID  uuid.UUID `json:"owner_id" db:"owner_id"`

	Status        BookStatus `json:"status" db:"status"`
	BorrowerID    *uuid.UUID `json:"borrower_id" db:"borrower_id"`
	CurrentLoanID *uuid.UUID `json:"current_loan_id" db:"current_loan_id"`
	RequestedAt   *time.Time `json:"requested_at,omitempty" db:"requested_at"`

	// CancelledByBorrower is set when the borrower withdrew the request, so
	// the notifier can avoid telling the owner their book "was rejected".
	CancelledByBorrower bool `json:"cancelled_by_borrower" db:"cancelled_by_borrower"`

	Location     Location `json:"location"`
	Geohash      string   `json:"geohash" db:"geohash"`
	SearchTokens []string `json:"search_tokens" db:"search_tokens"`

	// Version backs the optimistic concurrency check; bumped on every write.
	Version int64 `json:"-" db:"version"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ResetToAvailable clears every loan-related field. Used by the reject,
// cancel and return transitions.
func (b *Book) ResetToAvailable() {
	b.Status = BookStatusAvailable
	b.BorrowerID = nil
	b.CurrentLoanID = nil
	b.RequestedAt = nil
}
