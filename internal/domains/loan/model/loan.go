package model

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus tracks the lifecycle of a single loan record. A loan is created
// by a request and then advanced or terminated exactly once; terminal
// statuses clear the active flag.
type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "requested"
	LoanStatusLoaned    LoanStatus = "loaned"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusCancelled LoanStatus = "cancelled"
	LoanStatusReturned  LoanStatus = "returned"
)

func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusRequested, LoanStatusLoaned, LoanStatusRejected,
		LoanStatusCancelled, LoanStatusReturned:
		return true
	}
	return false
}

func (s LoanStatus) String() string {
	return string(s)
}

// Terminal reports whether the loan can never change again.
func (s LoanStatus) Terminal() bool {
	switch s {
	case LoanStatusRejected, LoanStatusCancelled, LoanStatusReturned:
		return true
	}
	return false
}

// Loan is the child record of a Book. At most one loan per book has
// Active=true, and that one is referenced by the book's CurrentLoanID.
// Loans are never deleted.
type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BookID     uuid.UUID  `json:"book_id" db:"book_id"`
	OwnerID    uuid.UUID  `json:"owner_id" db:"owner_id"`
	BorrowerID uuid.UUID  `json:"borrower_id" db:"borrower_id"`
	Status     LoanStatus `json:"status" db:"status"`
	Active     bool       `json:"active" db:"active"`

	RequestedAt *time.Time `json:"requested_at,omitempty" db:"requested_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty" db:"accepted_at"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	LoanedAt    *time.Time `json:"loaned_at,omitempty" db:"loaned_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty" db:"returned_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// BookSummary is the slice of the book carried alongside a loan in listings.
// Kept local to avoid importing the book domain into its own child.
type BookSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	ImageURL string    `json:"image_url"`
	Status   string    `json:"status"`
}

// LoanWithBook is a loan joined with the book it concerns. The book may have
// been deleted after the loan ended; Book is zero-valued except for ID then.
type LoanWithBook struct {
	Loan
	Book BookSummary `json:"book"`
}

// ListLoansOptions filters a borrower's loan history.
type ListLoansOptions struct {
	ActiveOnly bool
	Limit      int
}
