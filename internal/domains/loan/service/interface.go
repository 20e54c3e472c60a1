package service

import (
	"context"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/loan/model"
)

// LoanService is the lending ledger. Every transition is one atomic
// read-validate-write over the book and its current loan; a failed
// precondition writes nothing.
type LoanService interface {
	RequestBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error)
	AcceptRequest(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Loan, error)
	RejectRequest(ctx context.Context, ownerID, bookID uuid.UUID) (*model.Loan, error)
	CancelRequest(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error)
	ReturnBook(ctx context.Context, borrowerID, bookID uuid.UUID) (*model.Loan, error)

	ListByBorrower(ctx context.Context, borrowerID uuid.UUID, opts model.ListLoansOptions) ([]model.LoanWithBook, error)
}

// TransitionNotifier receives the event emitted after a committed transition.
// The production implementation enqueues an asynq task; tests capture events
// in memory.
type TransitionNotifier interface {
	NotifyTransition(ctx context.Context, event model.TransitionEvent) error
}
