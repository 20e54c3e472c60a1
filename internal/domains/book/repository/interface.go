package repository

import (
	"context"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/book/model"
	loanModel "booklend-backend/internal/domains/loan/model"
)

// RangeFilter narrows a geohash range query. Empty fields mean "no filter".
type RangeFilter struct {
	Statuses []model.BookStatus
	// Tokens keeps only books whose search tokens overlap this set.
	Tokens []string
}

// AggregateTx is one atomic read-validate-write unit over a book and its
// current loan. Writes are staged; nothing is persisted if the closure
// returns an error, and a write conflict re-runs the whole closure against a
// fresh snapshot. Closures must therefore be pure functions of the snapshot.
type AggregateTx interface {
	// Book returns the snapshot read at transaction start. Never nil.
	Book() *model.Book

	// CurrentLoan loads the loan referenced by the book's CurrentLoanID.
	// Returns model.ErrNoActiveLoan when the book has none and
	// model.ErrLoanNotFound when the reference is dangling.
	CurrentLoan(ctx context.Context) (*loanModel.Loan, error)

	// PutBook stages the updated book.
	PutBook(b *model.Book)

	// CreateLoan stages a new loan row.
	CreateLoan(l *loanModel.Loan)

	// PutLoan stages an update of an existing loan row.
	PutLoan(l *loanModel.Loan)

	// DeleteBook stages deletion of the book row.
	DeleteBook()
}

// Store is the transactional record store backing the lending core. The
// ledger and search depend on this interface, never on a concrete database
// client.
type Store interface {
	CreateBook(ctx context.Context, b *model.Book) error

	// GetBook returns model.ErrBookNotFound when absent.
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)

	// ListByBorrower returns books currently requested or loaned by the user.
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Book, error)

	ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, opts loanModel.ListLoansOptions) ([]loanModel.LoanWithBook, error)

	// RangeByGeohash returns books whose spatial key falls in [start, end),
	// ordered by key. One call per cover bucket.
	RangeByGeohash(ctx context.Context, start, end string, f RangeFilter) ([]model.Book, error)

	// RunAggregate executes fn as an optimistic transaction over the book
	// aggregate. Returns model.ErrBookNotFound when the book is absent.
	RunAggregate(ctx context.Context, bookID uuid.UUID, fn func(tx AggregateTx) error) error
}

// Searcher is the slice of Store that proximity search needs.
type Searcher interface {
	RangeByGeohash(ctx context.Context, start, end string, f RangeFilter) ([]model.Book, error)
}
