package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/book/model"
	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/shared/token"
	"booklend-backend/pkg/database"
)

// MemoryStore is a dependency-free Store with the same optimistic semantics
// as the postgres implementation. Service tests run against it; it is not
// meant for production.
type MemoryStore struct {
	mu    sync.Mutex
	books map[uuid.UUID]model.Book
	loans map[uuid.UUID]loanModel.Loan
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[uuid.UUID]model.Book),
		loans: make(map[uuid.UUID]loanModel.Loan),
	}
}

func (s *MemoryStore) CreateBook(_ context.Context, b *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Version == 0 {
		b.Version = 1
	}
	s.books[b.ID] = *b
	return nil
}

func (s *MemoryStore) GetBook(_ context.Context, id uuid.UUID) (*model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return cloneBook(b), nil
}

// GetLoan is a test helper for asserting on loan rows.
func (s *MemoryStore) GetLoan(id uuid.UUID) (*loanModel.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[id]
	if !ok {
		return nil, false
	}
	cp := l
	return &cp, true
}

// ActiveLoans counts loans with the active flag per book. Test helper for
// the single-active-loan invariant.
func (s *MemoryStore) ActiveLoans(bookID uuid.UUID) []loanModel.Loan {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []loanModel.Loan
	for _, l := range s.loans {
		if l.BookID == bookID && l.Active {
			out = append(out, l)
		}
	}
	return out
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Book
	for _, b := range s.books {
		if b.OwnerID == ownerID {
			out = append(out, *cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListByBorrower(_ context.Context, borrowerID uuid.UUID) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Book
	for _, b := range s.books {
		if b.BorrowerID != nil && *b.BorrowerID == borrowerID && b.Status.Borrowed() {
			out = append(out, *cloneBook(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListLoansByBorrower(_ context.Context, borrowerID uuid.UUID, opts loanModel.ListLoansOptions) ([]loanModel.LoanWithBook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []loanModel.LoanWithBook
	for _, l := range s.loans {
		if l.BorrowerID != borrowerID {
			continue
		}
		if opts.ActiveOnly && !l.Active {
			continue
		}
		lw := loanModel.LoanWithBook{Loan: l}
		lw.Book.ID = l.BookID
		if b, ok := s.books[l.BookID]; ok {
			lw.Book.Title = b.Title
			lw.Book.Author = b.Author
			lw.Book.ImageURL = b.ImageURL
			lw.Book.Status = b.Status.String()
		}
		out = append(out, lw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore) RangeByGeohash(_ context.Context, start, end string, f RangeFilter) ([]model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Book
	for _, b := range s.books {
		if b.Geohash < start || b.Geohash >= end {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, b.Status) {
			continue
		}
		if len(f.Tokens) > 0 && !token.Overlaps(b.SearchTokens, f.Tokens) {
			continue
		}
		out = append(out, *cloneBook(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Geohash < out[j].Geohash })
	return out, nil
}

// memoryAggregate mirrors pgxAggregate: fn works on a copy of the snapshot
// and all writes are staged until commit.
type memoryAggregate struct {
	store *MemoryStore
	book  *model.Book

	updatedBook *model.Book
	newLoans    []*loanModel.Loan
	loanUpdates []*loanModel.Loan
	deleteBook  bool
}

func (a *memoryAggregate) Book() *model.Book { return a.book }

func (a *memoryAggregate) CurrentLoan(_ context.Context) (*loanModel.Loan, error) {
	if a.book.CurrentLoanID == nil {
		return nil, model.ErrNoActiveLoan
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	l, ok := a.store.loans[*a.book.CurrentLoanID]
	if !ok {
		return nil, model.ErrLoanNotFound
	}
	cp := l
	return &cp, nil
}

func (a *memoryAggregate) PutBook(b *model.Book)        { a.updatedBook = b }
func (a *memoryAggregate) CreateLoan(l *loanModel.Loan) { a.newLoans = append(a.newLoans, l) }
func (a *memoryAggregate) PutLoan(l *loanModel.Loan)    { a.loanUpdates = append(a.loanUpdates, l) }
func (a *memoryAggregate) DeleteBook()                  { a.deleteBook = true }

func (s *MemoryStore) RunAggregate(ctx context.Context, bookID uuid.UUID, fn func(tx AggregateTx) error) error {
	attempt := func(context.Context) error {
		s.mu.Lock()
		snapshot, ok := s.books[bookID]
		s.mu.Unlock()
		if !ok {
			return model.ErrBookNotFound
		}

		agg := &memoryAggregate{store: s, book: cloneBook(snapshot)}
		if err := fn(agg); err != nil {
			return err
		}

		// commit: the version check makes the interleaving window explicit
		s.mu.Lock()
		defer s.mu.Unlock()
		current, ok := s.books[bookID]
		if !ok || current.Version != snapshot.Version {
			return database.ErrWriteConflict
		}

		for _, l := range agg.newLoans {
			s.loans[l.ID] = *l
		}
		for _, l := range agg.loanUpdates {
			s.loans[l.ID] = *l
		}
		if agg.deleteBook {
			delete(s.books, bookID)
			return nil
		}
		if agg.updatedBook != nil {
			b := *agg.updatedBook
			b.Version = snapshot.Version + 1
			s.books[bookID] = b
		}
		return nil
	}
	return database.WithOptimisticRetry(ctx, database.DefaultOptimisticAttempts, attempt)
}

func cloneBook(b model.Book) *model.Book {
	cp := b
	if b.BorrowerID != nil {
		id := *b.BorrowerID
		cp.BorrowerID = &id
	}
	if b.CurrentLoanID != nil {
		id := *b.CurrentLoanID
		cp.CurrentLoanID = &id
	}
	if b.RequestedAt != nil {
		t := *b.RequestedAt
		cp.RequestedAt = &t
	}
	cp.SearchTokens = append([]string(nil), b.SearchTokens...)
	return &cp
}

func containsStatus(list []model.BookStatus, s model.BookStatus) bool {
	for _, st := range list {
		if st == s {
			return true
		}
	}
	return false
}
