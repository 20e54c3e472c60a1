package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booklend-backend/internal/domains/book/model"
	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/pkg/database"
)

type postgresStore struct {
	pool        *pgxpool.Pool
	maxAttempts int
}

// NewPostgresStore builds the production store. maxAttempts bounds the
// optimistic retries per aggregate transaction.
func NewPostgresStore(pool *pgxpool.Pool, maxAttempts int) Store {
	if maxAttempts < 1 {
		maxAttempts = database.DefaultOptimisticAttempts
	}
	return &postgresStore{pool: pool, maxAttempts: maxAttempts}
}

const bookColumns = `
	id, title, author, image_url, owner_id, status, borrower_id,
	current_loan_id, requested_at, cancelled_by_borrower,
	latitude, longitude, formatted_address, geohash, search_tokens,
	version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.ImageURL, &b.OwnerID, &b.Status,
		&b.BorrowerID, &b.CurrentLoanID, &b.RequestedAt, &b.CancelledByBorrower,
		&b.Location.Latitude, &b.Location.Longitude, &b.Location.FormattedAddress,
		&b.Geohash, &b.SearchTokens, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *postgresStore) CreateBook(ctx context.Context, b *model.Book) error {
	query := `
    INSERT INTO books
    (id, title, author, image_url, owner_id, status, borrower_id, current_loan_id,
     requested_at, cancelled_by_borrower, latitude, longitude, formatted_address,
     geohash, search_tokens, version, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1, NOW(), NOW())
  `

	_, err := s.pool.Exec(ctx, query,
		b.ID, b.Title, b.Author, b.ImageURL, b.OwnerID, b.Status,
		b.BorrowerID, b.CurrentLoanID, b.RequestedAt, b.CancelledByBorrower,
		b.Location.Latitude, b.Location.Longitude, b.Location.FormattedAddress,
		b.Geohash, b.SearchTokens,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *postgresStore) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	b, err := scanBook(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (s *postgresStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY created_at DESC`
	return s.queryBooks(ctx, query, ownerID)
}

func (s *postgresStore) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books
	WHERE borrower_id = $1 AND status IN ('requested', 'loaned')
	ORDER BY created_at DESC`
	return s.queryBooks(ctx, query, borrowerID)
}

func (s *postgresStore) RangeByGeohash(ctx context.Context, start, end string, f RangeFilter) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE geohash >= $1 AND geohash < $2`
	args := []any{start, end}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			statuses[i] = st.String()
		}
		args = append(args, statuses)
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	if len(f.Tokens) > 0 {
		args = append(args, f.Tokens)
		query += fmt.Sprintf(" AND search_tokens && $%d", len(args))
	}
	query += " ORDER BY geohash"

	return s.queryBooks(ctx, query, args...)
}

func (s *postgresStore) queryBooks(ctx context.Context, query string, args ...any) ([]model.Book, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

const loanColumns = `
	id, book_id, owner_id, borrower_id, status, active,
	requested_at, accepted_at, rejected_at, cancelled_at, loaned_at, returned_at,
	created_at, updated_at`

func scanLoan(row rowScanner, l *loanModel.Loan, extra ...any) error {
	dest := []any{
		&l.ID, &l.BookID, &l.OwnerID, &l.BorrowerID, &l.Status, &l.Active,
		&l.RequestedAt, &l.AcceptedAt, &l.RejectedAt, &l.CancelledAt,
		&l.LoanedAt, &l.ReturnedAt, &l.CreatedAt, &l.UpdatedAt,
	}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

func (s *postgresStore) ListLoansByBorrower(ctx context.Context, borrowerID uuid.UUID, opts loanModel.ListLoansOptions) ([]loanModel.LoanWithBook, error) {
	query := `
    SELECT l.id, l.book_id, l.owner_id, l.borrower_id, l.status, l.active,
           l.requested_at, l.accepted_at, l.rejected_at, l.cancelled_at,
           l.loaned_at, l.returned_at, l.created_at, l.updated_at,
           b.title, b.author, b.image_url, b.status
    FROM loans l
    LEFT JOIN books b ON b.id = l.book_id
    WHERE l.borrower_id = $1`
	args := []any{borrowerID}

	if opts.ActiveOnly {
		query += " AND l.active"
	}
	query += " ORDER BY l.created_at DESC"
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var result []loanModel.LoanWithBook
	for rows.Next() {
		var lw loanModel.LoanWithBook
		var title, author, imageURL, status *string
		if err := scanLoan(rows, &lw.Loan, &title, &author, &imageURL, &status); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}

		lw.Book.ID = lw.BookID
		if title != nil {
			// the book row may be gone for finished loans; then only the id
			// survives
			lw.Book.Title = *title
			lw.Book.Author = *author
			lw.Book.ImageURL = *imageURL
			lw.Book.Status = *status
		}
		result = append(result, lw)
	}
	return result, rows.Err()
}

// ============================================
// AGGREGATE TRANSACTION
// ============================================

type pgxAggregate struct {
	tx   pgx.Tx
	book *model.Book

	updatedBook *model.Book
	newLoans    []*loanModel.Loan
	loanUpdates []*loanModel.Loan
	deleteBook  bool
}

func (a *pgxAggregate) Book() *model.Book { return a.book }

func (a *pgxAggregate) CurrentLoan(ctx context.Context) (*loanModel.Loan, error) {
	if a.book.CurrentLoanID == nil {
		return nil, model.ErrNoActiveLoan
	}
	row := a.tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, *a.book.CurrentLoanID)
	var l loanModel.Loan
	err := scanLoan(row, &l)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return &l, nil
}

func (a *pgxAggregate) PutBook(b *model.Book)        { a.updatedBook = b }
func (a *pgxAggregate) CreateLoan(l *loanModel.Loan) { a.newLoans = append(a.newLoans, l) }
func (a *pgxAggregate) PutLoan(l *loanModel.Loan)    { a.loanUpdates = append(a.loanUpdates, l) }
func (a *pgxAggregate) DeleteBook()                  { a.deleteBook = true }

// flush applies the staged writes. The book write is conditional on the
// version observed at snapshot time; losing that race surfaces as
// database.ErrWriteConflict, which re-runs the whole closure.
func (a *pgxAggregate) flush(ctx context.Context) error {
	for _, l := range a.newLoans {
		_, err := a.tx.Exec(ctx, `
      INSERT INTO loans
      (id, book_id, owner_id, borrower_id, status, active,
       requested_at, accepted_at, rejected_at, cancelled_at, loaned_at, returned_at,
       created_at, updated_at)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())`,
			l.ID, l.BookID, l.OwnerID, l.BorrowerID, l.Status, l.Active,
			l.RequestedAt, l.AcceptedAt, l.RejectedAt, l.CancelledAt, l.LoanedAt, l.ReturnedAt,
		)
		if err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}
	}

	for _, l := range a.loanUpdates {
		_, err := a.tx.Exec(ctx, `
      UPDATE loans SET status = $2, active = $3,
             requested_at = $4, accepted_at = $5, rejected_at = $6,
             cancelled_at = $7, loaned_at = $8, returned_at = $9,
             updated_at = NOW()
      WHERE id = $1`,
			l.ID, l.Status, l.Active,
			l.RequestedAt, l.AcceptedAt, l.RejectedAt, l.CancelledAt, l.LoanedAt, l.ReturnedAt,
		)
		if err != nil {
			return fmt.Errorf("update loan: %w", err)
		}
	}

	if a.deleteBook {
		tag, err := a.tx.Exec(ctx, `DELETE FROM books WHERE id = $1 AND version = $2`,
			a.book.ID, a.book.Version)
		if err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return database.ErrWriteConflict
		}
		return nil
	}

	if a.updatedBook != nil {
		b := a.updatedBook
		tag, err := a.tx.Exec(ctx, `
      UPDATE books SET
        status = $2, borrower_id = $3, current_loan_id = $4, requested_at = $5,
        cancelled_by_borrower = $6, version = version + 1, updated_at = NOW()
      WHERE id = $1 AND version = $7`,
			b.ID, b.Status, b.BorrowerID, b.CurrentLoanID, b.RequestedAt,
			b.CancelledByBorrower, a.book.Version,
		)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return database.ErrWriteConflict
		}
	}

	return nil
}

func (s *postgresStore) RunAggregate(ctx context.Context, bookID uuid.UUID, fn func(tx AggregateTx) error) error {
	attempt := func(ctx context.Context) error {
		return database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, bookID)
			book, err := scanBook(row)
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrBookNotFound
			}
			if err != nil {
				return fmt.Errorf("get book: %w", err)
			}

			agg := &pgxAggregate{tx: tx, book: book}
			if err := fn(agg); err != nil {
				return err
			}
			return agg.flush(ctx)
		})
	}
	return database.WithOptimisticRetry(ctx, s.maxAttempts, attempt)
}
