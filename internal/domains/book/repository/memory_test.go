package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	"booklend-backend/pkg/database"
)

func seed(t *testing.T) (*repository.MemoryStore, *model.Book) {
	t.Helper()
	store := repository.NewMemoryStore()
	book := &model.Book{
		ID:      uuid.New(),
		Title:   "Clean Code",
		Author:  "Robert Martin",
		OwnerID: uuid.New(),
		Status:  model.BookStatusAvailable,
	}
	require.NoError(t, store.CreateBook(context.Background(), book))
	return store, book
}

// interleave commits a competing write to the same book, so the caller's
// in-flight attempt hits a version conflict.
func interleave(t *testing.T, store *repository.MemoryStore, bookID uuid.UUID) {
	t.Helper()
	err := store.RunAggregate(context.Background(), bookID, func(tx repository.AggregateTx) error {
		tx.PutBook(tx.Book())
		return nil
	})
	require.NoError(t, err)
}

func Test_RunAggregate_RetriesOnceOnConflict(t *testing.T) {
	store, book := seed(t)

	attempts := 0
	err := store.RunAggregate(context.Background(), book.ID, func(tx repository.AggregateTx) error {
		attempts++
		if attempts == 1 {
			interleave(t, store, book.ID)
		}
		b := tx.Book()
		b.Title = "Updated"
		tx.PutBook(b)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	got, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
}

func Test_RunAggregate_GivesUpAfterBoundedAttempts(t *testing.T) {
	store, book := seed(t)

	attempts := 0
	err := store.RunAggregate(context.Background(), book.ID, func(tx repository.AggregateTx) error {
		attempts++
		interleave(t, store, book.ID)
		tx.PutBook(tx.Book())
		return nil
	})

	assert.ErrorIs(t, err, database.ErrWriteConflict)
	assert.Equal(t, database.DefaultOptimisticAttempts, attempts)
}

// The loser of a conflict must re-validate against the fresh snapshot and
// surface the business error that snapshot implies.
func Test_RunAggregate_RetrySeesFreshSnapshot(t *testing.T) {
	store, book := seed(t)
	borrower := uuid.New()

	attempts := 0
	err := store.RunAggregate(context.Background(), book.ID, func(tx repository.AggregateTx) error {
		attempts++
		b := tx.Book()
		if attempts == 1 {
			require.Equal(t, model.BookStatusAvailable, b.Status)
			// a competitor takes the book between our read and commit
			compErr := store.RunAggregate(context.Background(), book.ID, func(tx2 repository.AggregateTx) error {
				b2 := tx2.Book()
				b2.Status = model.BookStatusRequested
				b2.BorrowerID = &borrower
				tx2.PutBook(b2)
				return nil
			})
			require.NoError(t, compErr)
		}
		if b.Status != model.BookStatusAvailable {
			return model.ErrBookNotAvailable
		}
		tx.PutBook(b)
		return nil
	})

	assert.ErrorIs(t, err, model.ErrBookNotAvailable)
	assert.Equal(t, 2, attempts)
}

func Test_RunAggregate_FailedValidationWritesNothing(t *testing.T) {
	store, book := seed(t)

	err := store.RunAggregate(context.Background(), book.ID, func(tx repository.AggregateTx) error {
		b := tx.Book()
		b.Title = "Should Not Persist"
		tx.PutBook(b)
		return model.ErrNotOwner
	})

	assert.ErrorIs(t, err, model.ErrNotOwner)
	got, err := store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clean Code", got.Title)
}

func Test_RunAggregate_UnknownBook(t *testing.T) {
	store, _ := seed(t)

	err := store.RunAggregate(context.Background(), uuid.New(), func(repository.AggregateTx) error {
		return nil
	})

	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func Test_RangeByGeohash_HalfOpenBounds(t *testing.T) {
	store := repository.NewMemoryStore()
	put := func(geohash string) *model.Book {
		b := &model.Book{
			ID:      uuid.New(),
			Title:   "Book " + geohash,
			OwnerID: uuid.New(),
			Status:  model.BookStatusAvailable,
			Geohash: geohash,
		}
		require.NoError(t, store.CreateBook(context.Background(), b))
		return b
	}
	inside := put("dr5regw3p")
	put("dr7aaaaaa")

	books, err := store.RangeByGeohash(context.Background(), "dr5", "dr5~", repository.RangeFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, inside.ID, books[0].ID)
}
