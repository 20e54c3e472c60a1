package service

import (
	"context"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/book/model"
)

type BookService interface {
	// AddBook creates a book at the owner's saved location. image is the raw
	// upload; it is validated, resized and stored before the row is written.
	AddBook(ctx context.Context, ownerID uuid.UUID, req model.AddBookRequest, image []byte) (*model.Book, error)

	// DeleteBook removes an available book owned by the caller. The stored
	// cover is cleaned up afterwards on a best-effort basis.
	DeleteBook(ctx context.Context, ownerID, bookID uuid.UUID) error

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error)
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Book, error)
}
