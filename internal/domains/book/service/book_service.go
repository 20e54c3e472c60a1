package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	userModel "booklend-backend/internal/domains/user/model"
	userRepo "booklend-backend/internal/domains/user/repository"
	"booklend-backend/internal/infrastructure/storage"
	"booklend-backend/internal/shared/geo"
	"booklend-backend/internal/shared/token"
)

type bookService struct {
	store     repository.Store
	users     userRepo.Repository
	images    storage.ImageStore
	processor *storage.ImageProcessor
}

func NewBookService(store repository.Store, users userRepo.Repository, images storage.ImageStore) BookService {
	return &bookService{
		store:     store,
		users:     users,
		images:    images,
		processor: storage.NewImageProcessor(),
	}
}

func (s *bookService) AddBook(ctx context.Context, ownerID uuid.UUID, req model.AddBookRequest, image []byte) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	loc, err := s.ownerLocation(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.processor.ValidateImage(image); err != nil {
		return nil, &model.LendingError{
			Code:    model.ErrInvalidImage.Code,
			Message: model.ErrInvalidImage.Message,
			Err:     err,
		}
	}
	cover, err := s.processor.ProcessCover(image)
	if err != nil {
		return nil, &model.LendingError{
			Code:    model.ErrInvalidImage.Code,
			Message: model.ErrInvalidImage.Message,
			Err:     err,
		}
	}

	bookID := uuid.New()
	key := fmt.Sprintf("books/%s/%s.jpg", ownerID, bookID)
	imageURL, err := s.images.Upload(ctx, key, cover, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("failed to upload cover image: %w", err)
	}

	book := &model.Book{
		ID:       bookID,
		Title:    req.Title,
		Author:   req.Author,
		ImageURL: imageURL,
		OwnerID:  ownerID,
		Status:   model.BookStatusAvailable,
		Location: model.Location{
			Latitude:         loc.Latitude,
			Longitude:        loc.Longitude,
			FormattedAddress: loc.FormattedAddress,
		},
		Geohash:      geo.SpatialKey(geo.Point{Latitude: loc.Latitude, Longitude: loc.Longitude}),
		SearchTokens: token.Tokenize(req.Title, req.Author),
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		// the row never existed, so remove the orphaned object
		if delErr := s.images.DeleteByURL(ctx, imageURL); delErr != nil {
			log.Warn().Err(delErr).Str("image_url", imageURL).
				Msg("storage cleanup failed after aborted book create")
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) ownerLocation(ctx context.Context, ownerID uuid.UUID) (*userModel.Location, error) {
	u, err := s.users.GetUser(ctx, ownerID)
	if errors.Is(err, userModel.ErrUserNotFound) {
		return nil, model.ErrMissingLocation
	}
	if err != nil {
		return nil, err
	}
	if u.Location == nil {
		return nil, model.ErrMissingLocation
	}
	return u.Location, nil
}

func (s *bookService) DeleteBook(ctx context.Context, ownerID, bookID uuid.UUID) error {
	var imageURL string
	err := s.store.RunAggregate(ctx, bookID, func(tx repository.AggregateTx) error {
		book := tx.Book()
		if book.OwnerID != ownerID {
			return model.ErrNotOwner
		}
		if book.Status != model.BookStatusAvailable {
			return model.ErrBookNotAvailable
		}
		imageURL = book.ImageURL
		tx.DeleteBook()
		return nil
	})
	if err != nil {
		return err
	}

	// the book is gone either way; a leaked object only costs storage
	if imageURL != "" {
		if err := s.images.DeleteByURL(ctx, imageURL); err != nil {
			log.Warn().Err(err).Str("image_url", imageURL).
				Str("book_id", bookID.String()).
				Msg("storage cleanup failed after book delete")
		}
	}
	return nil
}

func (s *bookService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Book, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *bookService) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]model.Book, error) {
	return s.store.ListByBorrower(ctx, borrowerID)
}
