package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	"booklend-backend/internal/domains/book/service"
	userModel "booklend-backend/internal/domains/user/model"
	userRepo "booklend-backend/internal/domains/user/repository"
)

// fakeImageStore records uploads and deletions in memory.
type fakeImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: make(map[string][]byte)}
}

func (s *fakeImageStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (s *fakeImageStore) DeleteByURL(_ context.Context, rawURL string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, rawURL)
	return nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type env struct {
	store  *repository.MemoryStore
	users  *userRepo.MemoryRepository
	images *fakeImageStore
	svc    service.BookService
	owner  uuid.UUID
}

func newEnv(withLocation bool) *env {
	e := &env{
		store:  repository.NewMemoryStore(),
		users:  userRepo.NewMemoryRepository(),
		images: newFakeImageStore(),
		owner:  uuid.New(),
	}
	u := userModel.User{ID: e.owner, DisplayName: "Owner"}
	if withLocation {
		addr := "42 Test St"
		u.Location = &userModel.Location{
			Latitude:         40.7128,
			Longitude:        -74.0060,
			FormattedAddress: &addr,
		}
	}
	e.users.PutUser(u)
	e.svc = service.NewBookService(e.store, e.users, e.images)
	return e
}

func Test_AddBook_HappyPath(t *testing.T) {
	e := newEnv(true)

	book, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))
	require.NoError(t, err)

	assert.Equal(t, model.BookStatusAvailable, book.Status)
	assert.Equal(t, e.owner, book.OwnerID)
	assert.Equal(t, 40.7128, book.Location.Latitude)
	assert.Len(t, book.Geohash, 9)
	assert.Equal(t, []string{"clean", "code", "robert", "martin"}, book.SearchTokens)
	assert.Equal(t, fmt.Sprintf("https://cdn.test/books/%s/%s.jpg", e.owner, book.ID), book.ImageURL)

	stored, err := e.store.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.ID, stored.ID)
}

func Test_AddBook_RequiresSavedLocation(t *testing.T) {
	e := newEnv(false)

	_, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))

	assert.ErrorIs(t, err, model.ErrMissingLocation)
	assert.Empty(t, e.images.objects)
}

func Test_AddBook_UnknownOwnerMeansNoLocation(t *testing.T) {
	e := newEnv(true)

	_, err := e.svc.AddBook(context.Background(), uuid.New(),
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))

	assert.ErrorIs(t, err, model.ErrMissingLocation)
}

func Test_AddBook_RejectsInvalidImage(t *testing.T) {
	e := newEnv(true)

	_, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, []byte("not an image"))

	var le *model.LendingError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, model.ErrInvalidImage.Code, le.Code)
	assert.Empty(t, e.images.objects)
}

func Test_AddBook_RejectsEmptyTitle(t *testing.T) {
	e := newEnv(true)

	_, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "", Author: "Robert Martin"}, testPNG(t))

	assert.Error(t, err)
	assert.Empty(t, e.images.objects)
}

func Test_DeleteBook_HappyPath(t *testing.T) {
	e := newEnv(true)
	book, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))
	require.NoError(t, err)

	require.NoError(t, e.svc.DeleteBook(context.Background(), e.owner, book.ID))

	_, err = e.store.GetBook(context.Background(), book.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
	assert.Equal(t, []string{book.ImageURL}, e.images.deleted)
}

func Test_DeleteBook_OnlyOwner(t *testing.T) {
	e := newEnv(true)
	book, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))
	require.NoError(t, err)

	err = e.svc.DeleteBook(context.Background(), uuid.New(), book.ID)

	assert.ErrorIs(t, err, model.ErrNotOwner)
	_, getErr := e.store.GetBook(context.Background(), book.ID)
	assert.NoError(t, getErr)
}

func Test_DeleteBook_OnlyWhenAvailable(t *testing.T) {
	e := newEnv(true)
	book, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))
	require.NoError(t, err)

	// simulate a pending request
	borrower := uuid.New()
	err = e.store.RunAggregate(context.Background(), book.ID, func(tx repository.AggregateTx) error {
		b := tx.Book()
		b.Status = model.BookStatusRequested
		b.BorrowerID = &borrower
		tx.PutBook(b)
		return nil
	})
	require.NoError(t, err)

	err = e.svc.DeleteBook(context.Background(), e.owner, book.ID)

	assert.ErrorIs(t, err, model.ErrBookNotAvailable)
}

// A failing storage cleanup must not resurrect the delete.
func Test_DeleteBook_StorageCleanupFailureIsNotFatal(t *testing.T) {
	e := newEnv(true)
	book, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))
	require.NoError(t, err)

	e.images.deleteErr = errors.New("bucket unreachable")

	assert.NoError(t, e.svc.DeleteBook(context.Background(), e.owner, book.ID))
	_, err = e.store.GetBook(context.Background(), book.ID)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func Test_AddBook_UploadFailureAbortsCreate(t *testing.T) {
	e := newEnv(true)
	e.images.uploadErr = errors.New("bucket unreachable")

	_, err := e.svc.AddBook(context.Background(), e.owner,
		model.AddBookRequest{Title: "Clean Code", Author: "Robert Martin"}, testPNG(t))

	require.Error(t, err)
	books, listErr := e.store.ListByOwner(context.Background(), e.owner)
	require.NoError(t, listErr)
	assert.Empty(t, books)
}
