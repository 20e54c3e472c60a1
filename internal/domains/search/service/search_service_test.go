package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	"booklend-backend/internal/domains/search/model"
	"booklend-backend/internal/domains/search/service"
	"booklend-backend/internal/shared/geo"
	"booklend-backend/internal/shared/token"
)

// manhattan; all test books are placed relative to this point
var center = geo.Point{Latitude: 40.7128, Longitude: -74.0060}

func seedBook(t *testing.T, store *repository.MemoryStore, title, author string, p geo.Point, status bookModel.BookStatus, owner uuid.UUID) *bookModel.Book {
	t.Helper()
	b := &bookModel.Book{
		ID:      uuid.New(),
		Title:   title,
		Author:  author,
		OwnerID: owner,
		Status:  status,
		Location: bookModel.Location{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		},
		Geohash:      geo.SpatialKey(p),
		SearchTokens: token.Tokenize(title, author),
	}
	require.NoError(t, store.CreateBook(context.Background(), b))
	return b
}

// kmNorth/kmEast shift a point by whole kilometers, close enough at the test
// latitude.
func kmNorth(p geo.Point, km float64) geo.Point {
	return geo.Point{Latitude: p.Latitude + km/111.195, Longitude: p.Longitude}
}

func kmEast(p geo.Point, km float64) geo.Point {
	return geo.Point{
		Latitude:  p.Latitude,
		Longitude: p.Longitude + km/84.3, // 111.195 * cos(40.7°)
	}
}

func baseRequest() model.SearchRequest {
	return model.SearchRequest{
		Latitude:  center.Latitude,
		Longitude: center.Longitude,
		RadiusKm:  5,
	}
}

func Test_Nearby_FiltersByTrueDistance(t *testing.T) {
	store := repository.NewMemoryStore()
	near := seedBook(t, store, "Near Book", "Author", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())
	seedBook(t, store, "Far Book", "Author", kmNorth(center, 9), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(store)
	results, err := svc.Nearby(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, near.ID, results[0].Book.ID)
	assert.InDelta(t, 1.0, results[0].DistanceKm, 0.05)
}

func Test_Nearby_SortsByDistanceThenID(t *testing.T) {
	store := repository.NewMemoryStore()
	far := seedBook(t, store, "Farther", "Author", kmEast(center, 3), bookModel.BookStatusAvailable, uuid.New())
	close1 := seedBook(t, store, "Closer", "Author", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(store)
	results, err := svc.Nearby(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, close1.ID, results[0].Book.ID)
	assert.Equal(t, far.ID, results[1].Book.ID)
	assert.LessOrEqual(t, results[0].DistanceKm, results[1].DistanceKm)
}

func Test_Nearby_ExcludesOwner(t *testing.T) {
	store := repository.NewMemoryStore()
	me := uuid.New()
	seedBook(t, store, "My Book", "Me", kmNorth(center, 1), bookModel.BookStatusAvailable, me)
	other := seedBook(t, store, "Other Book", "Them", kmNorth(center, 2), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(store)

	req := baseRequest()
	req.ExcludeOwnerID = me
	results, err := svc.Nearby(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other.ID, results[0].Book.ID)

	// anonymous callers see everything
	anon, err := svc.Nearby(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Len(t, anon, 2)
}

func Test_Nearby_StatusFilter(t *testing.T) {
	store := repository.NewMemoryStore()
	seedBook(t, store, "Available", "Author", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())
	seedBook(t, store, "Requested", "Author", kmNorth(center, 2), bookModel.BookStatusRequested, uuid.New())
	seedBook(t, store, "Loaned", "Author", kmNorth(center, 3), bookModel.BookStatusLoaned, uuid.New())

	svc := service.NewSearchService(store)

	onlyAvailable, err := svc.Nearby(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, onlyAvailable, 1)
	assert.Equal(t, "Available", onlyAvailable[0].Book.Title)

	req := baseRequest()
	req.ShowBorrowed = true
	all, err := svc.Nearby(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func Test_Nearby_TokenFilter(t *testing.T) {
	store := repository.NewMemoryStore()
	clean := seedBook(t, store, "Clean Code", "Robert Martin", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())
	seedBook(t, store, "Domain-Driven Design", "Eric Evans", kmNorth(center, 2), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(store)

	req := baseRequest()
	req.Query = "Códe" // diacritics and case must not matter
	results, err := svc.Nearby(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, clean.ID, results[0].Book.ID)

	req.Query = "!!" // normalizes to nothing, so nothing can match
	results, err = svc.Nearby(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func Test_Nearby_Limit(t *testing.T) {
	store := repository.NewMemoryStore()
	for i := 0; i < 5; i++ {
		seedBook(t, store, fmt.Sprintf("Book %d", i), "Author",
			kmNorth(center, 0.5+float64(i)*0.2), bookModel.BookStatusAvailable, uuid.New())
	}

	svc := service.NewSearchService(store)

	req := baseRequest()
	req.Limit = 3
	results, err := svc.Nearby(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	// nearest three survive the cut
	assert.InDelta(t, 0.5, results[0].DistanceKm, 0.05)
}

func Test_Nearby_ValidatesRequest(t *testing.T) {
	svc := service.NewSearchService(repository.NewMemoryStore())

	tests := []struct {
		name   string
		mutate func(*model.SearchRequest)
	}{
		{"latitude_out_of_range", func(r *model.SearchRequest) { r.Latitude = 91 }},
		{"longitude_out_of_range", func(r *model.SearchRequest) { r.Longitude = -181 }},
		{"zero_radius", func(r *model.SearchRequest) { r.RadiusKm = 0 }},
		{"negative_radius", func(r *model.SearchRequest) { r.RadiusKm = -1 }},
		{"radius_too_large", func(r *model.SearchRequest) { r.RadiusKm = 1000 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest()
			tc.mutate(&req)
			_, err := svc.Nearby(context.Background(), req)
			assert.Error(t, err)
		})
	}
}

type failingSearcher struct {
	inner repository.Searcher
	fail  bool
}

func (s *failingSearcher) RangeByGeohash(ctx context.Context, start, end string, f repository.RangeFilter) ([]bookModel.Book, error) {
	if s.fail {
		return nil, errors.New("bucket query timed out")
	}
	return s.inner.RangeByGeohash(ctx, start, end, f)
}

func Test_Nearby_BucketFailureFailsTheSearch(t *testing.T) {
	store := repository.NewMemoryStore()
	seedBook(t, store, "Book", "Author", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(&failingSearcher{inner: store, fail: true})

	_, err := svc.Nearby(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func Test_Nearby_DeduplicatesAcrossBuckets(t *testing.T) {
	store := repository.NewMemoryStore()
	b := seedBook(t, store, "Single Book", "Author", kmNorth(center, 1), bookModel.BookStatusAvailable, uuid.New())

	svc := service.NewSearchService(store)

	// a generous radius makes every cover bucket scan broad key ranges
	req := baseRequest()
	req.RadiusKm = 50
	results, err := svc.Nearby(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, b.ID, results[0].Book.ID)
}
