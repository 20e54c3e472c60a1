package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	bookModel "booklend-backend/internal/domains/book/model"
	"booklend-backend/internal/domains/book/repository"
	"booklend-backend/internal/domains/search/model"
	"booklend-backend/internal/shared/geo"
	"booklend-backend/internal/shared/token"
)

type SearchService interface {
	// Nearby finds books within req.RadiusKm of the query point, nearest
	// first. Any bucket query failing fails the whole search rather than
	// returning a silently incomplete result.
	Nearby(ctx context.Context, req model.SearchRequest) ([]model.Result, error)
}

type searchService struct {
	searcher repository.Searcher
}

func NewSearchService(searcher repository.Searcher) SearchService {
	return &searchService{searcher: searcher}
}

func (s *searchService) Nearby(ctx context.Context, req model.SearchRequest) ([]model.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = model.DefaultLimit
	}

	filter := repository.RangeFilter{
		Statuses: []bookModel.BookStatus{bookModel.BookStatusAvailable},
	}
	if req.ShowBorrowed {
		filter.Statuses = append(filter.Statuses,
			bookModel.BookStatusRequested, bookModel.BookStatusLoaned)
	}
	if req.Query != "" {
		filter.Tokens = token.Tokenize(req.Query)
		if len(filter.Tokens) == 0 {
			// the query normalized away to nothing, so nothing can match
			return []model.Result{}, nil
		}
	}

	center := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	ranges := geo.CoverDisk(center, req.RadiusKm)

	// one range query per bucket, joined before post-filtering
	var mu sync.Mutex
	buckets := make([][]bookModel.Book, 0, len(ranges))

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range ranges {
		g.Go(func() error {
			books, err := s.searcher.RangeByGeohash(gctx, r.Start, r.End, filter)
			if err != nil {
				return fmt.Errorf("bucket [%s, %s): %w", r.Start, r.End, err)
			}
			mu.Lock()
			buckets = append(buckets, books)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// the cover over-approximates; dedupe overlapping buckets and keep the
	// true-distance matches only
	seen := make(map[uuid.UUID]struct{})
	results := make([]model.Result, 0)
	for _, books := range buckets {
		for i := range books {
			b := &books[i]
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}

			if req.ExcludeOwnerID != uuid.Nil && b.OwnerID == req.ExcludeOwnerID {
				continue
			}
			d := geo.DistanceKm(center, b.Location.Point())
			if d > req.RadiusKm {
				continue
			}
			results = append(results, model.Result{Book: b.ToResponse(), DistanceKm: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].DistanceKm != results[j].DistanceKm {
			return results[i].DistanceKm < results[j].DistanceKm
		}
		return results[i].Book.ID.String() < results[j].Book.ID.String()
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
