package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"booklend-backend/internal/domains/user/model"
)

// MemoryRepository backs service tests.
type MemoryRepository struct {
	mu      sync.Mutex
	users   map[uuid.UUID]model.User
	ratings []model.Rating
	tokens  map[uuid.UUID][]string
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[uuid.UUID]model.User),
		tokens: make(map[uuid.UUID][]string),
	}
}

// PutUser seeds a profile. Test helper.
func (r *MemoryRepository) PutUser(u model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *MemoryRepository) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp, nil
}

func (r *MemoryRepository) SaveLocation(_ context.Context, id uuid.UUID, loc model.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.ID = id
	u.Location = &loc
	now := time.Now()
	u.LocationUpdatedAt = &now
	u.UpdatedAt = now
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) AddRating(_ context.Context, rating *model.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating.CreatedAt = time.Now()
	r.ratings = append(r.ratings, *rating)

	u := r.users[rating.RatedID]
	u.ID = rating.RatedID
	total := decimal.Zero
	count := 0
	for _, rt := range r.ratings {
		if rt.RatedID == rating.RatedID {
			total = total.Add(decimal.NewFromInt(int64(rt.Value)))
			count++
		}
	}
	u.RatingTotal = total
	u.RatingCount = count
	r.users[rating.RatedID] = u
	return nil
}

func (r *MemoryRepository) RegisterPushToken(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens[userID] {
		if t == token {
			return nil
		}
	}
	r.tokens[userID] = append(r.tokens[userID], token)
	return nil
}

func (r *MemoryRepository) ListPushTokens(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens[userID]...), nil
}
