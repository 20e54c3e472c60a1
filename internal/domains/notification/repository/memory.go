package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/notification/model"
)

// MemoryRepository backs worker and service tests.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]model.Notification
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]model.Notification)}
}

func (r *MemoryRepository) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.Unread = true
	n.CreatedAt = time.Now()
	r.items[n.ID] = *n
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, model.ErrNotificationNotFound
	}
	cp := n
	return &cp, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = model.DefaultListLimit
	}
	if opts.Offset >= len(out) {
		return []model.Notification{}, nil
	}
	out = out[opts.Offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok || !n.Unread {
		return nil
	}
	now := time.Now()
	n.Unread = false
	n.ReadAt = &now
	r.items[id] = n
	return nil
}

func (r *MemoryRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && n.Unread {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) PurgeRead(_ context.Context, olderThan time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var purged int64
	for id, n := range r.items {
		if !n.Unread && n.CreatedAt.Before(olderThan) {
			delete(r.items, id)
			purged++
		}
	}
	return purged, nil
}
