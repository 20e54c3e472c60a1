package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/notification/model"
)

type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// PurgeRead deletes read notifications older than the cutoff and
	// returns how many rows went away.
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}
