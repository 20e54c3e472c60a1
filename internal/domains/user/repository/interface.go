package repository

import (
	"context"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/user/model"
)

// Repository persists user profiles, ratings and push tokens. GetUser returns
// model.ErrUserNotFound for ids that never wrote anything; write operations
// create the row lazily instead.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	SaveLocation(ctx context.Context, id uuid.UUID, loc model.Location) error

	// AddRating inserts the rating and recomputes the rated user's
	// aggregate in the same transaction.
	AddRating(ctx context.Context, rating *model.Rating) error

	RegisterPushToken(ctx context.Context, userID uuid.UUID, token string) error
	ListPushTokens(ctx context.Context, userID uuid.UUID) ([]string, error)
}
