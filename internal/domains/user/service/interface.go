package service

import (
	"context"

	"github.com/google/uuid"

	"booklend-backend/internal/domains/user/model"
)

type UserService interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetLocation(ctx context.Context, userID uuid.UUID) (*model.Location, error)
	SaveLocation(ctx context.Context, userID uuid.UUID, req model.SaveLocationRequest) error

	RateUser(ctx context.Context, raterID, ratedID uuid.UUID, req model.RateUserRequest) (model.RatingResponse, error)
	GetRating(ctx context.Context, userID uuid.UUID) (model.RatingResponse, error)

	RegisterPushToken(ctx context.Context, userID uuid.UUID, req model.RegisterPushTokenRequest) error
}
