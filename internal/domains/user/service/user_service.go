package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/user/model"
	"booklend-backend/internal/domains/user/repository"
	"booklend-backend/pkg/cache"
)

const (
	ratingCacheKeyFmt = "user:rating:%s"
	ratingCacheTTL    = 10 * time.Minute
)

type userService struct {
	repo  repository.Repository
	cache cache.Cache
}

func NewUserService(repo repository.Repository, c cache.Cache) UserService {
	return &userService{repo: repo, cache: c}
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetLocation returns nil without error when the user has never saved one.
func (s *userService) GetLocation(ctx context.Context, userID uuid.UUID) (*model.Location, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.Location, nil
}

func (s *userService) SaveLocation(ctx context.Context, userID uuid.UUID, req model.SaveLocationRequest) error {
	if err := req.Validate(); err != nil {
		return &model.UserError{
			Code:    model.ErrInvalidLocation.Code,
			Message: model.ErrInvalidLocation.Message,
			Err:     err,
		}
	}
	return s.repo.SaveLocation(ctx, userID, req.Location())
}

func (s *userService) RateUser(ctx context.Context, raterID, ratedID uuid.UUID, req model.RateUserRequest) (model.RatingResponse, error) {
	if err := req.Validate(); err != nil {
		return model.RatingResponse{}, &model.UserError{
			Code:    model.ErrInvalidRating.Code,
			Message: model.ErrInvalidRating.Message,
			Err:     err,
		}
	}
	if raterID == ratedID {
		return model.RatingResponse{}, model.ErrSelfRating
	}

	rating := &model.Rating{
		ID:      uuid.New(),
		RatedID: ratedID,
		RaterID: raterID,
		Value:   req.Value,
	}
	if err := s.repo.AddRating(ctx, rating); err != nil {
		return model.RatingResponse{}, err
	}

	if err := s.cache.Delete(ctx, ratingCacheKey(ratedID)); err != nil {
		log.Warn().Err(err).Str("user_id", ratedID.String()).
			Msg("failed to invalidate rating cache")
	}

	u, err := s.repo.GetUser(ctx, ratedID)
	if err != nil {
		return model.RatingResponse{}, err
	}
	return u.RatingResponse(), nil
}

func (s *userService) GetRating(ctx context.Context, userID uuid.UUID) (model.RatingResponse, error) {
	key := ratingCacheKey(userID)

	var cached model.RatingResponse
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("rating cache read failed")
	}
	if found {
		return cached, nil
	}

	u, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		// unrated users simply have no row yet
		return model.RatingResponse{}, nil
	}
	if err != nil {
		return model.RatingResponse{}, err
	}

	resp := u.RatingResponse()
	if err := s.cache.Set(ctx, key, resp, ratingCacheTTL); err != nil {
		log.Warn().Err(err).Msg("rating cache write failed")
	}
	return resp, nil
}

func (s *userService) RegisterPushToken(ctx context.Context, userID uuid.UUID, req model.RegisterPushTokenRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.RegisterPushToken(ctx, userID, req.Token)
}

func ratingCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf(ratingCacheKeyFmt, userID)
}
