package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend-backend/internal/domains/user/model"
	"booklend-backend/internal/domains/user/repository"
	"booklend-backend/internal/domains/user/service"
	"booklend-backend/pkg/cache"
)

func newService() (service.UserService, *repository.MemoryRepository) {
	repo := repository.NewMemoryRepository()
	return service.NewUserService(repo, cache.NewMemoryCache()), repo
}

func Test_SaveAndGetLocation(t *testing.T) {
	svc, _ := newService()
	userID := uuid.New()

	loc, err := svc.GetLocation(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, loc)

	addr := "1 Main St"
	err = svc.SaveLocation(context.Background(), userID, model.SaveLocationRequest{
		Latitude:         40.7128,
		Longitude:        -74.0060,
		FormattedAddress: &addr,
	})
	require.NoError(t, err)

	loc, err = svc.GetLocation(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, 40.7128, loc.Latitude)
	assert.Equal(t, -74.0060, loc.Longitude)
	require.NotNil(t, loc.FormattedAddress)
	assert.Equal(t, addr, *loc.FormattedAddress)
}

func Test_SaveLocation_RejectsOutOfRange(t *testing.T) {
	svc, _ := newService()

	tests := []struct {
		name string
		req  model.SaveLocationRequest
	}{
		{"latitude_too_high", model.SaveLocationRequest{Latitude: 90.5}},
		{"latitude_too_low", model.SaveLocationRequest{Latitude: -90.5}},
		{"longitude_too_high", model.SaveLocationRequest{Longitude: 180.5}},
		{"longitude_too_low", model.SaveLocationRequest{Longitude: -180.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SaveLocation(context.Background(), uuid.New(), tc.req)
			var ue *model.UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, model.ErrInvalidLocation.Code, ue.Code)
		})
	}
}

func Test_RateUser_AverageIsExact(t *testing.T) {
	svc, _ := newService()
	rated := uuid.New()

	resp, err := svc.RateUser(context.Background(), uuid.New(), rated, model.RateUserRequest{Value: 4})
	require.NoError(t, err)
	require.NotNil(t, resp.Average)
	assert.Equal(t, "4", resp.Average.String())
	assert.Equal(t, 1, resp.Count)

	resp, err = svc.RateUser(context.Background(), uuid.New(), rated, model.RateUserRequest{Value: 5})
	require.NoError(t, err)
	require.NotNil(t, resp.Average)
	assert.Equal(t, "4.5", resp.Average.String())
	assert.Equal(t, 2, resp.Count)
}

func Test_RateUser_RejectsOutOfRange(t *testing.T) {
	svc, repo := newService()
	rated := uuid.New()

	for _, value := range []int{0, -1, 6, 100} {
		_, err := svc.RateUser(context.Background(), uuid.New(), rated, model.RateUserRequest{Value: value})
		var ue *model.UserError
		require.ErrorAs(t, err, &ue, "value %d", value)
		assert.Equal(t, model.ErrInvalidRating.Code, ue.Code)
	}

	// nothing was written
	_, err := repo.GetUser(context.Background(), rated)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func Test_RateUser_CannotRateYourself(t *testing.T) {
	svc, _ := newService()
	me := uuid.New()

	_, err := svc.RateUser(context.Background(), me, me, model.RateUserRequest{Value: 5})

	assert.ErrorIs(t, err, model.ErrSelfRating)
}

func Test_GetRating_UnratedUserHasNullAverage(t *testing.T) {
	svc, _ := newService()

	resp, err := svc.GetRating(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, resp.Average)
	assert.Zero(t, resp.Count)
}

// The cached average must not survive a new rating.
func Test_GetRating_CacheInvalidatedOnWrite(t *testing.T) {
	svc, _ := newService()
	rated := uuid.New()

	_, err := svc.RateUser(context.Background(), uuid.New(), rated, model.RateUserRequest{Value: 2})
	require.NoError(t, err)

	first, err := svc.GetRating(context.Background(), rated)
	require.NoError(t, err)
	require.NotNil(t, first.Average)
	assert.Equal(t, "2", first.Average.String())

	_, err = svc.RateUser(context.Background(), uuid.New(), rated, model.RateUserRequest{Value: 4})
	require.NoError(t, err)

	second, err := svc.GetRating(context.Background(), rated)
	require.NoError(t, err)
	require.NotNil(t, second.Average)
	assert.Equal(t, "3", second.Average.String())
	assert.Equal(t, 2, second.Count)
}

func Test_RegisterPushToken_Idempotent(t *testing.T) {
	svc, repo := newService()
	userID := uuid.New()

	req := model.RegisterPushTokenRequest{Token: "ExponentPushToken[abc123]"}
	require.NoError(t, svc.RegisterPushToken(context.Background(), userID, req))
	require.NoError(t, svc.RegisterPushToken(context.Background(), userID, req))

	tokens, err := repo.ListPushTokens(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ExponentPushToken[abc123]"}, tokens)
}
