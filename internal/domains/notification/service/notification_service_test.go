package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/domains/notification/model"
	"booklend-backend/internal/domains/notification/repository"
	"booklend-backend/internal/domains/notification/service"
	userRepo "booklend-backend/internal/domains/user/repository"
	"booklend-backend/pkg/cache"
)

type sentPush struct {
	token string
	title string
	body  string
	data  map[string]interface{}
}

type capturingPusher struct {
	mu      sync.Mutex
	sent    []sentPush
	sendErr error
}

func (p *capturingPusher) SendPush(_ context.Context, token, title, body string, data map[string]interface{}) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, sentPush{token: token, title: title, body: body, data: data})
	return "ticket-1", p.sendErr
}

type env struct {
	repo   *repository.MemoryRepository
	users  *userRepo.MemoryRepository
	pusher *capturingPusher
	svc    service.NotificationService
}

func newEnv() *env {
	e := &env{
		repo:   repository.NewMemoryRepository(),
		users:  userRepo.NewMemoryRepository(),
		pusher: &capturingPusher{},
	}
	e.svc = service.NewNotificationService(e.repo, e.users, e.pusher, cache.NewMemoryCache())
	return e
}

func requestedEvent(recipient uuid.UUID) loanModel.TransitionEvent {
	return loanModel.TransitionEvent{
		Type:              loanModel.EventBookRequested,
		BookID:            uuid.New(),
		BookTitle:         "Clean Code",
		LoanID:            uuid.New(),
		ActorID:           uuid.New(),
		ActorName:         "Alice",
		CounterpartUserID: recipient,
	}
}

func Test_Dispatch_PersistsAndPushesPerToken(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()
	require.NoError(t, e.users.RegisterPushToken(context.Background(), recipient, "token-a"))
	require.NoError(t, e.users.RegisterPushToken(context.Background(), recipient, "token-b"))

	event := requestedEvent(recipient)
	require.NoError(t, e.svc.Dispatch(context.Background(), event))

	items, err := e.repo.ListByUser(context.Background(), recipient, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, loanModel.EventBookRequested, items[0].Type)
	assert.True(t, items[0].Unread)
	assert.Contains(t, items[0].Body, "Alice")
	assert.Contains(t, items[0].Body, "Clean Code")
	require.NotNil(t, items[0].BookID)
	assert.Equal(t, event.BookID, *items[0].BookID)

	require.Len(t, e.pusher.sent, 2)
	assert.Equal(t, "token-a", e.pusher.sent[0].token)
	assert.Equal(t, "token-b", e.pusher.sent[1].token)
	assert.Equal(t, string(loanModel.EventBookRequested), e.pusher.sent[0].data["type"])
}

func Test_Dispatch_NoTokensStillPersists(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()

	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	items, err := e.repo.ListByUser(context.Background(), recipient, model.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Empty(t, e.pusher.sent)
}

// A push provider outage must not fail the task; the row is already
// persisted and retrying would duplicate it.
func Test_Dispatch_PushFailureIsSwallowed(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()
	require.NoError(t, e.users.RegisterPushToken(context.Background(), recipient, "token-a"))
	e.pusher.sendErr = errors.New("expo unavailable")

	assert.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	items, err := e.repo.ListByUser(context.Background(), recipient, model.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// A borrower cancellation must read as a cancellation to the owner, never as
// a rejection.
func Test_Dispatch_CancellationNeverReadsAsRejection(t *testing.T) {
	e := newEnv()
	owner := uuid.New()

	event := loanModel.TransitionEvent{
		Type:                loanModel.EventRequestCancelled,
		BookID:              uuid.New(),
		BookTitle:           "Clean Code",
		LoanID:              uuid.New(),
		ActorID:             uuid.New(),
		ActorName:           "Bob",
		CounterpartUserID:   owner,
		CancelledByBorrower: true,
	}
	require.NoError(t, e.svc.Dispatch(context.Background(), event))

	items, err := e.repo.ListByUser(context.Background(), owner, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, loanModel.EventRequestCancelled, items[0].Type)
	assert.Contains(t, items[0].Title, "cancelled")
	assert.NotContains(t, items[0].Title, "declined")
	assert.NotContains(t, items[0].Body, "declined")
}

// Even a mislabelled rejection event with the borrower flag set is
// normalized to a cancellation.
func Test_Dispatch_MislabelledRejectionNormalized(t *testing.T) {
	e := newEnv()
	owner := uuid.New()

	event := loanModel.TransitionEvent{
		Type:                loanModel.EventRequestRejected,
		BookID:              uuid.New(),
		BookTitle:           "Clean Code",
		LoanID:              uuid.New(),
		ActorID:             uuid.New(),
		CounterpartUserID:   owner,
		CancelledByBorrower: true,
	}
	require.NoError(t, e.svc.Dispatch(context.Background(), event))

	items, err := e.repo.ListByUser(context.Background(), owner, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, loanModel.EventRequestCancelled, items[0].Type)
	assert.NotContains(t, items[0].Title, "declined")
}

func Test_UnreadCountAndMarkRead(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()

	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))
	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	count, err := e.svc.UnreadCount(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	items, err := e.svc.List(context.Background(), recipient, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, e.svc.MarkRead(context.Background(), recipient, items[0].ID))

	count, err = e.svc.UnreadCount(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func Test_MarkRead_OnlyRecipient(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()
	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	items, err := e.svc.List(context.Background(), recipient, model.ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = e.svc.MarkRead(context.Background(), uuid.New(), items[0].ID)
	assert.ErrorIs(t, err, model.ErrNotRecipient)

	err = e.svc.MarkRead(context.Background(), recipient, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotificationNotFound)
}

// A warm cached count stays in step with new notifications.
func Test_UnreadCount_WarmCacheIsBumped(t *testing.T) {
	e := newEnv()
	recipient := uuid.New()

	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	// warm the cache
	count, err := e.svc.UnreadCount(context.Background(), recipient)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	require.NoError(t, e.svc.Dispatch(context.Background(), requestedEvent(recipient)))

	count, err = e.svc.UnreadCount(context.Background(), recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
