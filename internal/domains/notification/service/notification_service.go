package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/domains/notification/model"
	"booklend-backend/internal/domains/notification/repository"
	userRepo "booklend-backend/internal/domains/user/repository"
	"booklend-backend/internal/infrastructure/push"
	"booklend-backend/pkg/cache"
)

const (
	unreadCacheKeyFmt = "notif:unread:%s"
	unreadCacheTTL    = 5 * time.Minute
)

type notificationService struct {
	repo   repository.Repository
	users  userRepo.Repository
	pusher push.Provider
	cache  cache.Cache
}

func NewNotificationService(repo repository.Repository, users userRepo.Repository, pusher push.Provider, c cache.Cache) NotificationService {
	return &notificationService{repo: repo, users: users, pusher: pusher, cache: c}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, opts)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return model.ErrNotRecipient
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, unreadCacheKey(userID)); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate unread count cache")
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	key := unreadCacheKey(userID)

	var cached int64
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("unread count cache read failed")
	}
	if found {
		return cached, nil
	}

	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, key, count, unreadCacheTTL); err != nil {
		log.Warn().Err(err).Msg("unread count cache write failed")
	}
	return count, nil
}

// Dispatch is the single writer of notification rows. Push delivery is
// best-effort once the row is persisted; a push failure must not retry the
// task and double-write the row.
func (s *notificationService) Dispatch(ctx context.Context, event loanModel.TransitionEvent) error {
	// a borrower withdrawal is a cancellation no matter how the event was
	// labelled upstream
	if event.CancelledByBorrower && event.Type == loanModel.EventRequestRejected {
		event.Type = loanModel.EventRequestCancelled
	}

	title, body := messageFor(event)

	bookID := event.BookID
	n := &model.Notification{
		ID:     uuid.New(),
		UserID: event.CounterpartUserID,
		Type:   event.Type,
		Title:  title,
		Body:   body,
		BookID: &bookID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.bumpUnread(ctx, event.CounterpartUserID)

	tokens, err := s.users.ListPushTokens(ctx, event.CounterpartUserID)
	if err != nil {
		log.Error().Err(err).
			Str("user_id", event.CounterpartUserID.String()).
			Msg("failed to load push tokens")
		return nil
	}
	data := map[string]interface{}{
		"type":    string(event.Type),
		"book_id": event.BookID.String(),
		"loan_id": event.LoanID.String(),
	}
	for _, token := range tokens {
		if _, err := s.pusher.SendPush(ctx, token, title, body, data); err != nil {
			log.Error().Err(err).
				Str("user_id", event.CounterpartUserID.String()).
				Str("event", string(event.Type)).
				Msg("push delivery failed")
		}
	}
	return nil
}

// bumpUnread keeps a warm cache entry in step; a cold one stays cold so the
// next read recomputes from the database.
func (s *notificationService) bumpUnread(ctx context.Context, userID uuid.UUID) {
	key := unreadCacheKey(userID)
	var cached int64
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !found {
		return
	}
	if _, err := s.cache.Increment(ctx, key); err != nil {
		log.Warn().Err(err).Msg("failed to bump unread count cache")
	}
}

// messageFor renders the per-type copy. A borrower cancellation reads as a
// cancellation to the owner, never as a rejection of the owner's book.
func messageFor(event loanModel.TransitionEvent) (string, string) {
	actor := event.ActorName
	if actor == "" {
		actor = "Someone"
	}

	switch event.Type {
	case loanModel.EventBookRequested:
		return "New borrow request",
			fmt.Sprintf("%s wants to borrow \"%s\"", actor, event.BookTitle)
	case loanModel.EventRequestAccepted:
		return "Request accepted",
			fmt.Sprintf("%s accepted your request for \"%s\"", actor, event.BookTitle)
	case loanModel.EventRequestRejected:
		return "Request declined",
			fmt.Sprintf("%s declined your request for \"%s\"", actor, event.BookTitle)
	case loanModel.EventRequestCancelled:
		return "Request cancelled",
			fmt.Sprintf("%s cancelled the request for \"%s\"", actor, event.BookTitle)
	case loanModel.EventBookReturned:
		return "Book returned",
			fmt.Sprintf("%s marked \"%s\" as returned", actor, event.BookTitle)
	default:
		return "Book update", fmt.Sprintf("\"%s\" was updated", event.BookTitle)
	}
}

func unreadCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf(unreadCacheKeyFmt, userID)
}
