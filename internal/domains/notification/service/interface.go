package service

import (
	"context"

	"github.com/google/uuid"

	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/domains/notification/model"
)

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, opts model.ListOptions) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	// Dispatch persists the notification for a committed transition and
	// fans it out to the recipient's devices. Called by the worker.
	Dispatch(ctx context.Context, event loanModel.TransitionEvent) error
}
