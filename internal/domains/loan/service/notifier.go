package service

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/shared"
	"booklend-backend/internal/shared/utils"
)

// AsynqNotifier enqueues transition events for the notification worker.
type AsynqNotifier struct {
	client *asynq.Client
}

var _ TransitionNotifier = (*AsynqNotifier)(nil)

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

func (n *AsynqNotifier) NotifyTransition(ctx context.Context, event model.TransitionEvent) error {
	task, err := utils.MarshalTask(shared.TypeLoanTransition, event)
	if err != nil {
		return err
	}
	if _, err := n.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeLoanTransition, err)
	}
	return nil
}
