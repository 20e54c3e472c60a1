package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	loanModel "booklend-backend/internal/domains/loan/model"
	"booklend-backend/internal/domains/notification/service"
	"booklend-backend/internal/shared/utils"
)

// TransitionHandler consumes loan transition tasks and turns them into
// notifications.
type TransitionHandler struct {
	service service.NotificationService
}

func NewTransitionHandler(s service.NotificationService) *TransitionHandler {
	return &TransitionHandler{service: s}
}

func (h *TransitionHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var event loanModel.TransitionEvent
	if err := utils.UnmarshalTask(t, &event); err != nil {
		// a payload that never parses will never parse; do not retry
		log.Error().Err(err).Msg("dropping malformed transition task")
		return nil
	}

	log.Info().
		Str("event", string(event.Type)).
		Str("book_id", event.BookID.String()).
		Str("recipient", event.CounterpartUserID.String()).
		Msg("dispatching transition notification")

	return h.service.Dispatch(ctx, event)
}
