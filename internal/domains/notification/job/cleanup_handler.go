package job

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/domains/notification/repository"
)

// readRetention is how long read notifications are kept.
const readRetention = 30 * 24 * time.Hour

// CleanupHandler purges old read notifications. Scheduled daily.
type CleanupHandler struct {
	repo repository.Repository
}

func NewCleanupHandler(repo repository.Repository) *CleanupHandler {
	return &CleanupHandler{repo: repo}
}

func (h *CleanupHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	cutoff := time.Now().Add(-readRetention)
	purged, err := h.repo.PurgeRead(ctx, cutoff)
	if err != nil {
		return err
	}
	log.Info().Int64("purged", purged).Time("cutoff", cutoff).
		Msg("notification cleanup finished")
	return nil
}
