package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"booklend-backend/internal/shared"
	"booklend-backend/pkg/logger"
)

// Scheduler registers the periodic maintenance jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterCleanupJobs() error {
	return s.registerNotificationCleanupJob()
}

// Daily at 3 AM UTC, a low-traffic window.
func (s *Scheduler) registerNotificationCleanupJob() error {
	task := asynq.NewTask(shared.TypeNotificationsCleanup, nil)

	_, err := s.scheduler.Register(
		"0 3 * * *",
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register notification cleanup job", err)
		return err
	}

	logger.Info("Registered notification cleanup: daily at 3 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
