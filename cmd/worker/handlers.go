package main

import (
	"github.com/hibiken/asynq"

	notifJob "booklend-backend/internal/domains/notification/job"
	"booklend-backend/internal/shared"
	"booklend-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	transition *notifJob.TransitionHandler
	cleanup    *notifJob.CleanupHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		transition: notifJob.NewTransitionHandler(c.NotificationService),
		cleanup:    notifJob.NewCleanupHandler(c.NotificationRepo),
	}
}

// RegisterHandlers binds every task type to its handler.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeLoanTransition, h.transition.ProcessTask)
	mux.HandleFunc(shared.TypeNotificationsCleanup, h.cleanup.ProcessTask)
}
