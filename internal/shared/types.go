package shared

// Asynq task type names. Centralized so enqueuers and worker handlers cannot
// drift apart.
const (
	TypeLoanTransition       = "loan:transition"
	TypeNotificationsCleanup = "notifications:cleanup"
)

// Asynq queue names.
const (
	QueueDefault = "default"
	QueueLow     = "low"
)
