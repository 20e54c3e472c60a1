package container

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"booklend-backend/internal/config"
	bookHandler "booklend-backend/internal/domains/book/handler"
	bookRepo "booklend-backend/internal/domains/book/repository"
	bookService "booklend-backend/internal/domains/book/service"
	loanHandler "booklend-backend/internal/domains/loan/handler"
	loanService "booklend-backend/internal/domains/loan/service"
	notifHandler "booklend-backend/internal/domains/notification/handler"
	notifRepo "booklend-backend/internal/domains/notification/repository"
	notifService "booklend-backend/internal/domains/notification/service"
	searchHandler "booklend-backend/internal/domains/search/handler"
	searchService "booklend-backend/internal/domains/search/service"
	userHandler "booklend-backend/internal/domains/user/handler"
	userRepo "booklend-backend/internal/domains/user/repository"
	userService "booklend-backend/internal/domains/user/service"
	infraCache "booklend-backend/internal/infrastructure/cache"
	"booklend-backend/internal/infrastructure/database"
	"booklend-backend/internal/infrastructure/push"
	"booklend-backend/internal/infrastructure/storage"
)

// Container is the root of the dependency graph. Built once at startup;
// everything in it is a singleton.
type Container struct {
	Config *config.Config

	DB      *database.PostgresDB
	Cache   *infraCache.RedisCache
	Storage *storage.MinIOStorage
	Pusher  push.Provider

	AsynqClient *asynq.Client

	Store            bookRepo.Store
	UserRepo         userRepo.Repository
	NotificationRepo notifRepo.Repository

	BookService         bookService.BookService
	LoanService         loanService.LoanService
	SearchService       searchService.SearchService
	UserService         userService.UserService
	NotificationService notifService.NotificationService

	BookHandler         *bookHandler.BookHandler
	LoanHandler         *loanHandler.LoanHandler
	SearchHandler       *searchHandler.SearchHandler
	UserHandler         *userHandler.UserHandler
	NotificationHandler *notifHandler.NotificationHandler
}

// NewContainer wires config, infrastructure, repositories, services and
// handlers, in that order.
func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	c.Cache = infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Cache.Connect(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	c.Storage, err = storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		c.closeInfra()
		return nil, fmt.Errorf("failed to init object storage: %w", err)
	}

	switch cfg.Push.Provider {
	case "expo":
		c.Pusher = push.NewExpoPushService(cfg.Push.Endpoint)
	default:
		c.Pusher = push.NewMockPushService()
	}

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// repositories
	c.Store = bookRepo.NewPostgresStore(db.Pool, cfg.Ledger.MaxTxAttempts)
	c.UserRepo = userRepo.NewPostgresRepository(db.Pool)
	c.NotificationRepo = notifRepo.NewPostgresRepository(db.Pool)

	// services
	notifier := loanService.NewAsynqNotifier(c.AsynqClient)
	c.BookService = bookService.NewBookService(c.Store, c.UserRepo, c.Storage)
	c.LoanService = loanService.NewLoanService(c.Store, c.UserRepo, notifier)
	c.SearchService = searchService.NewSearchService(c.Store)
	c.UserService = userService.NewUserService(c.UserRepo, c.Cache)
	c.NotificationService = notifService.NewNotificationService(
		c.NotificationRepo, c.UserRepo, c.Pusher, c.Cache)

	// handlers
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.LoanHandler = loanHandler.NewLoanHandler(c.LoanService)
	c.SearchHandler = searchHandler.NewSearchHandler(c.SearchService)
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.NotificationHandler = notifHandler.NewNotificationHandler(c.NotificationService)

	log.Info().Msg("container initialized")
	return c, nil
}

// Cleanup releases every connection the container owns. Safe to call on a
// partially built container.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close asynq client")
		}
	}
	c.closeInfra()
	log.Info().Msg("container cleaned up")
}

func (c *Container) closeInfra() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close redis")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
