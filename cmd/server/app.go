package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskwise/taskwise/internal/cache"
	"github.com/taskwise/taskwise/internal/config"
	"github.com/taskwise/taskwise/internal/platform/postgres"
	"github.com/taskwise/taskwise/internal/service"
	"github.com/taskwise/taskwise/internal/service/auth"
	"github.com/taskwise/taskwise/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore    store.UserStore
	sessionStore store.SessionStore
	taskStore    store.TaskStore

	// Shared cache backing both the token blacklist and task reads
	cache cache.Cache

	// Service interfaces
	jwtService  auth.JWTService
	authService service.AuthService
	taskService service.TaskService
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies (config, logger, database) must already
// be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.sessionStore = postgres.NewPostgresSessionStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	app.cache = cache.NewMemoryCache(cacheTTL)

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.authService = service.NewAuthService(
		db,
		app.userStore,
		app.sessionStore,
		app.jwtService,
		hasher,
		hasher,
		app.cache,
		logger,
	)

	app.taskService = service.NewTaskService(
		app.taskStore,
		app.cache,
		cacheTTL,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
