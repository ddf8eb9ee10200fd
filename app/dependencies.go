package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/config"
	"github.com/orderdesk/session-gateway/handlers"
	"github.com/orderdesk/session-gateway/middleware"
	"github.com/orderdesk/session-gateway/policy"
	"github.com/orderdesk/session-gateway/repositories"
	"github.com/orderdesk/session-gateway/repositories/postgres"
	"github.com/orderdesk/session-gateway/revocation"
	"github.com/orderdesk/session-gateway/services"
	"github.com/orderdesk/session-gateway/token"
)

// How often expired revocation entries are swept out of memory.
const revocationSweepInterval = 5 * time.Minute

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Users repositories.UserRepository

	// Core components
	Revocations *revocation.MemoryStore
	Codec       *token.Codec
	Policies    *policy.Registry
	Sessions    *services.SessionService

	// HTTP surface
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	HealthHandler  *handlers.HealthHandler

	cancelSweeper context.CancelFunc
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.initTokens(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and user repository
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	d.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Users = postgres.NewUserRepository(db, d.Logger)
	return nil
}

// initTokens initializes the revocation store, its sweeper, and the codec
func (d *Dependencies) initTokens(ctx context.Context, cfg *config.Config) error {
	d.Revocations = revocation.NewMemoryStore(d.Logger)

	sweepCtx, cancel := context.WithCancel(ctx)
	d.cancelSweeper = cancel
	go d.Revocations.Run(sweepCtx, revocationSweepInterval)

	codec, err := token.NewCodec(token.Config{
		Secret:   cfg.JWT.Secret,
		Lifetime: cfg.JWT.Lifetime(),
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, d.Revocations, d.Logger)
	if err != nil {
		return err
	}
	d.Codec = codec

	d.Logger.Info("token codec initialized",
		zap.Duration("lifetime", cfg.JWT.Lifetime()),
		zap.String("issuer", cfg.JWT.Issuer))
	return nil
}

// initServices initializes the policy registry, session service and middleware
func (d *Dependencies) initServices() {
	d.Policies = policy.NewRegistry()
	d.Sessions = services.NewSessionService(d.Users, d.Codec, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Codec, d.Policies, d.Logger)
}

// initHandlers initializes the HTTP handlers
func (d *Dependencies) initHandlers() {
	d.AuthHandler = handlers.NewAuthHandler(d.Sessions, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.Users, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.cancelSweeper != nil {
		d.cancelSweeper()
	}

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
