package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/psds-microservice/support-console/internal/audit"
	"github.com/psds-microservice/support-console/internal/backend"
	"github.com/psds-microservice/support-console/internal/config"
	"github.com/psds-microservice/support-console/internal/cron"
	"github.com/psds-microservice/support-console/internal/database"
	"github.com/psds-microservice/support-console/internal/draft"
	"github.com/psds-microservice/support-console/internal/handler"
	"github.com/psds-microservice/support-console/internal/kafka"
	"github.com/psds-microservice/support-console/internal/router"
	"github.com/psds-microservice/support-console/internal/service"
	"github.com/psds-microservice/support-console/internal/session"
	"github.com/psds-microservice/support-console/internal/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Core is the console without its HTTP surface: session, backend client,
// local store and services. The CLI commands use it directly.
type Core struct {
	Config     *config.Config
	Logger     *slog.Logger
	Session    *session.Session
	Client     *backend.Client
	Store      *store.TicketStore
	Tickets    *service.TicketService
	Users      *service.UserService
	Moderation *service.ModerationService
	Sessions   *service.SessionService

	runCtx   context.Context
	db       *gorm.DB
	recorder *audit.GormRecorder
	redis    *redis.Client
	producer *kafka.Producer
}

// NewCore wires the services. runCtx bounds the pollers started on login.
func NewCore(runCtx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{Config: cfg, Logger: logger, runCtx: runCtx}

	c.Session = session.New(nil, logger)
	c.Client = backend.NewClient(backend.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.HTTPTimeout,
		Debug:   cfg.LogLevel == "debug",
	}, c.Session, logger)
	c.Store = store.NewTicketStore(nil)

	var drafts draft.Store = draft.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb, err := draft.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		c.redis = rdb
		drafts = draft.NewRedisStore(rdb, cfg.DraftTTL)
		logger.Info("drafts stored in redis", "addr", cfg.Redis.Addr, "ttl", cfg.DraftTTL)
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.AuditEnabled() {
		if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.DSN(), cfg.LogLevel == "debug")
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		c.db = db
		c.recorder = audit.NewGormRecorder(db, logger)
		recorder = c.recorder
	}

	c.producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicAdminEvents, logger)
	deps := service.Deps{Session: c.Session, Audit: recorder, Logger: logger}
	if c.producer.Enabled() {
		deps.Events = c.producer
	}

	tickets, err := service.NewTicketService(c.Client, c.Store, drafts, service.TicketServiceConfig{
		ListInterval: cfg.TicketPollInterval,
		ChatInterval: cfg.ChatPollInterval,
	}, deps)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Tickets = tickets
	c.Users = service.NewUserService(c.Client, deps)
	c.Moderation = service.NewModerationService(c.Client, deps)
	c.Sessions = service.NewSessionService(runCtx, c.Client, c.Session, tickets, c.Users, logger)
	c.Sessions.ResetOnLogout(c.Moderation.Reset)
	return c, nil
}

// Authenticate adopts ADMIN_TOKEN when it is configured.
func (c *Core) Authenticate(ctx context.Context) error {
	if c.Config.AdminToken == "" {
		return nil
	}
	admin, err := c.Sessions.Restore(ctx, c.Config.AdminToken)
	if err != nil {
		return fmt.Errorf("restore session from ADMIN_TOKEN: %w", err)
	}
	c.Logger.Info("admin session restored", "admin", admin.Name)
	return nil
}

func (c *Core) readinessChecks() map[string]handler.Check {
	checks := map[string]handler.Check{}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }
	}
	if c.db != nil {
		checks["database"] = func(context.Context) error { return database.Ping(c.db) }
	}
	return checks
}

// Close stops the pollers and releases external connections.
func (c *Core) Close() {
	if c.Tickets != nil {
		c.Tickets.Stop()
	}
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			c.Logger.Warn("kafka close", "error", err)
		}
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.db != nil {
		_ = database.Close(c.db)
	}
}

// API is the console with its local HTTP surface (the api command).
type API struct {
	*Core
	httpSrv   *http.Server
	scheduler *cron.Scheduler
}

// NewAPI builds the api mode application on top of NewCore.
func NewAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*API, error) {
	core, err := NewCore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	scheduler := cron.NewScheduler(logger)
	if core.recorder != nil {
		job := &audit.RetentionJob{Pruner: core.recorder, Retention: cfg.AuditRetention(), Logger: logger}
		if err := scheduler.AddJob("audit-retention", cfg.AuditPruneSchedule, job.Run); err != nil {
			core.Close()
			return nil, fmt.Errorf("schedule audit retention: %w", err)
		}
	}

	h := router.New(router.Handlers{
		Health:     handler.NewHealthHandler(core.readinessChecks()),
		Session:    handler.NewSessionHandler(core.Sessions),
		Tickets:    handler.NewTicketHandler(core.Tickets, core.Client.Origin()),
		Users:      handler.NewUserHandler(core.Users),
		Moderation: handler.NewModerationHandler(core.Moderation),
		Events:     handler.NewEventsHandler(core.Store, cfg.AllowedOrigins, logger),
	}, cfg.AllowedOrigins)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &API{Core: core, httpSrv: httpSrv, scheduler: scheduler}, nil
}

// Run serves HTTP and runs the scheduled jobs until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Authenticate(ctx); err != nil {
		// The console stays up; the admin can log in via /api/v1/session/login.
		a.Logger.Warn("starting without a session", "error", err)
	}
	a.scheduler.Start()
	defer a.scheduler.Stop(10 * time.Second)

	host := a.Config.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.Config.HTTPPort
	a.Logger.Info("HTTP server listening", "addr", a.httpSrv.Addr,
		"swagger", base+"/swagger", "api", base+"/api/v1/", "events", base+"/api/v1/events")

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
