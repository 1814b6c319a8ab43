package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"escape-planner/internal/exports"
	"escape-planner/internal/llm"
	"escape-planner/internal/llm/openai"
	"escape-planner/internal/notify"
	"escape-planner/internal/plans"
	"escape-planner/internal/services/health"
	"escape-planner/internal/sessions"
	"escape-planner/internal/shared/config"
	"escape-planner/internal/shared/server"
	"escape-planner/internal/shared/storage/db"
	"escape-planner/internal/shared/telemetry"
	"escape-planner/internal/web"
)

const janitorInterval = 5 * time.Minute

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Sessions plans.SessionStore
	Attempts notify.AttemptRepo
	Notifier *notify.Notifier
	Service  *plans.Service
	Health   *health.Service

	closers []func() error
}

// Build wires the HTTP application. ctx bounds background housekeeping.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg, Health: health.NewService()}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB.Close)
		app.Health.Register("postgres", sqlDB.PingContext)
		app.Attempts = &notify.PGAttemptRepo{DB: sqlDB}
	} else {
		app.Attempts = notify.NewMemoryAttemptRepo(0)
	}

	store, closeStore, err := BuildSessions(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Sessions = store
	if closeStore != nil {
		app.closers = append(app.closers, closeStore)
	}
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		app.Health.Register("redis", pinger.Ping)
	}

	svc, notifier, err := BuildService(ctx, cfg, store, app.Attempts)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Service = svc
	app.Notifier = notifier

	deps := server.RouterDeps{
		Config:      cfg,
		PlanHandler: plans.NewHandler(svc),
		PageHandler: web.NewHandler(svc, web.Links{
			UpgradeURL:    cfg.UpgradeURL,
			NewsletterURL: cfg.NewsletterURL,
		}),
		NotifyHandler: notify.NewHandler(app.Attempts),
		Health:        app.Health,
	}
	app.Router = server.NewRouter(deps)

	f := cfg.Features()
	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"generation":    f.Generation,
		"mailing_list":  f.MailingList,
		"spreadsheet":   f.Spreadsheet,
		"plan_email":    f.PlanEmail,
		"session_store": cfg.SessionStore,
		"postgres":      sqlDB != nil,
	})
	return app, nil
}

// Close waits for background notifications and releases connections.
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Wait()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildService assembles the pipeline around an existing session store.
func BuildService(ctx context.Context, cfg config.Config, store plans.SessionStore, attempts notify.AttemptRepo) (*plans.Service, *notify.Notifier, error) {
	client, err := BuildLLMClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	notifier, err := BuildNotifier(ctx, cfg, attempts)
	if err != nil {
		return nil, nil, err
	}
	svc := &plans.Service{
		Sessions: store,
		Generator: &plans.Generator{
			Client:       client,
			SystemPrompt: cfg.GenerationSystemPrompt,
		},
		Exporter: exports.NewExporter(cfg.ExportStrictEncoding),
	}
	if notifier != nil {
		svc.Notifier = notifier
	}
	return svc, notifier, nil
}

// BuildLLMClient returns the chat-completions client, or a placeholder when no key is set.
func BuildLLMClient(cfg config.Config) (llm.Client, error) {
	if !cfg.Features().Generation {
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(openai.Options{
		Endpoint:    cfg.GenerationEndpoint,
		APIKey:      cfg.GenerationAPIKey,
		Model:       cfg.GenerationModel,
		Temperature: cfg.GenerationTemperature,
		Timeout:     cfg.GenerationTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("generation client: %w", err)
	}
	return llm.WithRetry(client, cfg.GenerationMaxRetries, llm.DefaultRetryDelay), nil
}

// BuildNotifier returns nil when no notification target is configured.
func BuildNotifier(ctx context.Context, cfg config.Config, attempts notify.AttemptRepo) (*notify.Notifier, error) {
	f := cfg.Features()
	if !f.MailingList && !f.Spreadsheet && !f.PlanEmail {
		telemetry.Info("bootstrap.notify_disabled", nil)
		return nil, nil
	}

	targets := []notify.Target{
		&notify.MailingListTarget{
			BaseURL: cfg.MailingListBaseURL,
			APIKey:  cfg.MailingListAPIKey,
			GroupID: cfg.MailingListGroupID,
		},
	}

	switch {
	case f.SheetsAPI:
		sheets, err := notify.NewSheetsTarget(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
		if err != nil {
			if !cfg.IsDevLike() {
				return nil, fmt.Errorf("sheets target: %w", err)
			}
			telemetry.Warn("bootstrap.sheets_unavailable", map[string]any{"error": err})
			targets = append(targets, &notify.SpreadsheetWebhookTarget{URL: cfg.SpreadsheetWebhookURL})
		} else {
			targets = append(targets, sheets)
		}
	default:
		targets = append(targets, &notify.SpreadsheetWebhookTarget{URL: cfg.SpreadsheetWebhookURL})
	}

	if f.PlanEmail {
		email, err := notify.NewPlanEmailTarget(ctx, cfg.SESRegion, cfg.SESSender)
		if err != nil {
			if !cfg.IsDevLike() {
				return nil, fmt.Errorf("plan email target: %w", err)
			}
			telemetry.Warn("bootstrap.plan_email_unavailable", map[string]any{"error": err})
		} else {
			targets = append(targets, email)
		}
	}

	return &notify.Notifier{
		Targets:  targets,
		Attempts: attempts,
		Timeout:  cfg.NotifyTimeout,
	}, nil
}

// BuildSessions returns the configured session store and its closer, if any.
func BuildSessions(ctx context.Context, cfg config.Config) (plans.SessionStore, func() error, error) {
	if cfg.Features().Redis {
		store := sessions.NewRedisStore(sessions.NewRedisClient(sessions.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.SessionTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			if !cfg.IsDevLike() {
				return nil, nil, err
			}
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err, "fallback": "memory"})
		} else {
			return store, store.Close, nil
		}
	}
	mem := sessions.NewMemoryStore(cfg.SessionTTL)
	go mem.RunJanitor(ctx, janitorInterval)
	return mem, nil, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if !cfg.Features().Postgres {
		telemetry.Info("bootstrap.database_disabled", map[string]any{"attempts": "memory"})
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, "attempts", db.ForServer(db.FromConfig(cfg.DBPool)))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database_unavailable", map[string]any{"error": err, "fallback": "memory"})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"error": err, "fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}
