package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver

	"escape-planner/internal/shared/config"
	"escape-planner/internal/shared/metrics"
	"escape-planner/internal/shared/telemetry"
)

// Options sizes the connection pool. Zero fields take the defaults of the process role.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var (
	// The API only writes one attempt row per notification target.
	serverDefaults = Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
	migrateDefaults = Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
)

var openDB = sql.Open

// FromConfig copies the DB_* pool settings.
func FromConfig(p config.DBPool) Options {
	return Options{
		MaxOpenConns:    p.MaxOpenConns,
		MaxIdleConns:    p.MaxIdleConns,
		ConnMaxLifetime: p.ConnMaxLifetime,
		ConnMaxIdleTime: p.ConnMaxIdleTime,
		PingTimeout:     p.PingTimeout,
	}
}

// ForServer fills unset fields with the API's defaults.
func ForServer(o Options) Options { return o.orDefaults(serverDefaults) }

// ForMigrate fills unset fields with the single-connection migrate defaults.
func ForMigrate(o Options) Options { return o.orDefaults(migrateDefaults) }

func (o Options) orDefaults(d Options) Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = d.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = d.MaxIdleConns
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if o.ConnMaxIdleTime <= 0 {
		o.ConnMaxIdleTime = d.ConnMaxIdleTime
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = d.PingTimeout
	}
	return o
}

// Connect opens the attempt-log database and pings it. Pool statistics are exported on
// /metrics under the given name. Callers share the returned pool.
func Connect(ctx context.Context, databaseURL, name string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	opts = opts.orDefaults(serverDefaults)

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", redactURL(databaseURL), err)
	}
	database.SetMaxOpenConns(opts.MaxOpenConns)
	database.SetMaxIdleConns(opts.MaxIdleConns)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database %s: %w", redactURL(databaseURL), err)
	}

	metrics.RegisterDB(database, name)
	telemetry.Info("db.connected", map[string]any{
		"name":      name,
		"target":    redactURL(databaseURL),
		"max_open":  opts.MaxOpenConns,
		"max_idle":  opts.MaxIdleConns,
		"ping_wait": opts.PingTimeout.String(),
	})
	return database, nil
}

// redactURL keeps host and database name so logs never carry credentials.
func redactURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "postgres"
	}
	return u.Host + u.Path
}
