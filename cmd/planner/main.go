package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"

	"escape-planner/internal/bootstrap"
	"escape-planner/internal/cli"
	"escape-planner/internal/notify"
	"escape-planner/internal/sessions"
	"escape-planner/internal/shared/config"
	"escape-planner/internal/shared/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	telemetry.ConfigureTo(os.Stderr, getLevel(), "console")
	cfg := config.Load()
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store := sessions.NewMemoryStore(0)
	svc, _, err := bootstrap.BuildService(ctx, cfg, store, notify.NewMemoryAttemptRepo(0))
	if err != nil {
		return err
	}
	svc.SyncNotify = true

	app := &cli.App{
		Service: svc,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func getLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}
