// Package main runs the adaptive study API server: card selection, answer
// grading and topic mastery over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/phrazzld/scry-adaptive/internal/platform/postgres"
)

// options are the command line flags.
type options struct {
	migrate  string
	seedPath string
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.migrate, "migrate", "",
		"run a migration command (up, down, status, version, reset) and exit")
	fs.StringVar(&opts.seedPath, "seed", "",
		"JSON file of documents, topics and cards to load into the memory store")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("semantic_grading", cfg.LLM.GeminiAPIKey != ""),
		slog.Bool("redis_lock", cfg.Redis.Addr != ""))

	if opts.migrate != "" {
		return runMigrations(ctx, cfg, opts.migrate, l)
	}

	app, err := newApplication(ctx, cfg, l, opts)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}

func runMigrations(ctx context.Context, cfg *config.Config, command string, l *slog.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations require the %s driver, got %q", config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			l.Error("failed to close database", slog.String("error", cerr.Error()))
		}
	}()

	return postgres.Migrate(ctx, db, command, l)
}
