package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/phrazzld/scry-adaptive/internal/domain/srs"
	"github.com/phrazzld/scry-adaptive/internal/events"
	"github.com/phrazzld/scry-adaptive/internal/grading"
	"github.com/phrazzld/scry-adaptive/internal/mastery"
	"github.com/phrazzld/scry-adaptive/internal/platform/gemini"
	"github.com/phrazzld/scry-adaptive/internal/platform/lock"
	"github.com/phrazzld/scry-adaptive/internal/platform/metrics"
	"github.com/phrazzld/scry-adaptive/internal/platform/postgres"
	"github.com/phrazzld/scry-adaptive/internal/selection"
	"github.com/phrazzld/scry-adaptive/internal/service/auth"
	"github.com/phrazzld/scry-adaptive/internal/service/card_review"
	"github.com/phrazzld/scry-adaptive/internal/store"
	"github.com/phrazzld/scry-adaptive/internal/store/memstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis *redis.Client

	stores     store.Stores
	transactor store.Transactor

	registry          *prometheus.Registry
	metrics           *metrics.Metrics
	tokenService      auth.TokenService
	cardReviewService card_review.CardReviewService
}

// newApplication wires every component from cfg. On failure whatever was
// already opened is released.
func newApplication(ctx context.Context, cfg *config.Config, l *slog.Logger, opts options) (*application, error) {
	app := &application{config: cfg, logger: l}
	if err := app.init(ctx, opts); err != nil {
		app.cleanup()
		return nil, err
	}
	l.Info("application initialized")
	return app, nil
}

func (app *application) init(ctx context.Context, opts options) error {
	cfg := app.config

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	if err := app.setupStorage(ctx, opts.seedPath); err != nil {
		return err
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(app.registry)

	grader, err := app.newGrader(ctx)
	if err != nil {
		return err
	}

	serviceOpts := []card_review.Option{card_review.WithObserver(app.metrics)}
	if cfg.Redis.Addr != "" {
		locker, err := app.newRedisLocker(ctx)
		if err != nil {
			return err
		}
		serviceOpts = append(serviceOpts, card_review.WithLocker(locker))
	}

	aggregator := mastery.NewAggregator(
		app.stores.Cards,
		app.stores.CardStates,
		app.stores.Reviews,
		app.stores.TopicStates,
		cfg.Learning.RecentReviewWindow,
		app.logger,
	)

	seed := cfg.Learning.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	selector := selection.NewSelector(
		app.stores,
		aggregator,
		selection.NewConfig(cfg.Learning.StrugglingRatio, time.Duration(cfg.Learning.AntiRepeatMinutes)*time.Minute),
		rand.New(rand.NewSource(seed)),
		app.logger,
	)

	bus := events.NewBus(app.logger)
	bus.Subscribe(events.TypeReviewRecorded, card_review.NewTopicRecomputeHandler(aggregator, app.logger))

	app.cardReviewService = card_review.NewCardReviewService(
		app.stores,
		app.transactor,
		grader,
		srs.NewDefaultService(),
		selector,
		bus,
		app.logger,
		serviceOpts...,
	)
	return nil
}

// setupStorage opens the configured driver. The seed file only applies to
// the memory driver; PostgreSQL content is loaded out of band.
func (app *application) setupStorage(ctx context.Context, seedPath string) error {
	switch app.config.Database.Driver {
	case config.DriverPostgres:
		if seedPath != "" {
			return errors.New("-seed is only supported with the memory driver")
		}
		db, err := postgres.Open(ctx, app.config.Database)
		if err != nil {
			return err
		}
		app.db = db
		app.stores = postgres.NewStores(db, app.logger)
		app.transactor = store.NewSQLTransactor(db, app.stores)
		app.logger.Info("database connection established")

	case config.DriverMemory:
		mem := memstore.New()
		if seedPath != "" {
			if err := loadSeedFile(mem, seedPath); err != nil {
				return err
			}
			app.logger.Info("seed loaded", slog.String("path", seedPath))
		}
		app.stores = mem.Stores()
		app.transactor = mem

	default:
		return fmt.Errorf("unsupported database driver %q", app.config.Database.Driver)
	}
	return nil
}

func loadSeedFile(mem *memstore.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := mem.LoadSeed(f); err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}
	return nil
}

// newGrader uses the Gemini judge as the semantic fallback when an API key
// is configured and the offline keyword grader otherwise.
func (app *application) newGrader(ctx context.Context) (grading.Grader, error) {
	if app.config.LLM.GeminiAPIKey == "" {
		app.logger.Info("semantic grading uses the keyword grader")
		return grading.NewDispatcher(grading.KeywordGrader{}), nil
	}

	judge, err := gemini.NewJudge(ctx, app.config.LLM, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini judge: %w", err)
	}
	app.logger.Info("semantic grading uses gemini", slog.String("model", app.config.LLM.ModelName))
	return grading.NewDispatcher(judge), nil
}

// newRedisLocker connects to Redis so several server instances serialise
// submissions for the same card.
func (app *application) newRedisLocker(ctx context.Context) (*lock.RedisLocker, error) {
	client, err := lock.NewRedisClient(ctx, app.config.Redis.Addr, app.config.Redis.Password, app.config.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client
	ttl := time.Duration(app.config.Redis.LockTTLSeconds) * time.Second
	return lock.NewRedisLocker(client, "scry:lock:", ttl, app.logger), nil
}

// Run serves HTTP until ctx is done and then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases external connections.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
