package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/scry-adaptive/internal/config"
	"github.com/phrazzld/scry-adaptive/internal/store"
)

// NewStores builds every store on db.
func NewStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Cards:       NewPostgresCardStore(db, logger),
		Topics:      NewPostgresTopicStore(db, logger),
		CardStates:  NewPostgresCardStateStore(db, logger),
		Reviews:     NewPostgresReviewStore(db, logger),
		TopicStates: NewPostgresTopicStateStore(db, logger),
	}
}

// Open connects to PostgreSQL with the configured pool limits and verifies
// the connection before returning.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
