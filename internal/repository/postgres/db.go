package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"receiptly/internal/config"
)

const maxConnectBackoff = 5 * time.Second

// NewDB opens the document store pool. Connection attempts are retried with
// backoff until cfg.ConnectTimeout so the server can start alongside Postgres.
func NewDB(ctx context.Context, cfg *config.DBConfig, logger *zap.Logger) (*sqlx.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 250 * time.Millisecond
	for attempt := 1; ; attempt++ {
		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxOpen)
			db.SetMaxIdleConns(cfg.MaxIdle)
			db.SetConnMaxIdleTime(5 * time.Minute)
			return db, nil
		}

		logger.Warn("document store not reachable yet",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", backoff),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connecting to document store after %d attempts: %w", attempt, err)
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxConnectBackoff)
	}
}
