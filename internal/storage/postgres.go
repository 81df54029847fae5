package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresOptions controls the connect retry loop.
type PostgresOptions struct {
	MaxRetries int
	RetryDelay time.Duration
}

// NormalizePostgresURL rewrites postgresql:// to postgres:// and adds
// sslmode=disable when no sslmode is set.
func NormalizePostgresURL(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "postgresql://") {
		databaseURL = "postgres://" + strings.TrimPrefix(databaseURL, "postgresql://")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		sep := "?"
		if strings.Contains(databaseURL, "?") {
			sep = "&"
		}
		databaseURL += sep + "sslmode=disable"
	}
	return databaseURL
}

// NewPostgresRepository connects through pgx's database/sql driver, waiting
// for the server to come up, and ensures the schema exists.
func NewPostgresRepository(ctx context.Context, databaseURL string, opts PostgresOptions) (*Repository, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	cfg, err := pgx.ParseConfig(NormalizePostgresURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	var db *sql.DB
	for attempt := 1; ; attempt++ {
		db = stdlib.OpenDB(*cfg)
		pingErr := db.PingContext(ctx)
		if pingErr == nil {
			break
		}
		db.Close()
		if attempt >= opts.MaxRetries {
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempt, pingErr)
		}
		slog.WarnContext(ctx, "Database not ready, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxRetries,
			"retry_in", opts.RetryDelay,
			"error", pingErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	slog.InfoContext(ctx, "Postgres connection established")

	return &Repository{db: db, dialect: dialectPostgres}, nil
}
