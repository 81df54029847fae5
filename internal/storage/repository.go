package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"finboard/internal/core"

	_ "modernc.org/sqlite"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Repository stores period records in a SQL table keyed by
// (kind, label, year). It implements every provider port.
type Repository struct {
	db      *sql.DB
	dialect dialect
}

func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, dialect: dialectSQLite}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the connection, used by readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// rebind rewrites '?' placeholders to '$n' for Postgres.
func (r *Repository) rebind(query string) string {
	if r.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

const selectColumn = `SELECT %s FROM periods WHERE kind = ? AND label = ? AND year = ?`

func (r *Repository) readJSON(ctx context.Context, key core.PeriodKey, column string, dst any) error {
	var raw string
	q := r.rebind(fmt.Sprintf(selectColumn, column))
	err := r.db.QueryRowContext(ctx, q, string(key.Kind), key.Label, key.Year).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", core.ErrPeriodNotFound, key)
	}
	if err != nil {
		return fmt.Errorf("query %s for %s: %w", column, key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s for %s: %w", column, key, err)
	}
	return nil
}

// ReadChartData implements provider.ChartDataReader
func (r *Repository) ReadChartData(ctx context.Context, key core.PeriodKey) (core.ChartDataset, error) {
	var ds core.ChartDataset
	err := r.readJSON(ctx, key, "chart_json", &ds)
	return ds, err
}

// ReadStatsSummary implements provider.StatsReader
func (r *Repository) ReadStatsSummary(ctx context.Context, key core.PeriodKey) (core.StatsSummary, error) {
	var st core.StatsSummary
	err := r.readJSON(ctx, key, "stats_json", &st)
	return st, err
}

// ReadBreakdowns implements provider.BreakdownReader
func (r *Repository) ReadBreakdowns(ctx context.Context, key core.PeriodKey) (core.Breakdown, core.Breakdown, error) {
	var expRaw, payRaw string
	q := r.rebind(`SELECT expenses_json, payments_json FROM periods WHERE kind = ? AND label = ? AND year = ?`)
	err := r.db.QueryRowContext(ctx, q, string(key.Kind), key.Label, key.Year).Scan(&expRaw, &payRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Breakdown{}, core.Breakdown{}, fmt.Errorf("%w: %s", core.ErrPeriodNotFound, key)
	}
	if err != nil {
		return core.Breakdown{}, core.Breakdown{}, fmt.Errorf("query breakdowns for %s: %w", key, err)
	}
	var exp, pay core.Breakdown
	if err := json.Unmarshal([]byte(expRaw), &exp); err != nil {
		return exp, pay, fmt.Errorf("decode expenses for %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(payRaw), &pay); err != nil {
		return exp, pay, fmt.Errorf("decode payment methods for %s: %w", key, err)
	}
	return exp, pay, nil
}

// ListPeriods implements provider.PeriodLister
func (r *Repository) ListPeriods(ctx context.Context) ([]core.PeriodKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, label, year FROM periods ORDER BY kind, year, label`)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var keys []core.PeriodKey
	for rows.Next() {
		var kind, label, year string
		if err := rows.Scan(&kind, &label, &year); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		keys = append(keys, core.NewPeriodKey(core.PeriodKind(kind), label, year))
	}
	return keys, rows.Err()
}

const upsertPeriod = `
INSERT INTO periods (kind, label, year, chart_json, stats_json, expenses_json, payments_json)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kind, label, year) DO UPDATE SET
    chart_json = excluded.chart_json,
    stats_json = excluded.stats_json,
    expenses_json = excluded.expenses_json,
    payments_json = excluded.payments_json,
    updated_at = CURRENT_TIMESTAMP`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) upsert(ctx context.Context, ex execer, rec core.PeriodRecord) error {
	rec.Key = core.NewPeriodKey(rec.Key.Kind, rec.Key.Label, rec.Key.Year)
	if err := rec.Validate(); err != nil {
		return err
	}
	cols := make([]any, 0, 4)
	for _, v := range []any{rec.Chart, rec.Stats, rec.Expenses, rec.PaymentMethods} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.Key, err)
		}
		cols = append(cols, string(b))
	}
	args := append([]any{string(rec.Key.Kind), rec.Key.Label, rec.Key.Year}, cols...)
	if _, err := ex.ExecContext(ctx, r.rebind(upsertPeriod), args...); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Key, err)
	}
	return nil
}

// WritePeriod implements provider.PeriodWriter
func (r *Repository) WritePeriod(ctx context.Context, rec core.PeriodRecord) error {
	if err := r.upsert(ctx, r.db, rec); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Period saved", "period", rec.Key.String())
	return nil
}

// Seed upserts records in a single transaction.
func (r *Repository) Seed(ctx context.Context, records []core.PeriodRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if err := r.upsert(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	slog.InfoContext(ctx, "Periods seeded", "count", len(records))
	return nil
}
