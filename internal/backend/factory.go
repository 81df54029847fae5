package backend

import (
	"context"
	"fmt"
	"log/slog"

	"finboard/internal/provider"
	"finboard/internal/provider/google"
	"finboard/internal/provider/memory"
	"finboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromDir(config.FixturesDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	f.logger.Info("Initialized memory backend", "fixtures_dir", config.FixturesDir)

	return &BackendResult{
		Backend: store,
		Writer:  store,
		Ping:    listPing(store),
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	if err := f.seed(ctx, repo, config); err != nil {
		repo.Close()
		return nil, err
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Writer:  repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewPostgresRepository(ctx, config.DatabaseURL, storage.PostgresOptions{
		MaxRetries: config.DBConnectRetries,
		RetryDelay: config.DBRetryDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}
	if err := f.seed(ctx, repo, config); err != nil {
		repo.Close()
		return nil, err
	}

	f.logger.Info("Initialized Postgres backend")

	return &BackendResult{
		Backend: repo,
		Writer:  repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID: config.GoogleSpreadsheetID,
		SheetName:     config.GoogleSheetName,
		ReloadEvery:   config.SheetsReload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"sheet", config.GoogleSheetName,
		"reload", config.SheetsReload)

	// Sheets is read-only: Writer stays nil.
	return &BackendResult{
		Backend: cli,
		Ping:    listPing(cli),
	}, nil
}

// seed fills an empty SQL table with the embedded fixtures.
func (f *DefaultFactory) seed(ctx context.Context, repo *storage.Repository, config Config) error {
	if !config.SeedIfEmpty {
		return nil
	}
	keys, err := repo.ListPeriods(ctx)
	if err != nil {
		return fmt.Errorf("list periods: %w", err)
	}
	if len(keys) > 0 {
		return nil
	}
	records, err := memory.DefaultRecords()
	if err != nil {
		return fmt.Errorf("load fixtures: %w", err)
	}
	if err := repo.Seed(ctx, records); err != nil {
		return fmt.Errorf("seed periods: %w", err)
	}
	f.logger.Info("Seeded empty period table", "records", len(records))
	return nil
}

func listPing(l provider.PeriodLister) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := l.ListPeriods(ctx)
		return err
	}
}
