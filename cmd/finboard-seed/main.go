// Command finboard-seed loads period records into a SQL backend. Records
// come from a JSON file (the periods.json format) or the built-in fixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"finboard/internal/cli"
	"finboard/internal/core"
	"finboard/internal/provider/memory"
	"finboard/internal/storage"
)

func main() {
	fixtures := flag.String("fixtures", "", "periods JSON file; built-in fixtures when empty")
	backendFlag := flag.String("backend", "", "sqlite or postgres; defaults to DATA_BACKEND")
	dryRun := flag.Bool("dry-run", false, "validate records without writing")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	records, err := loadRecords(*fixtures)
	if err != nil {
		cli.Fatal(logger, "Failed to load records", err, "file", *fixtures)
	}
	for i, rec := range records {
		rec.Key = core.NewPeriodKey(rec.Key.Kind, rec.Key.Label, rec.Key.Year)
		if err := rec.Validate(); err != nil {
			cli.Fatal(logger, "Invalid period record", err, "index", i, "period", rec.Key.String())
		}
		records[i] = rec
	}
	logger.Info("Records validated", "count", len(records))
	if *dryRun {
		return
	}

	backend := *backendFlag
	if backend == "" {
		backend = cfg.DataBackend
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var repo *storage.Repository
	switch backend {
	case "sqlite":
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	case "postgres":
		repo, err = storage.NewPostgresRepository(ctx, cfg.DatabaseURL, storage.PostgresOptions{
			MaxRetries: cfg.DBConnectRetries,
			RetryDelay: cfg.DBRetryDelay,
		})
	default:
		err = fmt.Errorf("backend %q cannot be seeded: use sqlite or postgres", backend)
	}
	if err != nil {
		cli.Fatal(logger, "Failed to open repository", err, "backend", backend)
	}
	defer repo.Close()

	if err := repo.Seed(ctx, records); err != nil {
		cli.Fatal(logger, "Seed failed", err, "backend", backend)
	}
	logger.Info("Seed complete", "backend", backend, "count", len(records))
}

func loadRecords(path string) ([]core.PeriodRecord, error) {
	if path == "" {
		return memory.DefaultRecords()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return memory.DecodeRecords(data)
}
