package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finboard/internal/config"
	"finboard/internal/core"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("mongo").IsValid() {
		t.Error("mongo should not be valid")
	}
	if got := GetBackendTypeStrings(); len(got) != 4 || got[2] != "postgres" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "excel"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:      "postgres",
		DatabaseURL:      "postgres://localhost/finboard",
		DBConnectRetries: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DBConnectRetries != 3 || !cfg.SeedIfEmpty {
		t.Errorf("unexpected backend config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend, GoogleSheetName: "Periods"}, true},
		{"sheets without sheet", Config{Type: SheetsBackend, GoogleSpreadsheetID: "abc"}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if res.Writer == nil {
		t.Error("memory backend should be writable")
	}
	if err := res.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if _, err := res.Backend.ReadChartData(ctx, core.DefaultKey(core.Quarterly)); err != nil {
		t.Errorf("read default quarterly: %v", err)
	}
}

func TestCreateSQLiteBackendSeedsEmptyTable(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "finboard.db"),
		SeedIfEmpty:  true,
	}
	res, err := NewFactory(nil).CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	keys, err := res.Backend.ListPeriods(ctx)
	if err != nil {
		t.Fatalf("ListPeriods: %v", err)
	}
	if len(keys) == 0 {
		t.Fatal("expected seeded periods")
	}
	_, err = res.Backend.ReadStatsSummary(ctx, core.NewPeriodKey(core.Monthly, "Smarch", "2024"))
	if !errors.Is(err, core.ErrPeriodNotFound) {
		t.Errorf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestCreateSheetsBackendRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "")
	t.Setenv("GOOGLE_OAUTH_CLIENT_FILE", "")
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:                SheetsBackend,
		GoogleSpreadsheetID: "sheet",
		GoogleSheetName:     "Periods",
	})
	if err == nil {
		t.Fatal("expected credentials error")
	}
}
