package google

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"finboard/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error for missing spreadsheet id")
	}
}

func TestNewSheetsService_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	clearOAuthEnv(t)
	if _, err := newSheetsService(context.Background()); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestDefaultSheetName(t *testing.T) {
	c := newClient(Options{}, nil)
	if c.sheetName != DefaultSheetName || c.cacheValidDuration != 10*time.Minute {
		t.Fatalf("unexpected defaults: %q %v", c.sheetName, c.cacheValidDuration)
	}
}

func TestClientReloadsAfterTTL(t *testing.T) {
	var calls atomic.Int32
	c := newClient(Options{ReloadEvery: 50 * time.Millisecond}, func(context.Context) ([][]interface{}, error) {
		calls.Add(1)
		return sheet(), nil
	})
	ctx := context.Background()
	key := core.NewPeriodKey(core.Monthly, "January", "2024")

	for i := 0; i < 3; i++ {
		if _, err := c.ReadChartData(ctx, key); err != nil {
			t.Fatalf("read: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single fetch within TTL, got %d", calls.Load())
	}

	time.Sleep(80 * time.Millisecond)
	if _, err := c.ReadStatsSummary(ctx, key); err != nil {
		t.Fatalf("read: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected reload after TTL, got %d fetches", calls.Load())
	}

	c.Invalidate()
	if _, _, err := c.ReadBreakdowns(ctx, key); err != nil {
		t.Fatalf("read: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected reload after invalidate, got %d fetches", calls.Load())
	}
}

func TestClientKeepsPreviousTableOnFailure(t *testing.T) {
	fail := false
	c := newClient(Options{}, func(context.Context) ([][]interface{}, error) {
		if fail {
			return nil, errors.New("quota exceeded")
		}
		return sheet(), nil
	})
	ctx := context.Background()
	if _, err := c.ListPeriods(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}

	fail = true
	c.Invalidate()
	keys, err := c.ListPeriods(ctx)
	if err != nil || len(keys) != 3 {
		t.Fatalf("expected stale table, got %v err=%v", keys, err)
	}

	_, err = c.ReadChartData(ctx, core.NewPeriodKey(core.Monthly, "March", "2024"))
	if !errors.Is(err, core.ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestClientFailsWithoutData(t *testing.T) {
	c := newClient(Options{}, func(context.Context) ([][]interface{}, error) {
		return nil, errors.New("unreachable")
	})
	if _, err := c.ReadChartData(context.Background(), core.DefaultKey(core.Monthly)); err == nil {
		t.Fatalf("expected error")
	}
}
