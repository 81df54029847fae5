package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"finboard/internal/core"
)

func TestNewDefaultLoadsFixtures(t *testing.T) {
	s, err := NewDefault()
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	keys, _ := s.ListPeriods(context.Background())
	if len(keys) != 68 {
		t.Fatalf("expected 68 periods, got %d", len(keys))
	}

	ds, err := s.ReadChartData(context.Background(), core.NewPeriodKey(core.Monthly, "January", "2024"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(ds.Labels, []string{"Week 1", "Week 2", "Week 3", "Week 4"}) {
		t.Fatalf("unexpected labels %v", ds.Labels)
	}
	if !reflect.DeepEqual(ds.XeroRevenue, []float64{3000, 4750, 3750, 6250}) {
		t.Fatalf("unexpected xero revenue %v", ds.XeroRevenue)
	}
}

func TestEveryFixtureOptionExists(t *testing.T) {
	s, err := NewDefault()
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	ctx := context.Background()
	for _, k := range core.Kinds() {
		for _, label := range core.Options(k) {
			for _, y := range core.Years() {
				key := core.NewPeriodKey(k, label, y)
				if _, err := s.ReadChartData(ctx, key); err != nil {
					t.Fatalf("%s: %v", key, err)
				}
			}
		}
	}
}

func TestMissingPeriod(t *testing.T) {
	s, _ := NewDefault()
	_, err := s.ReadStatsSummary(context.Background(), core.NewPeriodKey(core.Monthly, "Nonexistent", "2099"))
	if !errors.Is(err, core.ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestNewRejectsInvalidRecords(t *testing.T) {
	records, err := DefaultRecords()
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	records[0].Chart.Income = records[0].Chart.Income[:1]
	if _, err := New(records); !errors.Is(err, core.ErrSeriesLength) {
		t.Fatalf("expected ErrSeriesLength, got %v", err)
	}

	if _, err := New(nil); err == nil {
		t.Fatalf("expected error when defaults are missing")
	}
}

func TestNewFromDir(t *testing.T) {
	dir := t.TempDir()
	// No file -> embedded table
	if _, err := NewFromDir(dir); err != nil {
		t.Fatalf("expected embedded fallback, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "periods.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFromDir(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestWritePeriod(t *testing.T) {
	s, _ := NewDefault()
	ctx := context.Background()
	records, _ := DefaultRecords()
	r := records[0]
	r.Key = core.NewPeriodKey(core.Monthly, "January", "2025")
	if err := s.WritePeriod(ctx, r); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.ReadChartData(ctx, r.Key); err != nil {
		t.Fatalf("read back: %v", err)
	}

	r.Chart.Labels = nil
	if err := s.WritePeriod(ctx, r); !errors.Is(err, core.ErrEmptyLabels) {
		t.Fatalf("expected ErrEmptyLabels, got %v", err)
	}
}
