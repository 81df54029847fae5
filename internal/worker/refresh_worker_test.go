package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/provider/memory"
	"finboard/internal/resolver"
)

type countingStore struct {
	*memory.Store
	chartReads int
	fail       bool
}

func (c *countingStore) ReadChartData(ctx context.Context, key core.PeriodKey) (core.ChartDataset, error) {
	c.chartReads++
	if c.fail {
		return core.ChartDataset{}, errors.New("source down")
	}
	return c.Store.ReadChartData(ctx, key)
}

func setup(t *testing.T) (*RefreshWorker, *countingStore, *cache.Reader) {
	t.Helper()
	s, err := memory.NewDefault()
	if err != nil {
		t.Fatalf("fixtures: %v", err)
	}
	src := &countingStore{Store: s}
	cached := cache.NewReader(src,
		cache.NewLRUCache[core.ChartDataset](128, time.Minute),
		cache.NewLRUCache[core.StatsSummary](128, time.Minute),
		cache.NewLRUCache[cache.Breakdowns](128, time.Minute))
	return NewRefreshWorker(cached, resolver.New(cached), cached), src, cached
}

func TestHandleRefreshReloadsPeriod(t *testing.T) {
	w, src, cached := setup(t)
	ctx := context.Background()
	key := core.NewPeriodKey(core.Monthly, "June", "2023")

	if _, err := cached.ReadChartData(ctx, key); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if err := w.HandleRefresh(ctx, amqp.NewPeriodRefreshMessage(key)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if src.chartReads != 2 {
		t.Fatalf("expected the period to be re-read, got %d reads", src.chartReads)
	}

	// Warm entry now serves reads
	if _, err := cached.ReadChartData(ctx, key); err != nil || src.chartReads != 2 {
		t.Fatalf("expected cached read, reads=%d err=%v", src.chartReads, err)
	}
}

func TestHandleRefreshMissingPeriodStillSucceeds(t *testing.T) {
	w, _, _ := setup(t)
	msg := amqp.NewPeriodRefreshMessage(core.NewPeriodKey(core.Monthly, "Nonexistent", "2099"))
	if err := w.HandleRefresh(context.Background(), msg); err != nil {
		t.Fatalf("fallback periods should not fail the message: %v", err)
	}
}

func TestHandleRefreshSourceError(t *testing.T) {
	w, src, _ := setup(t)
	src.fail = true
	msg := amqp.NewPeriodRefreshMessage(core.DefaultKey(core.Monthly))
	if err := w.HandleRefresh(context.Background(), msg); err == nil {
		t.Fatalf("expected error so the message is requeued")
	}
}

func TestWarmAll(t *testing.T) {
	w, src, _ := setup(t)
	if err := w.WarmAll(context.Background()); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if src.chartReads != 68 {
		t.Fatalf("expected every period read once, got %d", src.chartReads)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.WarmAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
