package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/provider"
	"finboard/internal/resolver"
)

// Invalidator drops cached data for a period.
type Invalidator interface {
	Invalidate(ctx context.Context, key core.PeriodKey)
}

// RefreshWorker keeps the shared result cache in step with the data
// source: it evicts a period when told it changed and reads it again so the
// next dashboard request is served from cache.
type RefreshWorker struct {
	cache    Invalidator
	resolver *resolver.Resolver
	periods  provider.PeriodLister
}

func NewRefreshWorker(cache Invalidator, res *resolver.Resolver, periods provider.PeriodLister) *RefreshWorker {
	return &RefreshWorker{cache: cache, resolver: res, periods: periods}
}

// HandleRefresh processes a single period refresh message from AMQP
func (w *RefreshWorker) HandleRefresh(ctx context.Context, msg *amqp.PeriodRefreshMessage) error {
	slog.InfoContext(ctx, "Processing refresh message",
		"message_id", msg.ID,
		"period", msg.Key.String())

	w.cache.Invalidate(ctx, msg.Key)

	d, err := w.warm(ctx, msg.Key)
	if err != nil {
		return fmt.Errorf("warm %s: %w", msg.Key, err)
	}
	if d.Chart.Fellback() {
		slog.WarnContext(ctx, "Refreshed period is missing from the data source",
			"period", msg.Key.String(),
			"resolved", d.Chart.Resolved.String())
	}
	return nil
}

func (w *RefreshWorker) warm(ctx context.Context, key core.PeriodKey) (resolver.Dashboard, error) {
	return w.resolver.Resolve(ctx, core.Selection{Kind: key.Kind, Label: key.Label, Year: key.Year})
}

// WarmAll resolves every stored period once. Run at worker startup to fill
// the cache after downtime.
func (w *RefreshWorker) WarmAll(ctx context.Context) error {
	keys, err := w.periods.ListPeriods(ctx)
	if err != nil {
		return fmt.Errorf("list periods for startup warm: %w", err)
	}

	successCount, errorCount := 0, 0
	for _, k := range keys {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.warm(ctx, k); err != nil {
			slog.ErrorContext(ctx, "Failed to warm period", "period", k.String(), "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup cache warm completed",
		"total", len(keys),
		"success", successCount,
		"errors", errorCount)
	return nil
}
