package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"finboard/internal/core"
	"finboard/internal/provider"
)

// Breakdowns is the cached form of a BreakdownReader result.
type Breakdowns struct {
	Expenses       core.Breakdown `json:"expenses"`
	PaymentMethods core.Breakdown `json:"payment_methods"`
}

// DefaultLoadTimeout bounds a shared source read.
const DefaultLoadTimeout = 30 * time.Second

// Reader is a read-through caching decorator over a provider.Reader.
// Entries are keyed by PeriodKey.String(); misses reported by the source
// (core.ErrPeriodNotFound) are never cached. Concurrent misses on the same
// key share one source read, which outlives any single caller's
// cancellation; each caller still stops waiting when its own context ends.
type Reader struct {
	src         provider.Reader
	charts      Cache[core.ChartDataset]
	stats       Cache[core.StatsSummary]
	breakdowns  Cache[Breakdowns]
	group       singleflight.Group
	loadTimeout time.Duration
}

var _ provider.Reader = (*Reader)(nil)

func NewReader(src provider.Reader, charts Cache[core.ChartDataset], stats Cache[core.StatsSummary], breakdowns Cache[Breakdowns]) *Reader {
	return &Reader{src: src, charts: charts, stats: stats, breakdowns: breakdowns, loadTimeout: DefaultLoadTimeout}
}

func readThrough[T any](ctx context.Context, r *Reader, c Cache[T], flight, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	ch := r.group.DoChan(flight+"|"+key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		c.Set(loadCtx, key, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (r *Reader) ReadChartData(ctx context.Context, key core.PeriodKey) (core.ChartDataset, error) {
	return readThrough(ctx, r, r.charts, "chart", key.String(), func(ctx context.Context) (core.ChartDataset, error) {
		return r.src.ReadChartData(ctx, key)
	})
}

func (r *Reader) ReadStatsSummary(ctx context.Context, key core.PeriodKey) (core.StatsSummary, error) {
	return readThrough(ctx, r, r.stats, "stats", key.String(), func(ctx context.Context) (core.StatsSummary, error) {
		return r.src.ReadStatsSummary(ctx, key)
	})
}

func (r *Reader) ReadBreakdowns(ctx context.Context, key core.PeriodKey) (core.Breakdown, core.Breakdown, error) {
	b, err := readThrough(ctx, r, r.breakdowns, "breakdowns", key.String(), func(ctx context.Context) (Breakdowns, error) {
		e, p, err := r.src.ReadBreakdowns(ctx, key)
		return Breakdowns{Expenses: e, PaymentMethods: p}, err
	})
	return b.Expenses, b.PaymentMethods, err
}

// ListPeriods is not cached.
func (r *Reader) ListPeriods(ctx context.Context) ([]core.PeriodKey, error) {
	return r.src.ListPeriods(ctx)
}

// Invalidate drops every cached entry for key.
func (r *Reader) Invalidate(ctx context.Context, key core.PeriodKey) {
	k := key.String()
	r.charts.Delete(ctx, k)
	r.stats.Delete(ctx, k)
	r.breakdowns.Delete(ctx, k)
}
