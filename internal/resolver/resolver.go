// Package resolver maps a period selection to the datasets the dashboard
// renders.
//
// A lookup that misses falls back to the kind's default period. The result
// records both the requested and the resolved key together with an Outcome,
// so callers can tell a substitution apart from an exact match. The resolver
// holds no selection state and performs no logging; it only reads from the
// injected provider.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"finboard/internal/core"
	"finboard/internal/provider"
)

// Outcome tells whether a result is the requested period or the default.
type Outcome string

const (
	Exact    Outcome = "exact"
	Fallback Outcome = "fallback"
)

type (
	// Resolution describes how a request was satisfied.
	Resolution struct {
		Requested core.PeriodKey `json:"requested"`
		Resolved  core.PeriodKey `json:"resolved"`
		Outcome   Outcome        `json:"outcome"`
	}

	ChartResult struct {
		Resolution
		Data core.ChartDataset `json:"data"`
	}

	StatsResult struct {
		Resolution
		Stats core.StatsSummary `json:"stats"`
	}

	BreakdownResult struct {
		Resolution
		Expenses       core.Breakdown `json:"expenses"`
		PaymentMethods core.Breakdown `json:"payment_methods"`
	}

	// Dashboard is the full set of results for one selection.
	Dashboard struct {
		Chart      ChartResult
		Stats      StatsResult
		Breakdowns BreakdownResult
	}
)

// Fellback reports whether the default period was substituted.
func (r Resolution) Fellback() bool { return r.Outcome == Fallback }

type Resolver struct {
	reader provider.Reader
}

func New(reader provider.Reader) *Resolver {
	return &Resolver{reader: reader}
}

// lookup reads key and, if the provider reports it missing, reads the
// default key of the same kind instead.
func lookup[T any](ctx context.Context, kind core.PeriodKind, label, year string, read func(context.Context, core.PeriodKey) (T, error)) (T, Resolution, error) {
	var zero T
	if !kind.Valid() {
		return zero, Resolution{}, fmt.Errorf("%w: %q", core.ErrUnknownPeriodKind, kind)
	}
	res := Resolution{Requested: core.NewPeriodKey(kind, label, year)}

	v, err := read(ctx, res.Requested)
	if err == nil {
		res.Resolved, res.Outcome = res.Requested, Exact
		return v, res, nil
	}
	if !errors.Is(err, core.ErrPeriodNotFound) {
		return zero, res, fmt.Errorf("read %s: %w", res.Requested, err)
	}

	res.Resolved, res.Outcome = core.DefaultKey(kind), Fallback
	v, err = read(ctx, res.Resolved)
	if err != nil {
		return zero, res, fmt.Errorf("read default %s: %w", res.Resolved, err)
	}
	return v, res, nil
}

// ResolveChartData returns the chart dataset for a selection.
func (r *Resolver) ResolveChartData(ctx context.Context, kind core.PeriodKind, label, year string) (ChartResult, error) {
	ds, res, err := lookup(ctx, kind, label, year, r.reader.ReadChartData)
	if err != nil {
		return ChartResult{}, err
	}
	if err := ds.Validate(); err != nil {
		return ChartResult{}, fmt.Errorf("dataset %s: %w", res.Resolved, err)
	}
	return ChartResult{Resolution: res, Data: ds}, nil
}

// ResolveStatsSummary returns the stat card values for a selection.
func (r *Resolver) ResolveStatsSummary(ctx context.Context, kind core.PeriodKind, label, year string) (StatsResult, error) {
	st, res, err := lookup(ctx, kind, label, year, r.reader.ReadStatsSummary)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{Resolution: res, Stats: st}, nil
}

type breakdownPair struct {
	expenses, payments core.Breakdown
}

// ResolveBreakdowns returns the expense and payment-method distributions.
func (r *Resolver) ResolveBreakdowns(ctx context.Context, kind core.PeriodKind, label, year string) (BreakdownResult, error) {
	read := func(ctx context.Context, key core.PeriodKey) (breakdownPair, error) {
		e, p, err := r.reader.ReadBreakdowns(ctx, key)
		return breakdownPair{e, p}, err
	}
	bp, res, err := lookup(ctx, kind, label, year, read)
	if err != nil {
		return BreakdownResult{}, err
	}
	return BreakdownResult{Resolution: res, Expenses: bp.expenses, PaymentMethods: bp.payments}, nil
}

// Resolve runs the three lookups for a selection concurrently.
func (r *Resolver) Resolve(ctx context.Context, sel core.Selection) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Chart, err = r.ResolveChartData(gctx, sel.Kind, sel.Label, sel.Year)
		return err
	})
	g.Go(func() error {
		var err error
		d.Stats, err = r.ResolveStatsSummary(gctx, sel.Kind, sel.Label, sel.Year)
		return err
	})
	g.Go(func() error {
		var err error
		d.Breakdowns, err = r.ResolveBreakdowns(gctx, sel.Kind, sel.Label, sel.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}
