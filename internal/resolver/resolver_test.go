package resolver

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"finboard/internal/core"
	"finboard/internal/provider/memory"
)

func newFixtureResolver(t *testing.T) *Resolver {
	t.Helper()
	s, err := memory.NewDefault()
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return New(s)
}

func TestResolveChartDataJanuary2024(t *testing.T) {
	r := newFixtureResolver(t)
	res, err := r.ResolveChartData(context.Background(), core.Monthly, "January", "2024")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Outcome != Exact || res.Fellback() {
		t.Fatalf("expected exact match, got %s", res.Outcome)
	}
	if !reflect.DeepEqual(res.Data.Labels, []string{"Week 1", "Week 2", "Week 3", "Week 4"}) {
		t.Fatalf("unexpected labels %v", res.Data.Labels)
	}
	if !reflect.DeepEqual(res.Data.XeroRevenue, []float64{3000, 4750, 3750, 6250}) {
		t.Fatalf("unexpected first series %v", res.Data.XeroRevenue)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := newFixtureResolver(t)
	ctx := context.Background()

	def, err := r.ResolveChartData(ctx, core.Monthly, "January", "2024")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	miss, err := r.ResolveChartData(ctx, core.Monthly, "Nonexistent", "2099")
	if err != nil {
		t.Fatalf("fallback must not fail: %v", err)
	}
	if miss.Outcome != Fallback || miss.Resolved != core.DefaultKey(core.Monthly) {
		t.Fatalf("unexpected resolution %+v", miss.Resolution)
	}
	if miss.Requested != core.NewPeriodKey(core.Monthly, "Nonexistent", "2099") {
		t.Fatalf("requested key not preserved: %+v", miss.Requested)
	}
	if !reflect.DeepEqual(def.Data, miss.Data) {
		t.Fatalf("fallback dataset differs from default")
	}

	cases := []struct {
		kind        core.PeriodKind
		label, year string
	}{
		{core.Quarterly, "Q9", "2024"},
		{core.Quarterly, "Q2", "1999"},
		{core.Annually, "1999", ""},
	}
	for _, tc := range cases {
		st, err := r.ResolveStatsSummary(ctx, tc.kind, tc.label, tc.year)
		if err != nil {
			t.Fatalf("%s/%s/%s: %v", tc.kind, tc.label, tc.year, err)
		}
		want, _ := r.ResolveStatsSummary(ctx, tc.kind, core.DefaultKey(tc.kind).Label, core.DefaultKey(tc.kind).Year)
		if st.Outcome != Fallback || st.Stats != want.Stats {
			t.Fatalf("%s: expected default stats, got %+v", tc.kind, st)
		}
	}
}

func TestResolveEveryOptionHasEqualLengthSeries(t *testing.T) {
	r := newFixtureResolver(t)
	ctx := context.Background()
	for _, k := range core.Kinds() {
		for _, label := range core.Options(k) {
			for _, y := range core.Years() {
				res, err := r.ResolveChartData(ctx, k, label, y)
				if err != nil {
					t.Fatalf("%s/%s/%s: %v", k, label, y, err)
				}
				if res.Outcome != Exact {
					t.Fatalf("%s/%s/%s: expected exact match", k, label, y)
				}
				n := len(res.Data.Labels)
				for _, s := range [][]float64{res.Data.XeroRevenue, res.Data.PaypalRevenue, res.Data.Income, res.Data.Expenses} {
					if len(s) != n {
						t.Fatalf("%s/%s/%s: series length %d != %d", k, label, y, len(s), n)
					}
				}
			}
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := newFixtureResolver(t)
	ctx := context.Background()
	a, _ := r.Resolve(ctx, core.Selection{Kind: core.Quarterly, Label: "Q3", Year: "2022"})
	b, _ := r.Resolve(ctx, core.Selection{Kind: core.Quarterly, Label: "Q3", Year: "2022"})
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("repeated resolves differ")
	}
}

func TestResolveAnnualIgnoresYear(t *testing.T) {
	r := newFixtureResolver(t)
	res, err := r.ResolveChartData(context.Background(), core.Annually, "2022", "2024")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Outcome != Exact || res.Resolved.Label != "2022" || len(res.Data.Labels) != 12 {
		t.Fatalf("unexpected annual result %+v", res.Resolution)
	}
}

func TestResolveUnknownKind(t *testing.T) {
	r := newFixtureResolver(t)
	_, err := r.ResolveChartData(context.Background(), "weekly", "x", "2024")
	if !errors.Is(err, core.ErrUnknownPeriodKind) {
		t.Fatalf("expected ErrUnknownPeriodKind, got %v", err)
	}
}

type failingReader struct {
	*memory.Store
	calls atomic.Int32
}

var errBackend = errors.New("backend down")

func (f *failingReader) ReadChartData(context.Context, core.PeriodKey) (core.ChartDataset, error) {
	f.calls.Add(1)
	return core.ChartDataset{}, errBackend
}

func TestResolvePropagatesProviderErrors(t *testing.T) {
	s, _ := memory.NewDefault()
	f := &failingReader{Store: s}
	r := New(f)
	_, err := r.ResolveChartData(context.Background(), core.Monthly, "January", "2024")
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if f.calls.Load() != 1 {
		t.Fatalf("provider errors must not trigger fallback, got %d calls", f.calls.Load())
	}
	if _, err := r.Resolve(context.Background(), core.DefaultSelection()); !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error from Resolve, got %v", err)
	}
}
