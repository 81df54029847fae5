package core

import (
	"fmt"
	"strings"
)

type (
	// ChartDataset is a label axis with parallel metric series. A nil
	// series is absent; a present series must match Labels in length.
	ChartDataset struct {
		Labels        []string  `json:"labels"`
		XeroRevenue   []float64 `json:"xero_revenue,omitempty"`
		PaypalRevenue []float64 `json:"paypal_revenue,omitempty"`
		Income        []float64 `json:"income,omitempty"`
		Expenses      []float64 `json:"expenses,omitempty"`
	}

	// Trend is a percentage change and its direction.
	Trend struct {
		Value      float64 `json:"value"`
		IsPositive bool    `json:"is_positive"`
	}

	// StatsSummary holds the four stat card values, already formatted for
	// display.
	StatsSummary struct {
		TotalRevenue  string `json:"total_revenue"`
		TotalExpense  string `json:"total_expense"`
		NetProfit     string `json:"net_profit"`
		NetCashflow   string `json:"net_cashflow"`
		RevenueTrend  Trend  `json:"revenue_trend"`
		ExpenseTrend  Trend  `json:"expense_trend"`
		ProfitTrend   Trend  `json:"profit_trend"`
		CashflowTrend Trend  `json:"cashflow_trend"`
	}

	// Breakdown is a category distribution such as expenses by category.
	Breakdown struct {
		Labels  []string  `json:"labels"`
		Amounts []float64 `json:"amounts"`
	}

	// PeriodRecord is everything stored for a single period.
	PeriodRecord struct {
		Key            PeriodKey    `json:"key"`
		Chart          ChartDataset `json:"chart"`
		Stats          StatsSummary `json:"stats"`
		Expenses       Breakdown    `json:"expenses"`
		PaymentMethods Breakdown    `json:"payment_methods"`
	}
)

func (d ChartDataset) series() map[string][]float64 {
	return map[string][]float64{
		"xero_revenue":   d.XeroRevenue,
		"paypal_revenue": d.PaypalRevenue,
		"income":         d.Income,
		"expenses":       d.Expenses,
	}
}

func (d ChartDataset) Validate() error {
	if len(d.Labels) == 0 {
		return ErrEmptyLabels
	}
	present := 0
	for name, s := range d.series() {
		if s == nil {
			continue
		}
		present++
		if len(s) != len(d.Labels) {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrSeriesLength, name, len(s), len(d.Labels))
		}
	}
	if present < 3 {
		return ErrMissingSeries
	}
	return nil
}

func (t Trend) Validate() error {
	if t.Value < 0 {
		return ErrNegativeTrend
	}
	return nil
}

// Arrow is the direction glyph shown next to the trend value.
func (t Trend) Arrow() string {
	if t.IsPositive {
		return "↗"
	}
	return "↘"
}

func (s StatsSummary) Validate() error {
	trends := []struct {
		name string
		t    Trend
	}{
		{"revenue", s.RevenueTrend},
		{"expense", s.ExpenseTrend},
		{"profit", s.ProfitTrend},
		{"cashflow", s.CashflowTrend},
	}
	for _, tr := range trends {
		if err := tr.t.Validate(); err != nil {
			return fmt.Errorf("%s trend: %w", tr.name, err)
		}
	}
	return nil
}

func (b Breakdown) Validate() error {
	if len(b.Labels) == 0 {
		return ErrEmptyLabels
	}
	if len(b.Amounts) != len(b.Labels) {
		return fmt.Errorf("%w: %d amounts for %d labels", ErrSeriesLength, len(b.Amounts), len(b.Labels))
	}
	for i, a := range b.Amounts {
		if a < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, b.Labels[i])
		}
	}
	return nil
}

// Total sums the breakdown amounts.
func (b Breakdown) Total() float64 {
	var t float64
	for _, a := range b.Amounts {
		t += a
	}
	return t
}

func (r PeriodRecord) Validate() error {
	if !r.Key.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPeriodKind, r.Key.Kind)
	}
	if strings.TrimSpace(r.Key.Label) == "" {
		return fmt.Errorf("%w: empty label", ErrUnknownLabel)
	}
	if r.Key.Kind != Annually && strings.TrimSpace(r.Key.Year) == "" {
		return fmt.Errorf("%w: empty year", ErrUnknownYear)
	}
	if err := r.Chart.Validate(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	if err := r.Stats.Validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	if err := r.Expenses.Validate(); err != nil {
		return fmt.Errorf("expenses: %w", err)
	}
	if err := r.PaymentMethods.Validate(); err != nil {
		return fmt.Errorf("payment methods: %w", err)
	}
	return nil
}
