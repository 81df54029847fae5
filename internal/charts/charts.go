// Package charts builds the configuration payloads consumed by the
// front-end chart renderer: datasets with colours, axis flags, legend
// placement and pre-rendered tooltip labels.
package charts

import (
	"strings"

	"finboard/internal/core"
)

// Palette used across the dashboard.
const (
	ColorRevenue = "#3b82f6"
	ColorExpense = "#ef4444"
	ColorProfit  = "#10b981"
	ColorXero    = "#6366f1"
	ColorPaypal  = "#f59e0b"
)

// Slice colours for distribution charts, in category order. Extra slices
// cycle through the list.
var (
	expenseColors = []string{ColorExpense, ColorRevenue, ColorProfit, ColorXero, ColorPaypal}
	paymentColors = []string{ColorPaypal, ColorXero, ColorRevenue, ColorProfit, ColorExpense}
)

// Type is a renderer chart type.
type Type string

const (
	Line          Type = "line"
	Bar           Type = "bar"
	HorizontalBar Type = "horizontalBar"
	Pie           Type = "pie"
	Doughnut      Type = "doughnut"
)

// ParseType returns the chart type for s, or def when s is empty or not a
// selectable type.
func ParseType(s string, def Type) Type {
	switch t := Type(strings.TrimSpace(s)); t {
	case Line, Bar, HorizontalBar, Pie:
		return t
	}
	return def
}

type (
	Dataset struct {
		Label           string    `json:"label"`
		Data            []float64 `json:"data"`
		BorderColor     any       `json:"borderColor,omitempty"`
		BackgroundColor any       `json:"backgroundColor,omitempty"`
		Fill            bool      `json:"fill,omitempty"`
		Tension         float64   `json:"tension,omitempty"`
	}

	Legend struct {
		Display  bool   `json:"display"`
		Position string `json:"position"`
	}

	Axis struct {
		BeginAtZero bool   `json:"beginAtZero"`
		TickPrefix  string `json:"tickPrefix,omitempty"`
		Display     bool   `json:"display"`
	}

	Options struct {
		Responsive          bool            `json:"responsive"`
		MaintainAspectRatio bool            `json:"maintainAspectRatio"`
		IndexAxis           string          `json:"indexAxis,omitempty"`
		Legend              Legend          `json:"legend"`
		Scales              map[string]Axis `json:"scales,omitempty"`
		// TooltipLabels holds one rendered label per data point for
		// distribution charts.
		TooltipLabels []string `json:"tooltipLabels,omitempty"`
	}

	// Config is one chart ready to render.
	Config struct {
		Title    string    `json:"title"`
		Type     Type      `json:"type"`
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
		Options  Options   `json:"options"`
	}
)

func currencyScales() map[string]Axis {
	return map[string]Axis{
		"x": {Display: true},
		"y": {Display: true, BeginAtZero: true, TickPrefix: "$"},
	}
}

// withType switches a cartesian chart to t, keeping its datasets.
func (c Config) withType(t Type) Config {
	switch t {
	case HorizontalBar:
		c.Type = Bar
		c.Options.IndexAxis = "y"
	case Pie:
		// A pie of a time series collapses each series to its total.
		c.Type = Pie
		c.Options.Scales = nil
		c.Options.Legend.Position = "bottom"
		labels := make([]string, 0, len(c.Datasets))
		totals := make([]float64, 0, len(c.Datasets))
		colors := make([]string, 0, len(c.Datasets))
		for _, d := range c.Datasets {
			var sum float64
			for _, v := range d.Data {
				sum += v
			}
			labels = append(labels, d.Label)
			totals = append(totals, sum)
			if s, ok := d.BorderColor.(string); ok {
				colors = append(colors, s)
			}
		}
		c.Labels = labels
		c.Datasets = []Dataset{{Label: c.Title, Data: totals, BackgroundColor: colors}}
		c.Options.TooltipLabels = tooltipLabels(labels, totals)
	default:
		c.Type = t
	}
	return c
}

// Revenue is the Xero vs PayPal revenue chart, a line chart by default.
func Revenue(ds core.ChartDataset, t Type) Config {
	c := Config{
		Title:  "Revenue",
		Type:   Line,
		Labels: ds.Labels,
		Datasets: []Dataset{
			{Label: "Xero Revenue", Data: ds.XeroRevenue, BorderColor: ColorXero, BackgroundColor: ColorXero + "1a", Fill: true, Tension: 0.4},
			{Label: "PayPal Revenue", Data: ds.PaypalRevenue, BorderColor: ColorPaypal, BackgroundColor: ColorPaypal + "1a", Fill: true, Tension: 0.4},
		},
		Options: Options{
			Responsive: true,
			Legend:     Legend{Display: true, Position: "top"},
			Scales:     currencyScales(),
		},
	}
	return c.withType(ParseType(string(t), Line))
}

// CashFlow is the income vs expenses chart, a bar chart by default.
func CashFlow(ds core.ChartDataset, t Type) Config {
	c := Config{
		Title:  "Cash Flow",
		Type:   Bar,
		Labels: ds.Labels,
		Datasets: []Dataset{
			{Label: "Income", Data: ds.Income, BorderColor: ColorProfit, BackgroundColor: ColorProfit},
			{Label: "Expenses", Data: ds.Expenses, BorderColor: ColorExpense, BackgroundColor: ColorExpense},
		},
		Options: Options{
			Responsive: true,
			Legend:     Legend{Display: true, Position: "top"},
			Scales:     currencyScales(),
		},
	}
	return c.withType(ParseType(string(t), Bar))
}

func distribution(title string, t Type, palette []string, b core.Breakdown) Config {
	colors := make([]string, len(b.Labels))
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return Config{
		Title:    title,
		Type:     t,
		Labels:   b.Labels,
		Datasets: []Dataset{{Label: title, Data: b.Amounts, BackgroundColor: colors}},
		Options: Options{
			Responsive:    true,
			Legend:        Legend{Display: true, Position: "bottom"},
			TooltipLabels: tooltipLabels(b.Labels, b.Amounts),
		},
	}
}

// Expenses is the expense-by-category doughnut.
func Expenses(b core.Breakdown) Config {
	return distribution("Expenses by Category", Doughnut, expenseColors, b)
}

// PaymentMethods is the payment-method pie.
func PaymentMethods(b core.Breakdown) Config {
	return distribution("Payment Methods", Pie, paymentColors, b)
}

// tooltipLabels renders "label: $amount (pct%)" for every slice, with the
// share of the total to one decimal place.
func tooltipLabels(labels []string, amounts []float64) []string {
	var total float64
	for _, a := range amounts {
		total += a
	}
	out := make([]string, len(labels))
	for i, l := range labels {
		var a float64
		if i < len(amounts) {
			a = amounts[i]
		}
		out[i] = l + ": " + core.FormatCurrency(a) + " (" + core.Share(a, total).StringFixed(1) + "%)"
	}
	return out
}
