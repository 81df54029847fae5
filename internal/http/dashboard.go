package http

import (
	"finboard/internal/charts"
	"finboard/internal/core"
	"finboard/internal/resolver"
)

// StatCard is one summary card of the dashboard.
type StatCard struct {
	Title       string     `json:"title"`
	Value       string     `json:"value"`
	Description string     `json:"description"`
	Trend       core.Trend `json:"trend"`
	Arrow       string     `json:"arrow"`
}

type dashboardCharts struct {
	Revenue        charts.Config `json:"revenue"`
	CashFlow       charts.Config `json:"cash_flow"`
	Expenses       charts.Config `json:"expenses"`
	PaymentMethods charts.Config `json:"payment_methods"`
}

type dashboardResolution struct {
	Chart      resolver.Resolution `json:"chart"`
	Stats      resolver.Resolution `json:"stats"`
	Breakdowns resolver.Resolution `json:"breakdowns"`
}

type dashboardResponse struct {
	Selection   core.Selection      `json:"selection"`
	DisplayName string              `json:"display_name"`
	Stats       []StatCard          `json:"stats"`
	Charts      dashboardCharts     `json:"charts"`
	Resolution  dashboardResolution `json:"resolution"`
}

func statCards(kind core.PeriodKind, s core.StatsSummary) []StatCard {
	desc := kind.Description()
	card := func(title, value, description string, t core.Trend) StatCard {
		return StatCard{Title: title, Value: value, Description: description, Trend: t, Arrow: t.Arrow()}
	}
	return []StatCard{
		card("Total Revenue", s.TotalRevenue, desc, s.RevenueTrend),
		card("Total Expense", s.TotalExpense, desc, s.ExpenseTrend),
		card("Net Profit", s.NetProfit, desc, s.ProfitTrend),
		card("Net Cashflow", s.NetCashflow, "Net this "+kind.DerivedLabel(), s.CashflowTrend),
	}
}

// buildDashboard turns resolved data into the response payload. chartType
// overrides the revenue and cash flow chart types when it names a
// selectable type.
func buildDashboard(sel core.Selection, d resolver.Dashboard, chartType string) dashboardResponse {
	return dashboardResponse{
		Selection:   sel,
		DisplayName: sel.Kind.DisplayName(),
		Stats:       statCards(sel.Kind, d.Stats.Stats),
		Charts: dashboardCharts{
			Revenue:        charts.Revenue(d.Chart.Data, charts.ParseType(chartType, charts.Line)),
			CashFlow:       charts.CashFlow(d.Chart.Data, charts.ParseType(chartType, charts.Bar)),
			Expenses:       charts.Expenses(d.Breakdowns.Expenses),
			PaymentMethods: charts.PaymentMethods(d.Breakdowns.PaymentMethods),
		},
		Resolution: dashboardResolution{
			Chart:      d.Chart.Resolution,
			Stats:      d.Stats.Resolution,
			Breakdowns: d.Breakdowns.Resolution,
		},
	}
}
