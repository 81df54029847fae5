package google

import (
	"fmt"
	"strconv"
	"strings"

	"finboard/internal/core"
)

// Sheet layout: a header row followed by one row per fact,
//
//	Kind | Label | Year | Section | Name | V1 | V2 | ...
//
// Sections are "labels" (V* = chart labels), "series" (Name = xero_revenue,
// paypal_revenue, income or expenses), "stats" (Name = total_revenue ...
// with V1 the formatted value, or *_trend with V1 the percentage and V2
// "up"/"down"), "expenses" and "payments" (Name = category, V1 = amount).
const (
	colKind = iota
	colLabel
	colYear
	colSection
	colName
	colValues
)

func parsePeriods(values [][]interface{}) ([]core.PeriodRecord, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty sheet")
	}
	headers := toStrings(values[0])
	if len(headers) < colValues || !strings.EqualFold(headers[colKind], "kind") {
		return nil, fmt.Errorf("unexpected header: got headers=%v", headers)
	}

	var order []core.PeriodKey
	byKey := map[core.PeriodKey]*core.PeriodRecord{}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.TrimSpace(safeGet(row, colKind)) == "" {
			continue
		}
		kind, err := core.ParsePeriodKind(safeGet(row, colKind))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		key := core.NewPeriodKey(kind, strings.TrimSpace(safeGet(row, colLabel)), strings.TrimSpace(safeGet(row, colYear)))
		rec, ok := byKey[key]
		if !ok {
			rec = &core.PeriodRecord{Key: key}
			byKey[key] = rec
			order = append(order, key)
		}
		if err := applyRow(rec, row); err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+1, key, err)
		}
	}

	out := make([]core.PeriodRecord, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out, nil
}

func applyRow(rec *core.PeriodRecord, row []string) error {
	section := strings.ToLower(strings.TrimSpace(safeGet(row, colSection)))
	name := strings.TrimSpace(safeGet(row, colName))
	var vals []string
	if len(row) > colValues {
		vals = trimTrailingEmpty(row[colValues:])
	}

	switch section {
	case "labels":
		rec.Chart.Labels = vals
	case "series":
		nums, err := parseNumbers(vals)
		if err != nil {
			return err
		}
		switch strings.ToLower(name) {
		case "xero_revenue":
			rec.Chart.XeroRevenue = nums
		case "paypal_revenue":
			rec.Chart.PaypalRevenue = nums
		case "income":
			rec.Chart.Income = nums
		case "expenses":
			rec.Chart.Expenses = nums
		default:
			return fmt.Errorf("unknown series %q", name)
		}
	case "stats":
		return applyStat(&rec.Stats, strings.ToLower(name), vals)
	case "expenses", "payments":
		amt, err := core.ParseAmount(safeGet(vals, 0))
		if err != nil {
			return err
		}
		b := &rec.Expenses
		if section == "payments" {
			b = &rec.PaymentMethods
		}
		b.Labels = append(b.Labels, name)
		b.Amounts = append(b.Amounts, amt)
	default:
		return fmt.Errorf("unknown section %q", section)
	}
	return nil
}

func applyStat(s *core.StatsSummary, name string, vals []string) error {
	v := strings.TrimSpace(safeGet(vals, 0))
	switch name {
	case "total_revenue":
		s.TotalRevenue = v
	case "total_expense":
		s.TotalExpense = v
	case "net_profit":
		s.NetProfit = v
	case "net_cashflow":
		s.NetCashflow = v
	case "revenue_trend", "expense_trend", "profit_trend", "cashflow_trend":
		pct, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
		if err != nil {
			return fmt.Errorf("invalid trend %q: %w", v, err)
		}
		t := core.Trend{Value: pct, IsPositive: !strings.EqualFold(strings.TrimSpace(safeGet(vals, 1)), "down")}
		switch name {
		case "revenue_trend":
			s.RevenueTrend = t
		case "expense_trend":
			s.ExpenseTrend = t
		case "profit_trend":
			s.ProfitTrend = t
		default:
			s.CashflowTrend = t
		}
	default:
		return fmt.Errorf("unknown stat %q", name)
	}
	return nil
}

func parseNumbers(vals []string) ([]float64, error) {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		n, err := core.ParseAmount(v)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

func trimTrailingEmpty(in []string) []string {
	end := len(in)
	for end > 0 && strings.TrimSpace(in[end-1]) == "" {
		end--
	}
	return in[:end]
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
