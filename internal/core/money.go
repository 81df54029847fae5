package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a dollar amount with thousands separators, e.g.
// 125430 -> "$125,430" and 1234.5 -> "$1,234.50".
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if amount == math.Trunc(amount) {
		return sign + printer.Sprintf("$%d", int64(amount))
	}
	return sign + printer.Sprintf("$%.2f", amount)
}

// ParseAmount reads a number the way sheets and fixtures write it, with an
// optional "$" prefix and "," grouping.
func ParseAmount(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "$")
	clean = strings.ReplaceAll(clean, ",", "")
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// Share returns part/total as a percentage rounded to one decimal place.
// A zero total yields zero.
func Share(part, total float64) decimal.Decimal {
	t := decimal.NewFromFloat(total)
	if t.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(part).Mul(decimal.NewFromInt(100)).Div(t).Round(1)
}
