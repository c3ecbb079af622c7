package analysis

import (
	"fmt"
	"math"

	"factbook-dashboard/backend/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const notAvailable = "N/A"

// FormatNumber abbreviates large counts: 1.3B, 45.2M, 12.0K.
func FormatNumber(n *float64) string {
	if n == nil {
		return notAvailable
	}
	v := *n
	switch {
	case v >= 1e9:
		return fixed(v/1e9, 1) + "B"
	case v >= 1e6:
		return fixed(v/1e6, 1) + "M"
	case v >= 1e3:
		return fixed(v/1e3, 1) + "K"
	}
	return fixed(v, 1)
}

// FormatPercent renders one decimal with a % sign.
func FormatPercent(n *float64) string {
	if n == nil {
		return notAvailable
	}
	return fixed(*n, 1) + "%"
}

// FormatBillions renders a value held in billions of dollars as $xB or $xT.
func FormatBillions(n *float64) string {
	if n == nil {
		return notAvailable
	}
	if *n >= 1000 {
		return "$" + fixed(*n/1000, 1) + "T"
	}
	return "$" + fixed(*n, 1) + "B"
}

// FormatDollars renders whole dollars with thousands separators.
func FormatDollars(n *float64) string {
	if n == nil {
		return notAvailable
	}
	return "$" + Grouped(*n)
}

// FormatYears renders a duration in years.
func FormatYears(n *float64) string {
	if n == nil {
		return notAvailable
	}
	return fixed(*n, 1) + " years"
}

// FormatMetric renders a value according to the metric's kind.
func FormatMetric(m models.Metric, n *float64) string {
	switch m.Kind {
	case models.KindPercent:
		return FormatPercent(n)
	case models.KindBillions:
		return FormatBillions(n)
	case models.KindDollars:
		return FormatDollars(n)
	case models.KindYears:
		return FormatYears(n)
	}
	if n != nil && *n < 1e6 {
		return Grouped(*n)
	}
	return FormatNumber(n)
}

// Grouped prints a number with thousands separators and up to three decimals.
func Grouped(v float64) string {
	if v == float64(int64(v)) {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 3)
}

// fixed rounds to the given number of decimals for display.
func fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func pct(v float64, places int) string {
	return fmt.Sprintf("%.*f%%", places, v)
}
