// Package analysis holds the dashboard's statistics: stability scoring,
// regional aggregation, anomaly rules, insights and the derived views served
// by the API. Everything here is a pure function of the records passed in.
package analysis

import (
	"math"

	"factbook-dashboard/backend/models"

	"gonum.org/v1/gonum/stat"
)

// Stats returns the mean and population standard deviation of values.
// An empty input yields (0, 0).
func Stats(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	if variance < 0 || math.IsNaN(variance) {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// Mean returns the arithmetic mean, or 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Sum adds values.
func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// ZScore is 0 when the distribution has no spread.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// NormalizeScore maps a z-score onto 0..100 around 50, 15 points per deviation.
func NormalizeScore(z float64) float64 {
	return clamp(50+z*15, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundHalfUp rounds .5 towards +Inf, as dashboards traditionally display scores.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// collect gathers one optional field from every record. When truthy is set,
// zero values are skipped as well as missing ones.
func collect(countries []*models.Country, get func(*models.Country) *float64, truthy bool) []float64 {
	values := make([]float64, 0, len(countries))
	for _, c := range countries {
		p := get(c)
		if p == nil || (truthy && *p == 0) {
			continue
		}
		values = append(values, *p)
	}
	return values
}

// groupByRegion keeps input order within each region.
func groupByRegion(countries []*models.Country) (map[string][]*models.Country, []string) {
	groups := make(map[string][]*models.Country)
	var order []string
	for _, c := range countries {
		if _, ok := groups[c.Region]; !ok {
			order = append(order, c.Region)
		}
		groups[c.Region] = append(groups[c.Region], c)
	}
	return groups, order
}

func inRegion(countries []*models.Country, region string) []*models.Country {
	var out []*models.Country
	for _, c := range countries {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}

var (
	getGDP        = func(c *models.Country) *float64 { return c.Economy.GDPPPPBillions }
	getGrowth     = func(c *models.Country) *float64 { return c.Economy.GDPGrowthPct }
	getInflation  = func(c *models.Country) *float64 { return c.Economy.InflationPct }
	getDebt       = func(c *models.Country) *float64 { return c.Economy.ExternalDebtBillions }
	getExports    = func(c *models.Country) *float64 { return c.Economy.ExportsBillions }
	getMilitary   = func(c *models.Country) *float64 { return c.Military.ExpenditurePctGDP }
	getPopulation = func(c *models.Country) *float64 { return c.Demographics.Population }
)
