package analysis

import (
	"errors"
	"sort"
	"strings"

	"factbook-dashboard/backend/models"
)

// Sort keys accepted by the listing and region views.
const (
	SortName       = "name"
	SortGDP        = "gdp"
	SortPopulation = "population"
	SortGrowth     = "growth"
	SortStability  = "stability"
)

const topN = 10

// MaxCompare is the largest number of countries shown side by side.
const MaxCompare = models.MaxGroupSize

var (
	ErrCompareEmpty   = errors.New("no countries to compare")
	ErrCompareTooMany = errors.New("too many countries to compare")
)

// CountryRow is the compact record used by tables and top lists.
type CountryRow struct {
	Country    string   `json:"country"`
	Slug       string   `json:"slug"`
	Region     string   `json:"region"`
	Population *float64 `json:"population,omitempty"`
	GDP        *float64 `json:"gdp,omitempty"`
	Growth     *float64 `json:"growth,omitempty"`
	PerCapita  *float64 `json:"perCapita,omitempty"`
}

func rowOf(c *models.Country) CountryRow {
	return CountryRow{
		Country:    c.Country,
		Slug:       c.Slug(),
		Region:     c.Region,
		Population: c.Demographics.Population,
		GDP:        c.Economy.GDPPPPBillions,
		Growth:     c.Economy.GDPGrowthPct,
		PerCapita:  c.Economy.GDPPerCapita,
	}
}

type DashboardSummary struct {
	Year            int          `json:"year"`
	CountryCount    int          `json:"countryCount"`
	TotalPopulation float64      `json:"totalPopulation"`
	TotalGDP        float64      `json:"totalGdp"`
	AvgGrowth       float64      `json:"avgGrowth"`
	Regions         []string     `json:"regions"`
	TopByGDP        []CountryRow `json:"topByGdp"`
	TopByGrowth     []CountryRow `json:"topByGrowth"`
	Alerts          AnomalyStats `json:"alerts"`
}

// Summarize computes the headline numbers of the landing page.
func Summarize(year int, countries []*models.Country) DashboardSummary {
	return DashboardSummary{
		Year:            year,
		CountryCount:    len(countries),
		TotalPopulation: Sum(collect(countries, getPopulation, false)),
		TotalGDP:        Sum(collect(countries, getGDP, false)),
		AvgGrowth:       Mean(collect(countries, getGrowth, true)),
		Regions:         Regions(countries),
		TopByGDP:        topBy(countries, getGDP, topN),
		TopByGrowth:     topBy(countries, getGrowth, topN),
		Alerts:          ComputeAnomalyStats(DetectAnomalies(countries)),
	}
}

// topBy returns the n largest present values, ties by name.
func topBy(countries []*models.Country, get func(*models.Country) *float64, n int) []CountryRow {
	ranked := make([]*models.Country, 0, len(countries))
	for _, c := range countries {
		if get(c) != nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := *get(ranked[i]), *get(ranked[j])
		if a != b {
			return a > b
		}
		return ranked[i].Country < ranked[j].Country
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	rows := make([]CountryRow, len(ranked))
	for i, c := range ranked {
		rows[i] = rowOf(c)
	}
	return rows
}

type ListOptions struct {
	Region string
	Query  string
	Sort   string
}

// ListCountries filters by region and name substring, then sorts. Numeric
// sorts put the largest first and missing values last.
func ListCountries(countries []*models.Country, opts ListOptions) []CountryRow {
	query := strings.ToLower(strings.TrimSpace(opts.Query))
	rows := []CountryRow{}
	for _, c := range countries {
		if opts.Region != "" && !strings.EqualFold(c.Region, opts.Region) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(c.Country), query) {
			continue
		}
		rows = append(rows, rowOf(c))
	}

	var key func(CountryRow) *float64
	switch opts.Sort {
	case SortGDP:
		key = func(r CountryRow) *float64 { return r.GDP }
	case SortPopulation:
		key = func(r CountryRow) *float64 { return r.Population }
	case SortGrowth:
		key = func(r CountryRow) *float64 { return r.Growth }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if key != nil {
			a, b := key(rows[i]), key(rows[j])
			switch {
			case a != nil && b == nil:
				return true
			case a == nil && b != nil:
				return false
			case a != nil && b != nil && *a != *b:
				return *a > *b
			}
		}
		return rows[i].Country < rows[j].Country
	})
	return rows
}

// compareMetrics are the rows of the comparison table, in display order.
var compareMetrics = []string{
	"demographics.population",
	"demographics.life_expectancy",
	"economy.gdp_ppp_billions",
	"economy.gdp_growth_pct",
	"economy.gdp_per_capita",
	"economy.unemployment_pct",
	"economy.inflation_pct",
	"economy.exports_billions",
	"economy.imports_billions",
	"military.expenditure_pct_gdp",
}

type CompareCell struct {
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
}

type CompareRow struct {
	Key    string        `json:"key"`
	Label  string        `json:"label"`
	Values []CompareCell `json:"values"`
	// Best is the column holding the preferable value, -1 when there is none.
	Best int `json:"best"`
}

type Comparison struct {
	Countries []CountryRow  `json:"countries"`
	Profiles  []RiskProfile `json:"profiles"`
	Rows      []CompareRow  `json:"rows"`
}

// Compare lays out up to MaxCompare countries side by side. Stability is
// scored against all.
func Compare(selected, all []*models.Country) (Comparison, error) {
	if len(selected) == 0 {
		return Comparison{}, ErrCompareEmpty
	}
	if len(selected) > MaxCompare {
		return Comparison{}, ErrCompareTooMany
	}

	scorer := NewScorer(all)
	cmp := Comparison{
		Countries: make([]CountryRow, len(selected)),
		Profiles:  make([]RiskProfile, len(selected)),
		Rows:      make([]CompareRow, 0, len(compareMetrics)),
	}
	for i, c := range selected {
		cmp.Countries[i] = rowOf(c)
		cmp.Profiles[i] = scorer.Profile(c)
	}

	for _, key := range compareMetrics {
		m := models.MustMetric(key)
		row := CompareRow{Key: m.Key, Label: m.Label, Values: make([]CompareCell, len(selected))}
		for i, c := range selected {
			v := m.Value(c)
			row.Values[i] = CompareCell{Value: v, Display: FormatMetric(m, v)}
		}
		row.Best = bestIndex(row.Values, m.Better)
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp, nil
}

// bestIndex picks the first column with the preferable value. With fewer
// than two values there is nothing to rank.
func bestIndex(cells []CompareCell, better int) int {
	if better == 0 {
		return -1
	}
	best, present := -1, 0
	for i, cell := range cells {
		if cell.Value == nil {
			continue
		}
		present++
		if best < 0 {
			best = i
			continue
		}
		v, b := *cell.Value, *cells[best].Value
		if (better > 0 && v > b) || (better < 0 && v < b) {
			best = i
		}
	}
	if present < 2 {
		return -1
	}
	return best
}
