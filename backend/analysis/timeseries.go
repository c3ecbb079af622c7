package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"factbook-dashboard/backend/models"
)

// TrackedMetrics are the fields followed across editions.
var TrackedMetrics = []string{
	"demographics.population",
	"demographics.population_growth_pct",
	"demographics.life_expectancy",
	"demographics.median_age",
	"economy.gdp_ppp_billions",
	"economy.gdp_growth_pct",
	"economy.gdp_per_capita",
	"economy.inflation_pct",
	"economy.unemployment_pct",
	"economy.exports_billions",
	"economy.imports_billions",
	"economy.external_debt_billions",
	"military.expenditure_pct_gdp",
}

type direction int

const (
	anyDirection direction = iota
	increase
	decrease
)

// changeThreshold flags a year-over-year move. Exactly one of pct or abs is set.
type changeThreshold struct {
	pct *float64
	abs *float64
	dir direction
}

// Absolute thresholds with anyDirection fire on |abs_change| >= abs, so
// gdp_growth_pct swings in either direction raise _major_change.
var changeThresholds = map[string]changeThreshold{
	"gdp_ppp_billions":    {pct: models.F(20), dir: anyDirection},
	"gdp_growth_pct":      {abs: models.F(5), dir: anyDirection},
	"population":          {pct: models.F(-5), dir: decrease},
	"unemployment_pct":    {abs: models.F(5), dir: increase},
	"inflation_pct":       {abs: models.F(10), dir: increase},
	"expenditure_pct_gdp": {pct: models.F(50), dir: increase},
}

type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TimeSeries maps series key -> metric field -> points in year order.
type TimeSeries map[string]map[string][]Point

type Change struct {
	Old       float64  `json:"old"`
	New       float64  `json:"new"`
	AbsChange float64  `json:"abs_change"`
	PctChange *float64 `json:"pct_change"`
}

type PeriodChanges struct {
	Metrics map[string]Change `json:"metrics"`
	Alerts  []string          `json:"alerts"`
}

// Changes maps series key -> "<prev>_to_<curr>" -> changes.
type Changes map[string]map[string]PeriodChanges

// SeriesKey is the cross-edition identity of a country: lower-case name
// with spaces replaced by underscores.
func SeriesKey(country string) string {
	return strings.ReplaceAll(strings.ToLower(country), " ", "_")
}

// PeriodKey names the interval between two editions.
func PeriodKey(prev, curr int) string {
	return fmt.Sprintf("%d_to_%d", prev, curr)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedYears(byYear map[int][]*models.Country) []int {
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func keyed(countries []*models.Country) map[string]*models.Country {
	out := make(map[string]*models.Country, len(countries))
	for _, c := range countries {
		out[SeriesKey(c.Country)] = c
	}
	return out
}

// BuildTimeSeries collects every tracked metric per country across years.
func BuildTimeSeries(byYear map[int][]*models.Country) TimeSeries {
	ts := make(TimeSeries)
	for _, year := range sortedYears(byYear) {
		for key, c := range keyed(byYear[year]) {
			for _, name := range TrackedMetrics {
				m := models.MustMetric(name)
				v := m.Value(c)
				if v == nil {
					continue
				}
				if ts[key] == nil {
					ts[key] = make(map[string][]Point)
				}
				ts[key][m.Field] = append(ts[key][m.Field], Point{Year: year, Value: *v})
			}
		}
	}
	return ts
}

// computeChange returns nil unless both values are present. PctChange is nil
// when old is zero or nothing moved; a move that rounds to 0.00% is kept as 0.
func computeChange(old, cur *float64) *Change {
	if old == nil || cur == nil {
		return nil
	}
	ch := &Change{Old: *old, New: *cur, AbsChange: round2(*cur - *old)}
	if *old != 0 && *cur != *old {
		p := round2((*cur - *old) / math.Abs(*old) * 100)
		ch.PctChange = &p
	}
	return ch
}

// ChangeAlerts names the thresholds a change crosses, e.g. "inflation_pct_spike".
func ChangeAlerts(field string, ch Change) []string {
	t, ok := changeThresholds[field]
	if !ok {
		return nil
	}
	var alerts []string

	if t.pct != nil && ch.PctChange != nil {
		p, target := *ch.PctChange, *t.pct
		switch {
		case t.dir == anyDirection && math.Abs(p) >= math.Abs(target):
			alerts = append(alerts, field+"_major_change")
		case t.dir == increase && p >= target:
			alerts = append(alerts, field+"_spike")
		case t.dir == decrease && p <= target:
			alerts = append(alerts, field+"_decline")
		}
	}

	if t.abs != nil {
		a, target := ch.AbsChange, *t.abs
		switch {
		case t.dir == anyDirection && math.Abs(a) >= target:
			alerts = append(alerts, field+"_major_change")
		case t.dir == increase && a >= target:
			alerts = append(alerts, field+"_spike")
		case t.dir == decrease && a <= -target:
			alerts = append(alerts, field+"_decline")
		}
	}
	return alerts
}

// BuildChanges compares every pair of consecutive editions. Countries that
// are missing from either edition are skipped.
func BuildChanges(byYear map[int][]*models.Country) Changes {
	changes := make(Changes)
	years := sortedYears(byYear)

	for i := 1; i < len(years); i++ {
		prev, curr := keyed(byYear[years[i-1]]), keyed(byYear[years[i]])
		period := PeriodKey(years[i-1], years[i])

		for key, pc := range prev {
			cc, ok := curr[key]
			if !ok {
				continue
			}
			pcs := PeriodChanges{Metrics: make(map[string]Change), Alerts: []string{}}
			for _, name := range TrackedMetrics {
				m := models.MustMetric(name)
				ch := computeChange(m.Value(pc), m.Value(cc))
				if ch == nil {
					continue
				}
				pcs.Metrics[m.Field] = *ch
				pcs.Alerts = append(pcs.Alerts, ChangeAlerts(m.Field, *ch)...)
			}
			if len(pcs.Metrics) == 0 {
				continue
			}
			if changes[key] == nil {
				changes[key] = make(map[string]PeriodChanges)
			}
			changes[key][period] = pcs
		}
	}
	return changes
}

type AlertCount struct {
	Key    string `json:"key"`
	Alerts int    `json:"alerts"`
}

// MostChanged ranks countries by how many change alerts they raised.
func MostChanged(changes Changes, limit int) []AlertCount {
	var counts []AlertCount
	for key, periods := range changes {
		total := 0
		for _, p := range periods {
			total += len(p.Alerts)
		}
		if total > 0 {
			counts = append(counts, AlertCount{Key: key, Alerts: total})
		}
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Alerts != counts[j].Alerts {
			return counts[i].Alerts > counts[j].Alerts
		}
		return counts[i].Key < counts[j].Key
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
