package analysis

import (
	"sort"
	"strings"

	"factbook-dashboard/backend/models"
)

type RegionalStats struct {
	Region          string  `json:"region"`
	AvgGDP          float64 `json:"avgGdp"`
	AvgGrowth       float64 `json:"avgGrowth"`
	AvgMilitary     float64 `json:"avgMilitary"`
	TotalPopulation float64 `json:"totalPopulation"`
	CountryCount    int     `json:"countryCount"`
	TopEconomy      string  `json:"topEconomy"`
	AvgRiskScore    int     `json:"avgRiskScore"`
}

// ComputeRegionalStats aggregates every region, most stable region first.
func ComputeRegionalStats(countries []*models.Country) []RegionalStats {
	groups, order := groupByRegion(countries)
	profiles := AllProfiles(countries)

	riskByRegion := make(map[string][]float64)
	for _, p := range profiles {
		riskByRegion[p.Region] = append(riskByRegion[p.Region], float64(p.Score.Overall))
	}

	stats := make([]RegionalStats, 0, len(order))
	for _, region := range order {
		members := groups[region]
		stats = append(stats, RegionalStats{
			Region:          region,
			AvgGDP:          Mean(collect(members, getGDP, true)),
			AvgGrowth:       Mean(collect(members, getGrowth, true)),
			AvgMilitary:     Mean(collect(members, getMilitary, true)),
			TotalPopulation: Sum(collect(members, getPopulation, true)),
			CountryCount:    len(members),
			TopEconomy:      topEconomy(members),
			AvgRiskScore:    roundHalfUp(Mean(riskByRegion[region])),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].AvgRiskScore != stats[j].AvgRiskScore {
			return stats[i].AvgRiskScore > stats[j].AvgRiskScore
		}
		return stats[i].Region < stats[j].Region
	})
	return stats
}

// topEconomy is the name of the largest GDP, ties broken by name so the
// answer does not depend on input order.
func topEconomy(countries []*models.Country) string {
	var best *models.Country
	for _, c := range countries {
		if !models.Truthy(c.Economy.GDPPPPBillions) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		g, b := *c.Economy.GDPPPPBillions, *best.Economy.GDPPPPBillions
		if g > b || (g == b && c.Country < best.Country) {
			best = c
		}
	}
	if best == nil {
		return notAvailable
	}
	return best.Country
}

// Regions returns the sorted distinct region names.
func Regions(countries []*models.Country) []string {
	_, order := groupByRegion(countries)
	sort.Strings(order)
	return order
}

// FindRegion resolves a region name case-insensitively, accepting the
// URL form where spaces are written as '-' or '_'.
func FindRegion(countries []*models.Country, name string) (string, bool) {
	want := normalizeRegion(name)
	for _, r := range Regions(countries) {
		if normalizeRegion(r) == want {
			return r, true
		}
	}
	return "", false
}

func normalizeRegion(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

type RegionCountry struct {
	Country    string   `json:"country"`
	Slug       string   `json:"slug"`
	Population *float64 `json:"population,omitempty"`
	GDP        *float64 `json:"gdp,omitempty"`
	Growth     *float64 `json:"growth,omitempty"`
	Stability  int      `json:"stability"`
	RiskLabel  string   `json:"riskLabel"`
	RiskColor  string   `json:"riskColor"`
}

type RegionSummary struct {
	Region          string          `json:"region"`
	CountryCount    int             `json:"countryCount"`
	TotalPopulation float64         `json:"totalPopulation"`
	TotalGDP        float64         `json:"totalGdp"`
	AvgGrowth       float64         `json:"avgGrowth"`
	AvgStability    int             `json:"avgStability"`
	Countries       []RegionCountry `json:"countries"`
	Insights        []Insight       `json:"insights"`
}

// SummarizeRegion builds the detail view of one region. Stability is scored
// against the full set so it matches the country pages.
func SummarizeRegion(all []*models.Country, region, sortBy string) RegionSummary {
	members := inRegion(all, region)
	scorer := NewScorer(all)

	summary := RegionSummary{
		Region:          region,
		CountryCount:    len(members),
		TotalPopulation: Sum(collect(members, getPopulation, false)),
		TotalGDP:        Sum(collect(members, getGDP, false)),
		AvgGrowth:       Mean(collect(members, getGrowth, false)),
		Countries:       make([]RegionCountry, 0, len(members)),
		Insights:        RegionalInsights(all, region),
	}

	var scores []float64
	for _, c := range members {
		p := scorer.Profile(c)
		scores = append(scores, float64(p.Score.Overall))
		summary.Countries = append(summary.Countries, RegionCountry{
			Country:    c.Country,
			Slug:       p.Slug,
			Population: c.Demographics.Population,
			GDP:        c.Economy.GDPPPPBillions,
			Growth:     c.Economy.GDPGrowthPct,
			Stability:  p.Score.Overall,
			RiskLabel:  p.Score.Label,
			RiskColor:  p.Score.Color,
		})
	}
	summary.AvgStability = roundHalfUp(Mean(scores))

	sortRegionCountries(summary.Countries, sortBy)
	return summary
}

func sortRegionCountries(rows []RegionCountry, sortBy string) {
	var key func(RegionCountry) float64
	switch sortBy {
	case SortGDP:
		key = func(r RegionCountry) float64 { return models.Val(r.GDP) }
	case SortPopulation:
		key = func(r RegionCountry) float64 { return models.Val(r.Population) }
	case SortGrowth:
		key = func(r RegionCountry) float64 { return models.Val(r.Growth) }
	case SortStability:
		key = func(r RegionCountry) float64 { return float64(r.Stability) }
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if key != nil {
			a, b := key(rows[i]), key(rows[j])
			if a != b {
				return a > b
			}
		}
		return rows[i].Country < rows[j].Country
	})
}
