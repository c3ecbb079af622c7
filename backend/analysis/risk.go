package analysis

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"factbook-dashboard/backend/models"
)

// Sub-score weights of the stability index.
const (
	WeightEconomic    = 0.30
	WeightPolitical   = 0.25
	WeightMilitary    = 0.25
	WeightDemographic = 0.20
)

// Impact of a single risk factor on stability
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// RiskScore is the stability index of one country. Higher is more stable.
type RiskScore struct {
	Overall     int    `json:"overall"`
	Economic    int    `json:"economic"`
	Political   int    `json:"political"`
	Military    int    `json:"military"`
	Demographic int    `json:"demographic"`
	Label       string `json:"label"`
	Color       string `json:"color"`
}

type RiskFactor struct {
	Name        string  `json:"name"`
	Value       string  `json:"value"`
	Impact      string  `json:"impact"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

type RiskProfile struct {
	Country      string       `json:"country"`
	Slug         string       `json:"slug"`
	Region       string       `json:"region"`
	Score        RiskScore    `json:"score"`
	Factors      []RiskFactor `json:"factors"`
	Rank         int          `json:"rank,omitempty"`
	RegionalRank int          `json:"regionalRank,omitempty"`
}

// GlobalStats is the baseline every country is normalised against.
type GlobalStats struct {
	AvgGDP      float64 `json:"avgGdp"`
	StdGDP      float64 `json:"stdGdp"`
	AvgGrowth   float64 `json:"avgGrowth"`
	StdGrowth   float64 `json:"stdGrowth"`
	AvgMilitary float64 `json:"avgMilitary"`
	StdMilitary float64 `json:"stdMilitary"`
}

// ComputeGlobalStats only counts values that are present and non-zero.
func ComputeGlobalStats(countries []*models.Country) GlobalStats {
	var g GlobalStats
	g.AvgGDP, g.StdGDP = Stats(collect(countries, getGDP, true))
	g.AvgGrowth, g.StdGrowth = Stats(collect(countries, getGrowth, true))
	g.AvgMilitary, g.StdMilitary = Stats(collect(countries, getMilitary, true))
	return g
}

// Scorer scores countries against one precomputed global baseline.
type Scorer struct {
	global GlobalStats
}

func NewScorer(all []*models.Country) *Scorer {
	return &Scorer{global: ComputeGlobalStats(all)}
}

// Global returns the baseline in use.
func (s *Scorer) Global() GlobalStats {
	return s.global
}

// EconomicScore averages growth (z-scored), inflation distance from 2.5%,
// unemployment and the export/import ratio. 50 when nothing is known.
func (s *Scorer) EconomicScore(c *models.Country) float64 {
	var factors []float64
	e := c.Economy

	if e.GDPGrowthPct != nil {
		z := ZScore(*e.GDPGrowthPct, s.global.AvgGrowth, s.global.StdGrowth)
		factors = append(factors, NormalizeScore(z))
	}
	if e.InflationPct != nil {
		deviation := math.Abs(*e.InflationPct - 2.5)
		factors = append(factors, math.Max(0, 100-deviation*5))
	}
	if e.UnemploymentPct != nil {
		factors = append(factors, math.Max(0, 100-*e.UnemploymentPct*4))
	}
	if models.Truthy(e.ExportsBillions) && models.Truthy(e.ImportsBillions) {
		ratio := *e.ExportsBillions / *e.ImportsBillions
		factors = append(factors, math.Min(100, ratio*50))
	}

	if len(factors) == 0 {
		return 50
	}
	return clamp(Mean(factors), 0, 100)
}

var yearPattern = regexp.MustCompile(`\d{4}`)

// PoliticalScore rewards documented leadership and recent elections.
func PoliticalScore(c *models.Country) float64 {
	score := 50.0
	p := c.Political

	if p.ChiefOfState != nil && *p.ChiefOfState != "" {
		score += 10
	}
	if p.HeadOfGovernment != nil && *p.HeadOfGovernment != "" {
		score += 5
	}
	if p.LastElection != nil && *p.LastElection != "" {
		score += 10
		if y := yearPattern.FindString(*p.LastElection); y != "" {
			electionYear, _ := strconv.Atoi(y)
			if electionYear != 0 && c.Year-electionYear <= 4 {
				score += 10
			}
		}
	}
	return math.Min(100, score)
}

// MilitaryScore: moderate spending (1-3% of GDP) is the most stable posture.
func MilitaryScore(c *models.Country) float64 {
	if c.Military.ExpenditurePctGDP == nil {
		return 50
	}
	switch pct := *c.Military.ExpenditurePctGDP; {
	case pct < 0.5:
		return 60
	case pct <= 3:
		return 80
	case pct <= 5:
		return 50
	case pct <= 10:
		return 30
	default:
		return 15
	}
}

// DemographicScore averages population growth, median age and life expectancy bands.
func DemographicScore(c *models.Country) float64 {
	var factors []float64
	d := c.Demographics

	if d.PopulationGrowthPct != nil {
		g := *d.PopulationGrowthPct
		switch {
		case g < 0:
			factors = append(factors, math.Max(20, 50+g*20))
		case g <= 2:
			factors = append(factors, 80)
		case g <= 3:
			factors = append(factors, 60)
		default:
			factors = append(factors, math.Max(20, 80-g*10))
		}
	}
	if d.MedianAge != nil {
		switch age := *d.MedianAge; {
		case age < 20:
			factors = append(factors, 40)
		case age < 28:
			factors = append(factors, 70)
		case age <= 38:
			factors = append(factors, 90)
		case age <= 45:
			factors = append(factors, 70)
		default:
			factors = append(factors, 50)
		}
	}
	if d.LifeExpectancy != nil {
		factors = append(factors, math.Min(100, *d.LifeExpectancy*1.2))
	}

	if len(factors) == 0 {
		return 50
	}
	return clamp(Mean(factors), 0, 100)
}

// RiskLabel buckets an (unrounded) overall score.
func RiskLabel(score float64) string {
	switch {
	case score >= 80:
		return "Very Low"
	case score >= 65:
		return "Low"
	case score >= 45:
		return "Moderate"
	case score >= 30:
		return "High"
	default:
		return "Very High"
	}
}

func RiskColor(score float64) string {
	switch {
	case score >= 80:
		return "#22c55e"
	case score >= 65:
		return "#84cc16"
	case score >= 45:
		return "#eab308"
	case score >= 30:
		return "#f97316"
	default:
		return "#ef4444"
	}
}

// Profile computes the stability index and its headline factors for c.
func (s *Scorer) Profile(c *models.Country) RiskProfile {
	economic := s.EconomicScore(c)
	political := PoliticalScore(c)
	military := MilitaryScore(c)
	demographic := DemographicScore(c)

	overall := economic*WeightEconomic +
		political*WeightPolitical +
		military*WeightMilitary +
		demographic*WeightDemographic

	return RiskProfile{
		Country: c.Country,
		Slug:    c.Slug(),
		Region:  c.Region,
		Score: RiskScore{
			Overall:     roundHalfUp(overall),
			Economic:    roundHalfUp(economic),
			Political:   roundHalfUp(political),
			Military:    roundHalfUp(military),
			Demographic: roundHalfUp(demographic),
			Label:       RiskLabel(overall),
			Color:       RiskColor(overall),
		},
		Factors: riskFactors(c),
	}
}

// RiskProfileFor scores a single country against the full set.
func RiskProfileFor(c *models.Country, all []*models.Country) RiskProfile {
	return NewScorer(all).Profile(c)
}

func riskFactors(c *models.Country) []RiskFactor {
	factors := []RiskFactor{}

	if g := c.Economy.GDPGrowthPct; g != nil {
		f := RiskFactor{Name: "GDP Growth", Value: fmt.Sprintf("%.1f%%", *g), Weight: 0.10, Impact: ImpactNeutral}
		switch {
		case *g > 3:
			f.Impact = ImpactPositive
		case *g < 0:
			f.Impact = ImpactNegative
		}
		switch {
		case *g > 5:
			f.Description = "Strong economic expansion"
		case *g > 0:
			f.Description = "Moderate growth"
		default:
			f.Description = "Economic contraction"
		}
		factors = append(factors, f)
	}

	if u := c.Economy.UnemploymentPct; u != nil {
		f := RiskFactor{Name: "Unemployment", Value: fmt.Sprintf("%.1f%%", *u), Weight: 0.08, Impact: ImpactNeutral}
		switch {
		case *u < 5:
			f.Impact = ImpactPositive
		case *u > 10:
			f.Impact = ImpactNegative
		}
		switch {
		case *u < 5:
			f.Description = "Near full employment"
		case *u < 10:
			f.Description = "Moderate unemployment"
		default:
			f.Description = "High unemployment"
		}
		factors = append(factors, f)
	}

	if m := c.Military.ExpenditurePctGDP; m != nil {
		f := RiskFactor{Name: "Military Spending", Value: fmt.Sprintf("%.1f%% GDP", *m), Weight: 0.12, Impact: ImpactPositive}
		switch {
		case *m > 5:
			f.Impact = ImpactNegative
		case *m < 1:
			f.Impact = ImpactNeutral
		}
		switch {
		case *m > 5:
			f.Description = "Elevated military posture"
		case *m > 2:
			f.Description = "Standard defense spending"
		default:
			f.Description = "Low military investment"
		}
		factors = append(factors, f)
	}

	if p := c.Demographics.PopulationGrowthPct; p != nil {
		f := RiskFactor{Name: "Population Growth", Value: fmt.Sprintf("%.2f%%", *p), Weight: 0.08, Impact: ImpactPositive}
		switch {
		case *p < 0:
			f.Impact = ImpactNegative
			f.Description = "Declining population"
		case *p > 3:
			f.Impact = ImpactNegative
			f.Description = "Rapid population growth"
		default:
			f.Description = "Stable population dynamics"
		}
		factors = append(factors, f)
	}

	return factors
}

// AllProfiles scores every country, sorts by overall score (most stable
// first, ties by name) and assigns global and regional ranks.
func AllProfiles(countries []*models.Country) []RiskProfile {
	scorer := NewScorer(countries)
	profiles := make([]RiskProfile, len(countries))
	for i, c := range countries {
		profiles[i] = scorer.Profile(c)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		if profiles[i].Score.Overall != profiles[j].Score.Overall {
			return profiles[i].Score.Overall > profiles[j].Score.Overall
		}
		return profiles[i].Country < profiles[j].Country
	})

	regional := make(map[string]int)
	for i := range profiles {
		profiles[i].Rank = i + 1
		regional[profiles[i].Region]++
		profiles[i].RegionalRank = regional[profiles[i].Region]
	}
	return profiles
}

// ProfilesByCountry indexes profiles by country name.
func ProfilesByCountry(profiles []RiskProfile) map[string]RiskProfile {
	out := make(map[string]RiskProfile, len(profiles))
	for _, p := range profiles {
		out[p.Country] = p
	}
	return out
}
