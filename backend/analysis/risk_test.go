package analysis

import (
	"math/rand"
	"testing"

	"factbook-dashboard/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	mean, sd := Stats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, sd, 1e-9)

	mean, sd = Stats(nil)
	assert.Zero(t, mean)
	assert.Zero(t, sd)

	assert.Zero(t, Mean(nil))
	assert.Zero(t, ZScore(10, 3, 0))
	assert.Equal(t, 50.0, NormalizeScore(0))
	assert.Equal(t, 100.0, NormalizeScore(10))
	assert.Equal(t, 0.0, NormalizeScore(-10))
	assert.Equal(t, 65.0, NormalizeScore(1))
}

func TestPoliticalScore(t *testing.T) {
	full := country("A", "R", withLeaders("Chief", "Head", "4 November 2008"))
	assert.Equal(t, 85.0, PoliticalScore(full))

	stale := country("B", "R", withLeaders("Chief", "Head", "held 2001; next 2011"))
	assert.Equal(t, 75.0, PoliticalScore(stale))

	undated := country("C", "R", withLeaders("Chief", "", "last held in spring"))
	assert.Equal(t, 70.0, PoliticalScore(undated))

	assert.Equal(t, 50.0, PoliticalScore(country("D", "R")))
}

func TestMilitaryScore(t *testing.T) {
	tests := []struct {
		pct  *float64
		want float64
	}{
		{nil, 50},
		{models.F(0.2), 60},
		{models.F(0.5), 80},
		{models.F(3), 80},
		{models.F(4.5), 50},
		{models.F(10), 30},
		{models.F(12), 15},
	}
	for _, tt := range tests {
		c := country("X", "R")
		c.Military.ExpenditurePctGDP = tt.pct
		assert.Equal(t, tt.want, MilitaryScore(c))
	}
}

func TestDemographicScore(t *testing.T) {
	c := country("X", "R", withDemographics(1, 30))
	c.Demographics.LifeExpectancy = models.F(80)
	assert.InDelta(t, (80.0+90.0+96.0)/3, DemographicScore(c), 1e-9)

	shrinking := country("Y", "R", withDemographics(-2, 50))
	// max(20, 50-40) = 20, age > 45 = 50
	assert.InDelta(t, 35.0, DemographicScore(shrinking), 1e-9)

	assert.Equal(t, 50.0, DemographicScore(country("Z", "R")))
}

func TestEconomicScore(t *testing.T) {
	c := country("X", "R", withInflation(2.5), withUnemployment(5), withTrade(10, 10))
	s := NewScorer([]*models.Country{c})
	assert.InDelta(t, (100.0+80.0+50.0)/3, s.EconomicScore(c), 1e-9)

	// a lone growth value has no spread: z = 0
	g := country("G", "R", withGrowth(7))
	assert.Equal(t, 50.0, NewScorer([]*models.Country{g}).EconomicScore(g))

	assert.Equal(t, 50.0, s.EconomicScore(country("Empty", "R")))
}

func TestRiskLabelBands(t *testing.T) {
	assert.Equal(t, "Very Low", RiskLabel(80))
	assert.Equal(t, "Low", RiskLabel(79.9))
	assert.Equal(t, "Moderate", RiskLabel(45))
	assert.Equal(t, "High", RiskLabel(30))
	assert.Equal(t, "Very High", RiskLabel(29.99))
	assert.Equal(t, "#ef4444", RiskColor(0))
	assert.Equal(t, "#22c55e", RiskColor(100))
}

func TestScoresStayInRange(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		all := randomWorld(seed, 120)
		for _, p := range AllProfiles(all) {
			for _, v := range []int{p.Score.Overall, p.Score.Economic, p.Score.Political, p.Score.Military, p.Score.Demographic} {
				assert.GreaterOrEqual(t, v, 0, p.Country)
				assert.LessOrEqual(t, v, 100, p.Country)
			}
		}
	}
}

func TestAllProfilesRanks(t *testing.T) {
	profiles := AllProfiles(world())
	require.Len(t, profiles, 9)

	regional := map[string]int{}
	for i, p := range profiles {
		assert.Equal(t, i+1, p.Rank)
		if i > 0 {
			prev := profiles[i-1]
			assert.True(t, prev.Score.Overall > p.Score.Overall ||
				(prev.Score.Overall == p.Score.Overall && prev.Country < p.Country))
		}
		regional[p.Region]++
		assert.Equal(t, regional[p.Region], p.RegionalRank)
	}
}

func TestAllProfilesIgnoresInputOrder(t *testing.T) {
	all := world()
	want := AllProfiles(all)

	shuffled := append([]*models.Country(nil), all...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	assert.Equal(t, want, AllProfiles(shuffled))
}

func TestRiskFactors(t *testing.T) {
	c := country("X", "R", withGrowth(6), withUnemployment(12), withMilitary(0.8), withDemographics(-0.3, 30))
	p := RiskProfileFor(c, []*models.Country{c})

	require.Len(t, p.Factors, 4)
	assert.Equal(t, RiskFactor{Name: "GDP Growth", Value: "6.0%", Impact: ImpactPositive, Weight: 0.10, Description: "Strong economic expansion"}, p.Factors[0])
	assert.Equal(t, ImpactNegative, p.Factors[1].Impact)
	assert.Equal(t, "High unemployment", p.Factors[1].Description)
	assert.Equal(t, ImpactNeutral, p.Factors[2].Impact)
	assert.Equal(t, "0.8% GDP", p.Factors[2].Value)
	assert.Equal(t, "Declining population", p.Factors[3].Description)
	assert.Equal(t, "x", p.Slug)
}
