package analysis

import (
	"math/rand"
	"testing"

	"factbook-dashboard/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byName(all []*models.Country, names ...string) []*models.Country {
	var out []*models.Country
	for _, n := range names {
		for _, c := range all {
			if c.Country == n {
				out = append(out, c)
			}
		}
	}
	return out
}

func TestSummarize(t *testing.T) {
	s := Summarize(2010, world())

	assert.Equal(t, 9, s.CountryCount)
	assert.Equal(t, []string{"Africa", "Europe", "North America"}, s.Regions)
	require.NotEmpty(t, s.TopByGDP)
	assert.Equal(t, "United States", s.TopByGDP[0].Country)
	assert.Equal(t, "Zimbabwe", s.TopByGrowth[0].Country)
	assert.Equal(t, "Latvia", s.TopByGrowth[len(s.TopByGrowth)-1].Country)
	assert.Equal(t, 7, s.Alerts.Total)
	assert.InDelta(t, 715247517.0, s.TotalPopulation, 0.5)
}

func TestListCountries(t *testing.T) {
	all := world()

	europe := ListCountries(all, ListOptions{Region: "EUROPE", Sort: SortGDP})
	require.Len(t, europe, 3)
	assert.Equal(t, "Germany", europe[0].Country)
	assert.Equal(t, "Latvia", europe[2].Country)

	found := ListCountries(all, ListOptions{Query: "GER"})
	require.Len(t, found, 2)
	assert.Equal(t, "Germany", found[0].Country)
	assert.Equal(t, "Nigeria", found[1].Country)

	byDefault := ListCountries(all, ListOptions{})
	assert.Equal(t, "Canada", byDefault[0].Country)
	assert.Equal(t, "canada", byDefault[0].Slug)

	assert.Empty(t, ListCountries(all, ListOptions{Region: "Antarctica"}))
}

func TestListCountriesMissingValuesLast(t *testing.T) {
	all := []*models.Country{
		country("Blank", "R"),
		country("Small", "R", withPopulation(10)),
		country("Large", "R", withPopulation(1000)),
	}
	rows := ListCountries(all, ListOptions{Sort: SortPopulation})
	assert.Equal(t, "Large", rows[0].Country)
	assert.Equal(t, "Blank", rows[2].Country)
}

func TestCompare(t *testing.T) {
	all := world()
	cmp, err := Compare(byName(all, "United States", "Canada"), all)
	require.NoError(t, err)

	require.Len(t, cmp.Countries, 2)
	require.Len(t, cmp.Profiles, 2)
	rows := map[string]CompareRow{}
	for _, r := range cmp.Rows {
		rows[r.Key] = r
	}

	assert.Equal(t, 0, rows["economy.gdp_ppp_billions"].Best)
	assert.Equal(t, "$14.3T", rows["economy.gdp_ppp_billions"].Values[0].Display)
	assert.Equal(t, 0, rows["economy.inflation_pct"].Best)
	assert.Equal(t, 1, rows["economy.unemployment_pct"].Best)
	assert.Equal(t, -1, rows["demographics.population"].Best)
	assert.Equal(t, -1, rows["demographics.life_expectancy"].Best)
	assert.Equal(t, "N/A", rows["demographics.life_expectancy"].Values[1].Display)
}

func TestCompareLimits(t *testing.T) {
	all := world()

	_, err := Compare(nil, all)
	assert.ErrorIs(t, err, ErrCompareEmpty)

	_, err = Compare(all[:5], all)
	assert.ErrorIs(t, err, ErrCompareTooMany)

	_, err = Compare(all[:MaxCompare], all)
	assert.NoError(t, err)
}

func TestRegionalStats(t *testing.T) {
	stats := ComputeRegionalStats(world())
	require.Len(t, stats, 3)

	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, stats[i-1].AvgRiskScore, stats[i].AvgRiskScore)
	}

	var na RegionalStats
	for _, s := range stats {
		if s.Region == "North America" {
			na = s
		}
	}
	assert.Equal(t, 3, na.CountryCount)
	assert.Equal(t, "United States", na.TopEconomy)
	assert.InDelta(t, 5670.667, na.AvgGDP, 0.001)
	assert.InDelta(t, 456461460.0, na.TotalPopulation, 0.5)
}

func TestRegionalStatsAreDeterministic(t *testing.T) {
	all := randomWorld(7, 80)
	want := ComputeRegionalStats(all)

	shuffled := append([]*models.Country(nil), all...)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	got := ComputeRegionalStats(shuffled)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Region, got[i].Region)
		assert.Equal(t, want[i].AvgRiskScore, got[i].AvgRiskScore)
		assert.Equal(t, want[i].TopEconomy, got[i].TopEconomy)
		assert.Equal(t, want[i].CountryCount, got[i].CountryCount)
		assert.InDelta(t, want[i].AvgGDP, got[i].AvgGDP, 1e-6)
		assert.InDelta(t, want[i].TotalPopulation, got[i].TotalPopulation, 1e-3)
	}
}

func TestRegionSummary(t *testing.T) {
	all := world()

	region, ok := FindRegion(all, "north-america")
	require.True(t, ok)
	assert.Equal(t, "North America", region)
	_, ok = FindRegion(all, "Atlantis")
	assert.False(t, ok)

	s := SummarizeRegion(all, region, SortPopulation)
	assert.Equal(t, 3, s.CountryCount)
	assert.Equal(t, []string{"United States", "Mexico", "Canada"},
		[]string{s.Countries[0].Country, s.Countries[1].Country, s.Countries[2].Country})
	assert.InDelta(t, 17012.0, s.TotalGDP, 1e-9)
	assert.InDelta(t, -3.9, s.AvgGrowth, 1e-9)
	assert.NotEmpty(t, s.Insights)

	alpha := SummarizeRegion(all, region, "")
	assert.Equal(t, "Canada", alpha.Countries[0].Country)
}

func TestInsights(t *testing.T) {
	all := world()
	us := byName(all, "United States")[0]

	insights := CountryInsights(us, all)
	require.GreaterOrEqual(t, len(insights), 5)
	assert.LessOrEqual(t, len(insights), 6)

	ids := make([]string, 5)
	for i := range ids {
		ids[i] = insights[i].ID
	}
	assert.Equal(t, []string{"gdp-regional-leader", "negative-growth", "high-military", "trade-deficit", "major-exporter"}, ids)
	assert.Equal(t, "#1 of 3", insights[0].Value)
	assert.Equal(t, "Ranks #2 globally in exports", insights[4].Description)
}

func TestInsightsAreCapped(t *testing.T) {
	rich := country("Rich", "R",
		withGDP(5000), withGrowth(12), withMilitary(9), withTrade(900, 100),
		withDemographics(-1, 47))
	rich.Economy.GDPPerCapita = models.F(60000)
	other := country("Other", "R", withGDP(100), withGrowth(1), withMilitary(1))

	insights := CountryInsights(rich, []*models.Country{rich, other})
	assert.Len(t, insights, 6)
	assert.Equal(t, "gdp-regional-leader", insights[0].ID)
}

func TestRegionalInsights(t *testing.T) {
	insights := RegionalInsights(world(), "North America")
	require.Len(t, insights, 3)

	assert.Equal(t, "dominant-economy", insights[0].ID)
	assert.Equal(t, "United States accounts for 84% of regional GDP", insights[0].Description)
	assert.Equal(t, "low-regional-growth", insights[1].ID)
	assert.Equal(t, "population-share", insights[2].ID)
	assert.Equal(t, "63.8%", insights[2].Value)

	assert.Empty(t, RegionalInsights(world(), "Atlantis"))
}
