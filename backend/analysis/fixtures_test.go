package analysis

import (
	"math/rand"

	"factbook-dashboard/backend/models"
)

func country(name, region string, opts ...func(*models.Country)) *models.Country {
	c := &models.Country{Country: name, Region: region, Year: 2010}
	for _, o := range opts {
		o(c)
	}
	return c
}

func withGDP(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Economy.GDPPPPBillions = models.F(v) }
}

func withGrowth(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Economy.GDPGrowthPct = models.F(v) }
}

func withInflation(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Economy.InflationPct = models.F(v) }
}

func withUnemployment(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Economy.UnemploymentPct = models.F(v) }
}

func withTrade(exports, imports float64) func(*models.Country) {
	return func(c *models.Country) {
		c.Economy.ExportsBillions = models.F(exports)
		c.Economy.ImportsBillions = models.F(imports)
	}
}

func withDebt(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Economy.ExternalDebtBillions = models.F(v) }
}

func withMilitary(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Military.ExpenditurePctGDP = models.F(v) }
}

func withPopulation(v float64) func(*models.Country) {
	return func(c *models.Country) { c.Demographics.Population = models.F(v) }
}

func withDemographics(growth, medianAge float64) func(*models.Country) {
	return func(c *models.Country) {
		c.Demographics.PopulationGrowthPct = models.F(growth)
		c.Demographics.MedianAge = models.F(medianAge)
	}
}

func withLeaders(chief, head, election string) func(*models.Country) {
	return func(c *models.Country) {
		if chief != "" {
			c.Political.ChiefOfState = models.S(chief)
		}
		if head != "" {
			c.Political.HeadOfGovernment = models.S(head)
		}
		if election != "" {
			c.Political.LastElection = models.S(election)
		}
	}
}

// world is a small but varied data set touching every rule.
func world() []*models.Country {
	return []*models.Country{
		country("United States", "North America",
			withGDP(14260), withGrowth(-2.6), withInflation(-0.7), withUnemployment(9.3),
			withTrade(994.7, 1445), withDebt(13450), withMilitary(4.06),
			withPopulation(310232863), withDemographics(0.97, 36.8),
			withLeaders("President Barack OBAMA", "President Barack OBAMA", "4 November 2008")),
		country("Canada", "North America",
			withGDP(1287), withGrowth(-2.6), withInflation(0.1), withUnemployment(8.3),
			withTrade(323.4, 321.7), withDebt(833.8), withMilitary(1.1),
			withPopulation(33759742), withDemographics(0.8, 40.7)),
		country("Mexico", "North America",
			withGDP(1465), withGrowth(-6.5), withInflation(3.6), withUnemployment(5.5),
			withTrade(229.7, 234.6), withDebt(125.2), withMilitary(0.5),
			withPopulation(112468855), withDemographics(1.1, 26.7)),
		country("Zimbabwe", "Africa",
			withGDP(4.4), withGrowth(4.7), withInflation(156), withUnemployment(95),
			withTrade(1.6, 2.9), withDebt(5.8), withMilitary(3.8),
			withPopulation(11651858), withDemographics(0.4, 17.6)),
		country("Nigeria", "Africa",
			withGDP(357.2), withGrowth(2.9), withInflation(11.5), withUnemployment(4.9),
			withTrade(52.5, 42.1), withDebt(8.7), withMilitary(1.5),
			withPopulation(152217341), withDemographics(2.0, 19.2)),
		country("Eritrea", "Africa",
			withGDP(3.9), withGrowth(3.6), withInflation(22), withMilitary(20.9),
			withPopulation(5792984), withDemographics(2.5, 18)),
		country("Latvia", "Europe",
			withGDP(32.2), withGrowth(-18), withInflation(3.3), withUnemployment(17.1),
			withTrade(7.8, 10.1), withDebt(42.1), withMilitary(1.7),
			withPopulation(2217969), withDemographics(-0.6, 40.4)),
		country("Ireland", "Europe",
			withGDP(172.3), withGrowth(-7.1), withInflation(-1.7), withUnemployment(11.8),
			withTrade(115.5, 62.4), withDebt(2287), withMilitary(0.9),
			withPopulation(4622917), withDemographics(1.1, 34.8)),
		country("Germany", "Europe",
			withGDP(2812), withGrowth(-5), withInflation(0.1), withUnemployment(8.2),
			withTrade(1187, 938.3), withDebt(4713), withMilitary(1.5),
			withPopulation(82282988), withDemographics(-0.05, 44.3)),
	}
}

// randomWorld builds countries with extreme and missing values.
func randomWorld(seed int64, n int) []*models.Country {
	r := rand.New(rand.NewSource(seed))
	regions := []string{"Africa", "Europe", "Oceania", "South America"}
	maybe := func(lo, hi float64) *float64 {
		if r.Intn(5) == 0 {
			return nil
		}
		return models.F(lo + r.Float64()*(hi-lo))
	}

	out := make([]*models.Country, n)
	for i := range out {
		c := &models.Country{
			Country: "Country " + string(rune('A'+i%26)) + string(rune('a'+i/26)),
			Region:  regions[r.Intn(len(regions))],
			Year:    2010,
		}
		c.Economy.GDPPPPBillions = maybe(0, 20000)
		c.Economy.GDPGrowthPct = maybe(-40, 40)
		c.Economy.InflationPct = maybe(-10, 5000)
		c.Economy.UnemploymentPct = maybe(0, 100)
		c.Economy.ExportsBillions = maybe(0, 2000)
		c.Economy.ImportsBillions = maybe(0, 2000)
		c.Economy.ExternalDebtBillions = maybe(0, 20000)
		c.Military.ExpenditurePctGDP = maybe(0, 40)
		c.Demographics.Population = maybe(1000, 1.4e9)
		c.Demographics.PopulationGrowthPct = maybe(-5, 10)
		c.Demographics.MedianAge = maybe(10, 60)
		c.Demographics.LifeExpectancy = maybe(30, 95)
		if r.Intn(2) == 0 {
			c.Political.LastElection = models.S("1998")
		}
		out[i] = c
	}
	return out
}
