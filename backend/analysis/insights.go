package analysis

import (
	"fmt"
	"math"
	"sort"

	"factbook-dashboard/backend/models"
)

const maxCountryInsights = 6

type InsightKind string

const (
	InsightPositive InsightKind = "positive"
	InsightNegative InsightKind = "negative"
	InsightNeutral  InsightKind = "neutral"
	InsightWarning  InsightKind = "warning"
)

type Insight struct {
	ID          string      `json:"id"`
	Type        InsightKind `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Metric      string      `json:"metric,omitempty"`
	Value       string      `json:"value,omitempty"`
}

func newInsight(id string, kind InsightKind, icon, title, description, metric, value string) Insight {
	return Insight{
		ID:          id,
		Type:        kind,
		Title:       title,
		Description: description,
		Icon:        icon,
		Metric:      metric,
		Value:       value,
	}
}

// rankBy returns the 1-based position of target among countries with a
// non-zero value, largest first, or 0 when it is not ranked.
func rankBy(countries []*models.Country, get func(*models.Country) *float64, target *models.Country) (rank, total int) {
	ranked := make([]*models.Country, 0, len(countries))
	for _, c := range countries {
		if models.Truthy(get(c)) {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *get(ranked[i]) > *get(ranked[j])
	})
	for i, c := range ranked {
		if c.Country == target.Country {
			return i + 1, len(ranked)
		}
	}
	return 0, len(ranked)
}

// CountryInsights returns up to six observations about c, in rule order.
func CountryInsights(c *models.Country, all []*models.Country) []Insight {
	return countryInsights(c, all, RiskProfileFor(c, all))
}

func countryInsights(c *models.Country, all []*models.Country, profile RiskProfile) []Insight {
	insights := []Insight{}
	regional := inRegion(all, c.Region)

	if rank, total := rankBy(regional, getGDP, c); rank == 1 && total > 1 {
		insights = append(insights, newInsight("gdp-regional-leader", InsightPositive, "🏆", "Regional Economic Leader",
			fmt.Sprintf("Largest economy in %s by GDP (PPP)", c.Region),
			"GDP Rank", fmt.Sprintf("#1 of %d", total)))
	} else if rank > 0 && rank <= 3 {
		insights = append(insights, newInsight("gdp-regional-top", InsightPositive, "📊", "Top Regional Economy",
			fmt.Sprintf("Ranks #%d in %s by GDP", rank, c.Region),
			"GDP Rank", fmt.Sprintf("#%d of %d", rank, total)))
	}

	if growth := c.Economy.GDPGrowthPct; growth != nil {
		avg := Mean(collect(regional, getGrowth, false))
		switch {
		case *growth > avg*1.5 && *growth > 5:
			insights = append(insights, newInsight("high-growth", InsightPositive, "🚀", "Rapid Economic Growth",
				fmt.Sprintf("GDP growth of %.1f%% significantly exceeds regional average of %.1f%%", *growth, avg),
				"Growth Rate", fmt.Sprintf("+%.1f%%", *growth)))
		case *growth < 0:
			insights = append(insights, newInsight("negative-growth", InsightWarning, "📉", "Economic Contraction",
				fmt.Sprintf("Economy is contracting at %.1f%% annually", math.Abs(*growth)),
				"Growth Rate", pct(*growth, 1)))
		}
	}

	if mil := c.Military.ExpenditurePctGDP; mil != nil {
		avg := Mean(collect(regional, getMilitary, false))
		switch {
		case *mil > avg*2:
			insights = append(insights, newInsight("high-military", InsightWarning, "⚔️", "Elevated Military Spending",
				fmt.Sprintf("Military expenditure is %.1fx the regional average", *mil/avg),
				"Military % GDP", pct(*mil, 1)))
		case *mil < 1 && avg > 2:
			insights = append(insights, newInsight("low-military", InsightNeutral, "🕊️", "Minimal Military Investment",
				"Military spending well below regional norms, possible reliance on alliances",
				"Military % GDP", pct(*mil, 1)))
		}
	}

	if e := c.Economy; models.Truthy(e.ExportsBillions) && models.Truthy(e.ImportsBillions) {
		balance := *e.ExportsBillions - *e.ImportsBillions
		switch {
		case balance > 50:
			insights = append(insights, newInsight("trade-surplus", InsightPositive, "📦", "Strong Trade Surplus",
				fmt.Sprintf("Exports exceed imports by $%.0fB annually", balance),
				"Trade Balance", fmt.Sprintf("+$%.0fB", balance)))
		case balance < -100:
			insights = append(insights, newInsight("trade-deficit", InsightWarning, "⚠️", "Significant Trade Deficit",
				fmt.Sprintf("Importing $%.0fB more than exporting", math.Abs(balance)),
				"Trade Balance", fmt.Sprintf("-$%.0fB", math.Abs(balance))))
		}

		if rank, _ := rankBy(all, getExports, c); rank > 0 && rank <= 10 {
			insights = append(insights, newInsight("major-exporter", InsightPositive, "🌐", "Global Export Power",
				fmt.Sprintf("Ranks #%d globally in exports", rank),
				"Exports", fmt.Sprintf("$%.0fB", *e.ExportsBillions)))
		}
	}

	if age := c.Demographics.MedianAge; age != nil {
		switch {
		case *age > 45:
			insights = append(insights, newInsight("aging-population", InsightWarning, "👴", "Aging Population",
				fmt.Sprintf("High median age of %.1f years indicates demographic challenges", *age),
				"Median Age", fmt.Sprintf("%.1f years", *age)))
		case *age < 20:
			insights = append(insights, newInsight("young-population", InsightNeutral, "👶", "Very Young Population",
				fmt.Sprintf("Median age of %.1f years suggests high youth dependency", *age),
				"Median Age", fmt.Sprintf("%.1f years", *age)))
		}
	}

	if g := c.Demographics.PopulationGrowthPct; g != nil && *g < -0.5 {
		insights = append(insights, newInsight("population-decline", InsightWarning, "📉", "Population Decline",
			fmt.Sprintf("Population shrinking at %.2f%% annually", math.Abs(*g)),
			"Pop. Growth", pct(*g, 2)))
	}

	switch overall := profile.Score.Overall; {
	case overall >= 75:
		insights = append(insights, newInsight("stability-high", InsightPositive, "✅", "High Stability Score",
			"Strong performance across economic, political, and demographic indicators",
			"Stability Index", fmt.Sprintf("%d/100", overall)))
	case overall < 40:
		insights = append(insights, newInsight("stability-low", InsightWarning, "⚠️", "Elevated Risk Profile",
			"Multiple indicators suggest heightened instability risks",
			"Stability Index", fmt.Sprintf("%d/100", overall)))
	}

	if pc := c.Economy.GDPPerCapita; pc != nil {
		switch {
		case *pc > 50000:
			insights = append(insights, newInsight("high-income", InsightPositive, "💎", "High-Income Economy",
				fmt.Sprintf("GDP per capita of $%s indicates advanced economy", Grouped(*pc)),
				"GDP/Capita", "$"+Grouped(*pc)))
		case *pc < 2000:
			insights = append(insights, newInsight("low-income", InsightNeutral, "🌱", "Developing Economy",
				fmt.Sprintf("GDP per capita of $%s suggests development challenges", Grouped(*pc)),
				"GDP/Capita", "$"+Grouped(*pc)))
		}
	}

	if len(insights) > maxCountryInsights {
		insights = insights[:maxCountryInsights]
	}
	return insights
}

// RegionalInsights summarises one region. Unknown regions yield an empty list.
func RegionalInsights(all []*models.Country, region string) []Insight {
	insights := []Insight{}
	members := inRegion(all, region)
	if len(members) == 0 {
		return insights
	}

	var totalPop, totalGDP, globalPop float64
	var top *models.Country
	for _, c := range members {
		totalPop += models.Val(c.Demographics.Population)
		totalGDP += models.Val(c.Economy.GDPPPPBillions)
		if top == nil || models.Val(c.Economy.GDPPPPBillions) > models.Val(top.Economy.GDPPPPBillions) {
			top = c
		}
	}
	for _, c := range all {
		globalPop += models.Val(c.Demographics.Population)
	}
	avgGrowth := Mean(collect(members, getGrowth, false))

	if models.Truthy(top.Economy.GDPPPPBillions) {
		dominance := *top.Economy.GDPPPPBillions / totalGDP * 100
		if dominance > 50 {
			insights = append(insights, newInsight("dominant-economy", InsightNeutral, "🏛️", "Concentrated Economic Power",
				fmt.Sprintf("%s accounts for %.0f%% of regional GDP", top.Country, dominance),
				"Share of GDP", fmt.Sprintf("%.0f%%", dominance)))
		}
	}

	switch {
	case avgGrowth > 5:
		insights = append(insights, newInsight("high-regional-growth", InsightPositive, "📈", "Dynamic Growth Region",
			fmt.Sprintf("Average GDP growth of %.1f%% indicates economic dynamism", avgGrowth),
			"Avg Growth", fmt.Sprintf("+%.1f%%", avgGrowth)))
	case avgGrowth < 1:
		insights = append(insights, newInsight("low-regional-growth", InsightWarning, "📊", "Sluggish Regional Growth",
			fmt.Sprintf("Average GDP growth of %.1f%% suggests economic challenges", avgGrowth),
			"Avg Growth", pct(avgGrowth, 1)))
	}

	var share float64
	if globalPop > 0 {
		share = totalPop / globalPop * 100
	}
	insights = append(insights, newInsight("population-share", InsightNeutral, "👥", "Population Demographics",
		fmt.Sprintf("%d countries with %.1f%% of world population", len(members), share),
		"World Share", pct(share, 1)))
	return insights
}
