package analysis

import (
	"fmt"
	"sort"
	"strings"

	"factbook-dashboard/backend/models"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists every severity, most severe first.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities: critical 0 .. low 3. Unknown values sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// AtLeast reports whether s is as severe as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() <= min.Rank()
}

func (s Severity) Color() string {
	switch s {
	case SeverityCritical:
		return "#dc2626"
	case SeverityHigh:
		return "#f97316"
	case SeverityMedium:
		return "#eab308"
	case SeverityLow:
		return "#84cc16"
	}
	return unknownColor
}

func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if sev.Rank() > 3 {
		return "", false
	}
	return sev, true
}

type AnomalyType string

const (
	TypeMilitarization   AnomalyType = "militarization"
	TypeEconomicCollapse AnomalyType = "economic_collapse"
	TypeDemographicCliff AnomalyType = "demographic_cliff"
	TypeTradeImbalance   AnomalyType = "trade_imbalance"
	TypeDebtCrisis       AnomalyType = "debt_crisis"
	TypeHyperinflation   AnomalyType = "hyperinflation"
)

// AnomalyTypes in rule evaluation order.
var AnomalyTypes = []AnomalyType{
	TypeMilitarization,
	TypeEconomicCollapse,
	TypeDemographicCliff,
	TypeTradeImbalance,
	TypeDebtCrisis,
	TypeHyperinflation,
}

func ParseAnomalyType(s string) (AnomalyType, bool) {
	t := AnomalyType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AnomalyTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

type Anomaly struct {
	ID          string      `json:"id"`
	Type        AnomalyType `json:"type"`
	Severity    Severity    `json:"severity"`
	Country     string      `json:"country"`
	Region      string      `json:"region"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Metric      string      `json:"metric"`
	Value       string      `json:"value"`
	Threshold   string      `json:"threshold"`
	Icon        string      `json:"icon"`
}

// regionBaseline holds the regional aggregates the rules compare against.
// Values count when present, zero included.
type regionBaseline struct {
	avgMilitary  float64
	stdMilitary  float64
	avgGrowth    float64
	avgInflation float64
	avgDebt      float64
}

func computeBaseline(members []*models.Country) regionBaseline {
	var b regionBaseline
	b.avgMilitary, b.stdMilitary = Stats(collect(members, getMilitary, false))
	b.avgGrowth = Mean(collect(members, getGrowth, false))
	b.avgInflation = Mean(collect(members, getInflation, false))
	b.avgDebt = Mean(collect(members, getDebt, false))
	return b
}

type anomalyRule func(c *models.Country, b regionBaseline) *Anomaly

var anomalyRules = []anomalyRule{
	checkMilitarization,
	checkEconomicCollapse,
	checkDemographicCliff,
	checkTradeImbalance,
	checkDebtCrisis,
	checkHyperinflation,
}

func newAnomaly(c *models.Country, t AnomalyType, idPrefix string, sev Severity) *Anomaly {
	return &Anomaly{
		ID:       idPrefix + "-" + c.Country,
		Type:     t,
		Severity: sev,
		Country:  c.Country,
		Region:   c.Region,
	}
}

func checkMilitarization(c *models.Country, b regionBaseline) *Anomaly {
	mil := c.Military.ExpenditurePctGDP
	if mil == nil {
		return nil
	}
	z := ZScore(*mil, b.avgMilitary, b.stdMilitary)
	if z <= 2 || *mil <= 5 {
		return nil
	}

	sev := SeverityMedium
	switch {
	case z > 3:
		sev = SeverityCritical
	case z > 2.5:
		sev = SeverityHigh
	}
	a := newAnomaly(c, TypeMilitarization, "militarization", sev)
	a.Title = "Rapid Militarization Alert"
	a.Description = "Military spending significantly exceeds regional norms, indicating potential security concerns or regional tensions."
	a.Metric = "Military % GDP"
	a.Value = pct(*mil, 1)
	a.Threshold = "Regional avg: " + pct(b.avgMilitary, 1)
	a.Icon = "⚔️"
	return a
}

func checkEconomicCollapse(c *models.Country, _ regionBaseline) *Anomaly {
	growth := c.Economy.GDPGrowthPct
	if growth == nil || *growth >= -5 {
		return nil
	}
	inflation := models.Val(c.Economy.InflationPct)
	unemployment := models.Val(c.Economy.UnemploymentPct)

	sev := SeverityMedium
	switch {
	case *growth < -10:
		sev = SeverityCritical
	case *growth < -7:
		sev = SeverityHigh
	}
	if inflation > 20 || unemployment > 20 {
		sev = SeverityCritical
	}

	a := newAnomaly(c, TypeEconomicCollapse, "economic-collapse", sev)
	a.Title = "Economic Collapse Warning"
	a.Description = "Severe economic contraction detected"
	if inflation > 10 {
		a.Description += " combined with high inflation"
	}
	a.Description += "."
	a.Metric = "GDP Growth"
	a.Value = pct(*growth, 1)
	a.Threshold = "Alert threshold: < -5%"
	a.Icon = "📉"
	return a
}

func checkDemographicCliff(c *models.Country, _ regionBaseline) *Anomaly {
	growth, age := c.Demographics.PopulationGrowthPct, c.Demographics.MedianAge
	if growth == nil || age == nil || *growth >= -0.5 || *age <= 40 {
		return nil
	}

	sev := SeverityMedium
	if *growth < -1 {
		sev = SeverityHigh
	}
	a := newAnomaly(c, TypeDemographicCliff, "demographic-cliff", sev)
	a.Title = "Demographic Cliff Warning"
	a.Description = "Population declining with aging demographics, signaling long-term workforce and social security challenges."
	a.Metric = "Population Growth"
	a.Value = pct(*growth, 2)
	a.Threshold = fmt.Sprintf("Median age: %.1f years", *age)
	a.Icon = "👴"
	return a
}

func checkTradeImbalance(c *models.Country, _ regionBaseline) *Anomaly {
	e := c.Economy
	if !models.Truthy(e.ExportsBillions) || !models.Truthy(e.ImportsBillions) || !models.Truthy(e.GDPPPPBillions) {
		return nil
	}
	deficit := *e.ImportsBillions - *e.ExportsBillions
	ratio := deficit / *e.GDPPPPBillions
	if ratio <= 0.15 || deficit <= 50 {
		return nil
	}

	sev := SeverityMedium
	if ratio > 0.25 {
		sev = SeverityHigh
	}
	a := newAnomaly(c, TypeTradeImbalance, "trade-imbalance", sev)
	a.Title = "Severe Trade Imbalance"
	a.Description = "Large persistent trade deficit may indicate structural economic vulnerabilities."
	a.Metric = "Trade Deficit"
	a.Value = fmt.Sprintf("-$%.0fB", deficit)
	a.Threshold = fmt.Sprintf("%.0f%% of GDP", ratio*100)
	a.Icon = "⚖️"
	return a
}

func checkDebtCrisis(c *models.Country, _ regionBaseline) *Anomaly {
	e := c.Economy
	if !models.Truthy(e.ExternalDebtBillions) || !models.Truthy(e.GDPPPPBillions) {
		return nil
	}
	ratio := *e.ExternalDebtBillions / *e.GDPPPPBillions
	if ratio <= 1.5 {
		return nil
	}

	sev := SeverityMedium
	switch {
	case ratio > 3:
		sev = SeverityCritical
	case ratio > 2:
		sev = SeverityHigh
	}
	a := newAnomaly(c, TypeDebtCrisis, "debt-crisis", sev)
	a.Title = "Elevated Debt Levels"
	a.Description = "External debt significantly exceeds GDP, indicating potential solvency risks."
	a.Metric = "Debt/GDP Ratio"
	a.Value = fmt.Sprintf("%.0f%%", ratio*100)
	a.Threshold = "Alert threshold: > 150%"
	a.Icon = "💳"
	return a
}

func checkHyperinflation(c *models.Country, _ regionBaseline) *Anomaly {
	inflation := c.Economy.InflationPct
	if inflation == nil || *inflation <= 25 {
		return nil
	}

	sev := SeverityMedium
	switch {
	case *inflation > 100:
		sev = SeverityCritical
	case *inflation > 50:
		sev = SeverityHigh
	}
	a := newAnomaly(c, TypeHyperinflation, "hyperinflation", sev)
	a.Title = "Hyperinflation Alert"
	a.Description = "Extremely high inflation eroding purchasing power and economic stability."
	a.Metric = "Inflation Rate"
	a.Value = pct(*inflation, 1)
	a.Threshold = "Alert threshold: > 25%"
	a.Icon = "🔥"
	return a
}

// DetectAnomalies runs every rule against every country and returns the hits
// ordered critical first. Within a severity, input order is kept.
func DetectAnomalies(countries []*models.Country) []Anomaly {
	groups, _ := groupByRegion(countries)
	baselines := make(map[string]regionBaseline, len(groups))
	for region, members := range groups {
		baselines[region] = computeBaseline(members)
	}

	anomalies := []Anomaly{}
	for _, c := range countries {
		b := baselines[c.Region]
		for _, rule := range anomalyRules {
			if a := rule(c, b); a != nil {
				anomalies = append(anomalies, *a)
			}
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Severity.Rank() < anomalies[j].Severity.Rank()
	})
	return anomalies
}

// AnomaliesByType groups anomalies; every known type is present, possibly empty.
func AnomaliesByType(anomalies []Anomaly) map[AnomalyType][]Anomaly {
	out := make(map[AnomalyType][]Anomaly, len(AnomalyTypes))
	for _, t := range AnomalyTypes {
		out[t] = []Anomaly{}
	}
	for _, a := range anomalies {
		out[a.Type] = append(out[a.Type], a)
	}
	return out
}

// AnomaliesBySeverity groups anomalies; every severity is present, possibly empty.
func AnomaliesBySeverity(anomalies []Anomaly) map[Severity][]Anomaly {
	out := make(map[Severity][]Anomaly, len(Severities))
	for _, s := range Severities {
		out[s] = []Anomaly{}
	}
	for _, a := range anomalies {
		out[a.Severity] = append(out[a.Severity], a)
	}
	return out
}

type AnomalyStats struct {
	Total             int                 `json:"total"`
	BySeverity        map[Severity]int    `json:"bySeverity"`
	ByType            map[AnomalyType]int `json:"byType"`
	AffectedCountries int                 `json:"affectedCountries"`
	AffectedRegions   int                 `json:"affectedRegions"`
}

func ComputeAnomalyStats(anomalies []Anomaly) AnomalyStats {
	stats := AnomalyStats{
		Total:      len(anomalies),
		BySeverity: make(map[Severity]int, len(Severities)),
		ByType:     make(map[AnomalyType]int, len(AnomalyTypes)),
	}
	for _, s := range Severities {
		stats.BySeverity[s] = 0
	}
	for _, t := range AnomalyTypes {
		stats.ByType[t] = 0
	}

	countries := make(map[string]struct{})
	regions := make(map[string]struct{})
	for _, a := range anomalies {
		stats.BySeverity[a.Severity]++
		stats.ByType[a.Type]++
		countries[a.Country] = struct{}{}
		regions[a.Region] = struct{}{}
	}
	stats.AffectedCountries = len(countries)
	stats.AffectedRegions = len(regions)
	return stats
}

// AnomalyFilter selects anomalies for the alerts view. Zero fields match all.
type AnomalyFilter struct {
	Severity Severity
	Type     AnomalyType
	Region   string
	Country  string
}

func FilterAnomalies(anomalies []Anomaly, f AnomalyFilter) []Anomaly {
	out := []Anomaly{}
	for _, a := range anomalies {
		if f.Severity != "" && a.Severity != f.Severity {
			continue
		}
		if f.Type != "" && a.Type != f.Type {
			continue
		}
		if f.Region != "" && !strings.EqualFold(a.Region, f.Region) {
			continue
		}
		if f.Country != "" && !strings.EqualFold(a.Country, f.Country) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Unknown-band colour shared by the globe and severity lookups.
const unknownColor = "#333333"
