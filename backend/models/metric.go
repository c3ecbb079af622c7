package models

import "sort"

// MetricKind drives how a metric value is rendered.
type MetricKind string

const (
	KindNumber   MetricKind = "number"
	KindPercent  MetricKind = "percent"
	KindBillions MetricKind = "billions"
	KindYears    MetricKind = "years"
	KindDollars  MetricKind = "dollars"
)

// Metric describes one numeric field of a Country.
type Metric struct {
	Key     string     `json:"key"` // "<section>.<field>"
	Section string     `json:"section"`
	Field   string     `json:"field"`
	Label   string     `json:"label"`
	Kind    MetricKind `json:"kind"`
	// Better is +1 when higher values are preferable, -1 when lower are, 0 when neither.
	Better int `json:"better"`

	get func(*Country) *float64
}

// Value returns the metric value for c, or nil when absent.
func (m Metric) Value(c *Country) *float64 {
	if c == nil || m.get == nil {
		return nil
	}
	return m.get(c)
}

var metrics = []Metric{
	{Key: "demographics.population", Section: "demographics", Field: "population", Label: "Population", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Demographics.Population }},
	{Key: "demographics.population_growth_pct", Section: "demographics", Field: "population_growth_pct", Label: "Population Growth", Kind: KindPercent,
		get: func(c *Country) *float64 { return c.Demographics.PopulationGrowthPct }},
	{Key: "demographics.life_expectancy", Section: "demographics", Field: "life_expectancy", Label: "Life Expectancy", Kind: KindYears, Better: 1,
		get: func(c *Country) *float64 { return c.Demographics.LifeExpectancy }},
	{Key: "demographics.median_age", Section: "demographics", Field: "median_age", Label: "Median Age", Kind: KindYears,
		get: func(c *Country) *float64 { return c.Demographics.MedianAge }},
	{Key: "demographics.birth_rate", Section: "demographics", Field: "birth_rate", Label: "Birth Rate", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Demographics.BirthRate }},
	{Key: "demographics.death_rate", Section: "demographics", Field: "death_rate", Label: "Death Rate", Kind: KindNumber, Better: -1,
		get: func(c *Country) *float64 { return c.Demographics.DeathRate }},
	{Key: "demographics.urbanization_pct", Section: "demographics", Field: "urbanization_pct", Label: "Urbanization", Kind: KindPercent,
		get: func(c *Country) *float64 { return c.Demographics.UrbanizationPct }},

	{Key: "economy.gdp_ppp_billions", Section: "economy", Field: "gdp_ppp_billions", Label: "GDP (PPP)", Kind: KindBillions, Better: 1,
		get: func(c *Country) *float64 { return c.Economy.GDPPPPBillions }},
	{Key: "economy.gdp_growth_pct", Section: "economy", Field: "gdp_growth_pct", Label: "GDP Growth", Kind: KindPercent, Better: 1,
		get: func(c *Country) *float64 { return c.Economy.GDPGrowthPct }},
	{Key: "economy.gdp_per_capita", Section: "economy", Field: "gdp_per_capita", Label: "GDP per Capita", Kind: KindDollars, Better: 1,
		get: func(c *Country) *float64 { return c.Economy.GDPPerCapita }},
	{Key: "economy.inflation_pct", Section: "economy", Field: "inflation_pct", Label: "Inflation", Kind: KindPercent, Better: -1,
		get: func(c *Country) *float64 { return c.Economy.InflationPct }},
	{Key: "economy.unemployment_pct", Section: "economy", Field: "unemployment_pct", Label: "Unemployment", Kind: KindPercent, Better: -1,
		get: func(c *Country) *float64 { return c.Economy.UnemploymentPct }},
	{Key: "economy.poverty_pct", Section: "economy", Field: "poverty_pct", Label: "Below Poverty Line", Kind: KindPercent, Better: -1,
		get: func(c *Country) *float64 { return c.Economy.PovertyPct }},
	{Key: "economy.exports_billions", Section: "economy", Field: "exports_billions", Label: "Exports", Kind: KindBillions, Better: 1,
		get: func(c *Country) *float64 { return c.Economy.ExportsBillions }},
	{Key: "economy.imports_billions", Section: "economy", Field: "imports_billions", Label: "Imports", Kind: KindBillions,
		get: func(c *Country) *float64 { return c.Economy.ImportsBillions }},
	{Key: "economy.external_debt_billions", Section: "economy", Field: "external_debt_billions", Label: "External Debt", Kind: KindBillions, Better: -1,
		get: func(c *Country) *float64 { return c.Economy.ExternalDebtBillions }},
	{Key: "economy.oil_production_bbl_day", Section: "economy", Field: "oil_production_bbl_day", Label: "Oil Production (bbl/day)", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Economy.OilProductionBblDay }},
	{Key: "economy.oil_consumption_bbl_day", Section: "economy", Field: "oil_consumption_bbl_day", Label: "Oil Consumption (bbl/day)", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Economy.OilConsumptionBblDay }},
	{Key: "economy.gas_production_cu_m", Section: "economy", Field: "gas_production_cu_m", Label: "Natural Gas Production (cu m)", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Economy.GasProductionCuM }},
	{Key: "economy.electricity_kwh", Section: "economy", Field: "electricity_kwh", Label: "Electricity Production (kWh)", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Economy.ElectricityKWh }},
	{Key: "economy.current_account_billions", Section: "economy", Field: "current_account_billions", Label: "Current Account", Kind: KindBillions, Better: 1,
		get: func(c *Country) *float64 { return c.Economy.CurrentAccountBillions }},

	{Key: "military.expenditure_pct_gdp", Section: "military", Field: "expenditure_pct_gdp", Label: "Military % GDP", Kind: KindPercent,
		get: func(c *Country) *float64 { return c.Military.ExpenditurePctGDP }},
	{Key: "military.manpower_available", Section: "military", Field: "manpower_available", Label: "Military Manpower", Kind: KindNumber,
		get: func(c *Country) *float64 { return c.Military.ManpowerAvailable }},
}

var (
	metricsByKey   = map[string]Metric{}
	metricsByField = map[string]Metric{}
)

func init() {
	for _, m := range metrics {
		metricsByKey[m.Key] = m
		metricsByField[m.Field] = m
	}
}

// Metrics returns every registered metric in declaration order.
func Metrics() []Metric {
	out := make([]Metric, len(metrics))
	copy(out, metrics)
	return out
}

// LookupMetric resolves "section.field" or a bare field name.
func LookupMetric(name string) (Metric, bool) {
	if m, ok := metricsByKey[name]; ok {
		return m, true
	}
	m, ok := metricsByField[name]
	return m, ok
}

// MustMetric is LookupMetric for package-level tables; it panics on unknown names.
func MustMetric(name string) Metric {
	m, ok := LookupMetric(name)
	if !ok {
		panic("models: unknown metric " + name)
	}
	return m
}

// MetricKeys returns the sorted list of metric keys.
func MetricKeys() []string {
	keys := make([]string, 0, len(metrics))
	for _, m := range metrics {
		keys = append(keys, m.Key)
	}
	sort.Strings(keys)
	return keys
}
