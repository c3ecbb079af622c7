package models

import (
	"regexp"
	"strings"
)

// Country is one Factbook record as extracted into data/<year>/<slug>.json.
// Numeric fields are pointers: a missing value is not the same as zero.
type Country struct {
	Country      string       `json:"country"`
	Region       string       `json:"region"`
	Year         int          `json:"year"`
	Demographics Demographics `json:"demographics"`
	Economy      Economy      `json:"economy"`
	Military     Military     `json:"military"`
	Political    Political    `json:"political"`
}

type Demographics struct {
	Population          *float64 `json:"population,omitempty"`
	PopulationGrowthPct *float64 `json:"population_growth_pct,omitempty"`
	LifeExpectancy      *float64 `json:"life_expectancy,omitempty"`
	MedianAge           *float64 `json:"median_age,omitempty"`
	BirthRate           *float64 `json:"birth_rate,omitempty"`
	DeathRate           *float64 `json:"death_rate,omitempty"`
	UrbanizationPct     *float64 `json:"urbanization_pct,omitempty"`
}

type Economy struct {
	GDPPPPBillions         *float64 `json:"gdp_ppp_billions,omitempty"`
	GDPGrowthPct           *float64 `json:"gdp_growth_pct,omitempty"`
	GDPPerCapita           *float64 `json:"gdp_per_capita,omitempty"`
	InflationPct           *float64 `json:"inflation_pct,omitempty"`
	UnemploymentPct        *float64 `json:"unemployment_pct,omitempty"`
	PovertyPct             *float64 `json:"poverty_pct,omitempty"`
	ExportsBillions        *float64 `json:"exports_billions,omitempty"`
	ImportsBillions        *float64 `json:"imports_billions,omitempty"`
	ExternalDebtBillions   *float64 `json:"external_debt_billions,omitempty"`
	OilProductionBblDay    *float64 `json:"oil_production_bbl_day,omitempty"`
	OilConsumptionBblDay   *float64 `json:"oil_consumption_bbl_day,omitempty"`
	GasProductionCuM       *float64 `json:"gas_production_cu_m,omitempty"`
	ElectricityKWh         *float64 `json:"electricity_kwh,omitempty"`
	CurrentAccountBillions *float64 `json:"current_account_billions,omitempty"`
}

type Military struct {
	ExpenditurePctGDP *float64 `json:"expenditure_pct_gdp,omitempty"`
	ManpowerAvailable *float64 `json:"manpower_available,omitempty"`
}

type Political struct {
	ChiefOfState     *string `json:"chief_of_state,omitempty"`
	HeadOfGovernment *string `json:"head_of_government,omitempty"`
	LastElection     *string `json:"last_election,omitempty"`
}

// Index mirrors data/<year>/_index.json
type Index struct {
	Year           int          `json:"year"`
	TotalCountries int          `json:"total_countries"`
	Countries      []IndexEntry `json:"countries"`
}

type IndexEntry struct {
	Name   string `json:"name"`
	Region string `json:"region"`
	File   string `json:"file"`
}

// Slug returns the file stem of the entry ("united_states.json" -> "united_states").
func (e IndexEntry) Slug() string {
	return strings.TrimSuffix(e.File, ".json")
}

// Slug returns the data file stem for this record.
func (c *Country) Slug() string {
	return Slugify(c.Country)
}

var (
	slugStrip = regexp.MustCompile(`[^\w\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slugify converts a country name into its data file stem, the same way the
// extractor names files: lower-case, punctuation dropped, whitespace runs as "_".
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "")
	return slugSpace.ReplaceAllString(s, "_")
}

// F is a convenience for building optional numeric fields.
func F(v float64) *float64 { return &v }

// S is a convenience for building optional string fields.
func S(v string) *string { return &v }

// Val dereferences an optional number, returning 0 when absent.
func Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Truthy reports whether an optional number is present and non-zero.
func Truthy(p *float64) bool {
	return p != nil && *p != 0
}
