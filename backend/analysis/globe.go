package analysis

import (
	"math"
	"strings"

	"factbook-dashboard/backend/models"
)

// Globe colouring modes.
const (
	GlobeGDP        = "gdp"
	GlobePopulation = "population"
	GlobeMilitary   = "military"
	GlobeGrowth     = "growth"
	GlobeTrade      = "trade"
)

var GlobeMetrics = []string{GlobeGDP, GlobePopulation, GlobeMilitary, GlobeGrowth, GlobeTrade}

const minAltitude = 0.01

// band is one legend entry. Bands are checked in order; the first whose
// lower bound the value exceeds wins, the last one catches the rest.
type band struct {
	above float64
	label string
	color string
}

type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type globeScale struct {
	title string
	value func(*models.Country) *float64
	bands []band
}

var globeScales = map[string]globeScale{
	GlobeGDP: {
		title: "GDP (PPP)",
		value: getGDP,
		bands: []band{
			{10000, "> $10T", "#1e3a8a"},
			{3000, "$3T - $10T", "#1d4ed8"},
			{1000, "$1T - $3T", "#3b82f6"},
			{200, "$200B - $1T", "#60a5fa"},
			{math.Inf(-1), "< $200B", "#bfdbfe"},
		},
	},
	GlobePopulation: {
		title: "Population",
		value: getPopulation,
		bands: []band{
			{500e6, "> 500M", "#581c87"},
			{100e6, "100M - 500M", "#7e22ce"},
			{50e6, "50M - 100M", "#a855f7"},
			{10e6, "10M - 50M", "#c084fc"},
			{math.Inf(-1), "< 10M", "#e9d5ff"},
		},
	},
	GlobeMilitary: {
		title: "Military % GDP",
		value: getMilitary,
		bands: []band{
			{10, "> 10%", "#7f1d1d"},
			{5, "5% - 10%", "#dc2626"},
			{3, "3% - 5%", "#f97316"},
			{1, "1% - 3%", "#fbbf24"},
			{math.Inf(-1), "< 1%", "#fef3c7"},
		},
	},
	GlobeGrowth: {
		title: "GDP Growth",
		value: getGrowth,
		bands: []band{
			{10, "> 10%", "#14532d"},
			{5, "5% - 10%", "#16a34a"},
			{0, "0% - 5%", "#86efac"},
			{-5, "-5% - 0%", "#fca5a5"},
			{math.Inf(-1), "< -5%", "#b91c1c"},
		},
	},
	GlobeTrade: {
		title: "Trade Balance",
		value: tradeBalance,
		bands: []band{
			{100, "Large surplus (> $100B)", "#166534"},
			{10, "Surplus", "#4ade80"},
			{-10, "Balanced", "#e5e7eb"},
			{-100, "Deficit", "#f87171"},
			{math.Inf(-1), "Large deficit (< -$100B)", "#991b1b"},
		},
	},
}

// tradeBalance is exports minus imports when both are known.
func tradeBalance(c *models.Country) *float64 {
	e := c.Economy
	if e.ExportsBillions == nil || e.ImportsBillions == nil {
		return nil
	}
	return models.F(*e.ExportsBillions - *e.ImportsBillions)
}

func (s globeScale) classify(v *float64) (label, color string) {
	if v == nil {
		return notAvailable, unknownColor
	}
	for _, b := range s.bands {
		if *v > b.above {
			return b.label, b.color
		}
	}
	last := s.bands[len(s.bands)-1]
	return last.label, last.color
}

func (s globeScale) legend() []LegendEntry {
	out := make([]LegendEntry, 0, len(s.bands)+1)
	for _, b := range s.bands {
		out = append(out, LegendEntry{Label: b.label, Color: b.color})
	}
	return append(out, LegendEntry{Label: notAvailable, Color: unknownColor})
}

type GlobePoint struct {
	Country  string   `json:"country"`
	Slug     string   `json:"slug"`
	Region   string   `json:"region"`
	Value    *float64 `json:"value"`
	Color    string   `json:"color"`
	Band     string   `json:"band"`
	Altitude float64  `json:"altitude"`
	GDP      string   `json:"gdp"`
	Leader   string   `json:"leader,omitempty"`
	Viewer   bool     `json:"viewer,omitempty"`
}

type Globe struct {
	Metric string        `json:"metric"`
	Title  string        `json:"title"`
	Points []GlobePoint  `json:"points"`
	Legend []LegendEntry `json:"legend"`
	Viewer string        `json:"viewer,omitempty"`
}

// ParseGlobeMetric accepts a known metric name, case-insensitively.
func ParseGlobeMetric(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GlobeGDP, true
	}
	_, ok := globeScales[s]
	return s, ok
}

// Altitude raises polygons by economy size: sqrt(GDP in dollars) / 500000.
func Altitude(gdpBillions *float64) float64 {
	if !models.Truthy(gdpBillions) || *gdpBillions < 0 {
		return minAltitude
	}
	return math.Sqrt(*gdpBillions*1e9) / 500000
}

// BuildGlobe colours every country by metric. viewer, when it names a
// loaded country, is flagged so the client can highlight it.
func BuildGlobe(countries []*models.Country, metric, viewer string) Globe {
	scale, ok := globeScales[metric]
	if !ok {
		metric, scale = GlobeGDP, globeScales[GlobeGDP]
	}

	g := Globe{
		Metric: metric,
		Title:  scale.title,
		Points: make([]GlobePoint, 0, len(countries)),
		Legend: scale.legend(),
	}
	for _, c := range countries {
		v := scale.value(c)
		label, color := scale.classify(v)
		p := GlobePoint{
			Country:  c.Country,
			Slug:     c.Slug(),
			Region:   c.Region,
			Value:    v,
			Color:    color,
			Band:     label,
			Altitude: Altitude(c.Economy.GDPPPPBillions),
			GDP:      FormatBillions(c.Economy.GDPPPPBillions),
		}
		if c.Political.ChiefOfState != nil {
			p.Leader = *c.Political.ChiefOfState
		}
		if viewer != "" && strings.EqualFold(c.Country, viewer) {
			p.Viewer = true
			g.Viewer = c.Country
		}
		g.Points = append(g.Points, p)
	}
	return g
}
