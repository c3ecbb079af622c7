package handlers

import (
	"errors"
	"net/http"
	"strings"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"

	"github.com/gofiber/fiber/v2"
)

// GetCountries returns the edition index
// GET /api/countries?year=2010
func (h *Handler) GetCountries(c *fiber.Ctx) error {
	year, err := h.year(c)
	if err != nil {
		return errorJSON(c, err)
	}
	index, err := h.Data.Index(year)
	if err != nil {
		return errorJSON(c, dataError(err))
	}
	return c.JSON(index)
}

// GetTimeSeries serves the merged multi-year series
// GET /api/countries/timeseries
func (h *Handler) GetTimeSeries(c *fiber.Ctx) error {
	raw, err := h.Data.TimeSeries()
	if errors.Is(err, services.ErrNotFound) {
		return c.JSON(fiber.Map{
			"data":    nil,
			"message": "Time series data not available. Run the merge to generate.",
		})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"data":  nil,
			"error": "Failed to load time series data",
		})
	}
	return c.JSON(fiber.Map{"data": raw})
}

// GetChanges serves the merged year-over-year changes
// GET /api/trends/changes
func (h *Handler) GetChanges(c *fiber.Ctx) error {
	raw, err := h.Data.Changes()
	if errors.Is(err, services.ErrNotFound) {
		return c.JSON(fiber.Map{
			"data":    nil,
			"message": "Change data not available. Run the merge to generate.",
		})
	}
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"data":  nil,
			"error": "Failed to load change data",
		})
	}
	return c.JSON(fiber.Map{"data": raw})
}

// GetCountry returns one record
// GET /api/countries/:slug
func (h *Handler) GetCountry(c *fiber.Ctx) error {
	year, err := h.year(c)
	if err != nil {
		return errorJSON(c, err)
	}
	country, err := h.Data.Country(year, c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidSlug) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
		}
		return errorJSON(c, dataError(err))
	}
	return c.JSON(country)
}

// GetCountryProfile returns the stability profile, ranks and insights of one country
// GET /api/countries/:slug/profile
func (h *Handler) GetCountryProfile(c *fiber.Ctx) error {
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	slug := c.Params("slug")
	if !services.ValidSlug(slug) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
	}
	for _, country := range all {
		if country.Slug() != slug {
			continue
		}
		profile := analysis.ProfilesByCountry(analysis.AllProfiles(all))[country.Country]
		return c.JSON(fiber.Map{
			"year":     year,
			"country":  country,
			"profile":  profile,
			"total":    len(all),
			"insights": analysis.CountryInsights(country, all),
		})
	}
	return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Country not found"})
}

// GetYears lists the editions on disk
// GET /api/years
func (h *Handler) GetYears(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"years":   h.Data.Years(),
		"default": h.Year,
	})
}

// GetDashboard returns the landing page summary
// GET /api/dashboard
func (h *Handler) GetDashboard(c *fiber.Ctx) error {
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(analysis.Summarize(year, all))
}

// GetRecords returns the filtered, sorted country table
// GET /api/records?region=&q=&sort=name|gdp|population|growth
func (h *Handler) GetRecords(c *fiber.Ctx) error {
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	rows := analysis.ListCountries(all, analysis.ListOptions{
		Region: c.Query("region"),
		Query:  c.Query("q"),
		Sort:   c.Query("sort", analysis.SortName),
	})
	return c.JSON(fiber.Map{"count": len(rows), "countries": rows})
}

// GetRegions lists region names
// GET /api/regions
func (h *Handler) GetRegions(c *fiber.Ctx) error {
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(analysis.Regions(all))
}

// GetRegion returns the detail view of one region
// GET /api/regions/:region?sort=
func (h *Handler) GetRegion(c *fiber.Ctx) error {
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	region, ok := analysis.FindRegion(all, c.Params("region"))
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Region not found"})
	}
	return c.JSON(analysis.SummarizeRegion(all, region, c.Query("sort", analysis.SortGDP)))
}

// GetRiskProfiles returns ranked stability profiles
// GET /api/analysis/risk?region=
func (h *Handler) GetRiskProfiles(c *fiber.Ctx) error {
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	profiles := analysis.AllProfiles(all)
	region := c.Query("region")
	if region == "" {
		return c.JSON(profiles)
	}
	filtered := make([]analysis.RiskProfile, 0, len(profiles))
	for _, p := range profiles {
		if strings.EqualFold(p.Region, region) {
			filtered = append(filtered, p)
		}
	}
	return c.JSON(filtered)
}

// GetRegionalStats returns per-region aggregates
// GET /api/analysis/regions
func (h *Handler) GetRegionalStats(c *fiber.Ctx) error {
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(analysis.ComputeRegionalStats(all))
}

// GetCompare lays out countries side by side
// GET /api/compare?countries=france,germany
func (h *Handler) GetCompare(c *fiber.Ctx) error {
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	var keys []string
	for _, k := range strings.Split(c.Query("countries"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return h.compare(c, year, keys, all)
}

func (h *Handler) compare(c *fiber.Ctx, year int, keys []string, all []*models.Country) error {
	selected := make([]*models.Country, 0, len(keys))
	for _, key := range keys {
		country, err := h.Data.Lookup(year, key)
		if err != nil {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Country not found: " + key})
		}
		selected = append(selected, country)
	}
	cmp, err := analysis.Compare(selected, all)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cmp)
}

// GetAlerts runs anomaly detection over the edition
// GET /api/alerts?severity=&type=&region=&country=
func (h *Handler) GetAlerts(c *fiber.Ctx) error {
	all, year, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}

	var filter analysis.AnomalyFilter
	if s := c.Query("severity"); s != "" {
		sev, ok := analysis.ParseSeverity(s)
		if !ok {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid severity"})
		}
		filter.Severity = sev
	}
	if t := c.Query("type"); t != "" {
		typ, ok := analysis.ParseAnomalyType(t)
		if !ok {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid anomaly type"})
		}
		filter.Type = typ
	}
	filter.Region = c.Query("region")
	filter.Country = c.Query("country")

	anomalies := analysis.DetectAnomalies(all)
	return c.JSON(fiber.Map{
		"year":      year,
		"stats":     analysis.ComputeAnomalyStats(anomalies),
		"anomalies": analysis.FilterAnomalies(anomalies, filter),
	})
}

// GetGlobe colours countries for the globe view. The caller's country, when
// GeoIP can place it, is flagged.
// GET /api/globe?metric=gdp|population|military|growth|trade
func (h *Handler) GetGlobe(c *fiber.Ctx) error {
	metric, ok := analysis.ParseGlobeMetric(c.Query("metric"))
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid metric"})
	}
	all, _, err := h.edition(c)
	if err != nil {
		return errorJSON(c, err)
	}
	viewer, _ := h.GeoIP.CountryName(c.IP())
	return c.JSON(analysis.BuildGlobe(all, metric, viewer))
}
