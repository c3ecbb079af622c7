package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"factbook-dashboard/backend/models"
	"factbook-dashboard/backend/services"
	"factbook-dashboard/backend/system"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	app     *fiber.App
	h       *Handler
	metrics *services.Metrics
}

func testCountry(name, region string, eco models.Economy) *models.Country {
	return &models.Country{Country: name, Region: region, Year: 2010, Economy: eco}
}

// world yields one critical, one high and one medium anomaly.
func world() []*models.Country {
	return []*models.Country{
		testCountry("France", "Europe", models.Economy{GDPPPPBillions: models.F(2000), GDPGrowthPct: models.F(1.5)}),
		testCountry("Ireland", "Europe", models.Economy{GDPPPPBillions: models.F(100), ExternalDebtBillions: models.F(250)}),
		testCountry("Lowland", "Europe", models.Economy{GDPPPPBillions: models.F(20), InflationPct: models.F(30)}),
		testCountry("Zimbabwe", "Africa", models.Economy{GDPPPPBillions: models.F(5), GDPGrowthPct: models.F(2), InflationPct: models.F(150)}),
	}
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func writeEdition(t *testing.T, dir string, year int, countries []*models.Country) {
	t.Helper()
	idx := models.Index{Year: year, TotalCountries: len(countries)}
	for _, c := range countries {
		file := c.Slug() + ".json"
		idx.Countries = append(idx.Countries, models.IndexEntry{Name: c.Country, Region: c.Region, File: file})
		writeJSONFile(t, filepath.Join(dir, strconv.Itoa(year), file), c)
	}
	writeJSONFile(t, filepath.Join(dir, strconv.Itoa(year), "_index.json"), idx)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	writeEdition(t, dir, 2010, world())

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.DashboardSettings{},
		&models.CountryGroup{},
		&models.AlertEvent{},
		&models.MonitorRun{},
	))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	metrics := services.NewMetrics()
	data := services.NewDataset(dir)
	data.SetMetrics(metrics)
	webhook := services.NewWebhookService()
	monitor := services.NewAlertMonitor(db, data, webhook, 2010)

	cfg := system.DefaultConfig()
	cfg.JWTSecret = "test-secret"
	h := NewHandler(db, data, webhook, monitor, cfg)
	h.Metrics = metrics

	app := fiber.New()
	app.Use(RequestMetrics(metrics))
	SetupRoutes(app, h)
	return &testServer{app: app, h: h, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return s.do(t, http.MethodGet, path, "", nil)
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/login", "", LoginRequest{Username: "admin", Password: "admin123!"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	decode(t, resp, &out)
	return out.Error
}
