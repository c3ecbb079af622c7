package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"factbook-dashboard/backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testCountry(name, region string, eco models.Economy) *models.Country {
	return &models.Country{Country: name, Region: region, Year: 2010, Economy: eco}
}

// testWorld has three anomalies: a critical and a medium hyperinflation and
// a high debt crisis.
func testWorld() []*models.Country {
	return []*models.Country{
		testCountry("France", "Europe", models.Economy{GDPPPPBillions: models.F(2000), GDPGrowthPct: models.F(1.5)}),
		testCountry("Ireland", "Europe", models.Economy{GDPPPPBillions: models.F(100), ExternalDebtBillions: models.F(250)}),
		testCountry("Lowland", "Europe", models.Economy{GDPPPPBillions: models.F(20), InflationPct: models.F(30)}),
		testCountry("Zimbabwe", "Africa", models.Economy{GDPPPPBillions: models.F(5), GDPGrowthPct: models.F(2), InflationPct: models.F(150)}),
	}
}

func writeFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// writeEdition lays out <dir>/<year>/_index.json plus one file per country.
func writeEdition(t *testing.T, dir string, year int, countries []*models.Country) {
	t.Helper()
	idx := models.Index{Year: year, TotalCountries: len(countries)}
	for _, c := range countries {
		file := c.Slug() + ".json"
		idx.Countries = append(idx.Countries, models.IndexEntry{Name: c.Country, Region: c.Region, File: file})
		writeFile(t, filepath.Join(dir, strconv.Itoa(year), file), c)
	}
	writeFile(t, filepath.Join(dir, strconv.Itoa(year), indexFile), idx)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AlertEvent{}, &models.MonitorRun{}, &models.DashboardSettings{}))

	// One connection serialises the monitor goroutine and test reads.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}
