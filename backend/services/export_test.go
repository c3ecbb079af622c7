package services

import (
	"bytes"
	"testing"

	"factbook-dashboard/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, 2010, testWorld()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCountries, SheetRisk, SheetAlerts}, f.GetSheetList())

	rows, err := f.GetRows(SheetCountries)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Country", "Region", "Population"}, rows[0][:3])
	assert.Equal(t, "France", rows[1][0])

	gdpCol := 2
	for i, m := range models.Metrics() {
		if m.Field == "gdp_ppp_billions" {
			gdpCol += i
		}
	}
	assert.Equal(t, "2000", rows[1][gdpCol])

	risk, err := f.GetRows(SheetRisk)
	require.NoError(t, err)
	assert.Len(t, risk, 5)
	assert.Equal(t, "1", risk[1][0])

	alerts, err := f.GetRows(SheetAlerts)
	require.NoError(t, err)
	require.Len(t, alerts, 4)
	assert.Equal(t, []string{"critical", "hyperinflation", "Zimbabwe"}, alerts[1][:3])
}
