package services

import (
	"fmt"
	"io"

	"factbook-dashboard/backend/analysis"
	"factbook-dashboard/backend/models"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names
const (
	SheetCountries = "Countries"
	SheetRisk      = "Risk"
	SheetAlerts    = "Alerts"
)

// WriteWorkbook writes an XLSX export of one edition: every metric per
// country, the ranked stability profiles and the detected anomalies.
func WriteWorkbook(w io.Writer, year int, countries []*models.Country) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCountries); err != nil {
		return err
	}
	for _, name := range []string{SheetRisk, SheetAlerts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F2937"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeCountrySheet(f, header, countries); err != nil {
		return err
	}
	if err := writeRiskSheet(f, header, analysis.AllProfiles(countries)); err != nil {
		return err
	}
	if err := writeAlertSheet(f, header, analysis.DetectAnomalies(countries)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   fmt.Sprintf("CIA World Factbook %d", year),
		Creator: "Factbook Dashboard",
	}); err != nil {
		return err
	}
	return f.Write(w)
}

func writeCountrySheet(f *excelize.File, header int, countries []*models.Country) error {
	metrics := models.Metrics()
	cols := []interface{}{"Country", "Region"}
	for _, m := range metrics {
		cols = append(cols, m.Label)
	}
	rows := make([][]interface{}, 0, len(countries))
	for _, c := range countries {
		row := []interface{}{c.Country, c.Region}
		for _, m := range metrics {
			if v := m.Value(c); v != nil {
				row = append(row, *v)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return writeTable(f, SheetCountries, header, cols, rows)
}

func writeRiskSheet(f *excelize.File, header int, profiles []analysis.RiskProfile) error {
	cols := []interface{}{"Rank", "Country", "Region", "Regional Rank", "Stability", "Label",
		"Economic", "Political", "Military", "Demographic"}
	rows := make([][]interface{}, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []interface{}{p.Rank, p.Country, p.Region, p.RegionalRank,
			p.Score.Overall, p.Score.Label, p.Score.Economic, p.Score.Political,
			p.Score.Military, p.Score.Demographic})
	}
	return writeTable(f, SheetRisk, header, cols, rows)
}

func writeAlertSheet(f *excelize.File, header int, anomalies []analysis.Anomaly) error {
	cols := []interface{}{"Severity", "Type", "Country", "Region", "Title", "Metric", "Value", "Threshold", "Description"}
	rows := make([][]interface{}, 0, len(anomalies))
	for _, a := range anomalies {
		rows = append(rows, []interface{}{string(a.Severity), string(a.Type), a.Country, a.Region,
			a.Title, a.Metric, a.Value, a.Threshold, a.Description})
	}
	return writeTable(f, SheetAlerts, header, cols, rows)
}

func writeTable(f *excelize.File, sheet string, header int, cols []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
