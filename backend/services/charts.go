package services

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"factbook-dashboard/backend/models"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrNoChartData = errors.New("no data to chart")

const (
	DefaultChartLimit = 10
	MaxChartLimit     = 40
)

var barColor = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}

// ChartBar is one labelled bar of a chart.
type ChartBar struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ChartBars picks the top-limit countries by metric, optionally within one
// region. Missing and zero values are left out; ties go to the country name.
func ChartBars(countries []*models.Country, metric models.Metric, region string, limit int) []ChartBar {
	if limit <= 0 {
		limit = DefaultChartLimit
	}
	if limit > MaxChartLimit {
		limit = MaxChartLimit
	}

	bars := make([]ChartBar, 0, len(countries))
	for _, c := range countries {
		if region != "" && !strings.EqualFold(c.Region, region) {
			continue
		}
		v := metric.Value(c)
		if !models.Truthy(v) {
			continue
		}
		bars = append(bars, ChartBar{Name: c.Country, Value: *v})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Value != bars[j].Value {
			return bars[i].Value > bars[j].Value
		}
		return bars[i].Name < bars[j].Name
	})
	if len(bars) > limit {
		bars = bars[:limit]
	}
	return bars
}

// BarChart renders the ChartBars selection as a PNG.
func BarChart(countries []*models.Country, metric models.Metric, region string, limit int) ([]byte, error) {
	bars := ChartBars(countries, metric, region, limit)
	if len(bars) == 0 {
		return nil, ErrNoChartData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d by %s", len(bars), metric.Label)
	if region != "" {
		p.Title.Text += " (" + region + ")"
	}
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = metric.Label

	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	minValue := 0.0
	for i, b := range bars {
		values[i] = b.Value
		labels[i] = b.Name
		minValue = math.Min(minValue, b.Value)
	}

	chart, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	chart.Color = barColor
	chart.LineStyle.Width = vg.Length(0)
	p.Add(chart, plotter.NewGrid())

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = minValue

	width := vg.Length(len(bars))*vg.Points(36) + 2*vg.Inch
	writer, err := p.WriterTo(width, 5*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
