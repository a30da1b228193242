// Package charts renders dashboard figures as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"fintrack/internal/report"
)

// palette mirrors the dashboard's category color slots. Index i colors the
// category with ColorIndex i.
var palette = []drawing.Color{
	drawing.ColorFromHex("4e79a7"),
	drawing.ColorFromHex("f28e2b"),
	drawing.ColorFromHex("e15759"),
	drawing.ColorFromHex("76b7b2"),
	drawing.ColorFromHex("59a14f"),
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// MonthlyTrendChart renders the twelve-month expense trend as a bar chart.
// Returns nil bytes when the year has no expenses at all.
func (g *Generator) MonthlyTrendChart(points []report.TrendPoint, year int) ([]byte, error) {
	var total int64
	bars := make([]chart.Value, 0, len(points))
	for _, p := range points {
		total += p.Total.Cents
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Total.Float(),
			Style: chart.Style{
				StrokeColor: palette[0],
				FillColor:   palette[0].WithAlpha(200),
			},
		})
	}
	if total == 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Monthly expenses %d", year),
		Width:    900,
		Height:   450,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   30,
				Right:  30,
				Bottom: 30,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render monthly trend chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// CategoryPieChart renders the expense breakdown as a pie chart, one slice
// per category in palette order. Returns nil bytes when there is nothing
// to draw.
func (g *Generator) CategoryPieChart(categories []report.CategorySummary) ([]byte, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(categories))
	for _, c := range categories {
		if c.Total.Cents <= 0 {
			continue
		}
		color := palette[c.ColorIndex%len(palette)]
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s", c.Name, c.Total.String()),
			Value: c.Total.Float(),
			Style: chart.Style{
				StrokeColor: color,
				FillColor:   color,
				FontColor:   chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Width:  700,
		Height: 700,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   40,
				Right:  40,
				Bottom: 40,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
