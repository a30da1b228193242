package charts

import (
	"bytes"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G'}

func trendWithExpenses() []report.TrendPoint {
	points := report.MonthlyTrend(nil, 2025)
	points[0].Total = core.Money{Cents: 120000}
	points[5].Total = core.Money{Cents: 80000}
	return points
}

func TestMonthlyTrendChartRendersPNG(t *testing.T) {
	g := NewGenerator()

	png, err := g.MonthlyTrendChart(trendWithExpenses(), 2025)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Fatalf("output is not a PNG, first bytes: %v", png[:min(8, len(png))])
	}
}

func TestMonthlyTrendChartEmptyYear(t *testing.T) {
	g := NewGenerator()

	png, err := g.MonthlyTrendChart(report.MonthlyTrend(nil, 2025), 2025)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if png != nil {
		t.Fatal("expected nil output for a year without expenses")
	}
}

func TestCategoryPieChartRendersPNG(t *testing.T) {
	g := NewGenerator()

	png, err := g.CategoryPieChart([]report.CategorySummary{
		{CategoryID: "c1", Name: "Rent", Total: core.Money{Cents: 900000}, ColorIndex: 0},
		{CategoryID: "c2", Name: "Food", Total: core.Money{Cents: 80000}, ColorIndex: 1},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(png, pngSignature) {
		t.Fatal("output is not a PNG")
	}
}

func TestCategoryPieChartEmpty(t *testing.T) {
	g := NewGenerator()

	png, err := g.CategoryPieChart(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if png != nil {
		t.Fatal("expected nil output for no categories")
	}
}

func TestPaletteMatchesReportSlots(t *testing.T) {
	if len(palette) != report.PaletteSize {
		t.Fatalf("palette has %d colors, report cycles %d slots", len(palette), report.PaletteSize)
	}
}
