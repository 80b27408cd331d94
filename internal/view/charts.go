package view

import (
	"errors"
	"fmt"
	"io"
	"math"

	"finance-dashboard/internal/entity"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 640
	chartHeight = 400
)

// ErrNoChartData means the group is absent or has nothing drawable.
var ErrNoChartData = errors.New("no chart data")

// RenderExpensesChart draws the expense distribution by category as an SVG pie.
// Expenses may arrive negative, so slices use absolute values.
func RenderExpensesChart(w io.Writer, d *entity.CategoryDistribution) error {
	var values []chart.Value
	for _, s := range d.Slices() {
		v := math.Abs(s.Value)
		if v == 0 {
			continue
		}
		values = append(values, chart.Value{Label: s.Label, Value: v})
	}
	if len(values) == 0 {
		return ErrNoChartData
	}

	pie := chart.PieChart{
		Title:  "Expenses by Category",
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	if err := pie.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render expenses chart: %w", err)
	}
	return nil
}

// RenderCashFlowChart draws monthly revenue against absolute expenses as SVG
// grouped bars: a revenue bar labelled with the month, then its expense bar.
func RenderCashFlowChart(w io.Writer, f *entity.MonthlyCashFlow) error {
	points := f.Points()
	if len(points) == 0 {
		return ErrNoChartData
	}

	bars := make([]chart.Value, 0, 2*len(points))
	minY, maxY := 0.0, 0.0
	for _, p := range points {
		expense := math.Abs(p.Expense)
		bars = append(bars,
			chart.Value{Label: p.Month, Value: p.Revenue, Style: barStyle(chart.ColorGreen)},
			chart.Value{Value: expense, Style: barStyle(chart.ColorRed)},
		)
		minY = math.Min(minY, p.Revenue)
		maxY = math.Max(maxY, math.Max(p.Revenue, expense))
	}

	// The y range always spans zero so the bars share a baseline, and an
	// all-zero month still gets a drawable range.
	yRange := &chart.ContinuousRange{Min: minY * 1.1, Max: maxY * 1.1}
	if yRange.Max == yRange.Min {
		yRange.Max = 1
	}

	graph := chart.BarChart{
		Title:        "Monthly Cash Flow (Revenue vs. Expenses)",
		Width:        chartWidth,
		Height:       chartHeight,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		BarWidth:     24,
		BarSpacing:   8,
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        chart.Style{TextWrap: chart.TextWrapNone},
		YAxis:        chart.YAxis{Range: yRange},
		Bars:         bars,
	}

	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render cash flow chart: %w", err)
	}
	return nil
}

func barStyle(c drawing.Color) chart.Style {
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}
