package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"fintrack/internal/core"
)

// ErrNoData is returned when a chart would have nothing to draw.
var ErrNoData = errors.New("no data to chart")

const (
	chartWidth  = 1200
	chartHeight = 600
)

var background = chart.Style{
	Padding:   chart.Box{Top: 50, Left: 50, Right: 50, Bottom: 50},
	FillColor: chart.ColorWhite,
}

// CategoryPie draws the share of each category.
func CategoryPie(w io.Writer, summaries []core.CategorySummary, f *core.Formatter) error {
	values := make([]chart.Value, 0, len(summaries))
	for _, s := range summaries {
		v := s.Amount.InexactFloat64()
		if v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s", s.Category, f.Format(s.Amount)),
			Value: v,
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	pie := chart.PieChart{
		Width:      chartWidth,
		Height:     chartHeight,
		Background: background,
		Values:     values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render category chart: %w", err)
	}
	return nil
}

// MonthlyBars draws income and expense bars for each month.
func MonthlyBars(w io.Writer, months []core.MonthlyData) error {
	total := 0.0
	for _, m := range months {
		total += m.Income.InexactFloat64() + m.Expenses.InexactFloat64()
	}
	if total == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, 0, 2*len(months))
	for _, m := range months {
		bars = append(bars,
			chart.Value{
				Label: m.Month + " in",
				Value: m.Income.InexactFloat64(),
				Style: chart.Style{FillColor: chart.ColorGreen, StrokeColor: chart.ColorGreen},
			},
			chart.Value{
				Label: m.Month + " out",
				Value: m.Expenses.InexactFloat64(),
				Style: chart.Style{FillColor: chart.ColorRed, StrokeColor: chart.ColorRed},
			},
		)
	}

	graph := chart.BarChart{
		Width:      chartWidth,
		Height:     chartHeight,
		Background: background,
		BarWidth:   40,
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render monthly chart: %w", err)
	}
	return nil
}
