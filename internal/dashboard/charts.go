package dashboard

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// Default chart size in pixels.
const (
	ChartWidth  = 720
	ChartHeight = 420
)

// ErrNotEnoughPoints is returned when a chart has fewer than two points to draw.
var ErrNotEnoughPoints = errors.New("not enough points to plot")

// decimalYear places a month at its midpoint on a year axis.
func decimalYear(year, month int) float64 {
	return float64(year) + (float64(month)-0.5)/12
}

// RenderSunspotChart draws the raw monthly means with the smoothed overlay as a PNG.
func RenderSunspotChart(w io.Writer, v SunspotView) error {
	if len(v.Rows) < 2 {
		return ErrNotEnoughPoints
	}

	raw := chart.ContinuousSeries{
		Name:    "Mean Sunspot",
		XValues: make([]float64, len(v.Rows)),
		YValues: make([]float64, len(v.Rows)),
		Style: chart.Style{
			StrokeColor: chart.ColorBlue,
			StrokeWidth: 1,
		},
	}
	for i, r := range v.Rows {
		raw.XValues[i] = decimalYear(r.Year, r.Month)
		raw.YValues[i] = r.Mean
	}

	series := []chart.Series{raw}

	if len(v.Smoothed) > 0 {
		smoothed := chart.ContinuousSeries{
			Name:    "Smoothed",
			XValues: make([]float64, len(v.Smoothed)),
			YValues: make([]float64, len(v.Smoothed)),
			Style: chart.Style{
				StrokeColor: chart.ColorRed,
				StrokeWidth: 2,
			},
		}
		for i, p := range v.Smoothed {
			smoothed.XValues[i] = decimalYear(p.Year, p.Month)
			smoothed.YValues[i] = p.Average
		}
		series = append(series, smoothed)
	}

	c := chart.Chart{
		Title:  "Historical Sunspot Activity",
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:           "Year",
			ValueFormatter: yearFormatter,
		},
		YAxis:  chart.YAxis{Name: "Mean Sunspot"},
		Series: series,
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}

	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render sunspot chart: %w", err)
	}
	return nil
}

// RenderCycleChart draws the phase/count pairs as a scatter PNG.
func RenderCycleChart(w io.Writer, v CycleView) error {
	if len(v.Points) < 2 {
		return ErrNotEnoughPoints
	}

	scatter := chart.ContinuousSeries{
		Name:    fmt.Sprintf("%d-year cycle", v.Cycle),
		XValues: make([]float64, len(v.Points)),
		YValues: make([]float64, len(v.Points)),
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    3,
			DotColor:    chart.ColorBlue,
		},
	}
	for i, p := range v.Points {
		scatter.XValues[i] = p.Phase
		scatter.YValues[i] = p.Count
	}

	c := chart.Chart{
		Title:  "Sunspot Cycle",
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Years",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(v.Cycle)},
		},
		YAxis:  chart.YAxis{Name: "# of Sunspots"},
		Series: []chart.Series{scatter},
	}

	if err := c.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render cycle chart: %w", err)
	}
	return nil
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
