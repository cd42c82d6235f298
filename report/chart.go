package report

import (
	"bytes"
	"fmt"
	"time"

	m "fundmatch/internal/model"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderNavChart renders the NAV series of one fund as a PNG line chart.
func RenderNavChart(title string, hist []m.FundHistory) ([]byte, error) {
	if len(hist) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(hist))
	}

	xValues := make([]time.Time, len(hist))
	navY := make([]float64, len(hist))

	for i, h := range hist {
		xValues[i] = time.Time(h.Date)
		navY[i] = h.Nav
	}

	navSeries := chart.TimeSeries{
		Name: "NAV",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("4a6fa5"),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: navY,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  900,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02/01")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{navSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
