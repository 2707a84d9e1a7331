package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/arvowealth/portfolio"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var seriesColors = []string{"9ca3af", "f59e0b", "10b981", "ef4444"}

// ReturnsChart renders a PNG line chart of the cumulative return of the
// portfolio, month after month, and of each benchmark aligned on the last
// months of the portfolio series.
func ReturnsChart(returns []portfolio.MonthlyReturn, benchmarks []portfolio.Benchmark) ([]byte, error) {
	var (
		xValues []time.Time
		yValues []float64
		growth  = 1.0
	)
	for _, r := range returns {
		for m := time.January; m <= time.December; m++ {
			p := r.Month(m)
			if p == nil {
				continue
			}
			growth *= 1 + float64(*p)/100
			xValues = append(xValues, time.Date(r.Year, m+1, 0, 0, 0, 0, 0, time.UTC))
			yValues = append(yValues, (growth-1)*100)
		}
	}
	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 months of returns, got %d", len(xValues))
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name: "Portfolio",
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex("2563eb"),
				StrokeWidth: 2.5,
			},
			XValues: xValues,
			YValues: yValues,
		},
	}
	for i, b := range benchmarks {
		n := min(len(b.MonthlyHistory), len(xValues))
		if n < 2 {
			continue
		}
		history := b.MonthlyHistory[len(b.MonthlyHistory)-n:]
		ys := make([]float64, n)
		g := 1.0
		for j, p := range history {
			g *= 1 + float64(p)/100
			ys[j] = (g - 1) * 100
		}
		series = append(series, chart.TimeSeries{
			Name: b.Label,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex(seriesColors[i%len(seriesColors)]),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{5.0, 3.0},
			},
			XValues: xValues[len(xValues)-n:],
			YValues: ys,
		})
	}

	graph := chart.Chart{
		Title:  "Cumulative Return",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.1f%%", f)
				}
				return ""
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
