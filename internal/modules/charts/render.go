package charts

import (
	"fmt"

	"github.com/vicanso/go-charts/v2"
)

// RenderPriceLine draws a PNG line chart of daily closes.
func (s *Service) RenderPriceLine(symbol string, points []ChartDataPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("not enough data points to chart %s", symbol)
	}

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	yMin, yMax := points[0].Value, points[0].Value
	for i, p := range points {
		labels[i] = p.Time
		values[i] = p.Value
		if p.Value < yMin {
			yMin = p.Value
		}
		if p.Value > yMax {
			yMax = p.Value
		}
	}

	// Pad the y range so the line does not hug the frame.
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad

	painter, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(symbol),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: 8,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(420),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render price chart for %s: %w", symbol, err)
	}

	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode price chart for %s: %w", symbol, err)
	}
	return img, nil
}

// RenderHistogram draws a PNG bar chart of a terminal-value distribution.
func (s *Service) RenderHistogram(title string, bins []HistogramBin) ([]byte, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("no histogram bins to render")
	}

	labels := make([]string, len(bins))
	counts := make([]float64, len(bins))
	for i, bin := range bins {
		labels[i] = bin.Label
		counts[i] = bin.Count
	}

	painter, err := charts.BarRender(
		[][]float64{counts},
		charts.TitleTextOptionFunc(title),
		charts.XAxisDataOptionFunc(labels),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(900),
		charts.HeightOptionFunc(420),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render histogram: %w", err)
	}

	img, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode histogram: %w", err)
	}
	return img, nil
}
