// Package report renders the publication figures: gauge hydrographs over
// the historical envelope, the longitudinal chlorophyll profile and the
// chlorophyll-discharge scatter, plus an HTML index and CSV tables.
package report

import (
	"fmt"
	"math"
	"os"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/chl"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/places"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/series"
)

const (
	chartW = 1100
	chartH = 420
)

func lineStyle(col drawing.Color, w float64) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: w}
}

func dashStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeColor: col, StrokeWidth: 1.2, StrokeDashArray: []float64{4, 3}}
}

func dotStyle(col drawing.Color) chart.Style {
	return chart.Style{StrokeWidth: chart.Disabled, DotWidth: 3, DotColor: col}
}

// Hydrograph plots the event-year daily discharge of one gauge cell over
// its day-of-year climatology envelope (p10/p50/p90 of the prior years).
func Hydrograph(fp, name string, t []time.Time, q []float64, clim *series.Climatology) error {
	p10, p50, p90 := make([]float64, len(t)), make([]float64, len(t)), make([]float64, len(t))
	for i, tt := range t {
		p10[i], p50[i], p90[i] = clim.At(tt)
	}
	ch := chart.Chart{
		Title:      fmt.Sprintf("%s — discharge vs. climatology", name),
		Width:      chartW,
		Height:     chartH,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02"),
		},
		YAxis: chart.YAxis{Name: "discharge [m³/s]"},
		Series: []chart.Series{
			chart.TimeSeries{Name: "p90", XValues: t, YValues: p90, Style: dashStyle(chart.ColorAlternateGray)},
			chart.TimeSeries{Name: "median", XValues: t, YValues: p50, Style: lineStyle(chart.ColorAlternateGray, 1.5)},
			chart.TimeSeries{Name: "p10", XValues: t, YValues: p10, Style: dashStyle(chart.ColorAlternateGray)},
			chart.TimeSeries{Name: name, XValues: t, YValues: q, Style: lineStyle(chart.ColorBlue, 2.2)},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(fp, &ch)
}

// Profile plots mean/max chlorophyll against river-km, annotated with the
// towns along the river.
func Profile(fp string, bins []chl.Bin, towns []places.Town) error {
	if len(bins) < 2 {
		return fmt.Errorf("report: profile needs at least two bins")
	}
	km := make([]float64, len(bins))
	mean := make([]float64, len(bins))
	max := make([]float64, len(bins))
	ymax := 0.
	for i, b := range bins {
		km[i] = (b.Km0 + b.Km1) / 2.
		mean[i], max[i] = b.Mean, b.Max
		ymax = math.Max(ymax, b.Max)
	}
	ann := chart.AnnotationSeries{Style: chart.Style{StrokeColor: chart.ColorAlternateGray}}
	for _, t := range towns {
		ann.Annotations = append(ann.Annotations, chart.Value2{XValue: t.Rkm, YValue: ymax, Label: t.Name})
	}
	ch := chart.Chart{
		Title:      "Longitudinal chlorophyll-a profile",
		Width:      chartW,
		Height:     chartH,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "distance to mouth [km]"},
		YAxis:      chart.YAxis{Name: "chlorophyll-a [µg/l]"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "max", XValues: km, YValues: max, Style: dashStyle(chart.ColorRed)},
			chart.ContinuousSeries{Name: "mean", XValues: km, YValues: mean, Style: lineStyle(chart.ColorGreen, 2.2)},
			ann,
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return render(fp, &ch)
}

// Scatter plots matched chlorophyll against same-day discharge.
func Scatter(fp string, q, c []float64, pearson, spearman float64) error {
	qq, cc := make([]float64, 0, len(q)), make([]float64, 0, len(c))
	for i := range q {
		if math.IsNaN(q[i]) || math.IsNaN(c[i]) {
			continue
		}
		qq = append(qq, q[i])
		cc = append(cc, c[i])
	}
	if len(qq) < 2 {
		return fmt.Errorf("report: scatter needs at least two points")
	}
	ch := chart.Chart{
		Title:      fmt.Sprintf("Chlorophyll-a vs. discharge (r=%.2f, ρ=%.2f)", pearson, spearman),
		Width:      chartH, // square panel
		Height:     chartH,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "discharge [m³/s]"},
		YAxis:      chart.YAxis{Name: "chlorophyll-a [µg/l]"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "samples", XValues: qq, YValues: cc, Style: dotStyle(chart.ColorBlue)},
		},
	}
	return render(fp, &ch)
}

// Timeseries plots the bloom evolution: daily mean chlorophyll of the
// matched samples.
func Timeseries(fp string, t []time.Time, c []float64) error {
	if len(t) < 2 {
		return fmt.Errorf("report: timeseries needs at least two days")
	}
	ch := chart.Chart{
		Title:      "Mean chlorophyll-a of matched samples",
		Width:      chartW,
		Height:     chartH,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02")},
		YAxis:      chart.YAxis{Name: "chlorophyll-a [µg/l]"},
		Series: []chart.Series{
			chart.TimeSeries{Name: "chl-a", XValues: t, YValues: c, Style: lineStyle(chart.ColorGreen, 2.2)},
		},
	}
	return render(fp, &ch)
}

func render(fp string, ch *chart.Chart) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("report: %v", err)
	}
	if err := ch.Render(chart.PNG, f); err != nil {
		f.Close()
		return fmt.Errorf("report: rendering %s: %v", fp, err)
	}
	return f.Close()
}
