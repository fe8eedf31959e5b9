// Package charts renders the PNG summary of an aurora snapshot.
package charts

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"aurorawatch/internal/models"
)

// Reference values that map to a full-height bar.
const (
	refKp      = 9.0
	refGScale  = 5.0
	refSpeed   = 800.0
	refDensity = 20.0
	refField   = 20.0
)

var (
	colorBorder  = drawing.Color{R: 52, G: 58, B: 64, A: 255}
	colorMuted   = drawing.Color{R: 108, G: 117, B: 125, A: 255}
	colorMissing = drawing.Color{R: 206, G: 212, B: 218, A: 255}
)

// bar is one metric of the summary chart.
type bar struct {
	label   string
	value   float64 // percent of reference
	present bool
	color   drawing.Color
}

// RenderSummary writes a bar chart of the snapshot's current values as PNG.
// Missing sub-records render as empty grey bars labelled "n/a".
func RenderSummary(w io.Writer, s *models.AuroraSnapshot) error {
	graph := chart.BarChart{
		Title: fmt.Sprintf("Aurora conditions: %s", s.ConditionStatus),
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   70,
				Right:  30,
				Bottom: 70,
			},
			FillColor: drawing.Color{R: 248, G: 249, B: 250, A: 255},
		},
		Height:     400,
		Width:      720,
		BarWidth:   70,
		BarSpacing: 20,
		XAxis: chart.Style{
			FontSize:  11,
			FontColor: colorBorder,
		},
		YAxis: chart.YAxis{
			Name: "% of storm level",
			NameStyle: chart.Style{
				FontSize:  12,
				FontColor: colorBorder,
			},
			Style: chart.Style{
				FontSize:  10,
				FontColor: colorMuted,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
		},
	}

	for _, b := range summaryBars(s) {
		fill := b.color
		if !b.present {
			fill = colorMissing
		}
		graph.Bars = append(graph.Bars, chart.Value{
			Value: b.value,
			Label: b.label,
			Style: chart.Style{
				FillColor:   fill,
				StrokeColor: colorBorder,
				StrokeWidth: 1,
			},
		})
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render summary chart: %w", err)
	}
	return nil
}

func summaryBars(s *models.AuroraSnapshot) []bar {
	bars := make([]bar, 0, 6)

	if s.KpIndex != nil {
		bars = append(bars, bar{
			label:   fmt.Sprintf("Kp\n%.2f", s.KpIndex.Kp),
			value:   percent(s.KpIndex.Kp, refKp),
			present: true,
			color:   kpColor(s.KpIndex.Kp),
		})
	} else {
		bars = append(bars, bar{label: "Kp\nn/a"})
	}

	if s.NoaaScales != nil {
		g, _ := strconv.Atoi(s.NoaaScales.GScale)
		bars = append(bars, bar{
			label:   fmt.Sprintf("G-scale\nG%s %s", s.NoaaScales.GScale, s.NoaaScales.GText),
			value:   percent(float64(g), refGScale),
			present: true,
			color:   kpColor(float64(g) + 4),
		})
	} else {
		bars = append(bars, bar{label: "G-scale\nn/a"})
	}

	if sw := s.SolarWind; sw != nil {
		southward := math.Max(0, -sw.Bz)
		bars = append(bars,
			bar{label: fmt.Sprintf("Speed\n%.0f km/s", sw.Speed), value: percent(sw.Speed, refSpeed), present: true, color: drawing.Color{R: 13, G: 110, B: 253, A: 255}},
			bar{label: fmt.Sprintf("Density\n%.1f p/cm3", sw.Density), value: percent(sw.Density, refDensity), present: true, color: drawing.Color{R: 102, G: 16, B: 242, A: 255}},
			bar{label: fmt.Sprintf("Bt\n%.1f nT", sw.Bt), value: percent(sw.Bt, refField), present: true, color: drawing.Color{R: 32, G: 201, B: 151, A: 255}},
			bar{label: fmt.Sprintf("Bz\n%.1f nT", sw.Bz), value: percent(southward, refField), present: true, color: bzColor(sw.Bz)},
		)
	} else {
		bars = append(bars,
			bar{label: "Speed\nn/a"},
			bar{label: "Density\nn/a"},
			bar{label: "Bt\nn/a"},
			bar{label: "Bz\nn/a"},
		)
	}

	return bars
}

func percent(v, ref float64) float64 {
	p := v / ref * 100
	return math.Max(0, math.Min(100, p))
}

func kpColor(kValue float64) drawing.Color {
	switch {
	case kValue >= 5:
		return drawing.Color{R: 128, G: 0, B: 128, A: 255} // storm
	case kValue >= 4:
		return drawing.Color{R: 220, G: 53, B: 69, A: 255} // active
	case kValue >= 3:
		return drawing.Color{R: 253, G: 126, B: 20, A: 255} // unsettled
	case kValue >= 2:
		return drawing.Color{R: 255, G: 193, B: 7, A: 255}
	default:
		return drawing.Color{R: 40, G: 167, B: 69, A: 255} // quiet
	}
}

// bzColor is green for a northward IMF and red for southward.
func bzColor(bz float64) drawing.Color {
	if bz >= 0 {
		return drawing.Color{R: 16, G: 185, B: 129, A: 255}
	}
	return drawing.Color{R: 239, G: 68, B: 68, A: 255}
}
