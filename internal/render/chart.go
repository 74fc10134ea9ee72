package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	chartWidth  = 800
	chartHeight = 420

	marginLeft   = 60.0
	marginRight  = 60.0
	marginTop    = 50.0
	marginBottom = 70.0

	gridLines = 5
)

type chartSeries struct {
	name   string
	color  string
	values []*float64
}

// Chart draws s as a PNG: temperature lines on the left axis and, for the
// forecast, UV index columns on the right axis.
func Chart(w io.Writer, s weather.DailySeries) error {
	var lines []chartSeries
	if s.TemperatureMax != nil {
		lines = append(lines, chartSeries{"Max Temperature", "#d62728", s.TemperatureMax})
	}
	if s.TemperatureMin != nil {
		lines = append(lines, chartSeries{"Min Temperature", "#1f77b4", s.TemperatureMin})
	}
	if s.TemperatureMean != nil {
		lines = append(lines, chartSeries{"Mean Temperature", "#2ca02c", s.TemperatureMean})
	}
	var bars *chartSeries
	if s.UVIndexMax != nil {
		bars = &chartSeries{"UV Index Max", "#f5b041", s.UVIndexMax}
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	plotW := chartWidth - marginLeft - marginRight
	plotH := chartHeight - marginTop - marginBottom
	n := s.Len()

	dc.SetHexColor("#333333")
	dc.DrawStringAnchored(s.Title, chartWidth/2, marginTop/2, 0.5, 0.5)

	lo, hi := valueRange(lines)
	yOf := func(v, lo, hi float64) float64 {
		return marginTop + plotH - (v-lo)/(hi-lo)*plotH
	}
	xOf := func(i int) float64 {
		return marginLeft + (float64(i)+0.5)*plotW/float64(max(n, 1))
	}

	// Grid and left axis labels.
	dc.SetLineWidth(1)
	for g := 0; g <= gridLines; g++ {
		v := lo + (hi-lo)*float64(g)/gridLines
		y := yOf(v, lo, hi)
		dc.SetHexColor("#e6e6e6")
		dc.DrawLine(marginLeft, y, marginLeft+plotW, y)
		dc.Stroke()
		dc.SetHexColor("#666666")
		dc.DrawStringAnchored(tick(v), marginLeft-6, y, 1, 0.5)
	}
	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 14, marginTop+plotH/2)
	dc.DrawStringAnchored("Temperature (°C)", 14, marginTop+plotH/2, 0.5, 0.5)
	dc.Pop()

	if bars != nil {
		blo, bhi := valueRange([]chartSeries{*bars})
		if blo > 0 {
			blo = 0
		}
		barW := plotW / float64(max(n, 1)) * 0.5
		dc.SetHexColor(bars.color)
		for i, v := range bars.values {
			if v == nil {
				continue
			}
			top := yOf(*v, blo, bhi)
			dc.DrawRectangle(xOf(i)-barW/2, top, barW, yOf(blo, blo, bhi)-top)
			dc.Fill()
		}
		dc.SetHexColor("#666666")
		for g := 0; g <= gridLines; g++ {
			v := blo + (bhi-blo)*float64(g)/gridLines
			dc.DrawStringAnchored(tick(v), marginLeft+plotW+6, yOf(v, blo, bhi), 0, 0.5)
		}
	}

	// Axes.
	dc.SetHexColor("#333333")
	dc.DrawLine(marginLeft, marginTop, marginLeft, marginTop+plotH)
	dc.DrawLine(marginLeft, marginTop+plotH, marginLeft+plotW, marginTop+plotH)
	dc.Stroke()

	// Category labels, thinned so they do not overlap.
	step := labelStep(dc, s.Categories, plotW)
	for i := 0; i < n; i += step {
		dc.DrawStringAnchored(s.Categories[i], xOf(i), marginTop+plotH+14, 0.5, 0.5)
	}
	dc.DrawStringAnchored("Date", marginLeft+plotW/2, marginTop+plotH+34, 0.5, 0.5)

	dc.SetLineWidth(2)
	for _, ls := range lines {
		dc.SetHexColor(ls.color)
		drawing := false
		for i, v := range ls.values {
			if v == nil {
				if drawing {
					dc.Stroke()
				}
				drawing = false
				continue
			}
			x, y := xOf(i), yOf(*v, lo, hi)
			if !drawing {
				dc.MoveTo(x, y)
				drawing = true
			} else {
				dc.LineTo(x, y)
			}
			dc.DrawCircle(x, y, 2.5)
			dc.MoveTo(x, y)
		}
		if drawing {
			dc.Stroke()
		}
	}

	legend := lines
	if bars != nil {
		legend = append([]chartSeries{*bars}, lines...)
	}
	drawLegend(dc, legend, chartHeight-14)

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	return nil
}

func drawLegend(dc *gg.Context, series []chartSeries, y float64) {
	total := 0.0
	for _, s := range series {
		tw, _ := dc.MeasureString(s.name)
		total += tw + 34
	}
	x := (chartWidth - total) / 2
	for _, s := range series {
		dc.SetHexColor(s.color)
		dc.DrawRectangle(x, y-5, 12, 10)
		dc.Fill()
		dc.SetHexColor("#333333")
		dc.DrawStringAnchored(s.name, x+18, y, 0, 0.5)
		tw, _ := dc.MeasureString(s.name)
		x += tw + 34
	}
}

// valueRange returns a padded [lo, hi] covering every non-nil value.
func valueRange(series []chartSeries) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.values {
			if v == nil {
				continue
			}
			lo = math.Min(lo, *v)
			hi = math.Max(hi, *v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

func labelStep(dc *gg.Context, labels []string, width float64) int {
	if len(labels) == 0 {
		return 1
	}
	widest := 0.0
	for _, l := range labels {
		if w, _ := dc.MeasureString(l); w > widest {
			widest = w
		}
	}
	fit := int(width / (widest + 10))
	if fit < 1 {
		fit = 1
	}
	return int(math.Ceil(float64(len(labels)) / float64(fit)))
}

func tick(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
