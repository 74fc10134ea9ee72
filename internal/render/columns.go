// Package render turns projected weather data into display output: a text
// summary, tables (HTML and plain text) and PNG charts.
package render

import (
	"strconv"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Column is one table column over a DailySeries.
type Column struct {
	Header string
	Cell   func(i int) string
}

// Columns returns the table columns present in s, in display order.
func Columns(s weather.DailySeries) []Column {
	cols := []Column{{Header: "Date", Cell: func(i int) string { return s.Categories[i] }}}

	add := func(header string, values []*float64, unit string) {
		if values == nil {
			return
		}
		cols = append(cols, Column{Header: header, Cell: func(i int) string { return formatValue(values[i], unit) }})
	}
	addText := func(header string, values []string) {
		if values == nil {
			return
		}
		cols = append(cols, Column{Header: header, Cell: func(i int) string { return values[i] }})
	}

	add("Max Temperature", s.TemperatureMax, "°C")
	add("Min Temperature", s.TemperatureMin, "°C")
	add("Mean Temperature", s.TemperatureMean, "°C")
	addText("Sunrise", s.Sunrise)
	addText("Sunset", s.Sunset)
	add("UV Index Max", s.UVIndexMax, "")
	add("Precipitation Sum", s.PrecipitationSum, " mm")

	return cols
}

func formatValue(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
