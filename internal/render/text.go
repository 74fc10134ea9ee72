package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// Summary is the label/temperature/description text block for a current reading.
type Summary struct {
	Label       string `json:"label"`
	Temperature string `json:"temperature"`
	Description string `json:"description"`
}

// Summarize formats a current snapshot for display.
func Summarize(snap weather.CurrentSnapshot) Summary {
	var b strings.Builder
	if snap.Description != "" {
		b.WriteString(snap.Description)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Latitude: %s, Longitude: %s\n", num(snap.Coordinate.Latitude), num(snap.Coordinate.Longitude))
	fmt.Fprintf(&b, "Wind Speed: %s m/s, Wind Direction: %s°", num(snap.WindSpeed), num(snap.WindDirection))

	return Summary{
		Label:       snap.Label,
		Temperature: num(snap.Temperature) + "°C",
		Description: b.String(),
	}
}

// String joins the summary into a printable block.
func (s Summary) String() string {
	return s.Label + "\n" + s.Temperature + "\n" + s.Description
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
