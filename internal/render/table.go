package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/i474232898/weather-lookup/internal/weather"
)

var tableTmpl = template.Must(template.New("table").Parse(
	`<table><caption>{{.Title}}</caption><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td data-label="{{.Label}}">{{.Value}}</td>{{end}}</tr>
{{- end}}
</table>`))

type tableCell struct {
	Label string
	Value string
}

// HTMLTable renders s as an HTML table with one row per day.
func HTMLTable(s weather.DailySeries) (string, error) {
	cols := Columns(s)

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}

	rows := make([][]tableCell, s.Len())
	for i := range rows {
		row := make([]tableCell, len(cols))
		for j, c := range cols {
			row[j] = tableCell{Label: c.Header, Value: c.Cell(i)}
		}
		rows[i] = row
	}

	var buf bytes.Buffer
	err := tableTmpl.Execute(&buf, struct {
		Title   string
		Headers []string
		Rows    [][]tableCell
	}{s.Title, headers, rows})
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return buf.String(), nil
}

// TextTable writes s as aligned plain-text columns.
func TextTable(w io.Writer, s weather.DailySeries) error {
	cols := Columns(s)

	if s.Title != "" {
		if _, err := fmt.Fprintln(w, s.Title); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for i := 0; i < s.Len(); i++ {
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.Cell(i)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
