package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"strings"
)

// CSVConverter renders a CSV page as a table; the first row is the header.
type CSVConverter struct{}

func (c *CSVConverter) Convert(data []byte, filename string) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<table>\n<thead><tr>")
	for _, h := range records[0] {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, row := range records[1:] {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String(), nil
}
