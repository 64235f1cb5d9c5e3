package convert

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"io"
)

// CSVConverter renders CSV records as an HTML table, first row as headers.
type CSVConverter struct{}

func (c *CSVConverter) Convert(r io.Reader) ([]byte, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	buf.WriteString("<table><thead><tr>")
	for _, cell := range records[0] {
		buf.WriteString("<th>")
		buf.WriteString(html.EscapeString(cell))
		buf.WriteString("</th>")
	}
	buf.WriteString("</tr></thead><tbody>\n")
	for _, row := range records[1:] {
		buf.WriteString("<tr>")
		for _, cell := range row {
			buf.WriteString("<td>")
			buf.WriteString(html.EscapeString(cell))
			buf.WriteString("</td>")
		}
		buf.WriteString("</tr>\n")
	}
	buf.WriteString("</tbody></table>\n")
	return buf.Bytes(), nil
}
