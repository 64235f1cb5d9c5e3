package convert

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
)

// TextConverter turns plain text into HTML, one p element per blank-line
// separated paragraph.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var buf bytes.Buffer
	var current strings.Builder

	flush := func() {
		para := strings.TrimSpace(current.String())
		current.Reset()
		if para == "" {
			return
		}
		buf.WriteString("<p>")
		buf.WriteString(html.EscapeString(para))
		buf.WriteString("</p>\n")
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return buf.Bytes(), nil
}
