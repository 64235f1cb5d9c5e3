// Package convert turns supported input formats into HTML for the section
// chunker. Conversion capabilities live in an explicit Registry that entry
// points construct and pass down; there is no process-wide registration.
package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format identifies a supported input document kind.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatCSV      Format = "csv"
	FormatText     Format = "text"
)

// Converter turns one raw document into HTML.
type Converter interface {
	Convert(r io.Reader) ([]byte, error)
}

// Registry maps formats to their converters.
type Registry map[Format]Converter

// DefaultRegistry covers every built-in format.
func DefaultRegistry() Registry {
	return Registry{
		FormatHTML:     &HTMLConverter{},
		FormatMarkdown: &MarkdownConverter{},
		FormatPDF:      &PDFConverter{FallbackPdftotext: true},
		FormatDOCX:     &DOCXConverter{},
		FormatCSV:      &CSVConverter{},
		FormatText:     &TextConverter{},
	}
}

// Convert dispatches to the converter registered for format.
func (reg Registry) Convert(format Format, r io.Reader) ([]byte, error) {
	c, ok := reg[format]
	if !ok {
		return nil, fmt.Errorf("no converter registered for format %q", format)
	}
	out, err := c.Convert(r)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", format, err)
	}
	return out, nil
}

// Supports reports whether the registry can handle format.
func (reg Registry) Supports(format Format) bool {
	_, ok := reg[format]
	return ok
}

var extFormats = map[string]Format{
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".csv":      FormatCSV,
	".txt":      FormatText,
}

var mimeFormats = map[string]Format{
	"text/html":       FormatHTML,
	"application/xhtml+xml": FormatHTML,
	"text/markdown":   FormatMarkdown,
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"text/csv":   FormatCSV,
	"text/plain": FormatText,
}

// ForFile detects the format from a filename extension.
func ForFile(filename string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(filename))]
	return f, ok
}

// ForContentType detects the format from a MIME content type, ignoring any
// parameters such as charset.
func ForContentType(contentType string) (Format, bool) {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	f, ok := mimeFormats[strings.ToLower(strings.TrimSpace(mediaType))]
	return f, ok
}
