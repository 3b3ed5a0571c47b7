package export

import (
	"fmt"
	"strings"
)

// Table is a flattened list ready to be written out.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a table into a downloadable document.
type Renderer interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// Supported formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ForFormat returns the renderer registered for format.
func ForFormat(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return NewCSVRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Filename builds "<name>.<ext>" with a safe base name.
func Filename(name string, r Renderer) string {
	base := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, name)
	if base == "" {
		base = "export"
	}
	return base + "." + r.Extension()
}

func validate(t Table) error {
	if len(t.Headers) == 0 {
		return fmt.Errorf("export requires at least one header")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(t.Headers))
		}
	}
	return nil
}
