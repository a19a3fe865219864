// Package export renders tabular reports into downloadable documents.
package export

import "fmt"

// Table is a titled grid of string cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a Table into document bytes.
type Renderer interface {
	Render(table Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer for "csv" or "pdf".
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "csv":
		return CSV{}, nil
	case "pdf":
		return PDF{}, nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

func validate(table Table) error {
	if len(table.Headers) == 0 {
		return fmt.Errorf("export requires at least one header")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(table.Headers))
		}
	}
	return nil
}
