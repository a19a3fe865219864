package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV renders tables as RFC 4180 CSV.
type CSV struct{}

// ContentType implements Renderer.
func (CSV) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (CSV) Extension() string { return "csv" }

// Render implements Renderer.
func (CSV) Render(table Table) ([]byte, error) {
	if err := validate(table); err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return nil, fmt.Errorf("write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}
