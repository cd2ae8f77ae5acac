package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteCSV(buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV writes the dataset to w with a header row.
func WriteCSV(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return fmt.Errorf("csv requires at least one header")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	if err := cw.WriteAll(data.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
