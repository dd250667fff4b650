// Package output persists normalized measurement tables to disk.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/aqsfetch/aqsfetch/internal/aqs"
)

// timestampLayout is the format timestamps take in the CSV output.
const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"timestamp", "site_id", "parameter_code", "sample_measurement", "method_code", "sample_duration_code"}

// CSVSink writes measurement tables as comma-delimited text with a header
// row and no index column.
type CSVSink struct{}

// Save implements aqs.Sink.
func (CSVSink) Save(table aqs.MeasurementTable, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range table {
		record := []string{
			m.Timestamp.Format(timestampLayout),
			m.SiteID,
			m.ParameterCode,
			strconv.FormatFloat(m.Value, 'g', -1, 64),
			m.MethodCode,
			m.SampleDurationCode,
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush output: %w", err)
	}
	return f.Close()
}
