// Package export writes simulation output as CSV and XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"building_twin/internal/model"
)

// WriteCSV writes a header of column ids followed by one row per record.
func WriteCSV(w io.Writer, records []model.BalanceRecord) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		header[i] = string(c)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.Timestamp, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
