// Package dataset is the tabular collaborator boundary: it decodes input
// CSV files into rows and encodes reconciled result sets back out. The
// orchestration core never touches raw CSV text.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Row maps column names to string values. Column order is irrelevant; row
// order matters only until batching, since the final ordering is
// score-determined.
type Row map[string]string

// ErrNoHeader indicates the input had no header row.
var ErrNoHeader = errors.New("input has no header row")

// ReadCSV decodes a headered CSV stream into rows. A header-only file
// yields zero rows, which downstream splits into zero batches.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
