// Package tabular parses untrusted CSV submissions into a structured table
// and resolves prediction columns for the evaluators.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Table is the result of parsing a CSV document: an ordered header plus rows
// of string cells aligned by position. No type coercion happens here; cells
// stay strings until an evaluator asks for numbers.
type Table struct {
	Header []string
	Rows   [][]string
}

// RowCount returns the number of data rows (header excluded).
func (t Table) RowCount() int { return len(t.Rows) }

// Parse turns raw CSV text into a Table.
//
// Standard CSV quoting is honored, so cells may contain commas and newlines.
// Cells are trimmed of leading/trailing whitespace and fully empty lines are
// skipped. Parsing fails with ErrFormat when fewer than one header row plus
// one data row remain, or when any row's cell count differs from the
// header's. Ragged rows are rejected strictly rather than padded.
func Parse(text string) (Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.TrimLeadingSpace = true
	// Width is enforced below so that whitespace-only lines can be skipped
	// instead of tripping the reader's own field-count check.
	r.FieldsPerRecord = -1

	var records [][]string
	line := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		line++
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if whitespaceOnly(rec) {
			continue
		}
		if len(records) > 0 && len(rec) != len(records[0]) {
			return Table{}, fmt.Errorf("%w: record %d has %d cells, header has %d",
				ErrFormat, line, len(rec), len(records[0]))
		}
		records = append(records, rec)
	}

	if len(records) < 2 {
		return Table{}, fmt.Errorf("%w: need a header row and at least one data row", ErrFormat)
	}
	return Table{Header: records[0], Rows: records[1:]}, nil
}

// whitespaceOnly reports whether a record came from a whitespace-only line.
// The csv reader skips truly empty lines on its own; a whitespace-only line
// parses into exactly one empty cell. Multi-cell records with empty cells
// (a "," line) are real rows and must be kept.
func whitespaceOnly(rec []string) bool {
	return len(rec) == 1 && rec[0] == ""
}
