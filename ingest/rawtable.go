/*
rawtable.go - Raw tabular input from CSV and XLSX files

PURPOSE:
  Both upload formats reduce to the same thing before normalization: a
  header row plus string cells. ReadCSV and ReadWorkbook produce that
  shape; everything downstream (normalize.go, pivot.go) is format-agnostic.

COERCION POLICY:
  Cell-level problems never fail a load. Numeric parsing strips currency
  formatting ("$", ",") and coerces unparsable values to zero; date parsing
  tries a set of permissive layouts and coerces unparsable values to nil.
  Only an unreadable file (no header row, malformed CSV structure) is a
  load error.

SEE ALSO:
  - normalize.go: Consumes RawTable
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyInput is returned when a file has no header row.
var ErrEmptyInput = errors.New("input has no header row")

// =============================================================================
// RAW TABLE
// =============================================================================

// RawTable is an unnormalized grid: trimmed headers plus string cells.
// Rows are padded so every row has one cell per header.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the value under the given header for a row, empty string
// when the header is unknown.
func (rt *RawTable) Cell(row []string, header string) string {
	for i, h := range rt.Headers {
		if h == header {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

func newRawTable(records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(headers))
		for i := range headers {
			if i < len(rec) {
				row[i] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return &RawTable{Headers: headers, Rows: rows}, nil
}

// =============================================================================
// READERS
// =============================================================================

// ReadCSV parses a CSV stream into a RawTable. Ragged rows are tolerated;
// structurally malformed CSV is a load error.
func ReadCSV(r io.Reader) (*RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return newRawTable(records)
}

// ReadWorkbook parses the first sheet of an XLSX workbook into a RawTable.
func ReadWorkbook(r io.Reader) (*RawTable, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	return newRawTable(records)
}

// =============================================================================
// CELL COERCION
// =============================================================================

// parseHours coerces a cell to non-negative hours, zero when unparsable or
// negative.
func parseHours(s string) decimal.Decimal {
	v := parseNumber(s)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// parseNumber coerces a cell to a decimal, stripping currency formatting.
// Unparsable values coerce to zero rather than failing the load.
func parseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// parseDate coerces a cell to a date, nil when unparsable or empty.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
