/*
normalize.go - The ingestion pipeline: raw table to canonical table

PURPOSE:
  Takes heterogeneous tabular input and produces the canonical wide table
  plus the two registries populated at ingestion time: program revenue and
  per-assignment future state.

PIPELINE (each step optional, based on what resolves):
  1. Headers are whitespace-trimmed (done by the readers)
  2. Revenue column: currency-coerced, aggregated by program using MAX
     (duplicate rows describe the same program), then dropped so it never
     pollutes downstream numeric aggregation
  3. Identity, program and role columns resolved
  4. Hours column resolved, falling back to any header containing
     "Allocated"
  5. Optional end-date / change-date / future-hours columns resolved
  6. Identity AND program resolving means long format -> pivot;
     otherwise the input is already wide and is normalized in place

FAILURE BEHAVIOR:
  Ingestion never panics past this boundary. Cell-level garbage coerces to
  safe defaults; a fully malformed file yields ErrMalformedInput with an
  empty result, and callers keep their prior state.

SEE ALSO:
  - resolver.go: Candidate lists
  - pivot.go: Long-format conversion
*/
package ingest

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

// ErrMalformedInput is returned when a file cannot be processed at all.
// The accompanying result is empty; callers must check rather than assume
// success.
var ErrMalformedInput = errors.New("could not process file")

// =============================================================================
// RESULT
// =============================================================================

// Result is the full output of ingestion: the normalized table and the
// registries whose source data does not survive pivoting.
type Result struct {
	Table   *table.Table
	Revenue map[table.Program]decimal.Decimal
	Future  FutureMap

	// Pivoted reports whether the input was long format.
	Pivoted bool
}

func emptyResult() *Result {
	return &Result{
		Table:   table.New(),
		Revenue: make(map[table.Program]decimal.Decimal),
		Future:  make(FutureMap),
	}
}

// =============================================================================
// INGEST
// =============================================================================

// Ingest normalizes a raw table relative to "now" (which anchors the
// future-state windows). It returns an empty result and ErrMalformedInput
// on catastrophic failure, never a partial table.
func Ingest(raw *RawTable, now time.Time) (res *Result, err error) {
	// Mirror of the upstream catch-all: a panic while walking malformed
	// input surfaces as an explicit empty result, not a crash.
	defer func() {
		if r := recover(); r != nil {
			res = emptyResult()
			err = ErrMalformedInput
		}
	}()

	if raw == nil || len(raw.Headers) == 0 {
		return emptyResult(), ErrMalformedInput
	}

	res = emptyResult()
	dropped := map[string]bool{}

	// Step 2: revenue extraction, then drop the column.
	if mrrCol, ok := Resolve(raw.Headers, revenueCandidates); ok {
		if progCol, ok := Resolve(raw.Headers, programCandidates); ok {
			for _, row := range raw.Rows {
				prog := table.Program(strings.TrimSpace(raw.Cell(row, progCol)))
				if prog == "" {
					continue
				}
				v := parseNumber(raw.Cell(row, mrrCol))
				if existing, ok := res.Revenue[prog]; !ok || v.GreaterThan(existing) {
					res.Revenue[prog] = v
				}
			}
		}
		dropped[mrrCol] = true
	}

	// Step 3: core columns.
	idCol, idOK := Resolve(raw.Headers, identityCandidates)
	progCol, progOK := Resolve(raw.Headers, programCandidates)
	roleCol, _ := Resolve(raw.Headers, roleCandidates)

	// Step 6: long format iff both identity and program resolve.
	if idOK && progOK {
		hoursCol, ok := Resolve(raw.Headers, hoursCandidates)
		if !ok {
			hoursCol, ok = resolveHoursFallback(raw.Headers, dropped)
		}
		if ok {
			cols := PivotColumns{
				ID:      idCol,
				Program: progCol,
				Hours:   hoursCol,
				Role:    roleCol,
			}
			cols.EndDate, _ = Resolve(raw.Headers, endDateCandidates)
			cols.ChangeDate, _ = Resolve(raw.Headers, changeDateCandidates)
			cols.FutureHours, _ = Resolve(raw.Headers, futureHoursCandidates)

			res.Table, res.Future = Pivot(raw, cols, now)
			res.Pivoted = true
			return res, nil
		}
		// No resolvable hours column: degrade to wide handling below.
	}

	res.Table = normalizeWide(raw, idCol, idOK, roleCol, dropped)
	return res, nil
}

// resolveHoursFallback applies the "Allocated" fragment match, skipping
// columns already consumed by revenue extraction.
func resolveHoursFallback(headers []string, dropped map[string]bool) (string, bool) {
	kept := make([]string, 0, len(headers))
	for _, h := range headers {
		if !dropped[h] {
			kept = append(kept, h)
		}
	}
	return ResolveContaining(kept, hoursFallbackFragment)
}

// =============================================================================
// WIDE NORMALIZATION
// =============================================================================

// Utilization header carried by re-imported exports; always ignored since
// utilization is derived, never authored.
var utilizationHeaders = []string{"Current Hours to Target", "Utilization"}

// normalizeWide reads an already-wide table: identity plus optional Role
// and Capacity columns, everything else a program column.
func normalizeWide(raw *RawTable, idCol string, idOK bool, roleCol string, dropped map[string]bool) *table.Table {
	t := table.New()
	if len(raw.Headers) == 0 {
		return t
	}

	// Best effort when no identity candidate matches: the leftmost column
	// keys the rows.
	if !idOK {
		idCol = raw.Headers[0]
	}
	capCol, capOK := Resolve(raw.Headers, []string{"Capacity"})
	utilCol, _ := Resolve(raw.Headers, utilizationHeaders)

	var programCols []string
	for _, h := range raw.Headers {
		if h == idCol || h == roleCol || h == capCol || h == utilCol || dropped[h] || h == "" {
			continue
		}
		programCols = append(programCols, h)
	}
	for _, p := range programCols {
		t.AddProgram(table.Program(p))
	}

	for _, row := range raw.Rows {
		id := table.EmployeeID(strings.TrimSpace(raw.Cell(row, idCol)))
		if id == "" {
			continue
		}
		role := ""
		if roleCol != "" {
			role = strings.TrimSpace(raw.Cell(row, roleCol))
		}
		if r, ok := t.Row(id); ok {
			// Duplicate identity: later rows refresh the metadata.
			r.Role = role
		} else {
			t.AddEmployee(id, role, decimal.Zero)
		}
		if capOK {
			t.SetCapacity(id, parseNumber(raw.Cell(row, capCol)))
		}
		for _, p := range programCols {
			t.SetAllocation(id, table.Program(p), parseHours(raw.Cell(row, p)))
		}
	}
	return t
}
