/*
pivot.go - Long-to-wide conversion of assignment rows

PURPOSE:
  Long/transactional input has one row per (employee, program) assignment.
  The canonical table is wide: one row per employee, one column per
  program, cell = summed hours. The pivot also does the two things that
  aggregation would otherwise destroy:

    1. Role reattachment: the first row observed for an employee supplies
       the role (role is assumed invariant per employee)
    2. Future-state evaluation: end/change dates are row-level metadata,
       so each row is evaluated into the future-state registry before its
       hours are folded into the matrix

AGGREGATION POLICY:
  Duplicate rows for the same (employee, program) pair are additive. The
  output matrix is dense: employees and programs with zero total hours
  still appear; filtering low-activity entries is a presentation concern.

SEE ALSO:
  - futurestate.go: The per-row projection decision
  - normalize.go: Decides when pivoting applies and which columns feed it
*/
package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

// PivotColumns names the resolved long-format columns. ID, Program and
// Hours are required; the rest are optional and empty when unresolved.
type PivotColumns struct {
	ID      string
	Program string
	Hours   string

	Role        string
	EndDate     string
	ChangeDate  string
	FutureHours string
}

// Pivot converts a long-format raw table into the canonical wide table and
// the future-state registry. Rows with a blank employee or program are
// skipped; unparsable hours coerce to zero.
func Pivot(raw *RawTable, cols PivotColumns, now time.Time) (*table.Table, FutureMap) {
	t := table.New()
	future := make(FutureMap)

	for _, row := range raw.Rows {
		id := table.EmployeeID(strings.TrimSpace(raw.Cell(row, cols.ID)))
		prog := table.Program(strings.TrimSpace(raw.Cell(row, cols.Program)))
		if id == "" || prog == "" {
			continue
		}

		hours := parseHours(raw.Cell(row, cols.Hours))

		// First row observed for an employee supplies the role.
		if _, ok := t.Row(id); !ok {
			role := ""
			if cols.Role != "" {
				role = strings.TrimSpace(raw.Cell(row, cols.Role))
			}
			t.AddEmployee(id, role, decimal.Zero)
		}
		if !t.HasProgram(prog) {
			t.AddProgram(prog)
		}

		// Additive: duplicate assignment rows sum, never overwrite.
		t.SetAllocation(id, prog, t.Allocation(id, prog).Add(hours))

		future[AssignmentKey{Employee: id, Program: prog}] = deriveRowFutureState(raw, row, cols, hours, now)
	}

	return t, future
}

func deriveRowFutureState(raw *RawTable, row []string, cols PivotColumns, hours decimal.Decimal, now time.Time) FutureState {
	var endDate, changeDate *time.Time
	if cols.EndDate != "" {
		endDate = parseDate(raw.Cell(row, cols.EndDate))
	}
	if cols.ChangeDate != "" {
		changeDate = parseDate(raw.Cell(row, cols.ChangeDate))
	}

	var futureHours *decimal.Decimal
	if cols.FutureHours != "" {
		v := parseHours(raw.Cell(row, cols.FutureHours))
		futureHours = &v
	}

	return DeriveFutureState(hours, futureHours, endDate, changeDate, now)
}
