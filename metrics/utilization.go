/*
utilization.go - Row and role-group utilization

PURPOSE:
  Per-row utilization is the derived column of the canonical table:
  round(sum of allocations / capacity * 100), 0 when capacity is not
  positive. Recompute must run after every structural or value mutation;
  the session layer calls it inside each mutation so callers never observe
  a stale column. Recompute is idempotent.

GROUP MATH:
  Group utilization deliberately uses a fixed standard capacity per
  matched head, NOT each row's recorded capacity. The two measures
  disagree by design; see the group functions below.

SEE ALSO:
  - table package: BackfillCapacity one-time semantics
*/
package metrics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

var hundred = decimal.NewFromInt(100)

// =============================================================================
// ROW UTILIZATION
// =============================================================================

// Recompute rewrites the utilization column for every row and backfills
// capacity with the standard constant the first time a table lacks it.
// Calling it twice in a row yields an identical table.
func Recompute(t *table.Table, standardCapacity decimal.Decimal) {
	if t.IsEmpty() {
		return
	}
	t.BackfillCapacity(standardCapacity)

	for _, id := range t.Employees() {
		r, _ := t.Row(id)
		if !r.Capacity.IsPositive() {
			r.Utilization = 0
			continue
		}
		total := t.AllocatedHours(id)
		r.Utilization = int(total.Div(r.Capacity).Mul(hundred).Round(0).IntPart())
	}
}

// =============================================================================
// GROUP UTILIZATION
// =============================================================================

// GroupResult holds the aggregate numbers for one role group.
type GroupResult struct {
	Pct            decimal.Decimal
	AllocatedHours decimal.Decimal
	TotalCapacity  decimal.Decimal
	Headcount      int
}

// GroupUtilizationFor filters rows whose role (case-insensitive) is in the
// given set and aggregates their allocations. Total capacity is headcount
// times the standard constant, not the sum of recorded capacities. Returns
// zeros when no rows match.
func GroupUtilizationFor(t *table.Table, roles []string, standardCapacity decimal.Decimal) GroupResult {
	want := make(map[string]bool, len(roles))
	for _, r := range roles {
		want[strings.ToUpper(strings.TrimSpace(r))] = true
	}

	var res GroupResult
	res.Pct = decimal.Zero
	res.AllocatedHours = decimal.Zero
	res.TotalCapacity = decimal.Zero

	for _, id := range t.Employees() {
		r, _ := t.Row(id)
		if !want[strings.ToUpper(strings.TrimSpace(r.Role))] {
			continue
		}
		res.Headcount++
		res.AllocatedHours = res.AllocatedHours.Add(t.AllocatedHours(id))
	}
	if res.Headcount == 0 {
		return res
	}

	res.TotalCapacity = standardCapacity.Mul(decimal.NewFromInt(int64(res.Headcount)))
	if res.TotalCapacity.IsPositive() {
		res.Pct = res.AllocatedHours.Div(res.TotalCapacity).Mul(hundred)
	}
	return res
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary carries the dashboard-level aggregates.
type Summary struct {
	AverageUtilization decimal.Decimal
	TotalAllocated     decimal.Decimal
	TotalCapacity      decimal.Decimal
	ProgramTotals      map[table.Program]decimal.Decimal
}

// Summarize computes team-level aggregates over the whole table.
func Summarize(t *table.Table) Summary {
	s := Summary{
		AverageUtilization: decimal.Zero,
		TotalAllocated:     decimal.Zero,
		TotalCapacity:      decimal.Zero,
		ProgramTotals:      make(map[table.Program]decimal.Decimal),
	}
	if t.IsEmpty() {
		return s
	}

	utilSum := decimal.Zero
	for _, id := range t.Employees() {
		r, _ := t.Row(id)
		utilSum = utilSum.Add(decimal.NewFromInt(int64(r.Utilization)))
		s.TotalAllocated = s.TotalAllocated.Add(t.AllocatedHours(id))
		s.TotalCapacity = s.TotalCapacity.Add(r.Capacity)
	}
	s.AverageUtilization = utilSum.Div(decimal.NewFromInt(int64(t.Len())))

	for _, p := range t.Programs() {
		s.ProgramTotals[p] = t.ProgramHours(p)
	}
	return s
}
