/*
margin.go - Program cost, margin and projected margin

PURPOSE:
  Cost per program is the rate-card rate of each employee's role times the
  hours they allocate to that program, summed. Margin compares that cost to
  the program's recorded recurring revenue. Projected margin reruns the
  same math with each assignment's projected hours from the future-state
  registry; the delta signals improving or declining trend.

SENTINEL CONVENTION:
  Revenue 0 with cost > 0 is margin -100% (work with no attached revenue);
  revenue 0 with cost 0 is margin 0% (no activity, no signal). The two
  cases are deliberately distinguishable and the values are exact.
*/
package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/table"
)

var marginSentinelUnfunded = decimal.NewFromInt(-100)

// =============================================================================
// PROGRAM MARGIN
// =============================================================================

// ProgramMargin is the per-program profitability record handed to callers.
type ProgramMargin struct {
	Revenue decimal.Decimal
	Cost    decimal.Decimal
	Margin  decimal.Decimal

	CostFut   decimal.Decimal
	MarginFut decimal.Decimal
	Delta     decimal.Decimal
}

// Margins computes cost, margin, projected margin and delta for every
// program column. Programs missing from the revenue registry count as
// revenue zero. Pairs missing from the future registry project their
// current hours.
func Margins(t *table.Table, rc RateCard, revenue map[table.Program]decimal.Decimal, future ingest.FutureMap) map[table.Program]ProgramMargin {
	costs := make(map[table.Program]decimal.Decimal)
	costsFut := make(map[table.Program]decimal.Decimal)
	for _, p := range t.Programs() {
		costs[p] = decimal.Zero
		costsFut[p] = decimal.Zero
	}

	for _, id := range t.Employees() {
		r, _ := t.Row(id)
		rate := rc.RateFor(r.Role)
		if rate.IsZero() {
			continue
		}
		for _, p := range t.Programs() {
			hours := t.Allocation(id, p)
			costs[p] = costs[p].Add(hours.Mul(rate))

			projected := future.ProjectedHours(id, p, hours)
			costsFut[p] = costsFut[p].Add(projected.Mul(rate))
		}
	}

	out := make(map[table.Program]ProgramMargin, len(costs))
	for p, cost := range costs {
		rev := decimal.Zero
		if v, ok := revenue[p]; ok {
			rev = v
		}
		current := MarginPct(cost, rev)
		projected := MarginPct(costsFut[p], rev)
		out[p] = ProgramMargin{
			Revenue:   rev,
			Cost:      cost,
			Margin:    current,
			CostFut:   costsFut[p],
			MarginFut: projected,
			Delta:     projected.Sub(current),
		}
	}
	return out
}

// MarginPct is (revenue - cost) / revenue * 100 for positive revenue, with
// the exact sentinel values for the zero-revenue cases.
func MarginPct(cost, revenue decimal.Decimal) decimal.Decimal {
	if revenue.IsPositive() {
		return revenue.Sub(cost).Div(revenue).Mul(hundred)
	}
	if cost.IsPositive() {
		return marginSentinelUnfunded
	}
	return decimal.Zero
}
