/*
futurestate.go - Per-assignment projection of future hours

PURPOSE:
  Long-format rows may carry an assignment end date, a future-hours change
  date and a future-hours value. From those, each (employee, program)
  assignment resolves to one of three states used by projected-margin
  metrics:

    Rolling off: end date within 30 days (past dates count) -> 0 hours
    Ramping:     change date within 60 days AND future != current
                 -> future hours
    Stable:      everything else -> current hours

  The decision is a strict priority order, not a blend: an assignment
  inside both windows is Rolling off.

SEE ALSO:
  - pivot.go: Evaluates this per long-format row, before aggregation
  - metrics package: Substitutes projected hours into the margin math
*/
package ingest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

// =============================================================================
// FUTURE STATE
// =============================================================================

type FutureStatus string

const (
	StatusStable     FutureStatus = "stable"
	StatusRollingOff FutureStatus = "rolling_off"
	StatusRamping    FutureStatus = "ramping"
)

type RampDirection string

const (
	RampIncreasing RampDirection = "increasing"
	RampDecreasing RampDirection = "decreasing"
)

// Decision windows, in days from "now".
const (
	rollOffWindowDays = 30
	rampWindowDays    = 60
)

// AssignmentKey identifies one (employee, program) assignment.
type AssignmentKey struct {
	Employee table.EmployeeID
	Program  table.Program
}

// FutureState is the projected state of one assignment.
type FutureState struct {
	Status         FutureStatus
	ProjectedHours decimal.Decimal

	// Ramping only.
	Direction   RampDirection
	TargetHours decimal.Decimal

	// End date for rolling-off, change date for ramping, nil for stable.
	Date *time.Time
}

// FutureMap is the future-state registry. Pairs absent from the map are
// implicitly Stable with projected hours equal to current hours.
type FutureMap map[AssignmentKey]FutureState

// ProjectedHours returns the projected hours for a pair, defaulting to the
// given current hours when the pair has no recorded future state.
func (fm FutureMap) ProjectedHours(id table.EmployeeID, p table.Program, current decimal.Decimal) decimal.Decimal {
	if fs, ok := fm[AssignmentKey{Employee: id, Program: p}]; ok {
		return fs.ProjectedHours
	}
	return current
}

// =============================================================================
// DERIVATION
// =============================================================================

// DeriveFutureState evaluates the three-way priority decision for one
// assignment row. futureHours is nil when the source had no future-hours
// column; it then defaults to current hours, which disables Ramping.
func DeriveFutureState(current decimal.Decimal, futureHours *decimal.Decimal, endDate, changeDate *time.Time, now time.Time) FutureState {
	future := current
	if futureHours != nil {
		future = *futureHours
	}

	if endDate != nil && !endDate.After(now.AddDate(0, 0, rollOffWindowDays)) {
		return FutureState{
			Status:         StatusRollingOff,
			ProjectedHours: decimal.Zero,
			Date:           endDate,
		}
	}

	if changeDate != nil && !changeDate.After(now.AddDate(0, 0, rampWindowDays)) && !future.Equal(current) {
		dir := RampIncreasing
		if future.LessThan(current) {
			dir = RampDecreasing
		}
		return FutureState{
			Status:         StatusRamping,
			ProjectedHours: future,
			Direction:      dir,
			TargetHours:    future,
			Date:           changeDate,
		}
	}

	return FutureState{Status: StatusStable, ProjectedHours: current}
}
