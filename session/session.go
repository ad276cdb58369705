/*
Package session owns one user's canonical table and its registries.

PURPOSE:
  The engine packages (ingest, metrics, table) are pure functions over
  values. A Session is the explicit state object tying them together for
  one logical user: the canonical table, the program revenue registry, the
  future-state registry, the undo history and the settings they share.
  There is no ambient global state; callers hold a Session and every
  engine call goes through it.

CONSISTENCY RULE:
  Every mutation runs the utilization recompute before returning, so a
  Session's table is never observable between a change and its derived
  column update. Margin and cost metrics are computed on demand, never
  cached.

CONCURRENCY:
  One mutex per session serializes mutations; sessions are fully isolated
  from each other (one table instance per session key, see manager.go).

SEE ALSO:
  - history.go: The bounded undo stack
  - manager.go: Session-per-key lifecycle and bootstrap
  - state.go: Snapshot export/import for the scenario store
*/
package session

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/metrics"
	"github.com/warp/staffing-engine/table"
)

// ErrNothingToUndo is returned when the history stack is empty.
var ErrNothingToUndo = errors.New("nothing to undo")

// =============================================================================
// SETTINGS
// =============================================================================

// Settings are the per-deployment constants every session shares.
type Settings struct {
	// StandardCapacity is the hours-per-period ceiling backfilled when a
	// table arrives without capacity data. Default 152.
	StandardCapacity decimal.Decimal

	// RateCard drives cost and margin derivation.
	RateCard metrics.RateCard
}

// =============================================================================
// SESSION
// =============================================================================

type Session struct {
	mu sync.Mutex

	ID       string
	settings Settings

	tbl     *table.Table
	revenue map[table.Program]decimal.Decimal
	future  ingest.FutureMap
	hist    history
}

func New(id string, settings Settings) *Session {
	return &Session{
		ID:       id,
		settings: settings,
		tbl:      table.New(),
		revenue:  make(map[table.Program]decimal.Decimal),
		future:   make(ingest.FutureMap),
	}
}

// Load replaces the session state wholesale with an ingestion result:
// upload and reset both land here. History is cleared — undo never crosses
// a dataset boundary.
func (s *Session) Load(res *ingest.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tbl = res.Table
	s.revenue = make(map[table.Program]decimal.Decimal, len(res.Revenue))
	for p, v := range res.Revenue {
		s.revenue[p] = v
	}
	s.future = make(ingest.FutureMap, len(res.Future))
	for k, v := range res.Future {
		s.future[k] = v
	}
	s.hist.clear()
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
}

// =============================================================================
// READS - All return copies; callers never touch live state
// =============================================================================

// Table returns a deep copy of the canonical table.
func (s *Session) Table() *table.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tbl.Clone()
}

// Revenue returns a copy of the program revenue registry.
func (s *Session) Revenue() map[table.Program]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[table.Program]decimal.Decimal, len(s.revenue))
	for p, v := range s.revenue {
		out[p] = v
	}
	return out
}

// Margins computes the per-program margin metrics on demand.
func (s *Session) Margins() map[table.Program]metrics.ProgramMargin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.Margins(s.tbl, s.settings.RateCard, s.revenue, s.future)
}

// GroupUtilization aggregates the rows whose role is in the given set.
func (s *Session) GroupUtilization(roles []string) metrics.GroupResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.GroupUtilizationFor(s.tbl, roles, s.settings.StandardCapacity)
}

// Summary computes the team-level aggregates.
func (s *Session) Summary() metrics.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metrics.Summarize(s.tbl)
}

// HistoryLen reports the current undo depth.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.len()
}

// =============================================================================
// MUTATIONS - Validate, snapshot, apply, recompute
// =============================================================================
// Validation happens before the history push so rejected operations leave
// both the table and the undo stack untouched.

// SetCell writes one allocation cell. The employee and program must exist
// and hours must be non-negative.
func (s *Session) SetCell(id table.EmployeeID, p table.Program, hours decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tbl.Row(id); !ok {
		return table.ErrEmployeeNotFound
	}
	if !s.tbl.HasProgram(p) {
		return table.ErrProgramNotFound
	}
	if hours.IsNegative() {
		return table.ErrNegativeHours
	}

	s.hist.push(s.tbl, s.revenue)
	s.tbl.SetAllocation(id, p, hours)
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
	return nil
}

// AddEmployee appends a zero-allocation row at standard capacity.
// Existing identities are rejected, never overwritten.
func (s *Session) AddEmployee(id table.EmployeeID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tbl.Row(id); ok {
		return table.ErrEmployeeExists
	}

	s.hist.push(s.tbl, s.revenue)
	s.tbl.AddEmployee(id, role, s.settings.StandardCapacity)
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
	return nil
}

// RemoveEmployee drops a row.
func (s *Session) RemoveEmployee(id table.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tbl.Row(id); !ok {
		return table.ErrEmployeeNotFound
	}

	s.hist.push(s.tbl, s.revenue)
	s.tbl.RemoveEmployee(id)
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
	return nil
}

// AddProgram appends a zero-hours column and records its revenue.
// Existing names are rejected, never overwritten.
func (s *Session) AddProgram(p table.Program, revenue decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tbl.HasProgram(p) {
		return table.ErrProgramExists
	}

	s.hist.push(s.tbl, s.revenue)
	s.tbl.AddProgram(p)
	s.revenue[p] = revenue
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
	return nil
}

// RemoveProgram drops the column and its revenue registry entry, so a
// later re-add does not resurrect stale revenue.
func (s *Session) RemoveProgram(p table.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tbl.HasProgram(p) {
		return table.ErrProgramNotFound
	}

	s.hist.push(s.tbl, s.revenue)
	s.tbl.RemoveProgram(p)
	delete(s.revenue, p)
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
	return nil
}

// Undo restores the most recently pushed snapshot, table and revenue
// registry together. Snapshots were consistent when pushed, so no
// recompute is needed.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.hist.pop()
	if !ok {
		return ErrNothingToUndo
	}
	s.tbl = prev.tbl
	s.revenue = prev.revenue
	return nil
}
