/*
state.go - Serializable session snapshots for the scenario store

PURPOSE:
  A State is everything needed to reconstruct a session's data: the table
  rows in order, the program column order, the revenue registry and the
  future-state registry. It marshals to JSON (decimals as strings) and is
  what the sqlite scenario store persists.

  Importing a State behaves like an upload: wholesale replacement,
  history cleared, recompute run.
*/
package session

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/metrics"
	"github.com/warp/staffing-engine/table"
)

// =============================================================================
// STATE
// =============================================================================

type State struct {
	Programs  []string                   `json:"programs"`
	Employees []EmployeeState            `json:"employees"`
	Revenue   map[string]decimal.Decimal `json:"revenue"`
	Future    []FutureEntry              `json:"future,omitempty"`
}

type EmployeeState struct {
	Name        string                     `json:"name"`
	Role        string                     `json:"role,omitempty"`
	Capacity    decimal.Decimal            `json:"capacity"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
}

type FutureEntry struct {
	Employee       string          `json:"employee"`
	Program        string          `json:"program"`
	Status         string          `json:"status"`
	ProjectedHours decimal.Decimal `json:"projected_hours"`
	TargetHours    decimal.Decimal `json:"target_hours,omitempty"`
	Direction      string          `json:"direction,omitempty"`
	Date           *time.Time      `json:"date,omitempty"`
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

// Export snapshots the session's data. The result shares no state with
// the session.
func (s *Session) Export() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{Revenue: make(map[string]decimal.Decimal, len(s.revenue))}
	for _, p := range s.tbl.Programs() {
		st.Programs = append(st.Programs, string(p))
	}
	for _, id := range s.tbl.Employees() {
		r, _ := s.tbl.Row(id)
		es := EmployeeState{
			Name:        string(id),
			Role:        r.Role,
			Capacity:    r.Capacity,
			Allocations: make(map[string]decimal.Decimal, len(r.Allocations)),
		}
		for p, v := range r.Allocations {
			es.Allocations[string(p)] = v
		}
		st.Employees = append(st.Employees, es)
	}
	for p, v := range s.revenue {
		st.Revenue[string(p)] = v
	}
	for k, fs := range s.future {
		st.Future = append(st.Future, FutureEntry{
			Employee:       string(k.Employee),
			Program:        string(k.Program),
			Status:         string(fs.Status),
			ProjectedHours: fs.ProjectedHours,
			TargetHours:    fs.TargetHours,
			Direction:      string(fs.Direction),
			Date:           fs.Date,
		})
	}
	return st
}

// Import replaces the session's data with a previously exported State.
func (s *Session) Import(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := table.New()
	for _, p := range st.Programs {
		t.AddProgram(table.Program(p))
	}
	for _, es := range st.Employees {
		id := table.EmployeeID(es.Name)
		t.AddEmployee(id, es.Role, es.Capacity)
		t.SetCapacity(id, es.Capacity)
		for p, v := range es.Allocations {
			if !t.HasProgram(table.Program(p)) {
				t.AddProgram(table.Program(p))
			}
			t.SetAllocation(id, table.Program(p), v)
		}
	}

	s.tbl = t
	s.revenue = make(map[table.Program]decimal.Decimal, len(st.Revenue))
	for p, v := range st.Revenue {
		s.revenue[table.Program(p)] = v
	}
	s.future = make(ingest.FutureMap, len(st.Future))
	for _, fe := range st.Future {
		s.future[ingest.AssignmentKey{
			Employee: table.EmployeeID(fe.Employee),
			Program:  table.Program(fe.Program),
		}] = ingest.FutureState{
			Status:         ingest.FutureStatus(fe.Status),
			ProjectedHours: fe.ProjectedHours,
			TargetHours:    fe.TargetHours,
			Direction:      ingest.RampDirection(fe.Direction),
			Date:           fe.Date,
		}
	}
	s.hist.clear()
	metrics.Recompute(s.tbl, s.settings.StandardCapacity)
}
