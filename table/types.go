/*
Package table provides the canonical staffing table.

PURPOSE:
  This package contains the wide-format allocation matrix that the rest of
  the engine operates on: one row per employee, a fixed set of metadata
  columns (role, capacity, utilization) and a dynamic set of program
  columns holding allocated hours.

KEY CONCEPTS IN THIS FILE (types.go):
  - EmployeeID/Program: Type-safe identifiers (row and column keys)
  - Row: Per-employee record (role, capacity, allocations, utilization)
  - Table: The canonical matrix with insertion-ordered rows and columns

DESIGN PRINCIPLES:
  1. Explicit schema: program columns are a keyed mapping, never inferred
     from a cell's numeric type
  2. Precision: Uses decimal.Decimal for hours to avoid floating-point errors
  3. Derived columns stay derived: Utilization is written only by the
     metrics recompute, never by callers
  4. Dense matrix: every (employee, program) cell reads as a value;
     missing entries read as zero

USAGE:
  t := table.New()
  t.AddEmployee("Alice", "CP", decimal.NewFromInt(152))
  t.AddProgram("Acme")
  t.SetAllocation("Alice", "Acme", decimal.NewFromInt(40))

SEE ALSO:
  - errors.go: Sentinel errors for invalid mutation targets
  - ingest package: Builds tables from raw CSV/XLSX input
  - metrics package: Derives utilization, cost and margin from a table
*/
package table

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID is the unique row key of the canonical table.
type EmployeeID string

// Program is a dynamic column: a client/account to which hours are allocated.
type Program string

// =============================================================================
// ROW - Per-employee record
// =============================================================================

// Row holds the fixed metadata columns plus the allocation cells for one
// employee. Allocations may omit zero entries; reads go through
// Table.Allocation which fills the zero.
type Row struct {
	Role        string
	Capacity    decimal.Decimal
	Allocations map[Program]decimal.Decimal

	// Utilization is allocated hours as a rounded percentage of capacity.
	// Derived by the metrics recompute; stale between a mutation and the
	// recompute that every mutation path runs before returning.
	Utilization int
}

// =============================================================================
// TABLE - Canonical wide matrix
// =============================================================================

// Table is the canonical staffing table. Rows and program columns keep
// insertion order so output is stable across recomputes.
type Table struct {
	order      []EmployeeID
	rows       map[EmployeeID]*Row
	programs   []Program
	programSet map[Program]bool

	// hasCapacity records whether capacity was ever provided (from input or
	// backfill). Backfill happens once; existing values are never overwritten.
	hasCapacity bool
}

func New() *Table {
	return &Table{
		rows:       make(map[EmployeeID]*Row),
		programSet: make(map[Program]bool),
	}
}

func (t *Table) Len() int      { return len(t.order) }
func (t *Table) IsEmpty() bool { return len(t.order) == 0 }

// Employees returns the row keys in insertion order.
func (t *Table) Employees() []EmployeeID {
	out := make([]EmployeeID, len(t.order))
	copy(out, t.order)
	return out
}

// Programs returns the dynamic columns in insertion order.
func (t *Table) Programs() []Program {
	out := make([]Program, len(t.programs))
	copy(out, t.programs)
	return out
}

func (t *Table) HasProgram(p Program) bool { return t.programSet[p] }

// Row returns the record for an employee. The pointer is live; only the
// session layer mutates through it.
func (t *Table) Row(id EmployeeID) (*Row, bool) {
	r, ok := t.rows[id]
	return r, ok
}

// =============================================================================
// MUTATORS - Used by ingestion and the session layer
// =============================================================================

// AddEmployee appends a row with zero allocations. Duplicate identities are
// rejected, never overwritten.
func (t *Table) AddEmployee(id EmployeeID, role string, capacity decimal.Decimal) error {
	if _, ok := t.rows[id]; ok {
		return ErrEmployeeExists
	}
	t.rows[id] = &Row{
		Role:        role,
		Capacity:    capacity,
		Allocations: make(map[Program]decimal.Decimal),
	}
	t.order = append(t.order, id)
	return nil
}

func (t *Table) RemoveEmployee(id EmployeeID) error {
	if _, ok := t.rows[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(t.rows, id)
	for i, e := range t.order {
		if e == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// AddProgram appends a dynamic column. Every row's cell reads as zero until
// allocated. Duplicate names are rejected.
func (t *Table) AddProgram(p Program) error {
	if t.programSet[p] {
		return ErrProgramExists
	}
	t.programs = append(t.programs, p)
	t.programSet[p] = true
	return nil
}

// RemoveProgram drops the column and its cells from every row.
func (t *Table) RemoveProgram(p Program) error {
	if !t.programSet[p] {
		return ErrProgramNotFound
	}
	delete(t.programSet, p)
	for i, existing := range t.programs {
		if existing == p {
			t.programs = append(t.programs[:i], t.programs[i+1:]...)
			break
		}
	}
	for _, r := range t.rows {
		delete(r.Allocations, p)
	}
	return nil
}

// SetAllocation writes one cell. Both the employee and the program must
// already exist; hours must be non-negative.
func (t *Table) SetAllocation(id EmployeeID, p Program, hours decimal.Decimal) error {
	r, ok := t.rows[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	if !t.programSet[p] {
		return ErrProgramNotFound
	}
	if hours.IsNegative() {
		return ErrNegativeHours
	}
	r.Allocations[p] = hours
	return nil
}

// SetCapacity writes a row's capacity and marks the table as having capacity
// data, which disables the one-time backfill.
func (t *Table) SetCapacity(id EmployeeID, capacity decimal.Decimal) error {
	r, ok := t.rows[id]
	if !ok {
		return ErrEmployeeNotFound
	}
	r.Capacity = capacity
	t.hasCapacity = true
	return nil
}

// HasCapacity reports whether capacity was ever provided or backfilled.
func (t *Table) HasCapacity() bool { return t.hasCapacity }

// BackfillCapacity sets every row's capacity to the standard constant the
// first time a table lacks capacity data. Subsequent calls are no-ops so
// recorded capacities are never silently overwritten.
func (t *Table) BackfillCapacity(standard decimal.Decimal) {
	if t.hasCapacity {
		return
	}
	for _, r := range t.rows {
		r.Capacity = standard
	}
	t.hasCapacity = true
}

// =============================================================================
// READERS
// =============================================================================

// Allocation reads one cell, zero when unset.
func (t *Table) Allocation(id EmployeeID, p Program) decimal.Decimal {
	if r, ok := t.rows[id]; ok {
		if v, ok := r.Allocations[p]; ok {
			return v
		}
	}
	return decimal.Zero
}

// AllocatedHours sums all program cells for one employee.
func (t *Table) AllocatedHours(id EmployeeID) decimal.Decimal {
	total := decimal.Zero
	if r, ok := t.rows[id]; ok {
		for _, v := range r.Allocations {
			total = total.Add(v)
		}
	}
	return total
}

// ProgramHours sums one program column across all employees.
func (t *Table) ProgramHours(p Program) decimal.Decimal {
	total := decimal.Zero
	for _, r := range t.rows {
		if v, ok := r.Allocations[p]; ok {
			total = total.Add(v)
		}
	}
	return total
}

// =============================================================================
// COPY / COMPARE - Used by the undo history
// =============================================================================

// Clone returns a deep copy. History snapshots rely on this being complete:
// a restored table must not share state with the one it was copied from.
func (t *Table) Clone() *Table {
	c := New()
	c.programs = append([]Program(nil), t.programs...)
	for _, p := range t.programs {
		c.programSet[p] = true
	}
	c.order = append([]EmployeeID(nil), t.order...)
	for id, r := range t.rows {
		alloc := make(map[Program]decimal.Decimal, len(r.Allocations))
		for p, v := range r.Allocations {
			alloc[p] = v
		}
		c.rows[id] = &Row{
			Role:        r.Role,
			Capacity:    r.Capacity,
			Allocations: alloc,
			Utilization: r.Utilization,
		}
	}
	c.hasCapacity = t.hasCapacity
	return c
}

// Equal compares two tables field for field, treating missing allocation
// entries as zero cells.
func (t *Table) Equal(other *Table) bool {
	if t.Len() != other.Len() || len(t.programs) != len(other.programs) {
		return false
	}
	for i, p := range t.programs {
		if other.programs[i] != p {
			return false
		}
	}
	for i, id := range t.order {
		if other.order[i] != id {
			return false
		}
		a, b := t.rows[id], other.rows[id]
		if a.Role != b.Role || a.Utilization != b.Utilization || !a.Capacity.Equal(b.Capacity) {
			return false
		}
		for _, p := range t.programs {
			if !t.Allocation(id, p).Equal(other.Allocation(id, p)) {
				return false
			}
		}
	}
	return t.hasCapacity == other.hasCapacity
}
