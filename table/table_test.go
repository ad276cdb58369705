package table_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/table"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seeded(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New()
	if err := tbl.AddProgram("Accenture"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddProgram("Google"); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddEmployee("Alice", "CE", d(152)); err != nil {
		t.Fatal(err)
	}
	if err := tbl.AddEmployee("Bob", "CP", d(152)); err != nil {
		t.Fatal(err)
	}
	tbl.SetAllocation("Alice", "Accenture", d(40))
	tbl.SetAllocation("Alice", "Google", d(60))
	tbl.SetAllocation("Bob", "Accenture", d(80))
	return tbl
}

// =============================================================================
// STRUCTURE
// =============================================================================

func TestAddEmployee_PreservesOrder(t *testing.T) {
	// GIVEN: Employees added in a fixed order
	// THEN: Employees() returns that order, not map order

	tbl := table.New()
	names := []table.EmployeeID{"Zed", "Alice", "Mid"}
	for _, n := range names {
		if err := tbl.AddEmployee(n, "", d(152)); err != nil {
			t.Fatal(err)
		}
	}

	got := tbl.Employees()
	for i, n := range names {
		if got[i] != n {
			t.Errorf("position %d: expected %s, got %s", i, n, got[i])
		}
	}
}

func TestAddEmployee_DuplicateRejected(t *testing.T) {
	tbl := seeded(t)

	err := tbl.AddEmployee("Alice", "SCE", d(152))
	if !table.IsConflict(err) {
		t.Errorf("expected conflict error, got %v", err)
	}
	// Original row untouched
	r, _ := tbl.Row("Alice")
	if r.Role != "CE" {
		t.Errorf("duplicate add overwrote role: %s", r.Role)
	}
}

func TestRemoveProgram_DropsCells(t *testing.T) {
	// GIVEN: A table with allocations under a program
	// WHEN: The program is removed and re-added
	// THEN: All its cells are zero

	tbl := seeded(t)

	if err := tbl.RemoveProgram("Accenture"); err != nil {
		t.Fatal(err)
	}
	if tbl.HasProgram("Accenture") {
		t.Fatal("program still present after removal")
	}

	tbl.AddProgram("Accenture")
	if !tbl.Allocation("Alice", "Accenture").IsZero() {
		t.Error("re-added program resurrected old hours")
	}
}

func TestSetAllocation_Validation(t *testing.T) {
	tbl := seeded(t)

	if err := tbl.SetAllocation("Nobody", "Google", d(10)); !table.IsNotFound(err) {
		t.Errorf("unknown employee: expected not-found, got %v", err)
	}
	if err := tbl.SetAllocation("Alice", "Nothing", d(10)); !table.IsNotFound(err) {
		t.Errorf("unknown program: expected not-found, got %v", err)
	}
	if err := tbl.SetAllocation("Alice", "Google", d(-5)); err != table.ErrNegativeHours {
		t.Errorf("negative hours: expected ErrNegativeHours, got %v", err)
	}
}

// =============================================================================
// DERIVED SUMS
// =============================================================================

func TestAllocatedAndProgramHours(t *testing.T) {
	tbl := seeded(t)

	if got := tbl.AllocatedHours("Alice"); !got.Equal(d(100)) {
		t.Errorf("Alice total: expected 100, got %s", got)
	}
	if got := tbl.ProgramHours("Accenture"); !got.Equal(d(120)) {
		t.Errorf("Accenture total: expected 120, got %s", got)
	}
	// Missing cell reads as zero
	if got := tbl.Allocation("Bob", "Google"); !got.IsZero() {
		t.Errorf("unset cell: expected 0, got %s", got)
	}
}

// =============================================================================
// CAPACITY BACKFILL
// =============================================================================

func TestBackfillCapacity_RunsOnce(t *testing.T) {
	// GIVEN: A table with no capacity data
	// WHEN: Backfill runs, a row is changed, and backfill runs again
	// THEN: The explicit value survives the second backfill

	tbl := table.New()
	tbl.AddEmployee("Alice", "CE", decimal.Zero)
	tbl.BackfillCapacity(d(152))

	r, _ := tbl.Row("Alice")
	if !r.Capacity.Equal(d(152)) {
		t.Fatalf("expected backfilled 152, got %s", r.Capacity)
	}

	tbl.SetCapacity("Alice", d(100))
	tbl.BackfillCapacity(d(152))

	r, _ = tbl.Row("Alice")
	if !r.Capacity.Equal(d(100)) {
		t.Errorf("second backfill overwrote explicit capacity: %s", r.Capacity)
	}
}

// =============================================================================
// CLONE / EQUAL
// =============================================================================

func TestClone_SharesNothing(t *testing.T) {
	tbl := seeded(t)
	cp := tbl.Clone()

	if !tbl.Equal(cp) {
		t.Fatal("clone not equal to original")
	}

	cp.SetAllocation("Alice", "Google", d(1))
	cp.AddEmployee("Carol", "ACP", d(152))

	if tbl.Allocation("Alice", "Google").Equal(d(1)) {
		t.Error("mutating clone changed original cell")
	}
	if tbl.Len() != 2 {
		t.Error("mutating clone changed original rows")
	}
	if tbl.Equal(cp) {
		t.Error("diverged tables still compare equal")
	}
}
