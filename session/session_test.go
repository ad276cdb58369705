package session_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
	"github.com/warp/staffing-engine/metrics"
	"github.com/warp/staffing-engine/session"
	"github.com/warp/staffing-engine/table"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testSettings() session.Settings {
	return session.Settings{
		StandardCapacity: d(152),
		RateCard:         metrics.DefaultRateCard(),
	}
}

func seededSession(t *testing.T) *session.Session {
	t.Helper()
	tbl := table.New()
	tbl.AddProgram("Accenture")
	tbl.AddProgram("Google")
	tbl.AddEmployee("Alice", "CE", d(152))
	tbl.AddEmployee("Bob", "CP", d(152))
	tbl.SetCapacity("Alice", d(152))
	tbl.SetCapacity("Bob", d(152))
	tbl.SetAllocation("Alice", "Accenture", d(40))
	tbl.SetAllocation("Bob", "Accenture", d(80))

	s := session.New("test", testSettings())
	s.Load(&ingest.Result{
		Table:   tbl,
		Revenue: map[table.Program]decimal.Decimal{"Accenture": d(10000)},
		Future:  make(ingest.FutureMap),
	})
	return s
}

// =============================================================================
// MUTATION + UNDO
// =============================================================================

func TestUndo_RestoresExactTable(t *testing.T) {
	// GIVEN: A session with one table state
	// WHEN: A cell is edited and then undone
	// THEN: The table is field-for-field what it was before the edit

	s := seededSession(t)
	before := s.Table()

	if err := s.SetCell("Alice", "Accenture", d(120)); err != nil {
		t.Fatal(err)
	}
	if s.Table().Equal(before) {
		t.Fatal("edit did not change the table")
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if !s.Table().Equal(before) {
		t.Error("undo did not restore the pre-edit table")
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	s := seededSession(t)

	if err := s.Undo(); err != session.ErrNothingToUndo {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndo_HistoryBounded(t *testing.T) {
	// GIVEN: More edits than the history holds
	// THEN: Depth caps at the bound and undoing to exhaustion lands on the
	//       state from bound edits ago, not the original

	s := seededSession(t)

	for i := 1; i <= session.MaxHistory+5; i++ {
		if err := s.SetCell("Alice", "Google", d(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.HistoryLen(); got != session.MaxHistory {
		t.Fatalf("expected depth %d, got %d", session.MaxHistory, got)
	}

	for s.HistoryLen() > 0 {
		if err := s.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	// 15 edits, 10 snapshots: the oldest surviving snapshot is pre-edit 6,
	// i.e. the value written by edit 5.
	if got := s.Table().Allocation("Alice", "Google"); !got.Equal(d(5)) {
		t.Errorf("expected hours 5 after exhausting history, got %s", got)
	}
}

func TestRejectedMutation_LeavesHistoryUntouched(t *testing.T) {
	// GIVEN: Mutations that fail validation
	// THEN: No snapshot is pushed and the table is unchanged

	s := seededSession(t)
	before := s.Table()

	if err := s.SetCell("Nobody", "Accenture", d(10)); !table.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if err := s.SetCell("Alice", "Accenture", d(-1)); err != table.ErrNegativeHours {
		t.Fatalf("expected ErrNegativeHours, got %v", err)
	}
	if err := s.AddEmployee("Alice", "SCE"); !table.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := s.AddProgram("Accenture", d(1)); !table.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if s.HistoryLen() != 0 {
		t.Errorf("rejected mutations pushed %d snapshots", s.HistoryLen())
	}
	if !s.Table().Equal(before) {
		t.Error("rejected mutation changed the table")
	}
}

func TestMutations_RecomputeUtilization(t *testing.T) {
	s := seededSession(t)

	if err := s.SetCell("Alice", "Google", d(112)); err != nil {
		t.Fatal(err)
	}

	r, _ := s.Table().Row("Alice")
	// (40 + 112) / 152 = 100%
	if r.Utilization != 100 {
		t.Errorf("expected 100, got %d", r.Utilization)
	}
}

func TestAddEmployee_UsesStandardCapacity(t *testing.T) {
	s := seededSession(t)

	if err := s.AddEmployee("Carol", "ACP"); err != nil {
		t.Fatal(err)
	}

	r, ok := s.Table().Row("Carol")
	if !ok {
		t.Fatal("Carol not added")
	}
	if !r.Capacity.Equal(d(152)) {
		t.Errorf("expected standard capacity, got %s", r.Capacity)
	}
}

func TestRemoveProgram_CleansRevenue(t *testing.T) {
	// GIVEN: A program with recorded revenue
	// WHEN: It is removed and re-added
	// THEN: The margin sees the new revenue, never the stale one

	s := seededSession(t)

	if err := s.RemoveProgram("Accenture"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddProgram("Accenture", d(500)); err != nil {
		t.Fatal(err)
	}

	if got := s.Revenue()["Accenture"]; !got.Equal(d(500)) {
		t.Errorf("expected fresh revenue 500, got %s", got)
	}
}

func TestUndo_RestoresRevenue(t *testing.T) {
	// GIVEN: A funded program
	// WHEN: It is removed and the removal undone
	// THEN: The revenue entry comes back with the column, so the margin is
	//       real again instead of the revenue-less sentinel

	s := seededSession(t)

	if err := s.RemoveProgram("Accenture"); err != nil {
		t.Fatal(err)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}

	if got := s.Revenue()["Accenture"]; !got.Equal(d(10000)) {
		t.Errorf("expected revenue 10000 after undo, got %s", got)
	}
	if m := s.Margins()["Accenture"]; m.Margin.Equal(d(-100)) {
		t.Error("undone program still reads the revenue-less margin")
	}
}

func TestUndo_DropsAddedRevenue(t *testing.T) {
	// Undoing an AddProgram must not leave its revenue entry behind.

	s := seededSession(t)

	if err := s.AddProgram("Meta", d(7000)); err != nil {
		t.Fatal(err)
	}
	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Revenue()["Meta"]; ok {
		t.Error("undone program left revenue behind")
	}
}

func TestLoad_ClearsHistory(t *testing.T) {
	s := seededSession(t)
	if err := s.SetCell("Alice", "Google", d(10)); err != nil {
		t.Fatal(err)
	}
	if s.HistoryLen() != 1 {
		t.Fatal("expected one snapshot")
	}

	s.Load(&ingest.Result{
		Table:   table.New(),
		Revenue: make(map[table.Program]decimal.Decimal),
		Future:  make(ingest.FutureMap),
	})

	if s.HistoryLen() != 0 {
		t.Error("load must clear undo history")
	}
}

// =============================================================================
// EXPORT / IMPORT
// =============================================================================

func TestExportImport_RoundTrip(t *testing.T) {
	s := seededSession(t)
	before := s.Table()
	state := s.Export()

	other := session.New("other", testSettings())
	other.Import(state)

	if !other.Table().Equal(before) {
		t.Error("imported table differs from exported one")
	}
	if got := other.Revenue()["Accenture"]; !got.Equal(d(10000)) {
		t.Errorf("revenue lost in round trip: %s", got)
	}
	if other.HistoryLen() != 0 {
		t.Error("import must start with empty history")
	}
}

// =============================================================================
// MANAGER
// =============================================================================

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := session.NewManager(testSettings(), nil)

	a := m.Get("a")
	b := m.Get("b")
	if a == b {
		t.Fatal("distinct keys share a session")
	}
	if m.Get("a") != a {
		t.Error("same key returned a different session")
	}

	a.AddProgram("Accenture", d(100))
	a.AddEmployee("Alice", "CE")
	a.SetCell("Alice", "Accenture", d(40))

	if !b.Table().IsEmpty() {
		t.Error("mutation in one session leaked into another")
	}
}

func TestManager_ResetRunsBootstrap(t *testing.T) {
	bootstraps := 0
	bootstrap := func() (*ingest.Result, error) {
		bootstraps++
		tbl := table.New()
		tbl.AddProgram("Accenture")
		tbl.AddEmployee("Alice", "CE", d(152))
		return &ingest.Result{
			Table:   tbl,
			Revenue: make(map[table.Program]decimal.Decimal),
			Future:  make(ingest.FutureMap),
		}, nil
	}

	m := session.NewManager(testSettings(), bootstrap)

	s := m.Get("a")
	if s.Table().Len() != 1 {
		t.Fatal("bootstrap did not seed the session")
	}
	s.AddEmployee("Bob", "CP")

	s = m.Reset("a")
	if s.Table().Len() != 1 {
		t.Error("reset did not restore the seeded table")
	}
	if bootstraps != 2 {
		t.Errorf("expected 2 bootstrap runs, got %d", bootstraps)
	}
}
