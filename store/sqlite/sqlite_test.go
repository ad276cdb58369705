package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/session"
	"github.com/warp/staffing-engine/store/sqlite"
)

func memoryStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleState() session.State {
	return session.State{
		Programs: []string{"Accenture", "Google"},
		Employees: []session.EmployeeState{
			{
				Name:     "Alice",
				Role:     "CE",
				Capacity: decimal.NewFromInt(152),
				Allocations: map[string]decimal.Decimal{
					"Accenture": decimal.NewFromInt(40),
					"Google":    decimal.NewFromInt(60),
				},
			},
		},
		Revenue: map[string]decimal.Decimal{"Accenture": decimal.NewFromInt(10000)},
	}
}

func TestSaveAndGet(t *testing.T) {
	// GIVEN: A saved scenario
	// WHEN: Fetched by id
	// THEN: The decoded state matches what was stored

	store := memoryStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, "baseline", sampleState())
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Fatal("expected a generated id")
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "baseline" {
		t.Errorf("name: expected baseline, got %s", got.Name)
	}
	if len(got.State.Employees) != 1 || got.State.Employees[0].Name != "Alice" {
		t.Errorf("state did not round-trip: %+v", got.State)
	}
	if !got.State.Employees[0].Allocations["Google"].Equal(decimal.NewFromInt(60)) {
		t.Error("decimal allocation did not round-trip")
	}
}

func TestSave_SameNameReplaces(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	first, err := store.Save(ctx, "baseline", sampleState())
	if err != nil {
		t.Fatal(err)
	}

	updated := sampleState()
	updated.Programs = append(updated.Programs, "Meta")
	second, err := store.Save(ctx, "baseline", updated)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("replacement changed the id: %s vs %s", first.ID, second.ID)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(all))
	}
	if len(all[0].State.Programs) != 3 {
		t.Error("replacement did not update the payload")
	}
}

func TestGet_NotFound(t *testing.T) {
	store := memoryStore(t)

	if _, err := store.Get(context.Background(), "missing"); err != sqlite.ErrScenarioNotFound {
		t.Errorf("expected ErrScenarioNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := memoryStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, "baseline", sampleState())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, saved.ID); err != sqlite.ErrScenarioNotFound {
		t.Errorf("expected ErrScenarioNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, saved.ID); err != sqlite.ErrScenarioNotFound {
		t.Errorf("double delete: expected ErrScenarioNotFound, got %v", err)
	}
}

func TestList_Empty(t *testing.T) {
	store := memoryStore(t)

	all, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Errorf("expected no scenarios, got %d", len(all))
	}
}
