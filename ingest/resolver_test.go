package ingest_test

import (
	"testing"

	"github.com/warp/staffing-engine/ingest"
)

func TestResolve_PriorityOrder(t *testing.T) {
	// GIVEN: A header row containing two candidates
	// THEN: The earlier candidate in the list wins regardless of column order

	headers := []string{"Employee", "CT Name", "Hours"}
	candidates := []string{"CT Name", "Employee Name", "Employee"}

	got, ok := ingest.Resolve(headers, candidates)
	if !ok || got != "CT Name" {
		t.Errorf("expected CT Name, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_CaseAndWhitespaceInsensitive(t *testing.T) {
	headers := []string{"  program name ", "Other"}

	got, ok := ingest.Resolve(headers, []string{"Program Name"})
	if !ok {
		t.Fatal("expected a match")
	}
	// The original header spelling comes back so lookups hit the raw data.
	if got != "  program name " {
		t.Errorf("expected original header, got %q", got)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	if _, ok := ingest.Resolve([]string{"A", "B"}, []string{"C"}); ok {
		t.Error("expected no match")
	}
}

func TestResolveContaining(t *testing.T) {
	headers := []string{"Name", "Total Allocated Monthly Hours"}

	got, ok := ingest.ResolveContaining(headers, "Allocated")
	if !ok || got != "Total Allocated Monthly Hours" {
		t.Errorf("expected fragment match, got %q (ok=%v)", got, ok)
	}

	if _, ok := ingest.ResolveContaining(headers, "Revenue"); ok {
		t.Error("expected no fragment match")
	}
}
