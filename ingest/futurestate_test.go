package ingest_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/staffing-engine/ingest"
)

func datePtr(t time.Time) *time.Time { return &t }

func hoursPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func days(n int) time.Time { return now.AddDate(0, 0, n) }

func TestDeriveFutureState_RollingOffInsideWindow(t *testing.T) {
	// GIVEN: An assignment ending 10 days out
	// THEN: Rolling off, projected hours zero

	fs := ingest.DeriveFutureState(decimal.NewFromInt(40), nil, datePtr(days(10)), nil, now)

	if fs.Status != ingest.StatusRollingOff {
		t.Fatalf("expected rolling off, got %s", fs.Status)
	}
	if !fs.ProjectedHours.IsZero() {
		t.Errorf("expected projected 0, got %s", fs.ProjectedHours)
	}
}

func TestDeriveFutureState_RollOffBeatsRamp(t *testing.T) {
	// GIVEN: An end date inside the roll-off window AND a pending hours change
	// THEN: Roll-off wins; the ramp is irrelevant once the assignment ends

	fs := ingest.DeriveFutureState(
		decimal.NewFromInt(40), hoursPtr(80),
		datePtr(days(20)), datePtr(days(15)), now)

	if fs.Status != ingest.StatusRollingOff {
		t.Fatalf("expected rolling off, got %s", fs.Status)
	}
	if !fs.ProjectedHours.IsZero() {
		t.Errorf("expected projected 0, got %s", fs.ProjectedHours)
	}
}

func TestDeriveFutureState_RollOffOutsideWindowIgnored(t *testing.T) {
	fs := ingest.DeriveFutureState(decimal.NewFromInt(40), nil, datePtr(days(31)), nil, now)

	if fs.Status != ingest.StatusStable {
		t.Errorf("end date past the window: expected stable, got %s", fs.Status)
	}
	if !fs.ProjectedHours.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected projected = current, got %s", fs.ProjectedHours)
	}
}

func TestDeriveFutureState_RampingUp(t *testing.T) {
	fs := ingest.DeriveFutureState(
		decimal.NewFromInt(40), hoursPtr(80),
		nil, datePtr(days(30)), now)

	if fs.Status != ingest.StatusRamping {
		t.Fatalf("expected ramping, got %s", fs.Status)
	}
	if fs.Direction != ingest.RampIncreasing {
		t.Errorf("expected increasing, got %s", fs.Direction)
	}
	if !fs.ProjectedHours.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected projected 80, got %s", fs.ProjectedHours)
	}
}

func TestDeriveFutureState_RampingDown(t *testing.T) {
	fs := ingest.DeriveFutureState(
		decimal.NewFromInt(80), hoursPtr(20),
		nil, datePtr(days(45)), now)

	if fs.Status != ingest.StatusRamping || fs.Direction != ingest.RampDecreasing {
		t.Errorf("expected decreasing ramp, got %s/%s", fs.Status, fs.Direction)
	}
}

func TestDeriveFutureState_UnchangedHoursNotRamping(t *testing.T) {
	// GIVEN: A change date inside the window but identical hours
	// THEN: Stable; a no-op change is not a ramp

	fs := ingest.DeriveFutureState(
		decimal.NewFromInt(40), hoursPtr(40),
		nil, datePtr(days(30)), now)

	if fs.Status != ingest.StatusStable {
		t.Errorf("expected stable, got %s", fs.Status)
	}
}

func TestDeriveFutureState_ChangeDatePastWindowIgnored(t *testing.T) {
	fs := ingest.DeriveFutureState(
		decimal.NewFromInt(40), hoursPtr(80),
		nil, datePtr(days(61)), now)

	if fs.Status != ingest.StatusStable {
		t.Errorf("expected stable, got %s", fs.Status)
	}
	if !fs.ProjectedHours.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected projected = current, got %s", fs.ProjectedHours)
	}
}

func TestFutureMap_ProjectedHoursDefaultsToCurrent(t *testing.T) {
	fm := make(ingest.FutureMap)
	current := decimal.NewFromInt(42)

	if got := fm.ProjectedHours("Alice", "Accenture", current); !got.Equal(current) {
		t.Errorf("missing pair: expected current %s, got %s", current, got)
	}
}
