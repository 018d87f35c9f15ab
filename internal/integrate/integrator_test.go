package integrate

import (
	"errors"
	"testing"

	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/star"
)

func newIntegrator(t *testing.T) *Integrator {
	t.Helper()
	tbl, err := phasetable.New(config.DefaultConfig())
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return New(tbl)
}

func solarState() star.StateVector {
	return phasetable.InitialState("gaia-1", 1.0, 0.02, 0)
}

func TestAdvance(t *testing.T) {
	in := newIntegrator(t)
	s := solarState()

	next, err := in.Advance(s, 1.0)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	if next.TimeStepIndex != s.TimeStepIndex+1 {
		t.Errorf("step index = %d, want %d", next.TimeStepIndex, s.TimeStepIndex+1)
	}
	if next.Age != s.Age+1.0 {
		t.Errorf("age = %g, want %g", next.Age, s.Age+1.0)
	}
	if next.Mass > s.Mass {
		t.Error("mass must be non-increasing")
	}
	if !next.Physical() {
		t.Errorf("advanced state must be physical: %+v", next)
	}
	// A pre-main-sequence star contracts and dims toward ZAMS.
	if next.Radius >= s.Radius || next.Luminosity >= s.Luminosity {
		t.Errorf("protostar should contract: %+v -> %+v", s, next)
	}
}

func TestAdvance_Deterministic(t *testing.T) {
	in := newIntegrator(t)
	s := solarState()

	a, err := in.Advance(s, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := in.Advance(s, 2.5)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("same (state, dt) must yield identical output: %+v vs %+v", a, b)
	}
}

func TestAdvance_InvalidDt(t *testing.T) {
	in := newIntegrator(t)
	s := solarState()

	for _, dt := range []float64{0, -0.5} {
		_, err := in.Advance(s, dt)
		if !errors.Is(err, star.ErrInvalidStep) {
			t.Errorf("dt=%g: expected ErrInvalidStep, got %v", dt, err)
		}
	}
}

func TestAdvance_TerminalPhase(t *testing.T) {
	in := newIntegrator(t)
	s := solarState()
	s.Phase = star.WhiteDwarf

	_, err := in.Advance(s, 1.0)
	if !errors.Is(err, star.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep for terminal phase, got %v", err)
	}

	var se *star.Error
	if !errors.As(err, &se) || se.StarID != "gaia-1" {
		t.Errorf("error should identify the star: %v", err)
	}
}

func TestAdvance_UnknownPhase(t *testing.T) {
	in := newIntegrator(t)
	s := solarState()
	s.Phase = star.Phase("quark_star")

	_, err := in.Advance(s, 1.0)
	if !errors.Is(err, star.ErrUnknownPhase) {
		t.Errorf("expected ErrUnknownPhase, got %v", err)
	}
}

func TestAdvance_NonPhysicalGuard(t *testing.T) {
	// A corrupted state drives the evolution into non-physical territory;
	// the integrator must fail loudly instead of clamping.
	in := newIntegrator(t)
	s := solarState()
	s.Luminosity = -1

	_, err := in.Advance(s, 1.0)
	if !errors.Is(err, star.ErrNonPhysicalState) {
		t.Errorf("expected ErrNonPhysicalState, got %v", err)
	}
}
