package engine

import (
	"errors"
	"testing"

	"github.com/san-kum/stellarsim/internal/star"
)

func TestMaybeTransition_Identity(t *testing.T) {
	eng := NewTransitionEngine(newTable(t))

	// Mid-phase: no transition, same phase back.
	s := star.StateVector{
		StarID: "sun", Phase: star.MainSequence,
		InitialMass: 1.0, Metallicity: 0.02,
		Age: 500, PhaseStart: 100,
	}
	got, err := eng.MaybeTransition(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != star.MainSequence {
		t.Errorf("expected identity, got %s", got)
	}
}

func TestMaybeTransition_Fires(t *testing.T) {
	eng := NewTransitionEngine(newTable(t))

	s := star.StateVector{
		StarID: "sun", Phase: star.MainSequence,
		InitialMass: 1.0, Metallicity: 0.02,
		Age: 10100, PhaseStart: 100,
	}
	got, err := eng.MaybeTransition(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != star.RedGiant {
		t.Errorf("expected red_giant, got %s", got)
	}

	// Idempotent: same state, same decision.
	again, err := eng.MaybeTransition(s)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Errorf("re-evaluation changed the decision: %s vs %s", got, again)
	}
}

func TestMaybeTransition_Terminal(t *testing.T) {
	eng := NewTransitionEngine(newTable(t))

	s := star.StateVector{
		StarID: "sun", Phase: star.WhiteDwarf,
		InitialMass: 1.0, Age: 12000, PhaseStart: 11000,
	}
	got, err := eng.MaybeTransition(s)
	if err != nil {
		t.Fatal(err)
	}
	if got != star.WhiteDwarf {
		t.Errorf("terminal phase must map to itself, got %s", got)
	}
}

func TestMaybeTransition_UnknownPhase(t *testing.T) {
	eng := NewTransitionEngine(newTable(t))

	s := star.StateVector{StarID: "sun", Phase: star.Phase("nova"), InitialMass: 1.0}
	_, err := eng.MaybeTransition(s)
	if !errors.Is(err, star.ErrUnknownPhase) {
		t.Errorf("expected ErrUnknownPhase, got %v", err)
	}
}
