// Package integrate advances StateVectors one step at a time. The
// integrator owns the numeric contract: it applies a phase's evolution
// function and refuses steps that are malformed or produce non-physical
// results.
package integrate

import (
	"fmt"
	"math"

	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/star"
)

// Integrator advances a star's state within its current phase. It is
// stateless and safe to share across runs.
type Integrator struct {
	table *phasetable.Table
}

// New returns an Integrator backed by the shared rule table.
func New(table *phasetable.Table) *Integrator {
	return &Integrator{table: table}
}

// Advance applies the current phase's evolution to s over dt and returns the
// successor state with age and step index advanced. The same (state, dt)
// pair always yields the same output.
//
// It fails with ErrInvalidStep for dt <= 0 or a terminal phase, and with
// ErrNonPhysicalState when the evolution function violates its contract;
// non-physical values are surfaced, never clamped.
func (in *Integrator) Advance(s star.StateVector, dt float64) (star.StateVector, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return star.StateVector{}, star.WrapError(s.StarID, s.TimeStepIndex, &s,
			fmt.Errorf("%w: dt=%g", star.ErrInvalidStep, dt))
	}
	if s.Phase.Terminal() {
		return star.StateVector{}, star.WrapError(s.StarID, s.TimeStepIndex, &s,
			fmt.Errorf("%w: phase %s is terminal", star.ErrInvalidStep, s.Phase))
	}

	rule, err := in.table.RulesFor(s.Phase, s.InitialMass)
	if err != nil {
		return star.StateVector{}, star.WrapError(s.StarID, s.TimeStepIndex, &s, err)
	}

	next := rule.Evolve(s, dt)
	next.Age = s.Age + dt
	next.TimeStepIndex = s.TimeStepIndex + 1

	if !next.Physical() {
		return star.StateVector{}, star.WrapError(s.StarID, next.TimeStepIndex, &next,
			fmt.Errorf("%w: evolution of phase %s produced %+v", star.ErrNonPhysicalState, s.Phase, summary(next)))
	}
	if next.Mass > s.Mass {
		return star.StateVector{}, star.WrapError(s.StarID, next.TimeStepIndex, &next,
			fmt.Errorf("%w: mass increased from %g to %g", star.ErrNonPhysicalState, s.Mass, next.Mass))
	}

	return next, nil
}

func summary(s star.StateVector) string {
	return fmt.Sprintf("m=%g L=%g R=%g T=%g", s.Mass, s.Luminosity, s.Radius, s.SurfaceTemperature)
}
