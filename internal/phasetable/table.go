// Package phasetable holds the static domain knowledge of the engine: one
// rule per phase, bundling the evolution function, the transition predicate
// and the next-phase selector. The table is built once from configuration
// and shared read-only across all concurrent runs.
package phasetable

import (
	"fmt"
	"math"

	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/star"
)

// durationEpsilon absorbs float accumulation over a phase's steps so the
// transition predicate fires on the step that lands on the boundary.
const durationEpsilon = 1e-9

// EvolveFunc maps (state, dt) to the state's new physical attributes. Age
// and step index are advanced by the integrator, not here.
type EvolveFunc func(s star.StateVector, dt float64) star.StateVector

// Rule is the tagged-variant entry for one phase: pure functions, no state.
type Rule struct {
	Phase star.Phase

	// Evolve is nil for terminal phases; the integrator refuses them first.
	Evolve EvolveFunc

	// ShouldTransition reports whether s has finished this phase. It is a
	// pure function of s: re-evaluating the same state gives the same
	// answer.
	ShouldTransition func(s star.StateVector) bool

	// Next selects the following phase once ShouldTransition fires. For
	// terminal rules it returns the phase itself.
	Next func(s star.StateVector) star.Phase

	steps    int
	duration func(s star.StateVector) float64
}

// Duration returns the phase length in Myr for the star described by s.
// Terminal phases have zero duration.
func (r Rule) Duration(s star.StateVector) float64 {
	if r.duration == nil {
		return 0
	}
	return r.duration(s)
}

// Dt returns the step size the runner should use in this phase: the phase
// duration split into the configured number of steps, so rapid phases get
// proportionally fine steps.
func (r Rule) Dt(s star.StateVector) float64 {
	if r.steps <= 0 {
		return 0
	}
	return r.Duration(s) / float64(r.steps)
}

// Terminal reports whether the rule's phase has no outgoing transition.
func (r Rule) Terminal() bool { return r.Phase.Terminal() }

// Table maps the closed phase enumeration to its rules.
type Table struct {
	rules map[star.Phase]Rule
	bands config.MassBands
}

// New builds the rule table from configuration. Every non-terminal phase
// must have calibration params; terminal phases must not evolve.
func New(cfg *config.Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		rules: make(map[star.Phase]Rule, len(star.Phases)),
		bands: cfg.Mass,
	}

	for _, phase := range star.Phases {
		if phase.Terminal() {
			t.rules[phase] = terminalRule(phase)
			continue
		}
		params, ok := cfg.Phase(string(phase))
		if !ok {
			return nil, fmt.Errorf("phasetable: no calibration for phase %s", phase)
		}
		t.rules[phase] = t.evolvingRule(phase, params)
	}

	return t, nil
}

// RulesFor looks up the rule for a phase. The initial mass keys the
// mass-banded branches inside the rule and must be positive.
func (t *Table) RulesFor(phase star.Phase, initialMass float64) (Rule, error) {
	if initialMass <= 0 || math.IsNaN(initialMass) {
		return Rule{}, fmt.Errorf("%w: initial mass %g", star.ErrInvalidInitialCondition, initialMass)
	}
	rule, ok := t.rules[phase]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", star.ErrUnknownPhase, phase)
	}
	return rule, nil
}

// Bands exposes the configured mass thresholds.
func (t *Table) Bands() config.MassBands { return t.bands }

func terminalRule(phase star.Phase) Rule {
	return Rule{
		Phase:            phase,
		ShouldTransition: func(star.StateVector) bool { return false },
		Next:             func(star.StateVector) star.Phase { return phase },
	}
}

func (t *Table) evolvingRule(phase star.Phase, p config.PhaseParams) Rule {
	duration := func(s star.StateVector) float64 {
		if p.DurationMyr > 0 {
			return p.DurationMyr
		}
		return p.DurationFrac * NuclearLifetime(s.InitialMass, s.Metallicity)
	}

	return Rule{
		Phase:    phase,
		steps:    p.Steps,
		duration: duration,
		Evolve: func(s star.StateVector, dt float64) star.StateVector {
			// Exponential relaxation toward the configured endpoint: after
			// the full duration the telescoping product hits the endpoint
			// ratio exactly, however the steps partition the phase.
			f := dt / duration(s)
			out := s
			out.Luminosity = s.Luminosity * math.Pow(p.LuminosityRatio, f)
			out.Radius = s.Radius * math.Pow(p.RadiusRatio, f)
			out.Mass = s.Mass * math.Pow(p.MassRetention, f)
			out.SurfaceTemperature = EffectiveTemp(out.Luminosity, out.Radius)
			return out
		},
		ShouldTransition: func(s star.StateVector) bool {
			d := duration(s)
			return s.PhaseAge() >= d*(1-durationEpsilon)
		},
		Next: t.nextSelector(phase),
	}
}

// nextSelector encodes the transition graph. The red-giant exit and the
// supernova remnant are the two mass-banded branches; everything else is a
// fixed edge.
func (t *Table) nextSelector(phase star.Phase) func(star.StateVector) star.Phase {
	bands := t.bands
	switch phase {
	case star.PreMainSequence:
		return constant(star.MainSequence)
	case star.MainSequence:
		return constant(star.RedGiant)
	case star.RedGiant:
		return func(s star.StateVector) star.Phase {
			switch {
			case s.InitialMass >= bands.WhiteDwarfLimit:
				return star.Supernova
			case s.InitialMass < bands.LowMassLimit:
				return star.WhiteDwarf
			default:
				return star.HorizontalBranch
			}
		}
	case star.HorizontalBranch:
		return constant(star.AsymptoticGiantBranch)
	case star.AsymptoticGiantBranch:
		return constant(star.PlanetaryNebula)
	case star.PlanetaryNebula:
		return constant(star.WhiteDwarf)
	case star.Supernova:
		return func(s star.StateVector) star.Phase {
			if s.InitialMass >= bands.BlackHoleLimit {
				return star.BlackHole
			}
			return star.NeutronStar
		}
	default:
		return constant(phase)
	}
}

func constant(p star.Phase) func(star.StateVector) star.Phase {
	return func(star.StateVector) star.Phase { return p }
}
