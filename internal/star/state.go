package star

import "math"

// StateVector is the snapshot of a star's physical attributes at one
// simulated time step. Ages are megayears; mass, luminosity and radius are in
// solar units; temperature is Kelvin. The JSON field set and order is the
// contract consumed by the ML trainer and the visualizer.
type StateVector struct {
	StarID             string  `json:"star_id"`
	TimeStepIndex      int     `json:"time_step_index"`
	Age                float64 `json:"age"`
	Mass               float64 `json:"mass"`
	Luminosity         float64 `json:"luminosity"`
	Radius             float64 `json:"radius"`
	SurfaceTemperature float64 `json:"surface_temperature"`
	Phase              Phase   `json:"phase"`

	// Run-internal bookkeeping, not part of the export contract.
	InitialMass float64 `json:"-"`
	Metallicity float64 `json:"-"`
	PhaseStart  float64 `json:"-"` // age at entry into the current phase
}

// PhaseAge returns the time elapsed since the star entered its current phase.
func (s StateVector) PhaseAge() float64 { return s.Age - s.PhaseStart }

// Physical reports whether every physical quantity is finite and
// non-negative. A false result from an evolution rule is a contract
// violation, not a recoverable condition.
func (s StateVector) Physical() bool {
	for _, v := range []float64{s.Mass, s.Luminosity, s.Radius, s.SurfaceTemperature, s.Age} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

// TerminationReason says how a run ended.
type TerminationReason string

const (
	// ReasonTerminalPhase means the star reached a phase with no outgoing
	// transition.
	ReasonTerminalPhase TerminationReason = "terminal_phase"
	// ReasonBudgetExceeded means the step or age ceiling was hit first. The
	// trajectory is valid but incomplete.
	ReasonBudgetExceeded TerminationReason = "budget_exceeded"
)

// Trajectory is the ordered, append-only history of one star's run. It is
// owned exclusively by the runner that produces it until publication into a
// store, after which it is read-only.
type Trajectory struct {
	StarID            string            `json:"star_id"`
	InitialMass       float64           `json:"initial_mass"`
	TerminationReason TerminationReason `json:"termination_reason"`
	States            []StateVector     `json:"states"`
}

// Append records the next state. States must arrive with contiguous,
// strictly increasing time-step indices starting at 0.
func (t *Trajectory) Append(s StateVector) {
	t.States = append(t.States, s)
}

// Len returns the number of recorded states.
func (t *Trajectory) Len() int { return len(t.States) }

// Final returns the last recorded state. It panics on an empty trajectory;
// the runner always records the initial state before publishing.
func (t *Trajectory) Final() StateVector {
	return t.States[len(t.States)-1]
}

// FinalPhase returns the phase of the last recorded state, or "" when no
// state has been recorded yet.
func (t *Trajectory) FinalPhase() Phase {
	if len(t.States) == 0 {
		return ""
	}
	return t.Final().Phase
}

// Clone returns a copy whose state slice is independent of the original.
// Stores hand out clones so published trajectories stay immutable.
func (t *Trajectory) Clone() *Trajectory {
	states := make([]StateVector, len(t.States))
	copy(states, t.States)
	return &Trajectory{
		StarID:            t.StarID,
		InitialMass:       t.InitialMass,
		TerminationReason: t.TerminationReason,
		States:            states,
	}
}
