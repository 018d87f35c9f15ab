package engine

import (
	"context"
	"fmt"

	"github.com/san-kum/stellarsim/internal/catalog"
	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/integrate"
	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/star"
)

// RunnerState is the runner's lifecycle state.
type RunnerState int

const (
	StateInitialized RunnerState = iota
	StateRunning
	StateTerminated
	StateBudgetExceeded
)

func (s RunnerState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	case StateBudgetExceeded:
		return "budget_exceeded"
	default:
		return "unknown"
	}
}

// Done reports whether the runner accepts no further steps.
func (s RunnerState) Done() bool {
	return s == StateTerminated || s == StateBudgetExceeded
}

// Runner drives one star from its initial condition to a terminal phase or
// a budget ceiling, recording every intermediate state. A Runner is owned
// by a single goroutine; it is not safe for concurrent use.
type Runner struct {
	integ  *integrate.Integrator
	trans  *TransitionEngine
	table  *phasetable.Table
	budget config.Budget

	state RunnerState
	cur   star.StateVector
	steps int
	traj  *star.Trajectory
}

// NewRunner validates the initial condition and prepares a run. Validation
// failures surface before any state is produced and never affect other
// stars' runs.
func NewRunner(table *phasetable.Table, budget config.Budget, src catalog.Star) (*Runner, error) {
	bands := table.Bands()
	if err := src.Validate(bands); err != nil {
		return nil, err
	}

	initial := phasetable.InitialState(src.ID, src.Mass, src.Metallicity, src.SeedAge)
	traj := &star.Trajectory{StarID: src.ID, InitialMass: src.Mass}
	traj.Append(initial)

	return &Runner{
		integ:  integrate.New(table),
		trans:  NewTransitionEngine(table),
		table:  table,
		budget: budget,
		state:  StateInitialized,
		cur:    initial,
		traj:   traj,
	}, nil
}

// State returns the runner's lifecycle state.
func (r *Runner) State() RunnerState { return r.state }

// Current returns the star's current StateVector.
func (r *Runner) Current() star.StateVector { return r.cur }

// Trajectory returns the recorded history. The runner owns it exclusively
// until the run finishes; afterwards ownership passes to the caller for
// publication.
func (r *Runner) Trajectory() *star.Trajectory { return r.traj }

// Step performs one iteration: advance within the current phase, record the
// new state, then evaluate the transition rule. A phase change lands on the
// step boundary, attributed to the newly recorded state. Requesting a step
// from a finished runner fails with ErrRunnerTerminated.
func (r *Runner) Step() error {
	if r.state.Done() {
		return star.WrapError(r.cur.StarID, r.cur.TimeStepIndex, &r.cur,
			fmt.Errorf("%w: runner is %s", star.ErrRunnerTerminated, r.state))
	}
	r.state = StateRunning

	rule, err := r.table.RulesFor(r.cur.Phase, r.cur.InitialMass)
	if err != nil {
		return star.WrapError(r.cur.StarID, r.cur.TimeStepIndex, &r.cur, err)
	}

	next, err := r.integ.Advance(r.cur, rule.Dt(r.cur))
	if err != nil {
		return err
	}

	phase, err := r.trans.MaybeTransition(next)
	if err != nil {
		return err
	}
	if phase != next.Phase {
		next.Phase = phase
		next.PhaseStart = next.Age
	}

	r.traj.Append(next)
	r.cur = next
	r.steps++

	switch {
	case next.Phase.Terminal():
		r.state = StateTerminated
		r.traj.TerminationReason = star.ReasonTerminalPhase
	case r.steps >= r.budget.MaxSteps || next.Age > r.budget.MaxAge:
		r.state = StateBudgetExceeded
		r.traj.TerminationReason = star.ReasonBudgetExceeded
	}

	return nil
}

// Run steps until the star reaches a terminal phase or a budget ceiling.
// Context cancellation ends the run early with a budget_exceeded outcome;
// the trajectory recorded so far stays valid.
func (r *Runner) Run(ctx context.Context) (*star.Trajectory, error) {
	for !r.state.Done() {
		select {
		case <-ctx.Done():
			r.state = StateBudgetExceeded
			r.traj.TerminationReason = star.ReasonBudgetExceeded
			return r.traj, ctx.Err()
		default:
		}

		if err := r.Step(); err != nil {
			return r.traj, err
		}
	}
	return r.traj, nil
}
