// Package engine orchestrates star runs: the phase-transition engine, the
// per-star runner state machine, and the parallel batch driver.
package engine

import (
	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/star"
)

// TransitionEngine decides whether a state leaves its current phase. It
// holds no mutable state; decisions are pure functions of the StateVector,
// so re-evaluating the same state always gives the same answer.
type TransitionEngine struct {
	table *phasetable.Table
}

// NewTransitionEngine wraps the shared rule table.
func NewTransitionEngine(table *phasetable.Table) *TransitionEngine {
	return &TransitionEngine{table: table}
}

// MaybeTransition returns the phase s should be in: the next phase when the
// current phase's predicate fires, otherwise s.Phase unchanged. Terminal
// phases always map to themselves.
func (e *TransitionEngine) MaybeTransition(s star.StateVector) (star.Phase, error) {
	rule, err := e.table.RulesFor(s.Phase, s.InitialMass)
	if err != nil {
		return "", star.WrapError(s.StarID, s.TimeStepIndex, &s, err)
	}
	if !rule.ShouldTransition(s) {
		return s.Phase, nil
	}
	return rule.Next(s), nil
}
