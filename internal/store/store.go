// Package store publishes completed trajectories to downstream consumers.
// Every backend honors the same contract: Record is a single atomic
// insert-or-replace keyed by star id, and reads hand out immutable views, so
// a reader can never observe a half-built trajectory.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/stellarsim/internal/star"
)

// Store is the trajectory store contract shared by all backends.
type Store interface {
	// Record publishes a completed trajectory, replacing any previous run
	// for the same star.
	Record(ctx context.Context, t *star.Trajectory) error
	// Get returns the trajectory for a star, or star.ErrNotFound.
	Get(ctx context.Context, starID string) (*star.Trajectory, error)
	// All returns every published trajectory, ordered by star id.
	All(ctx context.Context) ([]*star.Trajectory, error)
}

// Memory is the in-process store used by default. A single RWMutex around
// an insert-or-replace map is the entire synchronization story: runs own
// their trajectories exclusively until Record.
type Memory struct {
	mu           sync.RWMutex
	trajectories map[string]*star.Trajectory
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{trajectories: make(map[string]*star.Trajectory)}
}

// Record stores a private clone of t under its star id.
func (m *Memory) Record(ctx context.Context, t *star.Trajectory) error {
	if t == nil || t.StarID == "" {
		return fmt.Errorf("store: trajectory must have a star id")
	}
	clone := t.Clone()
	m.mu.Lock()
	m.trajectories[t.StarID] = clone
	m.mu.Unlock()
	return nil
}

// Get returns an immutable view of one star's trajectory.
func (m *Memory) Get(ctx context.Context, starID string) (*star.Trajectory, error) {
	m.mu.RLock()
	t, ok := m.trajectories[starID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", star.ErrNotFound, starID)
	}
	return t.Clone(), nil
}

// All returns immutable views of every trajectory, sorted by star id for
// stable batch documents.
func (m *Memory) All(ctx context.Context) ([]*star.Trajectory, error) {
	m.mu.RLock()
	out := make([]*star.Trajectory, 0, len(m.trajectories))
	for _, t := range m.trajectories {
		out = append(out, t.Clone())
	}
	m.mu.RUnlock()

	sortTrajectories(out)
	return out, nil
}

func sortTrajectories(ts []*star.Trajectory) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].StarID < ts[j].StarID })
}

// Len reports how many trajectories are published.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trajectories)
}
