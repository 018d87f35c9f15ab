package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/stellarsim/internal/catalog"
	"github.com/san-kum/stellarsim/internal/config"
	"github.com/san-kum/stellarsim/internal/metrics"
	"github.com/san-kum/stellarsim/internal/phasetable"
	"github.com/san-kum/stellarsim/internal/star"
	"github.com/san-kum/stellarsim/internal/store"
)

// Outcome is the per-star result of a batch run. Err is set for stars whose
// run failed (bad initial condition or a numeric contract violation); such
// stars publish no trajectory but never abort the rest of the batch.
type Outcome struct {
	StarID     string
	FinalPhase star.Phase
	Reason     star.TerminationReason
	Steps      int
	Err        error
}

// Report summarizes one batch.
type Report struct {
	BatchID  string
	Outcomes []Outcome
}

// Failed returns the outcomes whose runs errored.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Batch runs many stars in parallel. Stars share nothing mutable: the rule
// table is read-only, each runner owns its trajectory until the atomic
// publish into the store.
type Batch struct {
	table   *phasetable.Table
	budget  config.Budget
	workers int
	store   store.Store
	log     *slog.Logger
	metrics *metrics.Metrics
}

// BatchOption customizes a Batch.
type BatchOption func(*Batch)

// WithLogger sets the structured logger (default: discard).
func WithLogger(l *slog.Logger) BatchOption {
	return func(b *Batch) { b.log = l }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) BatchOption {
	return func(b *Batch) { b.metrics = m }
}

// NewBatch builds a batch driver publishing into st.
func NewBatch(cfg *config.Config, table *phasetable.Table, st store.Store, opts ...BatchOption) *Batch {
	b := &Batch{
		table:   table,
		budget:  cfg.Budget,
		workers: cfg.Workers,
		store:   st,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run simulates every star with a bounded worker pool and gathers outcomes
// into a report. Steps within one star stay strictly sequential; stars are
// scheduled independently with no ordering between them.
func (b *Batch) Run(ctx context.Context, stars []catalog.Star) *Report {
	report := &Report{
		BatchID:  uuid.NewString(),
		Outcomes: make([]Outcome, len(stars)),
	}

	var g errgroup.Group
	g.SetLimit(b.workers)

	for i, src := range stars {
		g.Go(func() error {
			report.Outcomes[i] = b.runOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	return report
}

func (b *Batch) runOne(ctx context.Context, src catalog.Star) Outcome {
	started := time.Now()

	runner, err := NewRunner(b.table, b.budget, src)
	if err != nil {
		b.log.Error("rejected initial condition", "star_id", src.ID, "err", err)
		b.observeFailure()
		return Outcome{StarID: src.ID, Err: err}
	}

	traj, err := runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		b.log.Error("run failed", "star_id", src.ID, "err", err)
		b.observeFailure()
		return Outcome{StarID: src.ID, Err: err}
	}

	if err := b.store.Record(ctx, traj); err != nil {
		b.log.Error("publish failed", "star_id", src.ID, "err", err)
		b.observeFailure()
		return Outcome{StarID: src.ID, Err: err}
	}

	out := Outcome{
		StarID:     src.ID,
		FinalPhase: traj.FinalPhase(),
		Reason:     traj.TerminationReason,
		Steps:      traj.Len() - 1,
	}

	b.log.Info("star completed",
		"star_id", src.ID,
		"final_phase", out.FinalPhase,
		"reason", out.Reason,
		"steps", out.Steps,
	)
	b.observeRun(traj, time.Since(started))

	return out
}

func (b *Batch) observeRun(traj *star.Trajectory, elapsed time.Duration) {
	if b.metrics == nil {
		return
	}
	b.metrics.RunsTotal.WithLabelValues(string(traj.TerminationReason)).Inc()
	b.metrics.StepsTotal.Add(float64(traj.Len() - 1))
	b.metrics.RunSeconds.Observe(elapsed.Seconds())

	for i := 1; i < len(traj.States); i++ {
		prev, cur := traj.States[i-1], traj.States[i]
		if prev.Phase != cur.Phase {
			b.metrics.TransitionsTotal.WithLabelValues(string(prev.Phase), string(cur.Phase)).Inc()
		}
	}
}

func (b *Batch) observeFailure() {
	if b.metrics == nil {
		return
	}
	b.metrics.RunsTotal.WithLabelValues("error").Inc()
}
