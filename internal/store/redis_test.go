package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"

	"github.com/san-kum/stellarsim/internal/star"
)

func newTestRedis(t *testing.T, opts ...RedisOption) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedisFromClient(backend.NewClient(&backend.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedis_Roundtrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	if err := r.Record(ctx, sampleTrajectory("sun")); err != nil {
		t.Fatal(err)
	}

	got, err := r.Get(ctx, "sun")
	if err != nil {
		t.Fatal(err)
	}
	if got.StarID != "sun" || got.InitialMass != 1.0 || got.Len() != 2 {
		t.Errorf("unexpected trajectory: %+v", got)
	}
	if got.TerminationReason != star.ReasonTerminalPhase {
		t.Errorf("termination reason lost: %s", got.TerminationReason)
	}
	if got.States[1].Phase != star.PreMainSequence {
		t.Errorf("state phase lost: %s", got.States[1].Phase)
	}
}

func TestRedis_GetMissing(t *testing.T) {
	r := newTestRedis(t)
	_, err := r.Get(context.Background(), "nope")
	if !errors.Is(err, star.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRedis_RecordReplaces(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	if err := r.Record(ctx, sampleTrajectory("sun")); err != nil {
		t.Fatal(err)
	}

	short := &star.Trajectory{StarID: "sun", InitialMass: 1.0, TerminationReason: star.ReasonBudgetExceeded}
	short.Append(star.StateVector{StarID: "sun", Mass: 1.0, Phase: star.PreMainSequence})
	if err := r.Record(ctx, short); err != nil {
		t.Fatal(err)
	}

	got, err := r.Get(ctx, "sun")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || got.TerminationReason != star.ReasonBudgetExceeded {
		t.Errorf("expected the replacing run, got %+v", got)
	}
}

func TestRedis_AllSorted(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := r.Record(ctx, sampleTrajectory(id)); err != nil {
			t.Fatal(err)
		}
	}

	all, err := r.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 trajectories, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].StarID != want {
			t.Errorf("position %d: got %s, want %s", i, all[i].StarID, want)
		}
	}
}

func TestRedis_KeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	r := NewRedisFromClient(client, WithPrefix("lab:"))
	defer r.Close()
	ctx := context.Background()

	if err := r.Record(ctx, sampleTrajectory("sun")); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("lab:sun") {
		t.Error("expected the trajectory under the custom prefix")
	}
	if !mr.Exists("lab:index") {
		t.Error("expected the index set under the custom prefix")
	}
}
