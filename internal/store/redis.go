package store

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/san-kum/stellarsim/internal/star"
)

// Redis shares published trajectories with downstream consumers over a
// Redis instance. Each trajectory is one JSON value under a prefixed key;
// a set tracks the published star ids. SET is atomic, so readers see either
// the previous complete run or the new one, never a mix.
type Redis struct {
	client *backend.Client
	prefix string
}

// RedisOption customizes a Redis store.
type RedisOption func(*Redis)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// NewRedis connects to a Redis instance at addr.
func NewRedis(addr string, opts ...RedisOption) *Redis {
	client := backend.NewClient(&backend.Options{Addr: addr})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, prefix: "stellarsim:trajectory:"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close releases the underlying client.
func (r *Redis) Close() error { return r.client.Close() }

func (r *Redis) key(starID string) string { return r.prefix + starID }
func (r *Redis) indexKey() string         { return r.prefix + "index" }

// Record publishes t, replacing any previous run for the same star.
func (r *Redis) Record(ctx context.Context, t *star.Trajectory) error {
	if t == nil || t.StarID == "" {
		return fmt.Errorf("store: trajectory must have a star id")
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trajectory: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(t.StarID), data, 0)
	pipe.SAdd(ctx, r.indexKey(), t.StarID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish trajectory: %w", err)
	}
	return nil
}

// Get loads one star's trajectory.
func (r *Redis) Get(ctx context.Context, starID string) (*star.Trajectory, error) {
	data, err := r.client.Get(ctx, r.key(starID)).Bytes()
	if err == backend.Nil {
		return nil, fmt.Errorf("%w: %s", star.ErrNotFound, starID)
	}
	if err != nil {
		return nil, fmt.Errorf("load trajectory: %w", err)
	}

	t := &star.Trajectory{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("unmarshal trajectory: %w", err)
	}
	return t, nil
}

// All loads every published trajectory, ordered by star id.
func (r *Redis) All(ctx context.Context) ([]*star.Trajectory, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list trajectories: %w", err)
	}

	out := make([]*star.Trajectory, 0, len(ids))
	for _, id := range ids {
		t, err := r.Get(ctx, id)
		if err != nil {
			// An index entry whose value expired is skipped, not fatal.
			continue
		}
		out = append(out, t)
	}

	sortTrajectories(out)
	return out, nil
}
