// Package sequence provides monotonic integer ID generation backed by a
// Redis counter, plus the startup reconciliation of counters against the
// document store.
package sequence

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/akulikov/gocatalog/internal/errors"
	"github.com/redis/go-redis/v9"
)

// Commands is the subset of the Redis API the sequence adapter relies on.
// *redis.Client satisfies it.
type Commands interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Sequence is a named monotonic integer counter. Increments are atomic in the
// backing store, which is what keeps concurrently generated IDs distinct.
// No operation is retried internally.
type Sequence struct {
	rdb    Commands
	key    string
	logger *slog.Logger
}

// New creates a Sequence over the given counter key.
func New(rdb Commands, key string, logger *slog.Logger) *Sequence {
	return &Sequence{
		rdb:    rdb,
		key:    key,
		logger: logger.With("component", "sequence", "key", key),
	}
}

// Key returns the counter key this sequence increments.
func (s *Sequence) Key() string {
	return s.key
}

// Next atomically increments the counter and returns the new value.
// The first call on an unset counter returns 1.
func (s *Sequence) Next(ctx context.Context) (int64, error) {
	next, err := s.rdb.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, &apperrors.SequenceError{Key: s.key, Err: err}
	}
	s.logger.DebugContext(ctx, "Generated next ID", "id", next)
	return next, nil
}

// Current returns the counter value without incrementing it. An unset counter yields 0.
func (s *Sequence) Current(ctx context.Context) (int64, error) {
	value, err := s.rdb.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, &apperrors.SequenceError{Key: s.key, Err: err}
	}
	current, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &apperrors.SequenceError{Key: s.key, Err: err}
	}
	return current, nil
}

// Set overwrites the counter with the given value.
func (s *Sequence) Set(ctx context.Context, value int64) error {
	if err := s.rdb.Set(ctx, s.key, value, 0).Err(); err != nil {
		return &apperrors.SequenceError{Key: s.key, Err: err}
	}
	s.logger.InfoContext(ctx, "Counter set", "value", value)
	return nil
}

// Reset deletes the counter. A subsequent Next restarts at 1.
func (s *Sequence) Reset(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return &apperrors.SequenceError{Key: s.key, Err: err}
	}
	s.logger.InfoContext(ctx, "Counter reset")
	return nil
}
