package sequence

import (
	"context"
	"fmt"
	"log/slog"
)

// Counter is the sequence surface the bootstrapper writes to.
type Counter interface {
	Current(ctx context.Context) (int64, error)
	Set(ctx context.Context, value int64) error
}

// MaxSource reports the maximum value of a numeric field across a document collection.
type MaxSource interface {
	MaxField(ctx context.Context, field string) (int64, error)
}

// Mapping binds a counter to the collection field it must stay ahead of.
type Mapping struct {
	Key     string
	Field   string
	Source  MaxSource
	Counter Counter
}

// Bootstrapper reconciles counters against the document store at startup, so
// a counter surviving a store data loss is restored from the documents, the
// source of truth for assigned IDs.
type Bootstrapper struct {
	mappings []Mapping
	logger   *slog.Logger
}

// NewBootstrapper creates a Bootstrapper over the given mappings.
func NewBootstrapper(mappings []Mapping, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		mappings: mappings,
		logger:   logger.With("component", "sequence_bootstrap"),
	}
}

// Run reconciles every configured sequence, one at a time, in configuration
// order. Any failure is returned unmodified: an inconsistent sequence risks
// silent ID collisions, so the caller must treat it as fatal to startup.
func (b *Bootstrapper) Run(ctx context.Context) error {
	b.logger.InfoContext(ctx, "Starting sequence initialization")
	for _, m := range b.mappings {
		if err := b.reconcile(ctx, m); err != nil {
			return fmt.Errorf("failed to initialize sequence %s: %w", m.Key, err)
		}
	}
	b.logger.InfoContext(ctx, "Completed sequence initialization")
	return nil
}

// reconcile overwrites the counter only when it is behind the store's maximum.
// The counter wins ties and any higher value: it is assumed ahead of the
// document store, e.g. due to pending writes.
func (b *Bootstrapper) reconcile(ctx context.Context, m Mapping) error {
	maxID, err := m.Source.MaxField(ctx, m.Field)
	if err != nil {
		return err
	}
	current, err := m.Counter.Current(ctx)
	if err != nil {
		return err
	}

	if current < maxID {
		if err := m.Counter.Set(ctx, maxID); err != nil {
			return err
		}
		b.logger.InfoContext(ctx, "Sequence initialized from store", "key", m.Key, "value", maxID)
		return nil
	}
	b.logger.InfoContext(ctx, "Sequence already ahead of store", "key", m.Key, "current", current, "store_max", maxID)
	return nil
}
