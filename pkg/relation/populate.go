package relation

import "context"

// Key identifies the entry a population routine should compute, keyed by
// primary-key attribute.
type Key map[string]any

// Populator is the population capability of Imported and Computed relations.
// The relation package records it but never invokes it.
type Populator interface {
	MakeTuples(ctx context.Context, key Key) error
}

// PopulatorFunc adapts a function to the Populator interface.
type PopulatorFunc func(ctx context.Context, key Key) error

// MakeTuples calls f(ctx, key).
func (f PopulatorFunc) MakeTuples(ctx context.Context, key Key) error {
	return f(ctx, key)
}
