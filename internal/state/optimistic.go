package state

import (
	"context"
	"errors"

	"tripboard/internal/observability"
)

var errNoReload = errors.New("mutation returned no body and no reload is configured")

// Mutation describes one optimistic write against a collection.
//
// The optimistic entity is inserted at its sorted position before the remote
// call starts. On success with a body the temp entry is replaced in place by
// the confirmed row; on success without a body Reload refetches the
// authoritative collection instead. On failure, or when ctx is cancelled
// mid-flight, the temp entry is rolled back by id.
type Mutation[T Entity] struct {
	Collection *Collection[T]

	// Optimistic builds the temporary entity spliced into local state.
	Optimistic func() T

	// Call performs the remote mutation. A nil result with a nil error
	// signals a fire-and-forget endpoint that confirms nothing.
	Call func(ctx context.Context) (*T, error)

	// Carry merges state the optimistic entry accrued while the call was in
	// flight (e.g. comments appended to a pending post) into the confirmed
	// entity. Optional; defaults to taking the confirmed entity as-is.
	Carry func(local, confirmed T) T

	// Reload refetches the collection when Call confirms nothing.
	Reload func(ctx context.Context) error

	// Refresh lists dependent collections that must be refetched after a
	// successful mutation (e.g. a friend accept invalidates both the friend
	// list and the invite list). Dependencies are declared here explicitly
	// rather than discovered implicitly by callers.
	Refresh []func(ctx context.Context)
}

// Do runs the mutation and returns the confirmed entity.
func (m Mutation[T]) Do(ctx context.Context) (T, error) {
	var zero T

	optimistic := m.Optimistic()
	tempID := optimistic.EntityID()
	m.Collection.Insert(optimistic)

	confirmed, err := m.Call(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		m.Collection.Remove(tempID)
		observability.IncOptimisticRollback()
		return zero, err
	}

	if confirmed == nil {
		m.Collection.Remove(tempID)
		if m.Reload == nil {
			return zero, errNoReload
		}
		if err := m.Reload(ctx); err != nil {
			return zero, err
		}
		m.runRefresh(ctx)
		return zero, nil
	}

	final := *confirmed
	if m.Carry != nil {
		if accrued, ok := m.Collection.Get(tempID); ok {
			final = m.Carry(accrued, final)
		}
	}
	if !m.Collection.Replace(tempID, final) {
		// The temp entry was already reconciled away by a refresh; make sure
		// the confirmed row is present exactly once.
		m.Collection.Insert(final)
	}

	m.runRefresh(ctx)
	return final, nil
}

func (m Mutation[T]) runRefresh(ctx context.Context) {
	for _, refresh := range m.Refresh {
		refresh(ctx)
	}
}

// SnapshotMutation applies a local change that has no optimistic entity of
// its own (rename, member removal) and restores the pre-mutation snapshot
// verbatim when the remote call fails.
func SnapshotMutation[T Entity](ctx context.Context, col *Collection[T], apply func(), call func(ctx context.Context) error) error {
	snapshot := col.Snapshot()
	apply()

	err := call(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		col.Restore(snapshot)
		observability.IncOptimisticRollback()
		return err
	}
	return nil
}
