package state

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutateConfirmedReplacesTempInPlace(t *testing.T) {
	col := NewCollection(NewestFirst[item])
	col.Insert(mk("old", 10))

	confirmed := mk("s1", 20)
	got, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-post-1", 20) },
		Call: func(ctx context.Context) (*item, error) {
			// the optimistic entry is visible while the call is in flight
			_, ok := col.Get("temp-post-1")
			require.True(t, ok)
			return &confirmed, nil
		},
	}.Do(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "s1", got.id)
	require.Equal(t, []string{"s1", "old"}, col.IDs())
}

func TestMutateCarryPreservesAccruedState(t *testing.T) {
	col := NewCollection(NewestFirst[item])

	confirmed := mk("s1", 20)
	_, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-post-1", 20) },
		Call: func(ctx context.Context) (*item, error) {
			// a comment lands on the optimistic post before the create resolves
			col.Update("temp-post-1", func(it item) item {
				it.content = "accrued comment"
				return it
			})
			return &confirmed, nil
		},
		Carry: func(local, confirmed item) item {
			confirmed.content = local.content
			return confirmed
		},
	}.Do(context.Background())

	require.NoError(t, err)
	got, ok := col.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "accrued comment", got.content)
}

func TestMutateFailureRollsBackExactly(t *testing.T) {
	col := NewCollection(NewestFirst[item])
	col.Insert(mk("b", 20))
	col.Insert(mk("a", 10))
	before := col.Snapshot()

	_, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-post-1", 30) },
		Call: func(ctx context.Context) (*item, error) {
			return nil, assert.AnError
		},
	}.Do(context.Background())

	require.Error(t, err)
	require.Equal(t, before, col.Snapshot())
}

func TestMutateAbortRollsBackByID(t *testing.T) {
	col := NewCollection(NewestFirst[item])
	ctx, cancel := context.WithCancel(context.Background())

	_, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-post-1", 30) },
		Call: func(ctx context.Context) (*item, error) {
			// an unrelated optimistic insert lands while this call aborts;
			// rollback is keyed by id and must not evict it
			col.Insert(mk("temp-post-2", 40))
			cancel()
			confirmed := mk("never", 30)
			return &confirmed, nil
		},
	}.Do(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"temp-post-2"}, col.IDs())
}

func TestMutateNoBodyTriggersReloadAndRefresh(t *testing.T) {
	col := NewCollection(NewestFirst[item])
	reloaded, refreshed := false, false

	_, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-invite-1", 10) },
		Call:       func(ctx context.Context) (*item, error) { return nil, nil },
		Reload: func(ctx context.Context) error {
			reloaded = true
			col.SetItems([]item{mk("s1", 10)})
			return nil
		},
		Refresh: []func(ctx context.Context){
			func(ctx context.Context) { refreshed = true },
		},
	}.Do(context.Background())

	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.True(t, refreshed)
	require.Equal(t, []string{"s1"}, col.IDs())
}

func TestMutateConfirmedAfterRefreshReconciledTemp(t *testing.T) {
	col := NewCollection(NewestFirst[item])

	confirmed := mk("s1", 20)
	_, err := Mutation[item]{
		Collection: col,
		Optimistic: func() item { return mk("temp-post-1", 20) },
		Call: func(ctx context.Context) (*item, error) {
			// a refresh reconciled the temp away before the call returned
			col.SetItems([]item{confirmed})
			return &confirmed, nil
		},
	}.Do(context.Background())

	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, col.IDs())
}

func TestSnapshotMutationRestoresVerbatim(t *testing.T) {
	col := NewCollection(OldestFirst[item])
	col.SetItems([]item{mk("a", 10), mk("b", 20), mk("c", 30)})
	before := col.Snapshot()

	err := SnapshotMutation(context.Background(), col,
		func() { col.Remove("b") },
		func(ctx context.Context) error { return assert.AnError },
	)

	require.Error(t, err)
	require.Equal(t, before, col.Snapshot())
}

func TestSnapshotMutationKeepsApplyOnSuccess(t *testing.T) {
	col := NewCollection(OldestFirst[item])
	col.SetItems([]item{mk("a", 10), mk("b", 20)})

	err := SnapshotMutation(context.Background(), col,
		func() { col.Remove("b") },
		func(ctx context.Context) error { return nil },
	)

	require.NoError(t, err)
	require.Equal(t, []string{"a"}, col.IDs())
}
