package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadFirstLoadIsBaseline(t *testing.T) {
	tracker := NewUnreadTracker()
	newly := tracker.Observe([]string{"a", "b", "c"})

	assert.Empty(t, newly)
	assert.Equal(t, 0, tracker.UnreadCount())
}

func TestUnreadDiffAgainstKnown(t *testing.T) {
	tracker := NewUnreadTracker()
	tracker.Observe([]string{"a", "b"})

	newly := tracker.Observe([]string{"a", "b", "c"})
	require.Equal(t, []string{"c"}, newly)
	assert.True(t, tracker.IsUnread("c"))
	assert.Equal(t, 1, tracker.UnreadCount())
}

func TestUnreadEvictsStaleIDs(t *testing.T) {
	tracker := NewUnreadTracker()
	tracker.Observe([]string{"a", "b"})
	tracker.Observe([]string{"a", "b", "c"})
	require.True(t, tracker.IsUnread("c"))

	newly := tracker.Observe([]string{"a", "b"})
	assert.Empty(t, newly)
	assert.Equal(t, 0, tracker.UnreadCount())

	// c must be treated as brand new if it ever comes back
	newly = tracker.Observe([]string{"a", "b", "c"})
	require.Equal(t, []string{"c"}, newly)
}

func TestMarkReadSpecificIDs(t *testing.T) {
	tracker := NewUnreadTracker()
	tracker.Observe(nil)
	tracker.Observe([]string{"a", "b"})
	require.Equal(t, 2, tracker.UnreadCount())

	tracker.MarkRead("a")
	assert.False(t, tracker.IsUnread("a"))
	assert.True(t, tracker.IsUnread("b"))

	// marking read never forgets the id
	newly := tracker.Observe([]string{"a", "b"})
	assert.Empty(t, newly)
}

func TestMarkReadAll(t *testing.T) {
	tracker := NewUnreadTracker()
	tracker.Observe(nil)
	tracker.Observe([]string{"a", "b", "c"})

	tracker.MarkRead()
	assert.Equal(t, 0, tracker.UnreadCount())
}

func TestForgetDropsBothSets(t *testing.T) {
	tracker := NewUnreadTracker()
	tracker.Observe(nil)
	tracker.Observe([]string{"a"})
	require.True(t, tracker.IsUnread("a"))

	tracker.Forget("a")
	assert.Equal(t, 0, tracker.UnreadCount())
	newly := tracker.Observe([]string{"a"})
	require.Equal(t, []string{"a"}, newly)
}

func TestTotalUnreadSumsTrackers(t *testing.T) {
	a, b := NewUnreadTracker(), NewUnreadTracker()
	a.Observe(nil)
	b.Observe(nil)
	a.Observe([]string{"x"})
	b.Observe([]string{"y", "z"})

	assert.Equal(t, 3, TotalUnread(a, b, nil))
}
