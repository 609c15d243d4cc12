package state

import "sync"

// UnreadTracker derives "new since last seen" badges by diffing the ids of
// each fresh load against the set of previously known ids. It never consults
// server read-timestamps.
type UnreadTracker struct {
	mu        sync.Mutex
	baselined bool
	known     map[string]struct{}
	unread    map[string]struct{}
}

// NewUnreadTracker creates an empty tracker.
func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{
		known:  make(map[string]struct{}),
		unread: make(map[string]struct{}),
	}
}

// Observe folds a fresh load of ids into the tracker and returns the ids that
// became unread. The first observation establishes the baseline: everything
// becomes known and nothing becomes unread, so an initial load never floods
// badges. Ids that disappeared from the fresh load are evicted from both the
// known and unread sets.
func (t *UnreadTracker) Observe(freshIDs []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	fresh := make(map[string]struct{}, len(freshIDs))
	for _, id := range freshIDs {
		fresh[id] = struct{}{}
	}

	var newly []string
	if t.baselined {
		for _, id := range freshIDs {
			if _, ok := t.known[id]; !ok {
				t.unread[id] = struct{}{}
				newly = append(newly, id)
			}
		}
	}

	for id := range t.known {
		if _, ok := fresh[id]; !ok {
			delete(t.known, id)
			delete(t.unread, id)
		}
	}
	for id := range fresh {
		t.known[id] = struct{}{}
	}
	t.baselined = true
	return newly
}

// MarkRead clears the given ids from the unread set; with no arguments it
// clears everything currently unread. The known set is never touched.
func (t *UnreadTracker) MarkRead(ids ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(ids) == 0 {
		t.unread = make(map[string]struct{})
		return
	}
	for _, id := range ids {
		delete(t.unread, id)
	}
}

// Forget drops an id from both sets, for entities removed locally (left
// group, deleted invite) before the next load confirms the removal.
func (t *UnreadTracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.known, id)
	delete(t.unread, id)
}

// IsUnread reports whether the id is currently unread.
func (t *UnreadTracker) IsUnread(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.unread[id]
	return ok
}

// UnreadCount is the badge count: always the live size of the unread set.
func (t *UnreadTracker) UnreadCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.unread)
}

// UnreadIDs returns the currently unread ids in no particular order.
func (t *UnreadTracker) UnreadIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.unread))
	for id := range t.unread {
		ids = append(ids, id)
	}
	return ids
}

// TotalUnread sums unread counts across trackers. Aggregate badges are always
// computed from the per-scope sets, never kept as separate counters.
func TotalUnread(trackers ...*UnreadTracker) int {
	total := 0
	for _, t := range trackers {
		if t != nil {
			total += t.UnreadCount()
		}
	}
	return total
}
