package state

import "sort"

// OptimisticMatchWindow is the maximum clock distance between a locally
// created optimistic entity and a server row for the two to be treated as the
// same logical entity during a replace merge. The server id is unknown while
// the create is in flight, so matching falls back to author + content +
// time proximity. This is a best-effort heuristic: two identical posts by the
// same author inside the window would reconcile to one. Widening it absorbs
// more clock skew but raises that risk.
const OptimisticMatchWindow = 120_000 // milliseconds

// WithinMatchWindow reports whether two entities are close enough in time to
// be candidates for optimistic reconciliation.
func WithinMatchWindow(a, b Entity) bool {
	d := a.EntityCreatedAt().Sub(b.EntityCreatedAt()).Milliseconds()
	if d < 0 {
		d = -d
	}
	return d <= OptimisticMatchWindow
}

// MergeReplace computes the next local list from a fresh authoritative first
// page. The server page wins; local temp entries survive only while no server
// row matches them, so an in-flight optimistic create is not dropped by a
// racing refresh.
func MergeReplace[T Entity](serverPage, local []T, less func(a, b T) bool, matches func(temp, server T) bool) []T {
	next := make([]T, 0, len(serverPage)+4)
	next = append(next, dedupeByID(serverPage)...)

	for _, item := range local {
		if !IsTempID(item.EntityID()) {
			continue
		}
		confirmed := false
		for _, sv := range serverPage {
			if matches(item, sv) {
				confirmed = true
				break
			}
		}
		if !confirmed {
			next = append(next, item)
		}
	}

	sort.SliceStable(next, func(i, j int) bool { return less(next[i], next[j]) })
	return next
}

// MergeAppend unions a pagination page into the local list by id. Entities
// present on both sides are combined via mergeExisting (used to merge nested
// sub-collections such as a post's comments instead of overwriting them).
// The union is re-sorted into canonical order: a realtime-triggered reload
// racing a load-more means append order cannot be trusted.
func MergeAppend[T Entity](serverPage, local []T, less func(a, b T) bool, mergeExisting func(old, incoming T) T) []T {
	if mergeExisting == nil {
		mergeExisting = func(_, incoming T) T { return incoming }
	}

	index := make(map[string]int, len(local))
	next := make([]T, len(local))
	copy(next, local)
	for i, item := range next {
		index[item.EntityID()] = i
	}

	for _, incoming := range serverPage {
		if i, ok := index[incoming.EntityID()]; ok {
			next[i] = mergeExisting(next[i], incoming)
			continue
		}
		index[incoming.EntityID()] = len(next)
		next = append(next, incoming)
	}

	sort.SliceStable(next, func(i, j int) bool { return less(next[i], next[j]) })
	return next
}

func dedupeByID[T Entity](items []T) []T {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.EntityID()]; ok {
			continue
		}
		seen[item.EntityID()] = struct{}{}
		out = append(out, item)
	}
	return out
}
