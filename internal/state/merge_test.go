package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	return out
}

func TestMergeReplaceServerPageWins(t *testing.T) {
	server := []item{mk("b", 20), mk("a", 10)}
	local := []item{mk("stale", 5)}

	next := MergeReplace(server, local, NewestFirst[item], matchByContent)
	require.Equal(t, []string{"b", "a"}, ids(next))
}

func TestMergeReplaceCarriesUnconfirmedTemp(t *testing.T) {
	temp := mk("temp-post-1", 25)
	temp.content = "still in flight"
	server := []item{mk("b", 20), mk("a", 10)}

	next := MergeReplace(server, []item{temp, mk("a", 10)}, NewestFirst[item], matchByContent)
	require.Equal(t, []string{"temp-post-1", "b", "a"}, ids(next))
}

func TestMergeReplaceDropsConfirmedTemp(t *testing.T) {
	temp := mk("temp-post-1", 25)
	confirmed := mk("s9", 26)
	confirmed.content = temp.content

	next := MergeReplace([]item{confirmed, mk("a", 10)}, []item{temp}, NewestFirst[item], matchByContent)
	require.Equal(t, []string{"s9", "a"}, ids(next))
}

func TestMergeReplaceKeepsTempOutsideMatchWindow(t *testing.T) {
	temp := mk("temp-post-1", 0)
	lookalike := mk("s9", 300) // same author+content but five minutes apart
	lookalike.content = temp.content

	next := MergeReplace([]item{lookalike}, []item{temp}, NewestFirst[item], matchByContent)
	require.Equal(t, []string{"s9", "temp-post-1"}, ids(next))
}

func TestMergeAppendUnionNoDuplicates(t *testing.T) {
	local := []item{mk("c", 30), mk("b", 20)}
	page := []item{mk("b", 20), mk("a", 10)}

	next := MergeAppend(page, local, NewestFirst[item], nil)
	require.Equal(t, []string{"c", "b", "a"}, ids(next))
}

func TestMergeAppendIsIdempotent(t *testing.T) {
	local := []item{mk("c", 30)}
	page := []item{mk("b", 20), mk("a", 10)}

	once := MergeAppend(page, local, NewestFirst[item], nil)
	twice := MergeAppend(page, once, NewestFirst[item], nil)
	require.Equal(t, once, twice)
}

func TestMergeAppendMergesExistingEntries(t *testing.T) {
	old := mk("p1", 10)
	old.content = "has accrued comments"
	incoming := mk("p1", 10)

	next := MergeAppend([]item{incoming}, []item{old}, NewestFirst[item], func(old, incoming item) item {
		incoming.content = old.content
		return incoming
	})
	require.Len(t, next, 1)
	assert.Equal(t, "has accrued comments", next[0].content)
}

func TestMergeAppendResortsRacedPages(t *testing.T) {
	// A realtime reload replaced local state while an older page was in
	// flight; the union must come out in canonical order regardless.
	local := []item{mk("d", 40), mk("a", 10)}
	page := []item{mk("c", 30), mk("b", 20)}

	next := MergeAppend(page, local, NewestFirst[item], nil)
	require.Equal(t, []string{"d", "c", "b", "a"}, ids(next))
}
