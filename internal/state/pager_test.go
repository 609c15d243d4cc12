package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedFetch serves fixed pages of two items out of a ten item corpus,
// using (createdAt, id) cursors the way the backend does.
func pagedFetch(corpus []item) FetchPage[item] {
	return func(ctx context.Context, cursor string, limit int) (Page[item], error) {
		start := 0
		if decoded, ok := DecodeCursor(cursor); ok {
			for i, it := range corpus {
				if it.id == decoded.ID {
					start = i + 1
					break
				}
			}
		}
		end := start + limit
		if end > len(corpus) {
			end = len(corpus)
		}
		page := Page[item]{Items: corpus[start:end], HasMore: end < len(corpus)}
		if len(page.Items) > 0 {
			page.NextCursor = CursorFor(page.Items[len(page.Items)-1])
		}
		return page, nil
	}
}

func corpus(n int) []item {
	out := make([]item, n)
	for i := 0; i < n; i++ {
		out[i] = mk(string(rune('a'+i)), 100-i)
	}
	return out
}

func TestPagerWalksAllPagesWithoutDuplicates(t *testing.T) {
	all := corpus(5)
	p := NewPager(pagedFetch(all), 2)

	var collected []item
	for p.HasMore() {
		page, err := p.NextPage(context.Background())
		require.NoError(t, err)
		collected = append(collected, page.Items...)
	}

	require.Equal(t, ids(all), ids(collected))
}

func TestPagerStopsAfterLastPage(t *testing.T) {
	var fetches int32
	fetch := func(ctx context.Context, cursor string, limit int) (Page[item], error) {
		atomic.AddInt32(&fetches, 1)
		return Page[item]{Items: []item{mk("only", 1)}, HasMore: false}, nil
	}
	p := NewPager(fetch, 10)

	_, err := p.NextPage(context.Background())
	require.NoError(t, err)

	// exhausted pagers answer locally
	page, err := p.NextPage(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestPagerSerializesConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	var fetches int32
	fetch := func(ctx context.Context, cursor string, limit int) (Page[item], error) {
		atomic.AddInt32(&fetches, 1)
		<-release
		return Page[item]{Items: []item{mk("x", 1)}, NextCursor: "c", HasMore: true}, nil
	}
	p := NewPager(fetch, 2)

	var wg sync.WaitGroup
	results := make([]Page[item], 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			page, err := p.NextPage(context.Background())
			require.NoError(t, err)
			results[i] = page
		}(i)
	}

	// let both goroutines reach the pager before releasing the fetch
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetches) == 1 }, waitFor, tick)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.Equal(t, results[0], results[1])
}

func TestPagerErrorDoesNotAdvanceCursor(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context, cursor string, limit int) (Page[item], error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return Page[item]{}, assert.AnError
		}
		assert.Empty(t, cursor)
		return Page[item]{Items: []item{mk("a", 1)}, HasMore: false}, nil
	}
	p := NewPager(fetch, 2)

	_, err := p.NextPage(context.Background())
	require.Error(t, err)
	require.True(t, p.HasMore())

	page, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestPagerReset(t *testing.T) {
	all := corpus(3)
	p := NewPager(pagedFetch(all), 3)

	_, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.False(t, p.HasMore())

	p.Reset()
	require.True(t, p.HasMore())
	page, err := p.NextPage(context.Background())
	require.NoError(t, err)
	require.Equal(t, ids(all), ids(page.Items))
}
