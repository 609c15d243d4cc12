package state

import (
	"context"
	"sync"
)

// Page is one slice of a cursor-paged collection as returned by the backend.
type Page[T Entity] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// FetchPage requests one page starting at cursor; an empty cursor means the
// first page.
type FetchPage[T Entity] func(ctx context.Context, cursor string, limit int) (Page[T], error)

// Pager walks a cursor-paged collection. Concurrent NextPage calls for the
// same pager are serialized: while a fetch is in flight, further callers wait
// for and share its result instead of issuing duplicate requests.
type Pager[T Entity] struct {
	fetch FetchPage[T]
	limit int

	mu       sync.Mutex
	cursor   string
	hasMore  bool
	inflight *pageCall[T]
}

type pageCall[T Entity] struct {
	done chan struct{}
	page Page[T]
	err  error
}

// NewPager creates a pager positioned at the first page.
func NewPager[T Entity](fetch FetchPage[T], limit int) *Pager[T] {
	return &Pager[T]{fetch: fetch, limit: limit, hasMore: true}
}

// NextPage fetches the next page and advances the cursor. Once HasMore is
// false it returns empty pages without touching the network.
func (p *Pager[T]) NextPage(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	if call := p.inflight; call != nil {
		p.mu.Unlock()
		select {
		case <-call.done:
			return call.page, call.err
		case <-ctx.Done():
			return Page[T]{}, ctx.Err()
		}
	}
	if !p.hasMore {
		p.mu.Unlock()
		return Page[T]{HasMore: false}, nil
	}
	call := &pageCall[T]{done: make(chan struct{})}
	p.inflight = call
	cursor := p.cursor
	p.mu.Unlock()

	page, err := p.fetch(ctx, cursor, p.limit)

	p.mu.Lock()
	p.inflight = nil
	if err == nil {
		p.cursor = page.NextCursor
		p.hasMore = page.HasMore
	}
	p.mu.Unlock()

	call.page, call.err = page, err
	close(call.done)
	return page, err
}

// HasMore reports whether another page is expected.
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Reset rewinds the pager to the first page.
func (p *Pager[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cursor = ""
	p.hasMore = true
}
