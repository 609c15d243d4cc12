package stores

import (
	"context"
	"sync"
)

// loadGuard supersedes in-flight loads per scope key: starting a new load
// cancels the previous one for the same key, so a stale response can never
// overwrite a fresher one. Callers check ctx.Err() after the fetch and drop
// the result silently when superseded.
type loadGuard struct {
	mu     sync.Mutex
	active map[string]*loadToken
}

type loadToken struct {
	cancel context.CancelFunc
}

func newLoadGuard() *loadGuard {
	return &loadGuard{active: make(map[string]*loadToken)}
}

// begin derives a cancellable context for one load of the given key and
// cancels whatever load was running for that key before. The returned done
// func releases the slot.
func (g *loadGuard) begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	token := &loadToken{cancel: cancel}

	g.mu.Lock()
	if prev := g.active[key]; prev != nil {
		prev.cancel()
	}
	g.active[key] = token
	g.mu.Unlock()

	return ctx, func() {
		cancel()
		g.mu.Lock()
		if g.active[key] == token {
			delete(g.active, key)
		}
		g.mu.Unlock()
	}
}

// stop cancels every in-flight load.
func (g *loadGuard) stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, token := range g.active {
		token.cancel()
		delete(g.active, key)
	}
}
