package stores

import (
	"sync"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
)

// fakeFeed is an in-process stand-in for the realtime subscriber.
type fakeFeed struct {
	mu   sync.Mutex
	subs map[realtime.Scope][]func(models.ChangeEvent)
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subs: make(map[realtime.Scope][]func(models.ChangeEvent))}
}

func (f *fakeFeed) Subscribe(scope realtime.Scope, onEvent func(models.ChangeEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[scope] = append(f.subs[scope], onEvent)
	return func() {}
}

func (f *fakeFeed) push(ev models.ChangeEvent) {
	f.mu.Lock()
	handlers := append([]func(models.ChangeEvent){}, f.subs[realtime.Scope{Table: ev.Table, ScopeID: ev.ScopeID}]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}
