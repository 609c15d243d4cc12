package state

import (
	"strings"
	"time"
)

// item is the entity used across the package tests.
type item struct {
	id      string
	author  string
	content string
	at      time.Time
}

func (i item) EntityID() string           { return i.id }
func (i item) EntityCreatedAt() time.Time { return i.at }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	waitFor = time.Second
	tick    = 10 * time.Millisecond
)

func at(sec int) time.Time { return epoch.Add(time.Duration(sec) * time.Second) }

func mk(id string, sec int) item {
	return item{id: id, author: "alice", content: "c-" + id, at: at(sec)}
}

// matchByContent mirrors the optimistic reconciliation predicate the stores
// use: same author, same trimmed content, creation times within the window.
func matchByContent(temp, server item) bool {
	return temp.author == server.author &&
		strings.TrimSpace(temp.content) == strings.TrimSpace(server.content) &&
		WithinMatchWindow(temp, server)
}
