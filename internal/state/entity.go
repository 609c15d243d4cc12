package state

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Entity is the minimal shape the sync engine needs from a synced row.
type Entity interface {
	EntityID() string
	EntityCreatedAt() time.Time
}

// TempIDPrefix marks locally generated ids awaiting server confirmation.
const TempIDPrefix = "temp-"

// NewTempID generates a temporary id for an optimistic entity of the given
// kind, e.g. "temp-post-1712345678901-4f21a9d3".
func NewTempID(kind string) string {
	return fmt.Sprintf("%s%s-%d-%08x", TempIDPrefix, kind, time.Now().UnixMilli(), rand.Uint32())
}

// IsTempID reports whether the id was generated locally.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// NewestFirst orders feed collections by (createdAt desc, id desc).
func NewestFirst[T Entity](a, b T) bool {
	at, bt := a.EntityCreatedAt(), b.EntityCreatedAt()
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return a.EntityID() > b.EntityID()
}

// OldestFirst orders chronological collections (chat, comments) by
// (createdAt asc, id asc).
func OldestFirst[T Entity](a, b T) bool {
	at, bt := a.EntityCreatedAt(), b.EntityCreatedAt()
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.EntityID() < b.EntityID()
}
