package state

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Cursor is an opaque pagination position: a (createdAt, id) pair acting as
// a keyset tie-break.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Encode renders the cursor as base64("<RFC3339Nano>|<id>").
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an encoded cursor. Any malformation — bad base64, a
// missing separator, an unparseable timestamp, an empty id — yields
// (zero, false), which callers treat as "no cursor": pagination restarts from
// the first page and never dead-ends on a corrupted token.
func DecodeCursor(encoded string) (Cursor, bool) {
	if encoded == "" {
		return Cursor{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, false
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Cursor{}, false
	}
	return Cursor{CreatedAt: ts, ID: parts[1]}, true
}

// CursorFor builds the continuation cursor from the last entity of a page.
func CursorFor(e Entity) string {
	return Cursor{CreatedAt: e.EntityCreatedAt(), ID: e.EntityID()}.Encode()
}
