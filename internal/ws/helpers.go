package ws

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// newConnID mints an opaque id, used for both connection ids and realtime
// tokens.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
