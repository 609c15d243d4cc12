package ws

import (
	"sync"
	"time"
)

// TokenTTL is how long an issued realtime credential stays valid. Clients
// refresh well before this on their own schedule.
const TokenTTL = time.Hour

type issuedToken struct {
	userID    string
	expiresAt time.Time
}

// TokenIssuer hands out short-lived credentials for the change-feed
// endpoint, so the websocket handshake never carries the session token in a
// query string.
type TokenIssuer struct {
	mu     sync.Mutex
	tokens map[string]issuedToken
	now    func() time.Time
}

// NewTokenIssuer creates an empty issuer.
func NewTokenIssuer() *TokenIssuer {
	return &TokenIssuer{tokens: make(map[string]issuedToken), now: time.Now}
}

// Issue mints a credential for the user.
func (i *TokenIssuer) Issue(userID string) string {
	token := newConnID()
	i.mu.Lock()
	defer i.mu.Unlock()
	i.pruneLocked()
	i.tokens[token] = issuedToken{userID: userID, expiresAt: i.now().Add(TokenTTL)}
	return token
}

// Validate resolves a credential to its user. Expired or unknown tokens
// fail; a token stays reusable until expiry so reconnects do not need a
// fresh HTTP round-trip first.
func (i *TokenIssuer) Validate(token string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	issued, ok := i.tokens[token]
	if !ok || i.now().After(issued.expiresAt) {
		delete(i.tokens, token)
		return "", false
	}
	return issued.userID, true
}

func (i *TokenIssuer) pruneLocked() {
	now := i.now()
	for token, issued := range i.tokens {
		if now.After(issued.expiresAt) {
			delete(i.tokens, token)
		}
	}
}
