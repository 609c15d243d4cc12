package ws

import "time"

// ConnInfo describes one change-feed connection for audit and debugging.
type ConnInfo struct {
	ConnID      string
	UserID      string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
