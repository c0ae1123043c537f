package ws

import "time"

// ConnInfo identifies one live websocket connection. UserID is 0 for
// anonymous connections.
type ConnInfo struct {
	ConnID      string
	UserID      int64
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
