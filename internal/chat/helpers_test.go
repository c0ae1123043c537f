package chat

import (
	"sync"

	"forum-realtime/internal/models"
	"forum-realtime/internal/ws"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []interface{}
	closed bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, v)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) envelopes(event string) []models.ServerEnvelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ServerEnvelope
	for _, frame := range f.frames {
		if env, ok := frame.(models.ServerEnvelope); ok && env.Event == event {
			out = append(out, env)
		}
	}
	return out
}

func (f *fakeConn) acks() []models.Ack {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Ack
	for _, frame := range f.frames {
		if ack, ok := frame.(models.Ack); ok {
			out = append(out, ack)
		}
	}
	return out
}

func newTestClient(hub *ws.Hub, connID string, userID int64) (*ws.Client, *fakeConn) {
	conn := &fakeConn{}
	client := ws.NewClient(conn, ws.ConnInfo{ConnID: connID, UserID: userID})
	hub.AddClient(client)
	return client, conn
}
