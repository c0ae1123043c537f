package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"forum-realtime/internal/models"
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

func newTestClient(connID string, userID int64) (*Client, *fakeConn) {
	conn := &fakeConn{}
	return NewClient(conn, ConnInfo{ConnID: connID, UserID: userID}), conn
}

func TestHubJoinAndLeaveRoom(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient("c1", 1)
	hub.AddClient(client)

	hub.JoinRoom("room", client)
	require.True(t, hub.IsUserInRoom("room", 1))

	hub.LeaveRoom("room", client)
	require.False(t, hub.IsUserInRoom("room", 1))
	require.Empty(t, hub.rooms)
}

func TestHubRemoveClientLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient("c1", 1)
	hub.AddClient(client)
	hub.JoinRoom("a", client)
	hub.JoinRoom("b", client)

	hub.RemoveClient(client)
	require.False(t, hub.IsUserInRoom("a", 1))
	require.False(t, hub.IsUserInRoom("b", 1))
	require.Empty(t, hub.rooms)
	require.Empty(t, hub.clients)
	require.Empty(t, hub.joined)
}

func TestHubBroadcastToRoomWithExclusion(t *testing.T) {
	hub := NewHub()
	sender, senderConn := newTestClient("c1", 1)
	other, otherConn := newTestClient("c2", 2)
	hub.AddClient(sender)
	hub.AddClient(other)
	hub.JoinRoom("room", sender)
	hub.JoinRoom("room", other)

	hub.BroadcastToRoom("room", "evt", "hello", sender.Info.ConnID)

	require.Empty(t, senderConn.envelopes("evt"))
	require.Len(t, otherConn.envelopes("evt"), 1)
}

func TestHubBroadcastToRoomIncludesEveryoneByDefault(t *testing.T) {
	hub := NewHub()
	sender, senderConn := newTestClient("c1", 1)
	other, otherConn := newTestClient("c2", 2)
	hub.AddClient(sender)
	hub.AddClient(other)
	hub.JoinRoom("room", sender)
	hub.JoinRoom("room", other)

	hub.BroadcastToRoom("room", "evt", "hello", "")

	require.Len(t, senderConn.envelopes("evt"), 1)
	require.Len(t, otherConn.envelopes("evt"), 1)
}

func TestHubSendToConn(t *testing.T) {
	hub := NewHub()
	client, conn := newTestClient("c1", 1)
	hub.AddClient(client)

	require.True(t, hub.SendToConn("c1", "evt", "direct"))
	require.False(t, hub.SendToConn("missing", "evt", "direct"))
	require.Len(t, conn.envelopes("evt"), 1)
}

func TestHubBroadcastAll(t *testing.T) {
	hub := NewHub()
	a, aConn := newTestClient("c1", 1)
	b, bConn := newTestClient("c2", 0)
	hub.AddClient(a)
	hub.AddClient(b)

	hub.BroadcastAll("evt", "all")

	require.Len(t, aConn.envelopes("evt"), 1)
	require.Len(t, bConn.envelopes("evt"), 1)
}

func TestHubSnapshotSeesBoundIdentity(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient("c1", 0)
	hub.AddClient(client)

	require.Equal(t, int64(0), hub.Snapshot(client).UserID)
	hub.BindUser(client, 9)

	info := hub.Snapshot(client)
	require.Equal(t, int64(9), info.UserID)
	require.Equal(t, "c1", info.ConnID)
}

func TestHubBindUser(t *testing.T) {
	hub := NewHub()
	client, _ := newTestClient("c1", 0)
	hub.AddClient(client)
	hub.JoinRoom("room", client)

	require.False(t, hub.IsUserInRoom("room", 9))
	hub.BindUser(client, 9)
	require.True(t, hub.IsUserInRoom("room", 9))
}
