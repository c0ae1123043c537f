package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"forum-realtime/internal/auth"
	"forum-realtime/internal/models"
	"forum-realtime/internal/observability"
	"forum-realtime/internal/ws"
)

// SocketHandler owns the websocket endpoint: handshake authentication, the
// per-connection event loop, and ack reporting.
type SocketHandler struct {
	hub           *ws.Hub
	authenticator *auth.Authenticator
	tracker       *Tracker
	global        *GlobalChannel
	private       *PrivateChannel
}

// NewSocketHandler constructs a SocketHandler.
func NewSocketHandler(hub *ws.Hub, authenticator *auth.Authenticator, tracker *Tracker, global *GlobalChannel, private *PrivateChannel) *SocketHandler {
	return &SocketHandler{
		hub:           hub,
		authenticator: authenticator,
		tracker:       tracker,
		global:        global,
		private:       private,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and starts the event loop. A failed or
// missing credential degrades to an anonymous connection instead of
// rejecting: anonymous sockets still receive broadcasts, and privileged
// operations fail individually at dispatch.
func (h *SocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("forum-realtime/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}

	userID, authErr := h.authenticator.Identify(token)
	if authErr != nil {
		log.Printf("connection degraded to anonymous: %v", authErr)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ws.ConnInfo{
		ConnID:      ws.NewConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := ws.NewClient(conn, info)
	h.hub.AddClient(client)

	observability.IncWSActive()
	observability.IncWSEvent("socket", "ws_connect")
	_ = observability.PublishEvent(ctx, "ws_events.socket", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   lifecyclePayload(info, "ws_connect", 0, ""),
	}, observability.BuildHeaders(info.RequestID, info.TraceID))

	if userID > 0 {
		if err := h.tracker.GoOnline(ctx, userID, info.ConnID); err != nil {
			log.Printf("presence online for user %d failed: %v", userID, err)
		}
	}

	go h.readLoop(client, conn)
}

// readLoop processes inbound frames in arrival order until the transport
// closes. It runs on a detached context: the request context dies with the
// handshake, not with the connection.
func (h *SocketHandler) readLoop(client *ws.Client, conn *websocket.Conn) {
	ctx := context.Background()
	connID := client.Info.ConnID

	var closeReason string
	defer func() {
		// Re-read the identity under the hub lock: it can be bound after the
		// handshake via the client's online event.
		info := h.hub.Snapshot(client)
		h.hub.RemoveClient(client)
		if info.UserID > 0 {
			if err := h.tracker.GoOffline(ctx, info.UserID, info.ConnID); err != nil {
				log.Printf("presence offline for user %d failed: %v", info.UserID, err)
			}
		}
		observability.DecWSActive()
		observability.IncWSEvent("socket", "ws_disconnect")
		_ = observability.PublishEvent(ctx, "ws_events.socket", observability.EventEnvelope{
			EventType: "ws_events",
			EventName: "ws_disconnect",
			Payload:   lifecyclePayload(info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
		}, observability.BuildHeaders(info.RequestID, info.TraceID))
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("socket", "ws_error")
			}
			return
		}

		var envelope models.ClientEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			log.Printf("malformed frame from conn=%s: %v", connID, err)
			continue
		}
		h.dispatch(ctx, client, envelope)
	}
}

// dispatch routes one inbound event. When the frame carried an ack_id the
// outcome is always reported back, success or failure; fire-and-forget
// frames can only be logged, and callers must treat them as at-most-effort.
func (h *SocketHandler) dispatch(ctx context.Context, client *ws.Client, envelope models.ClientEnvelope) {
	observability.IncWSEvent(channelOf(envelope.Event), envelope.Event)
	err := h.handle(ctx, client, envelope)
	h.respond(client, envelope, err)
}

func (h *SocketHandler) handle(ctx context.Context, client *ws.Client, envelope models.ClientEnvelope) error {
	switch envelope.Event {
	case models.EventUserOnline:
		var payload models.UserOnlinePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.UserID <= 0 {
			return ErrInvalidPayload
		}
		h.hub.BindUser(client, payload.UserID)
		return h.tracker.GoOnline(ctx, payload.UserID, client.Info.ConnID)

	case models.EventGlobalJoin:
		h.global.Join(client)
		return nil

	case models.EventGlobalLeave:
		h.global.Leave(client)
		return nil

	case models.EventGlobalMessage:
		var payload models.GlobalMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		return h.global.SendMessage(ctx, client, payload.Message)

	case models.EventGlobalTyping:
		var payload models.GlobalTypingPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		return h.global.Typing(ctx, client, payload.IsTyping)

	case models.EventPrivateJoin:
		var payload models.PrivateJoinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.RoomID == "" {
			return ErrInvalidPayload
		}
		h.private.Join(client, payload.RoomID)
		return nil

	case models.EventPrivateLeave:
		var payload models.PrivateJoinPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil || payload.RoomID == "" {
			return ErrInvalidPayload
		}
		h.private.Leave(client, payload.RoomID)
		return nil

	case models.EventPrivateMessage:
		var payload models.PrivateMessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		return h.private.SendMessage(ctx, client, payload.PeerID, payload.Message)

	case models.EventPrivateTyping:
		var payload models.PrivateTypingPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		return h.private.Typing(ctx, client, payload.PeerID, payload.IsTyping)

	case models.EventPrivateRead:
		var payload models.PrivateReadPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return ErrInvalidPayload
		}
		return h.private.MarkRead(ctx, client, payload.PeerID)

	default:
		return ErrInvalidPayload
	}
}

func (h *SocketHandler) respond(client *ws.Client, envelope models.ClientEnvelope, err error) {
	if envelope.AckID == 0 {
		if err != nil {
			log.Printf("%s dropped for conn=%s: %v", envelope.Event, client.Info.ConnID, err)
		}
		return
	}

	ack := models.Ack{Event: models.EventAck, AckID: envelope.AckID, Success: err == nil}
	if err != nil {
		ack.Error = ackCode(err)
		log.Printf("%s failed for conn=%s: %v", envelope.Event, client.Info.ConnID, err)
	}
	if werr := client.SendAck(ack); werr != nil {
		log.Printf("ack write error conn=%s: %v", client.Info.ConnID, werr)
	}
}

func channelOf(event string) string {
	switch {
	case event == models.EventUserOnline:
		return "presence"
	case strings.HasPrefix(event, "chat:global:"):
		return "global"
	case strings.HasPrefix(event, "chat:private:"):
		return "private"
	default:
		return "socket"
	}
}

func lifecyclePayload(info ws.ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
