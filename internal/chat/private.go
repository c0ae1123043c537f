package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"forum-realtime/internal/models"
	"forum-realtime/internal/notify"
	"forum-realtime/internal/observability"
	"forum-realtime/internal/registry"
	"forum-realtime/internal/repositories"
	"forum-realtime/internal/ws"
)

// RoomKey derives the canonical room key for an unordered user pair. Both
// participants and the server must compute the same key regardless of
// argument order.
func RoomKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("private:%d:%d", a, b)
}

// PrivateChannel implements per-pair conversations: persistence, room
// fan-out, direct notify fallback, typing and read marks.
type PrivateChannel struct {
	conversations repositories.ConversationRepository
	users         repositories.UserRepository
	attachments   repositories.AttachmentRepository
	registry      registry.Registry
	hub           *ws.Hub
	notifier      *notify.Notifier
}

// NewPrivateChannel constructs a PrivateChannel.
func NewPrivateChannel(conversations repositories.ConversationRepository, users repositories.UserRepository, attachments repositories.AttachmentRepository, reg registry.Registry, hub *ws.Hub, notifier *notify.Notifier) *PrivateChannel {
	return &PrivateChannel{
		conversations: conversations,
		users:         users,
		attachments:   attachments,
		registry:      reg,
		hub:           hub,
		notifier:      notifier,
	}
}

// Join adds the connection to a client-computed pair room. The key is
// trusted; membership against the pair is not validated at join time.
func (p *PrivateChannel) Join(client *ws.Client, roomID string) {
	p.hub.JoinRoom(roomID, client)
}

// Leave removes the connection from a pair room.
func (p *PrivateChannel) Leave(client *ws.Client, roomID string) {
	p.hub.LeaveRoom(roomID, client)
}

// SendMessage appends a message to the pair's conversation (created on first
// contact) and delivers it twice: a room multicast for anyone watching the
// thread, and a direct notify to the peer's registered connection when the
// peer is not in the room. The notify is a list-level update; a peer already
// watching the thread must not get both.
func (p *PrivateChannel) SendMessage(ctx context.Context, client *ws.Client, peerID int64, payload models.MessagePayload) error {
	sender, err := resolveSender(ctx, p.users, client)
	if err != nil {
		return err
	}
	if peerID <= 0 || peerID == sender.ID {
		return ErrInvalidPeer
	}
	if payload.Text == "" && len(payload.AttachmentIDs) == 0 {
		return ErrInvalidPayload
	}

	conv, err := p.conversations.CreateOrGet(ctx, sender.ID, peerID)
	if err != nil {
		return fmt.Errorf("find or create conversation: %w", err)
	}
	msg, err := p.conversations.AppendMessage(ctx, conv.ID, sender.ID, payload.Text, payload.AttachmentIDs)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	resolved, err := resolveMessage(ctx, p.attachments, sender, msg.ID, msg.Content, msg.AttachmentIDs, msg.CreatedAt)
	if err != nil {
		return err
	}

	room := RoomKey(sender.ID, peerID)
	p.hub.BroadcastToRoom(room, models.EventPrivateNew, models.PrivateNewEvent{
		FromUserID: sender.ID,
		ToUserID:   peerID,
		Message:    resolved,
	}, "")

	if !p.hub.IsUserInRoom(room, peerID) {
		p.notifyPeer(ctx, client, sender.ID, peerID, resolved)
	}

	observability.IncChatMessage("private")
	_ = observability.PublishEvent(ctx, "chat.private.message", observability.EventEnvelope{
		EventType: "chat",
		EventName: "private_message",
		Payload:   models.PrivateNewEvent{FromUserID: sender.ID, ToUserID: peerID, Message: resolved},
	}, nil)
	return nil
}

// notifyPeer delivers the out-of-room notify event, or hands the message to
// the notification collaborator when the peer has no live connection at all.
func (p *PrivateChannel) notifyPeer(ctx context.Context, client *ws.Client, senderID, peerID int64, resolved models.ResolvedMessage) {
	connID, ok, err := p.registry.Lookup(ctx, peerID)
	if err != nil {
		log.Printf("registry lookup for user %d failed: %v", peerID, err)
		return
	}
	event := models.PrivateNotifyEvent{FromUserID: senderID, Message: resolved}
	// The sender never receives its own notify, whatever the registry says.
	if ok && connID != client.Info.ConnID {
		if p.hub.SendToConn(connID, models.EventPrivateNotify, event) {
			return
		}
	}
	p.notifier.MessageReceived(ctx, senderID, peerID, resolved.Text)
}

// Typing fans a typing indicator out to the whole pair room, the sender's
// other tabs included; only the peer finds it meaningful, and echoing to the
// sender's own connections is intended.
func (p *PrivateChannel) Typing(ctx context.Context, client *ws.Client, peerID int64, isTyping bool) error {
	sender, err := resolveSender(ctx, p.users, client)
	if err != nil {
		return err
	}
	if peerID <= 0 || peerID == sender.ID {
		return ErrInvalidPeer
	}

	room := RoomKey(sender.ID, peerID)
	p.hub.BroadcastToRoom(room, models.EventPrivateTyping, models.PrivateTypingEvent{
		FromUserID: sender.ID,
		IsTyping:   isTyping,
	}, "")
	return nil
}

// MarkRead moves the caller's read watermark for the pair's conversation and
// broadcasts a read receipt. Marking a conversation that does not exist yet
// is a no-op, not an error.
func (p *PrivateChannel) MarkRead(ctx context.Context, client *ws.Client, peerID int64) error {
	sender, err := resolveSender(ctx, p.users, client)
	if err != nil {
		return err
	}
	if peerID <= 0 || peerID == sender.ID {
		return ErrInvalidPeer
	}

	conv, err := p.conversations.FindByParticipants(ctx, sender.ID, peerID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil
		}
		return fmt.Errorf("find conversation: %w", err)
	}

	mark, err := p.conversations.UpsertReadMark(ctx, conv.ID, sender.ID)
	if err != nil {
		return fmt.Errorf("upsert read mark: %w", err)
	}

	room := RoomKey(sender.ID, peerID)
	p.hub.BroadcastToRoom(room, models.EventPrivateRead, models.PrivateReadEvent{
		FromUserID: sender.ID,
		Timestamp:  mark.LastReadAt,
	}, "")
	return nil
}
