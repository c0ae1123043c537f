package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forum-realtime/internal/models"
	"forum-realtime/internal/observability"
	"forum-realtime/internal/repositories"
	"forum-realtime/internal/ws"
)

// GlobalRoom is the single broadcast room every client may join.
const GlobalRoom = "global"

// GlobalChannel implements the broadcast chat room.
type GlobalChannel struct {
	messages    repositories.GlobalMessageRepository
	users       repositories.UserRepository
	attachments repositories.AttachmentRepository
	hub         *ws.Hub
}

// NewGlobalChannel constructs a GlobalChannel.
func NewGlobalChannel(messages repositories.GlobalMessageRepository, users repositories.UserRepository, attachments repositories.AttachmentRepository, hub *ws.Hub) *GlobalChannel {
	return &GlobalChannel{messages: messages, users: users, attachments: attachments, hub: hub}
}

// Join adds the connection to the broadcast room. No identity required.
func (g *GlobalChannel) Join(client *ws.Client) {
	g.hub.JoinRoom(GlobalRoom, client)
}

// Leave removes the connection from the broadcast room.
func (g *GlobalChannel) Leave(client *ws.Client) {
	g.hub.LeaveRoom(GlobalRoom, client)
}

// SendMessage persists a global message and fans it out to every room
// member, the sender included: the sender's client renders the echo instead
// of an optimistic local copy.
func (g *GlobalChannel) SendMessage(ctx context.Context, client *ws.Client, payload models.MessagePayload) error {
	sender, err := resolveSender(ctx, g.users, client)
	if err != nil {
		return err
	}
	if payload.Text == "" && len(payload.AttachmentIDs) == 0 {
		return ErrInvalidPayload
	}

	msg, err := g.messages.Create(ctx, sender.ID, payload.Text, payload.AttachmentIDs)
	if err != nil {
		return fmt.Errorf("persist global message: %w", err)
	}

	resolved, err := resolveMessage(ctx, g.attachments, sender, msg.ID, msg.Content, msg.AttachmentIDs, msg.CreatedAt)
	if err != nil {
		return err
	}

	g.hub.BroadcastToRoom(GlobalRoom, models.EventGlobalNew, models.GlobalNewEvent{Message: resolved}, "")

	observability.IncChatMessage("global")
	_ = observability.PublishEvent(ctx, "chat.global.message", observability.EventEnvelope{
		EventType: "chat",
		EventName: "global_message",
		Payload:   resolved,
	}, nil)
	return nil
}

// Typing fans a typing indicator out to every room member except the sender.
func (g *GlobalChannel) Typing(ctx context.Context, client *ws.Client, isTyping bool) error {
	sender, err := resolveSender(ctx, g.users, client)
	if err != nil {
		return err
	}

	event := models.GlobalTypingEvent{
		UserID:      sender.ID,
		Username:    sender.Username,
		DisplayName: sender.DisplayName,
		IsTyping:    isTyping,
	}
	g.hub.BroadcastToRoom(GlobalRoom, models.EventGlobalTyping, event, client.Info.ConnID)
	return nil
}

// resolveSender loads the acting user and enforces the identity and ban
// checks shared by every privileged operation.
func resolveSender(ctx context.Context, users repositories.UserRepository, client *ws.Client) (models.User, error) {
	if client.Info.UserID == 0 {
		return models.User{}, ErrUnauthenticated
	}
	user, err := users.GetUser(ctx, client.Info.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.User{}, ErrUnauthenticated
		}
		return models.User{}, fmt.Errorf("load sender: %w", err)
	}
	if user.IsBanned {
		return models.User{}, ErrBanned
	}
	return user, nil
}

// resolveMessage shapes a persisted message for fan-out, with sender display
// fields and attachment metadata resolved.
func resolveMessage(ctx context.Context, attachments repositories.AttachmentRepository, sender models.User, id int64, text string, attachmentIDs []int64, createdAt time.Time) (models.ResolvedMessage, error) {
	meta, err := attachments.GetByIDs(ctx, attachmentIDs)
	if err != nil {
		return models.ResolvedMessage{}, fmt.Errorf("resolve attachments: %w", err)
	}
	return models.ResolvedMessage{
		ID:          id,
		SenderID:    sender.ID,
		Username:    sender.Username,
		DisplayName: sender.DisplayName,
		Text:        text,
		Attachments: meta,
		CreatedAt:   createdAt,
	}, nil
}
