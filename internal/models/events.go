package models

import (
	"encoding/json"
	"time"
)

// Client -> server event names.
const (
	EventUserOnline     = "user:online"
	EventGlobalJoin     = "chat:global:join"
	EventGlobalLeave    = "chat:global:leave"
	EventGlobalMessage  = "chat:global:message"
	EventGlobalTyping   = "chat:global:typing"
	EventPrivateJoin    = "chat:private:join"
	EventPrivateLeave   = "chat:private:leave"
	EventPrivateMessage = "chat:private:message"
	EventPrivateTyping  = "chat:private:typing"
	EventPrivateRead    = "chat:private:read"
)

// Server -> client event names. Typing and read events reuse the inbound
// names: the server echoes the same event with a server-shaped payload.
const (
	EventAck           = "ack"
	EventStatusChanged = "user:status:changed"
	EventGlobalNew     = "chat:global:new"
	EventPrivateNew    = "chat:private:new"
	EventPrivateNotify = "chat:private:notify"
)

// ClientEnvelope is one inbound websocket frame. Data is decoded per event.
// AckID, when non-zero, asks the server to answer with an Ack frame.
type ClientEnvelope struct {
	Event string          `json:"event"`
	AckID int64           `json:"ack_id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerEnvelope is one outbound websocket frame.
type ServerEnvelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Ack reports the outcome of an inbound frame that carried an ack_id.
type Ack struct {
	Event   string `json:"event"`
	AckID   int64  `json:"ack_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// MessagePayload is the message body shared by global and private sends.
type MessagePayload struct {
	Text          string  `json:"text"`
	AttachmentIDs []int64 `json:"attachments"`
}

// UserOnlinePayload self-declares a user id for clients that connect before
// handshake authentication completes.
type UserOnlinePayload struct {
	UserID int64 `json:"userId"`
}

// GlobalMessagePayload carries a global send.
type GlobalMessagePayload struct {
	Message MessagePayload `json:"message"`
}

// GlobalTypingPayload carries a global typing toggle.
type GlobalTypingPayload struct {
	IsTyping bool `json:"isTyping"`
}

// PrivateJoinPayload carries the client-computed room key.
type PrivateJoinPayload struct {
	RoomID string `json:"roomId"`
}

// PrivateMessagePayload carries a private send.
type PrivateMessagePayload struct {
	PeerID  int64          `json:"peerId"`
	Message MessagePayload `json:"message"`
}

// PrivateTypingPayload carries a private typing toggle.
type PrivateTypingPayload struct {
	PeerID   int64 `json:"peerId"`
	IsTyping bool  `json:"isTyping"`
}

// PrivateReadPayload marks a conversation read up to now.
type PrivateReadPayload struct {
	PeerID int64 `json:"peerId"`
}

// StatusChangedEvent announces a presence transition.
type StatusChangedEvent struct {
	UserID   int64      `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// ResolvedMessage is a message with sender display fields and attachment
// metadata resolved, ready for fan-out.
type ResolvedMessage struct {
	ID          int64        `json:"id"`
	SenderID    int64        `json:"senderId"`
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// GlobalNewEvent fans out a persisted global message to the room.
type GlobalNewEvent struct {
	Message ResolvedMessage `json:"message"`
}

// GlobalTypingEvent fans out a typing toggle to everyone but the sender.
type GlobalTypingEvent struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	IsTyping    bool   `json:"isTyping"`
}

// PrivateNewEvent fans out a persisted private message to the pair room.
type PrivateNewEvent struct {
	FromUserID int64           `json:"fromUserId"`
	ToUserID   int64           `json:"toUserId"`
	Message    ResolvedMessage `json:"message"`
}

// PrivateNotifyEvent is the direct list-level delivery for a peer who has the
// app open but is not watching the thread.
type PrivateNotifyEvent struct {
	FromUserID int64           `json:"fromUserId"`
	Message    ResolvedMessage `json:"message"`
}

// PrivateTypingEvent fans out a typing toggle to the whole pair room.
type PrivateTypingEvent struct {
	FromUserID int64 `json:"fromUserId"`
	IsTyping   bool  `json:"isTyping"`
}

// PrivateReadEvent fans out a read receipt to the pair room.
type PrivateReadEvent struct {
	FromUserID int64     `json:"fromUserId"`
	Timestamp  time.Time `json:"timestamp"`
}
