package models

import (
	"time"

	"github.com/lib/pq"
)

// PrivateMessage is a message inside a conversation. Immutable once appended.
type PrivateMessage struct {
	ID             int64         `db:"id" json:"id"`
	ConversationID int64         `db:"conversation_id" json:"conversation_id"`
	SenderID       int64         `db:"sender_id" json:"sender_id"`
	Content        string        `db:"content" json:"content"`
	AttachmentIDs  pq.Int64Array `db:"attachment_ids" json:"attachment_ids"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// GlobalMessage is a message on the broadcast channel. Append-only and
// queryable by recency so clients rejoining the global room can page history.
type GlobalMessage struct {
	ID            int64         `db:"id" json:"id"`
	SenderID      int64         `db:"sender_id" json:"sender_id"`
	Content       string        `db:"content" json:"content"`
	AttachmentIDs pq.Int64Array `db:"attachment_ids" json:"attachment_ids"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

// Attachment is the resolved metadata for an uploaded file. The upload
// pipeline is owned by the CRUD layer; the core only resolves ids.
type Attachment struct {
	ID         int64  `db:"id" json:"id"`
	Filename   string `db:"filename" json:"filename"`
	Mime       string `db:"mime" json:"mime"`
	Size       int64  `db:"size" json:"size"`
	StorageURL string `db:"storage_url" json:"storage_url"`
}
