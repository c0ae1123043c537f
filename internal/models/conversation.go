package models

import "time"

// Conversation represents a private dialogue between exactly two users.
// Participants are stored sorted (user1_id < user2_id) so that one row exists
// per unordered pair; the database enforces UNIQUE(user1_id, user2_id).
type Conversation struct {
	ID            int64     `db:"id" json:"id"`
	User1ID       int64     `db:"user1_id" json:"user1_id"`
	User2ID       int64     `db:"user2_id" json:"user2_id"`
	LastMessageAt time.Time `db:"last_message_at" json:"last_message_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ReadMark records how far a participant has read a conversation.
type ReadMark struct {
	ConversationID int64     `db:"conversation_id" json:"conversation_id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	LastReadAt     time.Time `db:"last_read_at" json:"last_read_at"`
}
