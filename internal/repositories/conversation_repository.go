package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"forum-realtime/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository abstracts private-conversation persistence.
type ConversationRepository interface {
	FindByParticipants(ctx context.Context, userID, peerID int64) (models.Conversation, error)
	CreateOrGet(ctx context.Context, userID, peerID int64) (models.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, senderID int64, content string, attachmentIDs []int64) (models.PrivateMessage, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.PrivateMessage, error)
	UpsertReadMark(ctx context.Context, conversationID, userID int64) (models.ReadMark, error)
	GetReadMarks(ctx context.Context, conversationID int64) ([]models.ReadMark, error)
}

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func sortPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// FindByParticipants fetches the conversation for an unordered user pair.
func (r *ConversationRepo) FindByParticipants(ctx context.Context, userID, peerID int64) (models.Conversation, error) {
	user1, user2 := sortPair(userID, peerID)
	var conv models.Conversation
	err := r.db.GetContext(ctx, &conv,
		`SELECT id, user1_id, user2_id, last_message_at, created_at FROM conversations WHERE user1_id=$1 AND user2_id=$2`,
		user1, user2)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

// CreateOrGet returns the conversation for the pair, creating it on first
// contact. Two concurrent first messages can both miss the find; the unique
// pair constraint turns the loser's insert into a conflict, which is resolved
// by retrying the find.
func (r *ConversationRepo) CreateOrGet(ctx context.Context, userID, peerID int64) (models.Conversation, error) {
	if userID == peerID {
		return models.Conversation{}, errors.New("cannot create conversation with self")
	}
	conv, err := r.FindByParticipants(ctx, userID, peerID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrConversationNotFound) {
		return models.Conversation{}, err
	}

	user1, user2 := sortPair(userID, peerID)
	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO conversations (user1_id, user2_id) VALUES ($1, $2)
         RETURNING id, user1_id, user2_id, last_message_at, created_at`,
		user1, user2).StructScan(&conv)
	if err != nil {
		if isUniqueViolation(err) {
			return r.FindByParticipants(ctx, userID, peerID)
		}
		return models.Conversation{}, err
	}
	return conv, nil
}

// AppendMessage inserts a message and bumps last_message_at in one
// transaction, preserving server-observed send order per conversation.
func (r *ConversationRepo) AppendMessage(ctx context.Context, conversationID, senderID int64, content string, attachmentIDs []int64) (models.PrivateMessage, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.PrivateMessage{}, err
	}
	defer tx.Rollback()

	var msg models.PrivateMessage
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO conversation_messages (conversation_id, sender_id, content, attachment_ids)
         VALUES ($1, $2, $3, $4)
         RETURNING id, conversation_id, sender_id, content, attachment_ids, created_at`,
		conversationID, senderID, content, pq.Int64Array(attachmentIDs)).StructScan(&msg)
	if err != nil {
		return models.PrivateMessage{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET last_message_at=$1 WHERE id=$2`,
		msg.CreatedAt, conversationID); err != nil {
		return models.PrivateMessage{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.PrivateMessage{}, err
	}
	return msg, nil
}

// ListMessages returns conversation messages in send order.
func (r *ConversationRepo) ListMessages(ctx context.Context, conversationID int64) ([]models.PrivateMessage, error) {
	var msgs []models.PrivateMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, conversation_id, sender_id, content, attachment_ids, created_at
         FROM conversation_messages WHERE conversation_id=$1 ORDER BY id ASC`,
		conversationID)
	return msgs, err
}

// UpsertReadMark moves the caller's read watermark to now. GREATEST keeps the
// watermark monotonic even if two marks race.
func (r *ConversationRepo) UpsertReadMark(ctx context.Context, conversationID, userID int64) (models.ReadMark, error) {
	var mark models.ReadMark
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO conversation_read_marks (conversation_id, user_id, last_read_at)
         VALUES ($1, $2, NOW())
         ON CONFLICT (conversation_id, user_id)
         DO UPDATE SET last_read_at = GREATEST(conversation_read_marks.last_read_at, EXCLUDED.last_read_at)
         RETURNING conversation_id, user_id, last_read_at`,
		conversationID, userID).StructScan(&mark)
	return mark, err
}

// GetReadMarks returns both participants' read watermarks.
func (r *ConversationRepo) GetReadMarks(ctx context.Context, conversationID int64) ([]models.ReadMark, error) {
	var marks []models.ReadMark
	err := r.db.SelectContext(ctx, &marks,
		`SELECT conversation_id, user_id, last_read_at FROM conversation_read_marks WHERE conversation_id=$1`,
		conversationID)
	return marks, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
