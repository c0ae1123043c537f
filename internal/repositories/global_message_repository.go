package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"forum-realtime/internal/models"
)

// GlobalMessageRepository persists broadcast-channel messages.
type GlobalMessageRepository interface {
	Create(ctx context.Context, senderID int64, content string, attachmentIDs []int64) (models.GlobalMessage, error)
	ListRecent(ctx context.Context, limit int) ([]models.GlobalMessage, error)
}

// GlobalMessageRepo is a sqlx implementation of GlobalMessageRepository.
type GlobalMessageRepo struct {
	db *sqlx.DB
}

// NewGlobalMessageRepo constructs a GlobalMessageRepo.
func NewGlobalMessageRepo(db *sqlx.DB) *GlobalMessageRepo {
	return &GlobalMessageRepo{db: db}
}

// Create stores a global message.
func (r *GlobalMessageRepo) Create(ctx context.Context, senderID int64, content string, attachmentIDs []int64) (models.GlobalMessage, error) {
	var msg models.GlobalMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO global_messages (sender_id, content, attachment_ids) VALUES ($1, $2, $3)
         RETURNING id, sender_id, content, attachment_ids, created_at`,
		senderID, content, pq.Int64Array(attachmentIDs)).StructScan(&msg)
	return msg, err
}

// ListRecent returns the newest global messages, oldest first, for history
// replay when a client rejoins the room.
func (r *GlobalMessageRepo) ListRecent(ctx context.Context, limit int) ([]models.GlobalMessage, error) {
	var msgs []models.GlobalMessage
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, sender_id, content, attachment_ids, created_at FROM
            (SELECT id, sender_id, content, attachment_ids, created_at FROM global_messages ORDER BY id DESC LIMIT $1) recent
         ORDER BY id ASC`,
		limit)
	return msgs, err
}
