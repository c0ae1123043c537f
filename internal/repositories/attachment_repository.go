package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"forum-realtime/internal/models"
)

// AttachmentRepository resolves attachment ids to metadata. Uploads are owned
// by the CRUD layer; the realtime core only reads.
type AttachmentRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Attachment, error)
}

// AttachmentRepo is a sqlx implementation of AttachmentRepository.
type AttachmentRepo struct {
	db *sqlx.DB
}

// NewAttachmentRepo constructs an AttachmentRepo.
func NewAttachmentRepo(db *sqlx.DB) *AttachmentRepo {
	return &AttachmentRepo{db: db}
}

// GetByIDs fetches attachment metadata for the given ids. Unknown ids are
// skipped rather than errored; a message can outlive a purged upload.
func (r *AttachmentRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.Attachment, error) {
	if len(ids) == 0 {
		return []models.Attachment{}, nil
	}
	var attachments []models.Attachment
	err := r.db.SelectContext(ctx, &attachments,
		`SELECT id, filename, mime, size, storage_url FROM attachments WHERE id = ANY($1) ORDER BY id ASC`,
		pq.Int64Array(ids))
	return attachments, err
}
