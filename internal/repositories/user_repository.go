package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"forum-realtime/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository exposes the slice of the user entity the realtime core
// needs: display fields, ban flag, and the presence columns it owns.
type UserRepository interface {
	GetUser(ctx context.Context, userID int64) (models.User, error)
	SetOnline(ctx context.Context, userID int64, socketID string) error
	SetOffline(ctx context.Context, userID int64) error
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, username, display_name, is_banned, is_online, last_seen, socket_id FROM users WHERE id=$1`,
		userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// SetOnline marks the user online and records the owning connection.
func (r *UserRepo) SetOnline(ctx context.Context, userID int64, socketID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_online=TRUE, last_seen=NOW(), socket_id=$1 WHERE id=$2`,
		socketID, userID)
	return err
}

// SetOffline marks the user offline and clears the connection handle.
func (r *UserRepo) SetOffline(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_online=FALSE, last_seen=NOW(), socket_id=NULL WHERE id=$1`,
		userID)
	return err
}
