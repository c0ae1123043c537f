package models

import (
	"database/sql"
	"time"
)

// User is the slice of the forum user record the realtime core reads and
// mutates. Content columns stay with the CRUD layer; the presence fields
// (is_online, last_seen, socket_id) are written only by the presence tracker.
type User struct {
	ID          int64          `db:"id" json:"id"`
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	IsBanned    bool           `db:"is_banned" json:"is_banned"`
	IsOnline    bool           `db:"is_online" json:"is_online"`
	LastSeen    sql.NullTime   `db:"last_seen" json:"-"`
	SocketID    sql.NullString `db:"socket_id" json:"-"`
}

// LastSeenAt returns the last-seen timestamp or the zero time when the user
// has never been online.
func (u User) LastSeenAt() time.Time {
	if u.LastSeen.Valid {
		return u.LastSeen.Time
	}
	return time.Time{}
}
