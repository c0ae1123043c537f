package registry

import "context"

// Registry maps a user id to the connection currently registered as that
// user's delivery target. Last-connected-wins: a second connection for the
// same user overwrites the mapping. It is an injected component so a
// distributed store can replace the in-process map when the service scales
// past one process.
type Registry interface {
	// Register binds userID to connID, replacing any previous binding.
	Register(ctx context.Context, userID int64, connID string) error
	// Lookup returns the registered connection id for the user, if any.
	Lookup(ctx context.Context, userID int64) (string, bool, error)
	// Unregister removes the binding only if connID still owns it, so a stale
	// tab's disconnect cannot evict a newer connection.
	Unregister(ctx context.Context, userID int64, connID string) error
}
