package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connKeyPrefix = "presence:conn:"
	connTTL       = 24 * time.Hour
)

// Redis is the Registry implementation for multi-process deployments. The TTL
// is a safety net against entries orphaned by a crashed process; live
// connections are unregistered explicitly on disconnect.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a redis-backed registry and verifies connectivity.
func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Register(ctx context.Context, userID int64, connID string) error {
	return r.client.Set(ctx, connKey(userID), connID, connTTL).Err()
}

func (r *Redis) Lookup(ctx context.Context, userID int64) (string, bool, error) {
	connID, err := r.client.Get(ctx, connKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return connID, true, nil
}

// unregisterScript deletes the mapping only when the caller still owns it.
var unregisterScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *Redis) Unregister(ctx context.Context, userID int64, connID string) error {
	return unregisterScript.Run(ctx, r.client, []string{connKey(userID)}, connID).Err()
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func connKey(userID int64) string {
	return fmt.Sprintf("%s%d", connKeyPrefix, userID)
}

var _ Registry = (*Redis)(nil)
