package state

import (
	"context"
	"strings"
)

// NewStore picks the configured backend: redis when a redis address is set,
// postgres when a database URL is set, otherwise in-memory for local/dev use.
func NewStore(ctx context.Context, redisAddr, databaseURL string) (Store, error) {
	if strings.TrimSpace(redisAddr) != "" {
		return NewRedisStore(ctx, redisAddr)
	}
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	return NewInMemoryStore(), nil
}
