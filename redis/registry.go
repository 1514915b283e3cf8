// Package redis provides a DuplicateRegistry backed by a Redis set, so that
// several server instances behind a load balancer share one registry.
package redis

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jaldrishti/jaldrishti"
	"github.com/redis/go-redis/v9"
)

// Ensure registry implements interface.
var _ jaldrishti.DuplicateRegistry = (*DuplicateRegistry)(nil)

// DuplicateRegistry stores hashes in a single Redis set. SADD is atomic, so
// concurrent submissions of the same hash see exactly one "new" result.
type DuplicateRegistry struct {
	client *redis.Client
	key    string
}

// NewDuplicateRegistry creates a registry under the given namespace. An
// empty namespace gets a random one, which scopes the registry to this
// process like the in-memory implementation.
func NewDuplicateRegistry(client *redis.Client, namespace string) *DuplicateRegistry {
	if namespace == "" {
		namespace = uuid.NewString()
	}
	return &DuplicateRegistry{
		client: client,
		key:    fmt.Sprintf("jaldrishti:%s:phash", namespace),
	}
}

// Open verifies the connection.
func (r *DuplicateRegistry) Open(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// CheckAndAdd reports whether hash was already recorded and records it.
func (r *DuplicateRegistry) CheckAndAdd(ctx context.Context, hash string) (bool, error) {
	if hash == "" {
		return false, jaldrishti.Invalid("Hash is required")
	}
	added, err := r.client.SAdd(ctx, r.key, hash).Result()
	if err != nil {
		return false, jaldrishti.Internal("Failed to record image hash", err)
	}
	return added == 0, nil
}

// Len returns the number of distinct hashes recorded.
func (r *DuplicateRegistry) Len(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, jaldrishti.Internal("Failed to count image hashes", err)
	}
	return int(n), nil
}

// Close closes the client. The set is left in Redis so that other
// instances sharing the namespace keep their history.
func (r *DuplicateRegistry) Close() error {
	return r.client.Close()
}

// Reset deletes every recorded hash.
func (r *DuplicateRegistry) Reset(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
