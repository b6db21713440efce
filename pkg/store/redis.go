package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/lattice/pkg/audit"
	"github.com/platinummonkey/lattice/pkg/hierarchy"
)

// redisKeyPrefix namespaces hierarchy data inside a shared Redis instance.
const redisKeyPrefix = "lattice:hier:"

// RedisStore persists each (kind, context) edge set as a Redis set.
// Mutation batches are applied through a transactional pipeline; the last
// mutation's audit context is recorded in a sidecar hash per partition.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using the given URL, password and
// database, and verifies the connection before returning.
func NewRedisStore(url, password string, db int) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	if db >= 0 {
		opts.DB = db
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client, which the caller owns.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// FetchEdges returns the members of the partition's set. Order is
// unspecified; the hierarchy core does not depend on it.
func (s *RedisStore) FetchEdges(ctx context.Context, kind hierarchy.Kind, contextID string) ([]string, error) {
	values, err := s.client.SMembers(ctx, s.setKey(kind, contextID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers failed: %w", err)
	}
	return values, nil
}

// ApplyMutation applies a batch of value mutations via a transactional
// pipeline. Set semantics make add and replace idempotent.
func (s *RedisStore) ApplyMutation(ctx context.Context, kind hierarchy.Kind, contextID string, batch []hierarchy.Mutation, ac *audit.Context) error {
	key := s.setKey(kind, contextID)
	pipe := s.client.TxPipeline()
	for _, m := range batch {
		switch m.Op {
		case hierarchy.MutationAdd, hierarchy.MutationReplace:
			pipe.SAdd(ctx, key, m.Value)
		case hierarchy.MutationDelete:
			pipe.SRem(ctx, key, m.Value)
		default:
			return fmt.Errorf("unknown mutation op %q", m.Op)
		}
	}
	if ac != nil {
		pipe.HSet(ctx, key+":audit", map[string]interface{}{
			"modifier": ac.Modifier,
			"mod_code": ac.ModCode,
			"mod_id":   ac.ModID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis mutation pipeline failed: %w", err)
	}
	return nil
}

func (s *RedisStore) setKey(kind hierarchy.Kind, contextID string) string {
	return redisKeyPrefix + partitionKey(kind, contextID)
}
