package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each exchange record as a JSON string under its record key
// and indexes the keys of one conversation in a sorted set scored by creation time.
type RedisStore struct {
	client    redis.Cmdable
	container string
}

// NewRedisStore creates a record store whose keys are namespaced by container.
func NewRedisStore(client redis.Cmdable, container string) *RedisStore {
	return &RedisStore{client: client, container: container}
}

func (s *RedisStore) recordKey(key string) string {
	return fmt.Sprintf("%s:record:%s", s.container, key)
}

func (s *RedisStore) indexKey(conversationID string) string {
	return fmt.Sprintf("%s:index:%s", s.container, conversationID)
}

// ListRecent returns the last `limit` records for the conversation, newest first.
func (s *RedisStore) ListRecent(ctx context.Context, conversationID string, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	idx := s.indexKey(conversationID)

	keys, err := s.client.ZRevRange(ctx, idx, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", idx, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.recordKey(k)
	}
	vals, err := s.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget records of %s: %w", conversationID, err)
	}

	records := make([]Record, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue // index entry without a value
		}
		var rec Record
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			continue // skip malformed records
		}
		records = append(records, rec)
	}
	return records, nil
}

// Append writes the record value and its index entry in one pipeline.
func (s *RedisStore) Append(ctx context.Context, conversationID string, rec Record) error {
	stamp(&rec)
	key := Key(conversationID, rec.CreatedAt)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.recordKey(key), string(data), 0)
	pipe.ZAdd(ctx, s.indexKey(conversationID), redis.Z{
		Score:  float64(rec.CreatedAt.Unix()),
		Member: key,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the backing redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
