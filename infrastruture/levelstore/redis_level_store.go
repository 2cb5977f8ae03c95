package levelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/game"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	levelKeyFmt     = "%s:level:%s"
	completedKeyFmt = "%s:run:%s:level:%d:completed"
	defaultPrefix   = "labyrinth"
)

var ErrLevelNotFound = errors.New("level not found")

var _ i.LevelStore = &RedisLevelStore{}

// RedisLevelStore keeps level snapshots as JSON values with a TTL.
type RedisLevelStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLevelStore creates a store. Keys expire after ttlSeconds.
func NewRedisLevelStore(client *redis.Client, prefix string, ttlSeconds int) *RedisLevelStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisLevelStore{
		client: client,
		prefix: prefix,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

// Save implements i.LevelStore.
func (s *RedisLevelStore) Save(ctx context.Context, id uuid.UUID, level game.LevelSnapshot) error {
	payload, err := json.Marshal(level)
	if err != nil {
		return fmt.Errorf("encoding level: %w", err)
	}
	return s.client.Set(ctx, s.levelKey(id), payload, s.ttl).Err()
}

// Load implements i.LevelStore.
func (s *RedisLevelStore) Load(ctx context.Context, id uuid.UUID) (*game.LevelSnapshot, error) {
	payload, err := s.client.Get(ctx, s.levelKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLevelNotFound
		}
		return nil, err
	}

	var level game.LevelSnapshot
	if err := json.Unmarshal(payload, &level); err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}
	return &level, nil
}

// MarkCompleted implements i.LevelStore.
func (s *RedisLevelStore) MarkCompleted(ctx context.Context, runID uuid.UUID, level int) (bool, error) {
	return s.client.SetNX(ctx, s.completedKey(runID, level), time.Now().UTC().Unix(), s.ttl).Result()
}

func (s *RedisLevelStore) levelKey(id uuid.UUID) string {
	return fmt.Sprintf(levelKeyFmt, s.prefix, id)
}

func (s *RedisLevelStore) completedKey(runID uuid.UUID, level int) string {
	return fmt.Sprintf(completedKeyFmt, s.prefix, runID, level)
}
