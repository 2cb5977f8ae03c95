package sortedstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const lockKeyFmt = "%s:score_lock"

var _ i.SortedSet = &RedisSortedSet{}

// RedisSortedSet keeps per-key best scores in Redis sorted sets.
type RedisSortedSet struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisSortedSet initializes a RedisSortedSet with the provided Redis client.
func NewRedisSortedSet(client *redis.Client) *RedisSortedSet {
	pool := goredis.NewPool(client)
	return &RedisSortedSet{
		client: client,
		locker: redsync.New(pool),
	}
}

// AddIfLower stores score for member when it beats the current one.
// The read-compare-write runs under a distributed lock on the key.
func (rs *RedisSortedSet) AddIfLower(ctx context.Context, key, member string, score float64) (bool, error) {
	mutex := rs.locker.NewMutex(fmt.Sprintf(lockKeyFmt, key))
	if err := mutex.LockContext(ctx); err != nil {
		return false, err
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	current, err := rs.client.ZScore(ctx, key, member).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return false, err
	case score >= current:
		return false, nil
	}

	if err := rs.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// TopN returns up to n members with the lowest scores, best first.
func (rs *RedisSortedSet) TopN(ctx context.Context, key string, n int64) ([]i.ScoredMember, error) {
	if n <= 0 {
		return nil, nil
	}

	entries, err := rs.client.ZRangeWithScores(ctx, key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	members := make([]i.ScoredMember, 0, len(entries))
	for _, e := range entries {
		member, ok := e.Member.(string)
		if !ok {
			continue
		}
		members = append(members, i.ScoredMember{Member: member, Score: e.Score})
	}
	return members, nil
}

// Count returns the number of members in the sorted set.
func (rs *RedisSortedSet) Count(ctx context.Context, key string) (int64, error) {
	return rs.client.ZCard(ctx, key).Result()
}
