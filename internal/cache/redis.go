// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/cardparty/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for resolved rounds.
const DefaultQueueName = "cardparty_rounds"

// Connect opens a Redis client and checks it with a ping.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// RoundQueue is the Redis list between the game server and the historian.
// The server pushes with RecordRound; the historian pops with Pop.
type RoundQueue struct {
	rdb  *redis.Client
	name string
}

// NewRoundQueue wraps rdb. An empty name falls back to DefaultQueueName.
func NewRoundQueue(rdb *redis.Client, name string) *RoundQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &RoundQueue{rdb: rdb, name: name}
}

// Name is the Redis key of the queue.
func (q *RoundQueue) Name() string { return q.name }

// RecordRound serializes the record to JSON, then pushes it to the Redis queue.
// This does not block the calling logic (other than a quick network send).
func (q *RoundQueue) RecordRound(ctx context.Context, rec models.RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal RoundRecord: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. It returns nil, nil when the
// queue stayed empty.
func (q *RoundQueue) Pop(ctx context.Context, timeout time.Duration) (*models.RoundRecord, error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", q.name, err)
	}
	if len(res) < 2 {
		return nil, nil
	}

	// res[0] is the queue name and res[1] the payload.
	var rec models.RoundRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid round record: %w", err)
	}
	return &rec, nil
}
