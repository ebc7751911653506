// Package scorestore provides a Redis-backed ScoreBoard so colour reputation
// can be shared across processes. The board is a single Redis hash; HINCRBY
// gives the per-colour update serialization the shared-state design requires,
// with the same reward/penalty semantics as the in-memory board.
//
// All keys are namespaced by run key so multiple experiments can safely
// coexist on a single Redis server.
package scorestore

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/mcalpine/prism/pkg/colouring"
)

// BoardKey returns the Redis key for a run's score hash.
// Pattern: prism:{run_key}:scores
func BoardKey(runKey string) string {
	return fmt.Sprintf("prism:%s:scores", runKey)
}

// RedisBoard implements colouring.ScoreBoard on a Redis hash. The board is
// safe for concurrent use; Redis serializes the per-colour increments.
//
// ScoreBoard operations carry no context, so board methods use the context
// the board was constructed with; a failed read scores zero and a failed
// write is logged and dropped, keeping the simulation running through
// transient Redis trouble.
type RedisBoard struct {
	ctx context.Context
	rdb *redis.Client
	key string
}

// NewRedisBoard creates a board for the given run key and verifies
// connectivity.
func NewRedisBoard(ctx context.Context, opts *redis.Options, runKey string) (*RedisBoard, error) {
	if runKey == "" {
		return nil, fmt.Errorf("run key cannot be empty")
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to reach Redis: %w", err)
	}

	return &RedisBoard{ctx: ctx, rdb: rdb, key: BoardKey(runKey)}, nil
}

// Reset clears the board and installs the given starting scores.
func (b *RedisBoard) Reset(scores map[colouring.Colour]int) error {
	if err := b.rdb.Del(b.ctx, b.key).Err(); err != nil {
		return fmt.Errorf("failed to clear score board: %w", err)
	}
	if len(scores) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(scores))
	for c, s := range scores {
		fields[strconv.Itoa(int(c))] = s
	}
	if err := b.rdb.HSet(b.ctx, b.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to seed score board: %w", err)
	}
	return nil
}

// Score returns the colour's reputation. Unknown colours and read failures
// score zero.
func (b *RedisBoard) Score(c colouring.Colour) int {
	val, err := b.rdb.HGet(b.ctx, b.key, strconv.Itoa(int(c))).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[ScoreStore] failed to read score for %v: %v", c, err)
		}
		return 0
	}

	score, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("[ScoreStore] malformed score for %v: %q", c, val)
		return 0
	}
	return score
}

// Apply adds delta to the colour's reputation via HINCRBY.
func (b *RedisBoard) Apply(c colouring.Colour, delta int) {
	if err := b.rdb.HIncrBy(b.ctx, b.key, strconv.Itoa(int(c)), int64(delta)).Err(); err != nil {
		log.Printf("[ScoreStore] failed to apply %+d to %v: %v", delta, c, err)
	}
}

// Snapshot returns a copy of all known scores. Read failures return an empty
// map.
func (b *RedisBoard) Snapshot() map[colouring.Colour]int {
	fields, err := b.rdb.HGetAll(b.ctx, b.key).Result()
	if err != nil {
		log.Printf("[ScoreStore] failed to snapshot score board: %v", err)
		return map[colouring.Colour]int{}
	}

	out := make(map[colouring.Colour]int, len(fields))
	for field, val := range fields {
		c, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		score, err := strconv.Atoi(val)
		if err != nil {
			continue
		}
		out[colouring.Colour(c)] = score
	}
	return out
}

// Close releases the Redis connection. Implements io.Closer.
func (b *RedisBoard) Close() error {
	return b.rdb.Close()
}
