package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/duleab/ai-agent/internal/llm"
)

const cacheTTL = 24 * time.Hour

// historyCache keeps the ordered turns of a conversation in a Redis list
// so repeated generation calls do not reread the whole thread from the
// database. A nil client disables the cache entirely.
type historyCache struct {
	client *redis.Client
}

func (c *historyCache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *historyCache) key(conversationID uuid.UUID) string {
	return fmt.Sprintf("conversation:%s:messages", conversationID)
}

// get returns the cached turns, oldest first. A nil slice with a nil
// error means the cache has nothing for this conversation.
func (c *historyCache) get(ctx context.Context, conversationID uuid.UUID) ([]llm.Turn, error) {
	if !c.enabled() {
		return nil, nil
	}

	entries, err := c.client.LRange(ctx, c.key(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from cache: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	turns := make([]llm.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn llm.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached message: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// fill replaces the cached list with the given turns.
func (c *historyCache) fill(ctx context.Context, conversationID uuid.UUID, turns []llm.Turn) error {
	if !c.enabled() {
		return nil
	}

	key := c.key(conversationID)
	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	for _, turn := range turns {
		payload, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		pipe.RPush(ctx, key, payload)
	}
	pipe.Expire(ctx, key, cacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache messages: %w", err)
	}
	return nil
}

// append adds committed turns to the end of the cached list. The push
// only extends an existing list: if the key is gone (evicted, expired,
// or never filled) extending it would cache the latest exchange as the
// whole thread, so a missing key stays missing and the next read
// repopulates from the database. On any failure the key is dropped for
// the same reason.
func (c *historyCache) append(ctx context.Context, conversationID uuid.UUID, turns ...llm.Turn) error {
	if !c.enabled() {
		return nil
	}

	key := c.key(conversationID)
	pipe := c.client.Pipeline()
	for _, turn := range turns {
		payload, err := json.Marshal(turn)
		if err != nil {
			c.client.Del(ctx, key)
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		pipe.RPushX(ctx, key, payload)
	}
	pipe.Expire(ctx, key, cacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		c.client.Del(ctx, key)
		return fmt.Errorf("failed to cache turns: %w", err)
	}
	return nil
}
