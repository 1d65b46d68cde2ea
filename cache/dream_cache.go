package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/e-dream-ai/dreamstream/db"
	"github.com/e-dream-ai/dreamstream/model"

	"github.com/redis/go-redis/v9"
)

const (
	currentDreamKey = "user:%d:current_dream" // String: Dream JSON
	currentDreamTTL = 24 * time.Hour
)

// DreamCache caches each user's current dream so the refresh endpoint does
// not hit MySQL on every "playing" fan-out.
type DreamCache struct {
	client *redis.Client
}

// NewDreamCache creates a dream cache over the global Redis client.
func NewDreamCache() *DreamCache {
	return &DreamCache{client: db.RedisClient}
}

// SetCurrentDream stores the user's current dream. A nil dream clears it.
func (c *DreamCache) SetCurrentDream(ctx context.Context, userID int64, dream *model.Dream) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	key := fmt.Sprintf(currentDreamKey, userID)
	if dream == nil {
		return c.client.Del(ctx, key).Err()
	}

	data, err := json.Marshal(dream)
	if err != nil {
		return fmt.Errorf("failed to marshal dream: %w", err)
	}
	return c.client.Set(ctx, key, data, currentDreamTTL).Err()
}

// GetCurrentDream returns the user's current dream, nil if none is cached.
func (c *DreamCache) GetCurrentDream(ctx context.Context, userID int64) (*model.Dream, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	data, err := c.client.Get(ctx, fmt.Sprintf(currentDreamKey, userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var dream model.Dream
	if err := json.Unmarshal([]byte(data), &dream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached dream: %w", err)
	}
	return &dream, nil
}
