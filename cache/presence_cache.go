package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/e-dream-ai/dreamstream/db"

	"github.com/redis/go-redis/v9"
)

const (
	devicePresenceKey = "remote:%d:device:%s"  // String: heartbeat key (userID, deviceID)
	deviceSetKey      = "remote:%d:devices"    // Hash: deviceID -> kind
	presenceTTL       = 60 * time.Second       // heartbeat expiry
)

// DevicePresence describes one device currently online for a user.
type DevicePresence struct {
	DeviceID string `json:"deviceId"`
	Kind     string `json:"kind"`
}

// PresenceCache tracks which devices of a user hold a live remote-control
// connection, with a heartbeat TTL so crashed clients age out.
type PresenceCache struct {
	client *redis.Client
}

// NewPresenceCache creates a presence cache over the global Redis client.
func NewPresenceCache() *PresenceCache {
	return &PresenceCache{client: db.RedisClient}
}

// UpdateDevicePresence refreshes the heartbeat of a device.
func (c *PresenceCache) UpdateDevicePresence(ctx context.Context, userID int64, deviceID, kind string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(devicePresenceKey, userID, deviceID), kind, presenceTTL)
	pipe.HSet(ctx, fmt.Sprintf(deviceSetKey, userID), deviceID, kind)
	pipe.Expire(ctx, fmt.Sprintf(deviceSetKey, userID), 24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveDevicePresence removes a device from the presence set.
func (c *PresenceCache) RemoveDevicePresence(ctx context.Context, userID int64, deviceID string) error {
	if c.client == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, fmt.Sprintf(devicePresenceKey, userID, deviceID))
	pipe.HDel(ctx, fmt.Sprintf(deviceSetKey, userID), deviceID)
	_, err := pipe.Exec(ctx)
	return err
}

// GetOnlineDevices returns the devices whose heartbeat has not expired.
func (c *PresenceCache) GetOnlineDevices(ctx context.Context, userID int64) ([]DevicePresence, error) {
	if c.client == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	entries, err := c.client.HGetAll(ctx, fmt.Sprintf(deviceSetKey, userID)).Result()
	if err != nil {
		return nil, err
	}

	devices := make([]DevicePresence, 0, len(entries))
	for deviceID, kind := range entries {
		alive, err := c.client.Exists(ctx, fmt.Sprintf(devicePresenceKey, userID, deviceID)).Result()
		if err != nil {
			return nil, err
		}
		if alive == 0 {
			// Stale entry, clean it up opportunistically.
			c.client.HDel(ctx, fmt.Sprintf(deviceSetKey, userID), deviceID)
			continue
		}
		devices = append(devices, DevicePresence{DeviceID: deviceID, Kind: kind})
	}
	return devices, nil
}

// ActiveDeviceCount returns how many devices of a user are online.
func (c *PresenceCache) ActiveDeviceCount(ctx context.Context, userID int64) (int64, error) {
	devices, err := c.GetOnlineDevices(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(devices)), nil
}
