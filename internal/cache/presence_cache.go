package cache

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// PresenceTTL matches the gateway's pong timeout so stale entries fall
	// out on their own if a disconnect cleanup is ever missed.
	PresenceTTL = 90 * time.Second
)

// PresenceCache mirrors online/offline state in Redis so presence lookups
// avoid the database on the hot path. All operations are best-effort; the
// database presence record stays authoritative.
type PresenceCache struct {
	redis *RedisCache
}

// NewPresenceCache creates a new presence cache
func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

// SetUserOnline adds a user to the online users set
func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", userID); err != nil {
		return err
	}

	// Per-user key with TTL for auto-expiration
	userKey := fmt.Sprintf("online:%d", userID)
	return pc.redis.Set(userKey, []byte("1"), PresenceTTL)
}

// SetUserOffline removes a user from the online users set
func (pc *PresenceCache) SetUserOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Delete(fmt.Sprintf("online:%d", userID))
}

// IsUserOnline checks if a user is online
func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("online:%d", userID))
}

// RefreshUserOnline extends the TTL for an online user
func (pc *PresenceCache) RefreshUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(fmt.Sprintf("online:%d", userID), []byte("1"), PresenceTTL)
}

// GetOnlineUsers returns all online user IDs
func (pc *PresenceCache) GetOnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("online:users")
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

// GetOnlineCount returns the number of online users
func (pc *PresenceCache) GetOnlineCount() (int64, error) {
	if pc == nil || pc.redis == nil {
		return 0, nil
	}
	return pc.redis.SetCard("online:users")
}
