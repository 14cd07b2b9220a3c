package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/workzen-hq/collab-backend/internal/models"
)

const (
	// FirstPageTTL bounds staleness for the hot first page of a group's
	// history; writes also invalidate eagerly.
	FirstPageTTL = 5 * time.Minute
)

// MessageCache keeps the newest page of each group's message history in
// Redis, serialized with msgpack. Misses fall through to the database.
type MessageCache struct {
	redis *RedisCache
}

// NewMessageCache creates a new message cache
func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func firstPageKey(groupKey string) string {
	return fmt.Sprintf("messages:%s:page0", groupKey)
}

// GetFirstPage retrieves the cached newest page for a group
func (mc *MessageCache) GetFirstPage(ref models.GroupRef) ([]models.Message, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(firstPageKey(ref.Key()))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetFirstPage caches the newest page for a group
func (mc *MessageCache) SetFirstPage(ref models.GroupRef, messages []models.Message) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return mc.redis.Set(firstPageKey(ref.Key()), data, FirstPageTTL)
}

// Invalidate drops the cached page after any write to the group
func (mc *MessageCache) Invalidate(ref models.GroupRef) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	return mc.redis.Delete(firstPageKey(ref.Key()))
}
