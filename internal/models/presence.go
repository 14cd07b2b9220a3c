package models

import "time"

// PresenceRecord is the single authoritative presence row per user,
// upserted on every connect/disconnect. No history is retained.
type PresenceRecord struct {
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	IsOnline bool      `gorm:"default:false;index" json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}
