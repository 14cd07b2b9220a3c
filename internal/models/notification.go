package models

import "time"

type NotificationKind string

const (
	NotificationMessage   NotificationKind = "message"
	NotificationBroadcast NotificationKind = "broadcast"
)

type Notification struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID    uint             `gorm:"not null;index" json:"user_id"`
	RoomID    *uint            `gorm:"index" json:"room_id,omitempty"`
	ChannelID *uint            `gorm:"index" json:"channel_id,omitempty"`
	MessageID uint             `gorm:"not null;index" json:"message_id"`
	Kind      NotificationKind `gorm:"type:varchar(20);default:'message'" json:"kind"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
}
