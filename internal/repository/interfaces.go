package repository

import (
	"github.com/workzen-hq/collab-backend/internal/models"
)

// RoomRepositoryInterface defines the contract for room repository operations
type RoomRepositoryInterface interface {
	Create(room *models.Room) error
	FindByID(id uint) (*models.Room, error)
	FindDirectByKey(directKey string) (*models.Room, error)
	AddParticipant(roomID, userID uint) error
	RemoveParticipant(roomID, userID uint) error
	GetParticipantIDs(roomID uint) ([]uint, error)
	IsParticipant(roomID, userID uint) (bool, error)
	ListForUser(userID uint) ([]models.Room, error)
	Deactivate(roomID uint) error
}

// ChannelRepositoryInterface defines the contract for channel repository operations
type ChannelRepositoryInterface interface {
	Create(channel *models.Channel) error
	FindByID(id uint) (*models.Channel, error)
	AddMember(channelID, userID uint, role models.ChannelRole) error
	RemoveMember(channelID, userID uint) error
	GetMemberIDs(channelID uint) ([]uint, error)
	IsMember(channelID, userID uint) (bool, error)
	GetMemberRole(channelID, userID uint) (models.ChannelRole, error)
	ListForUser(userID uint) ([]models.Channel, error)
	ListPublic(limit int) ([]models.Channel, error)
	UpdateSettings(channelID uint, settings models.ChannelSettings) error
	Deactivate(channelID uint) error
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	UpdateContent(messageID uint, content string) error
	SoftDelete(messageID uint) error
	AddRead(messageID, userID uint) error
	AddReaction(messageID, userID uint, emoji string) error
	RemoveReaction(messageID, userID uint, emoji string) error
	ListByGroup(ref models.GroupRef, limit, offset int) ([]models.Message, error)
	SearchByGroup(ref models.GroupRef, query string, limit int) ([]models.Message, error)
}

// PresenceRepositoryInterface defines the contract for presence repository operations
type PresenceRepositoryInterface interface {
	Upsert(userID uint, isOnline bool) error
	Get(userID uint) (*models.PresenceRecord, error)
	ListOnline(userIDs []uint) ([]models.PresenceRecord, error)
}

// NotificationRepositoryInterface defines the contract for notification repository operations
type NotificationRepositoryInterface interface {
	Create(notification *models.Notification) error
	FindByID(id uint) (*models.Notification, error)
	MarkRead(id uint) error
	MarkAllRead(userID uint) (int64, error)
	ListUnread(userID uint, limit int) ([]models.Notification, error)
	CountUnread(userID uint) (int64, error)
}
