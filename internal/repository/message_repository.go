package repository

import (
	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Reads").Preload("Reactions").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Where("client_id = ? AND sender_id = ?", clientID, senderID).
		Preload("Reads").Preload("Reactions").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) UpdateContent(messageID uint, content string) error {
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
		}).Error
}

func (r *MessageRepository) SoftDelete(messageID uint) error {
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).
		Update("is_deleted", true).Error
}

// AddRead inserts a read_by marker. The composite primary key plus
// ON CONFLICT DO NOTHING makes repeated calls a no-op.
func (r *MessageRepository) AddRead(messageID, userID uint) error {
	read := models.MessageRead{
		MessageID: messageID,
		UserID:    userID,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&read).Error
}

// AddReaction is idempotent per (message, user, emoji).
func (r *MessageRepository) AddReaction(messageID, userID uint, emoji string) error {
	reaction := models.MessageReaction{
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reaction).Error
}

func (r *MessageRepository) RemoveReaction(messageID, userID uint, emoji string) error {
	return r.db.Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		Delete(&models.MessageReaction{}).Error
}

func (r *MessageRepository) groupScope(ref models.GroupRef) *gorm.DB {
	if ref.Scope == models.ScopeChannel {
		return r.db.Where("channel_id = ?", ref.ID)
	}
	return r.db.Where("room_id = ?", ref.ID)
}

// ListByGroup returns messages newest-first. Identical timestamps break by
// the store-assigned id, descending, so insertion order is preserved.
func (r *MessageRepository) ListByGroup(ref models.GroupRef, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.groupScope(ref).
		Where("is_deleted = false").
		Preload("Reads").Preload("Reactions").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) SearchByGroup(ref models.GroupRef, query string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.groupScope(ref).
		Where("is_deleted = false AND content ILIKE ?", "%"+query+"%").
		Preload("Reads").Preload("Reactions").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
