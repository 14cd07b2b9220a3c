package repository

import (
	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(channel *models.Channel) error {
	return r.db.Create(channel).Error
}

func (r *ChannelRepository) FindByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.Preload("Members").First(&channel, id).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// AddMember is idempotent for the membership itself; an existing member's
// role is not changed by re-adding them.
func (r *ChannelRepository) AddMember(channelID, userID uint, role models.ChannelRole) error {
	member := models.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Role:      role,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
}

func (r *ChannelRepository) RemoveMember(channelID, userID uint) error {
	return r.db.Where("channel_id = ? AND user_id = ?", channelID, userID).
		Delete(&models.ChannelMember{}).Error
}

func (r *ChannelRepository) GetMemberIDs(channelID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ?", channelID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ChannelRepository) GetMemberRole(channelID, userID uint) (models.ChannelRole, error) {
	var member models.ChannelMember
	if err := r.db.Where("channel_id = ? AND user_id = ?", channelID, userID).First(&member).Error; err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *ChannelRepository) ListForUser(userID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Joins("JOIN channel_members ON channel_members.channel_id = channels.id").
		Where("channel_members.user_id = ? AND channels.active = true", userID).
		Preload("Members").
		Order("channels.updated_at DESC").
		Find(&channels).Error
	return channels, err
}

func (r *ChannelRepository) ListPublic(limit int) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Where("is_public = true AND active = true").
		Limit(limit).
		Preload("Members").
		Find(&channels).Error
	return channels, err
}

func (r *ChannelRepository) UpdateSettings(channelID uint, settings models.ChannelSettings) error {
	return r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Updates(map[string]interface{}{
			"allow_member_posts": settings.AllowMemberPosts,
			"allow_reactions":    settings.AllowReactions,
			"allow_replies":      settings.AllowReplies,
		}).Error
}

func (r *ChannelRepository) Deactivate(channelID uint) error {
	return r.db.Model(&models.Channel{}).
		Where("id = ?", channelID).
		Update("active", false).Error
}
