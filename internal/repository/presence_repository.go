package repository

import (
	"time"

	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresenceRepository struct {
	db *gorm.DB
}

func NewPresenceRepository(db *gorm.DB) *PresenceRepository {
	return &PresenceRepository{db: db}
}

// Upsert writes the single presence row for a user, last-write-wins.
func (r *PresenceRepository) Upsert(userID uint, isOnline bool) error {
	record := models.PresenceRecord{
		UserID:   userID,
		IsOnline: isOnline,
		LastSeen: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen"}),
	}).Create(&record).Error
}

func (r *PresenceRepository) Get(userID uint) (*models.PresenceRecord, error) {
	var record models.PresenceRecord
	if err := r.db.First(&record, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListOnline returns online presence records, optionally restricted to a
// given id set (nil means all users).
func (r *PresenceRepository) ListOnline(userIDs []uint) ([]models.PresenceRecord, error) {
	var records []models.PresenceRecord
	q := r.db.Where("is_online = true")
	if len(userIDs) > 0 {
		q = q.Where("user_id IN ?", userIDs)
	}
	err := q.Find(&records).Error
	return records, err
}
