package repository

import (
	"github.com/workzen-hq/collab-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(room *models.Room) error {
	return r.db.Create(room).Error
}

func (r *RoomRepository) FindByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.Preload("Participants").First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *RoomRepository) FindDirectByKey(directKey string) (*models.Room, error) {
	var room models.Room
	err := r.db.Where("direct_key = ? AND active = true", directKey).
		Preload("Participants").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// AddParticipant is idempotent: re-adding an existing participant is a no-op.
func (r *RoomRepository) AddParticipant(roomID, userID uint) error {
	participant := models.RoomParticipant{
		RoomID: roomID,
		UserID: userID,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&participant).Error
}

func (r *RoomRepository) RemoveParticipant(roomID, userID uint) error {
	return r.db.Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomParticipant{}).Error
}

func (r *RoomRepository) GetParticipantIDs(roomID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.RoomParticipant{}).
		Where("room_id = ?", roomID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *RoomRepository) IsParticipant(roomID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *RoomRepository) ListForUser(userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.Joins("JOIN room_participants ON room_participants.room_id = rooms.id").
		Where("room_participants.user_id = ? AND rooms.active = true", userID).
		Preload("Participants").
		Order("rooms.updated_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// Deactivate also clears direct_key so its unique index, which spans
// inactive rows, does not block recreating the same direct pair.
func (r *RoomRepository) Deactivate(roomID uint) error {
	return r.db.Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{"active": false, "direct_key": nil}).Error
}
