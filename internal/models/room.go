package models

import (
	"fmt"
	"time"
)

type RoomKind string

const (
	RoomDirect     RoomKind = "direct"
	RoomGroup      RoomKind = "group"
	RoomDepartment RoomKind = "department"
	RoomBroadcast  RoomKind = "broadcast"
)

type Room struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string   `gorm:"size:100" json:"name"`
	Kind      RoomKind `gorm:"type:varchar(20);not null;index" json:"kind"`
	CreatorID uint     `gorm:"not null" json:"creator_id"`

	// ExternalIdentifier links the room to a record in the surrounding
	// HR system (e.g. a department code).
	ExternalIdentifier string `gorm:"size:100;index" json:"external_identifier,omitempty"`

	// DirectKey is set only for direct rooms: "loUserID:hiUserID". The
	// unique index prevents duplicate 1:1 rooms for the same pair.
	DirectKey *string `gorm:"uniqueIndex" json:"-"`

	Active bool `gorm:"default:true;index" json:"active"`

	Participants []RoomParticipant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
}

type RoomParticipant struct {
	RoomID   uint      `gorm:"primaryKey" json:"room_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// DirectRoomKey builds the canonical dedup key for a 1:1 room. The lower
// user ID always comes first so both orderings map to the same key.
func DirectRoomKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func (r *Room) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(r.Participants))
	for _, p := range r.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

func (r *Room) HasParticipant(userID uint) bool {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

type RoomResponse struct {
	ID                 uint      `json:"id"`
	Name               string    `json:"name"`
	Kind               RoomKind  `json:"kind"`
	CreatorID          uint      `json:"creator_id"`
	ExternalIdentifier string    `json:"external_identifier,omitempty"`
	ParticipantIDs     []uint    `json:"participant_ids"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (r *Room) ToResponse() RoomResponse {
	return RoomResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Kind:               r.Kind,
		CreatorID:          r.CreatorID,
		ExternalIdentifier: r.ExternalIdentifier,
		ParticipantIDs:     r.ParticipantIDs(),
		Active:             r.Active,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
