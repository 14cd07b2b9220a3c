package service

import (
	"errors"

	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
	"gorm.io/gorm"
)

type RoomService struct {
	roomRepo repository.RoomRepositoryInterface
	access   *AccessService
}

func NewRoomService(roomRepo repository.RoomRepositoryInterface, access *AccessService) *RoomService {
	return &RoomService{roomRepo: roomRepo, access: access}
}

type CreateRoomInput struct {
	Name               string          `json:"name"`
	Kind               models.RoomKind `json:"kind"`
	ParticipantIDs     []uint          `json:"participant_ids"`
	ExternalIdentifier string          `json:"external_identifier"`
}

// CreateRoom creates a room with the creator always included as a
// participant. Direct rooms are deduplicated on the participant pair: a
// second create for the same pair returns the existing room.
func (s *RoomService) CreateRoom(creatorID uint, input CreateRoomInput) (*models.Room, error) {
	if input.Kind == "" {
		input.Kind = models.RoomGroup
	}

	participants := dedupeIDs(append(input.ParticipantIDs, creatorID))
	if len(participants) == 0 {
		return nil, ErrInvalidInput
	}

	if input.Kind == models.RoomDirect {
		if len(participants) != 2 {
			return nil, ErrInvalidInput
		}
		return s.createDirectRoom(creatorID, participants[0], participants[1], input.Name)
	}

	room := &models.Room{
		Name:               input.Name,
		Kind:               input.Kind,
		CreatorID:          creatorID,
		ExternalIdentifier: input.ExternalIdentifier,
		Active:             true,
	}
	for _, id := range participants {
		room.Participants = append(room.Participants, models.RoomParticipant{UserID: id})
	}

	if err := s.roomRepo.Create(room); err != nil {
		return nil, err
	}
	return s.roomRepo.FindByID(room.ID)
}

func (s *RoomService) createDirectRoom(creatorID, a, b uint, name string) (*models.Room, error) {
	key := models.DirectRoomKey(a, b)

	if existing, err := s.roomRepo.FindDirectByKey(key); err == nil {
		return existing, nil
	}

	room := &models.Room{
		Name:      name,
		Kind:      models.RoomDirect,
		CreatorID: creatorID,
		DirectKey: &key,
		Active:    true,
		Participants: []models.RoomParticipant{
			{UserID: a},
			{UserID: b},
		},
	}

	if err := s.roomRepo.Create(room); err != nil {
		// A concurrent create for the same pair hit the unique index first.
		if existing, ferr := s.roomRepo.FindDirectByKey(key); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	return s.roomRepo.FindByID(room.ID)
}

func (s *RoomService) GetRoom(roomID uint) (*models.Room, error) {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return nil, translate(err)
	}
	return room, nil
}

func (s *RoomService) ListRoomsForUser(userID uint) ([]models.Room, error) {
	return s.roomRepo.ListForUser(userID)
}

// AddParticipant adds a user to a room. Only moderators may manage
// membership, and direct rooms never change their participant pair.
func (s *RoomService) AddParticipant(roomID, requesterID, userID uint) error {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return translate(err)
	}
	if room.Kind == models.RoomDirect {
		return ErrInvalidInput
	}
	allowed, err := s.access.CanModerate(requesterID, models.RoomRef(roomID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return s.roomRepo.AddParticipant(roomID, userID)
}

func (s *RoomService) RemoveParticipant(roomID, requesterID, userID uint) error {
	room, err := s.roomRepo.FindByID(roomID)
	if err != nil {
		return translate(err)
	}
	if room.Kind == models.RoomDirect {
		return ErrInvalidInput
	}
	// Anyone can leave; removing someone else needs moderation rights.
	if requesterID != userID {
		allowed, err := s.access.CanModerate(requesterID, models.RoomRef(roomID))
		if err != nil {
			return err
		}
		if !allowed {
			return ErrForbidden
		}
	}
	return s.roomRepo.RemoveParticipant(roomID, userID)
}

// DeactivateRoom soft-deletes a room. Rooms are never hard-deleted.
func (s *RoomService) DeactivateRoom(roomID, requesterID uint) error {
	if _, err := s.roomRepo.FindByID(roomID); err != nil {
		return translate(err)
	}
	allowed, err := s.access.CanModerate(requesterID, models.RoomRef(roomID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return s.roomRepo.Deactivate(roomID)
}

// ParticipantIDs returns the participant set of a room, used by callers
// that fan events or notifications out to the room audience.
func (s *RoomService) ParticipantIDs(roomID uint) ([]uint, error) {
	ids, err := s.roomRepo.GetParticipantIDs(roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ids, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
