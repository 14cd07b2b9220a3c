package service

import (
	"log"

	"github.com/workzen-hq/collab-backend/internal/cache"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
)

// PresenceService owns the single presence record per user. The gateway is
// required to call SetOffline only when closing a user's last connection;
// it tracks live connection counts for that (see ws.Hub), otherwise a
// second browser tab would flap presence on disconnect.
type PresenceService struct {
	presenceRepo  repository.PresenceRepositoryInterface
	presenceCache *cache.PresenceCache
}

func NewPresenceService(
	presenceRepo repository.PresenceRepositoryInterface,
	presenceCache *cache.PresenceCache,
) *PresenceService {
	return &PresenceService{
		presenceRepo:  presenceRepo,
		presenceCache: presenceCache,
	}
}

func (s *PresenceService) SetOnline(userID uint) error {
	if err := s.presenceRepo.Upsert(userID, true); err != nil {
		return err
	}
	if err := s.presenceCache.SetUserOnline(userID); err != nil {
		log.Printf("presence cache set online failed user=%d: %v", userID, err)
	}
	return nil
}

func (s *PresenceService) SetOffline(userID uint) error {
	if err := s.presenceRepo.Upsert(userID, false); err != nil {
		return err
	}
	if err := s.presenceCache.SetUserOffline(userID); err != nil {
		log.Printf("presence cache set offline failed user=%d: %v", userID, err)
	}
	return nil
}

// GetOnlineUsers returns online presence records, optionally restricted to
// the given id set.
func (s *PresenceService) GetOnlineUsers(userIDs []uint) ([]models.PresenceRecord, error) {
	return s.presenceRepo.ListOnline(userIDs)
}

// IsOnline answers from the cache when possible, falling back to the
// authoritative record.
func (s *PresenceService) IsOnline(userID uint) bool {
	if s.presenceCache.IsUserOnline(userID) {
		return true
	}
	record, err := s.presenceRepo.Get(userID)
	if err != nil {
		return false
	}
	return record.IsOnline
}

func (s *PresenceService) GetPresence(userID uint) (*models.PresenceRecord, error) {
	record, err := s.presenceRepo.Get(userID)
	if err != nil {
		return nil, translate(err)
	}
	return record, nil
}
