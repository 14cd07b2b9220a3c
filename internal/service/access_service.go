package service

import (
	"errors"

	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
	"gorm.io/gorm"
)

// AccessService gates join, post and moderation operations on groups.
type AccessService struct {
	roomRepo    repository.RoomRepositoryInterface
	channelRepo repository.ChannelRepositoryInterface
}

func NewAccessService(
	roomRepo repository.RoomRepositoryInterface,
	channelRepo repository.ChannelRepositoryInterface,
) *AccessService {
	return &AccessService{
		roomRepo:    roomRepo,
		channelRepo: channelRepo,
	}
}

// CanJoin reports whether a user may subscribe to a group. Public channels
// always pass; rooms require participation; private channels require
// membership. The global presence group is open to any authenticated user.
func (s *AccessService) CanJoin(userID uint, ref models.GroupRef) (bool, error) {
	switch ref.Scope {
	case models.ScopeGlobal:
		return true, nil
	case models.ScopeRoom:
		return s.roomRepo.IsParticipant(ref.ID, userID)
	case models.ScopeChannel:
		channel, err := s.channelRepo.FindByID(ref.ID)
		if err != nil {
			return false, translate(err)
		}
		if !channel.Active {
			return false, nil
		}
		if channel.IsPublic {
			return true, nil
		}
		return s.channelRepo.IsMember(ref.ID, userID)
	}
	return false, nil
}

// CanPost reports whether a user may post a message to a group. Channel
// admins may post regardless of the allow_member_posts setting.
func (s *AccessService) CanPost(userID uint, ref models.GroupRef) (bool, error) {
	switch ref.Scope {
	case models.ScopeRoom:
		return s.roomRepo.IsParticipant(ref.ID, userID)
	case models.ScopeChannel:
		channel, err := s.channelRepo.FindByID(ref.ID)
		if err != nil {
			return false, translate(err)
		}
		role, ok := channel.RoleOf(userID)
		if !ok {
			return false, nil
		}
		if role == models.ChannelRoleAdmin {
			return true, nil
		}
		return channel.AllowMemberPosts, nil
	}
	return false, nil
}

// CanModerate reports whether a user may manage membership or delete the
// group: channel admins, or the original creator of a room/channel.
func (s *AccessService) CanModerate(userID uint, ref models.GroupRef) (bool, error) {
	switch ref.Scope {
	case models.ScopeRoom:
		room, err := s.roomRepo.FindByID(ref.ID)
		if err != nil {
			return false, translate(err)
		}
		return room.CreatorID == userID, nil
	case models.ScopeChannel:
		channel, err := s.channelRepo.FindByID(ref.ID)
		if err != nil {
			return false, translate(err)
		}
		if channel.CreatorID == userID {
			return true, nil
		}
		role, err := s.channelRepo.GetMemberRole(ref.ID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		return role == models.ChannelRoleAdmin, nil
	}
	return false, nil
}

// CanReact reports whether reactions are accepted for a group. Rooms always
// allow them; channels honor the allow_reactions setting.
func (s *AccessService) CanReact(ref models.GroupRef) (bool, error) {
	if ref.Scope != models.ScopeChannel {
		return true, nil
	}
	channel, err := s.channelRepo.FindByID(ref.ID)
	if err != nil {
		return false, translate(err)
	}
	return channel.AllowReactions, nil
}

// CanReply reports whether threaded replies are accepted for a group.
func (s *AccessService) CanReply(ref models.GroupRef) (bool, error) {
	if ref.Scope != models.ScopeChannel {
		return true, nil
	}
	channel, err := s.channelRepo.FindByID(ref.ID)
	if err != nil {
		return false, translate(err)
	}
	return channel.AllowReplies, nil
}
