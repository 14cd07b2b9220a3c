package service

import (
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
)

type ChannelService struct {
	channelRepo repository.ChannelRepositoryInterface
	access      *AccessService
}

func NewChannelService(channelRepo repository.ChannelRepositoryInterface, access *AccessService) *ChannelService {
	return &ChannelService{channelRepo: channelRepo, access: access}
}

type CreateChannelInput struct {
	Name        string                  `json:"name"`
	Kind        string                  `json:"kind"`
	Description string                  `json:"description"`
	IsPublic    bool                    `json:"is_public"`
	Settings    *models.ChannelSettings `json:"settings"`
}

// CreateChannel creates a channel and enrolls the creator as admin.
func (s *ChannelService) CreateChannel(creatorID uint, input CreateChannelInput) (*models.Channel, error) {
	if input.Name == "" {
		return nil, ErrInvalidInput
	}

	channel := &models.Channel{
		Name:             input.Name,
		Kind:             input.Kind,
		Description:      input.Description,
		CreatorID:        creatorID,
		IsPublic:         input.IsPublic,
		AllowMemberPosts: true,
		AllowReactions:   true,
		AllowReplies:     true,
		Active:           true,
	}
	if input.Settings != nil {
		channel.AllowMemberPosts = input.Settings.AllowMemberPosts
		channel.AllowReactions = input.Settings.AllowReactions
		channel.AllowReplies = input.Settings.AllowReplies
	}

	if err := s.channelRepo.Create(channel); err != nil {
		return nil, err
	}
	if err := s.channelRepo.AddMember(channel.ID, creatorID, models.ChannelRoleAdmin); err != nil {
		return nil, err
	}
	return s.channelRepo.FindByID(channel.ID)
}

func (s *ChannelService) GetChannel(channelID uint) (*models.Channel, error) {
	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		return nil, translate(err)
	}
	return channel, nil
}

// JoinChannel self-enrolls a user. Public channels are open; joining a
// private channel without an existing membership is Forbidden. Joining a
// channel the user is already in is a no-op.
func (s *ChannelService) JoinChannel(channelID, userID uint) error {
	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		return translate(err)
	}
	if !channel.Active {
		return ErrNotFound
	}
	if !channel.IsPublic {
		isMember, err := s.channelRepo.IsMember(channelID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return ErrForbidden
		}
		return nil
	}
	return s.channelRepo.AddMember(channelID, userID, models.ChannelRoleMember)
}

// LeaveChannel removes the user's own membership. The creator stays in the
// admin set for the channel's lifetime.
func (s *ChannelService) LeaveChannel(channelID, userID uint) error {
	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		return translate(err)
	}
	if channel.CreatorID == userID {
		return ErrInvalidInput
	}
	return s.channelRepo.RemoveMember(channelID, userID)
}

// AddMember enrolls another user; moderator-gated.
func (s *ChannelService) AddMember(channelID, requesterID, userID uint, role models.ChannelRole) error {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		return translate(err)
	}
	allowed, err := s.access.CanModerate(requesterID, models.ChannelRef(channelID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	if role == "" {
		role = models.ChannelRoleMember
	}
	return s.channelRepo.AddMember(channelID, userID, role)
}

func (s *ChannelService) RemoveMember(channelID, requesterID, userID uint) error {
	channel, err := s.channelRepo.FindByID(channelID)
	if err != nil {
		return translate(err)
	}
	if channel.CreatorID == userID {
		return ErrInvalidInput
	}
	allowed, err := s.access.CanModerate(requesterID, models.ChannelRef(channelID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return s.channelRepo.RemoveMember(channelID, userID)
}

func (s *ChannelService) UpdateSettings(channelID, requesterID uint, settings models.ChannelSettings) error {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		return translate(err)
	}
	allowed, err := s.access.CanModerate(requesterID, models.ChannelRef(channelID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return s.channelRepo.UpdateSettings(channelID, settings)
}

// DeactivateChannel soft-deletes a channel; moderator-gated.
func (s *ChannelService) DeactivateChannel(channelID, requesterID uint) error {
	if _, err := s.channelRepo.FindByID(channelID); err != nil {
		return translate(err)
	}
	allowed, err := s.access.CanModerate(requesterID, models.ChannelRef(channelID))
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return s.channelRepo.Deactivate(channelID)
}

func (s *ChannelService) ListChannelsForUser(userID uint) ([]models.Channel, error) {
	return s.channelRepo.ListForUser(userID)
}

func (s *ChannelService) ListPublicChannels(limit int) ([]models.Channel, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.channelRepo.ListPublic(limit)
}

func (s *ChannelService) MemberIDs(channelID uint) ([]uint, error) {
	return s.channelRepo.GetMemberIDs(channelID)
}
