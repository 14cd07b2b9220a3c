package service

import (
	"log"

	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepositoryInterface
	roomRepo         repository.RoomRepositoryInterface
	channelRepo      repository.ChannelRepositoryInterface
}

func NewNotificationService(
	notificationRepo repository.NotificationRepositoryInterface,
	roomRepo repository.RoomRepositoryInterface,
	channelRepo repository.ChannelRepositoryInterface,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		roomRepo:         roomRepo,
		channelRepo:      channelRepo,
	}
}

// OnMessagePosted creates one unread notification per audience member,
// excluding the sender. One recipient's failure is logged and skipped; it
// never blocks the others or the post itself.
func (s *NotificationService) OnMessagePosted(message *models.Message) {
	recipients, err := s.audience(message)
	if err != nil {
		log.Printf("notification fan-out: resolving audience for message %d: %v", message.ID, err)
		return
	}

	for _, userID := range recipients {
		if userID == message.SenderID {
			continue
		}
		notification := &models.Notification{
			UserID:    userID,
			RoomID:    message.RoomID,
			ChannelID: message.ChannelID,
			MessageID: message.ID,
			Kind:      models.NotificationMessage,
		}
		if err := s.notificationRepo.Create(notification); err != nil {
			log.Printf("notification fan-out: create for user %d message %d: %v", userID, message.ID, err)
		}
	}
}

func (s *NotificationService) audience(message *models.Message) ([]uint, error) {
	if message.ChannelID != nil {
		return s.channelRepo.GetMemberIDs(*message.ChannelID)
	}
	if message.RoomID != nil {
		return s.roomRepo.GetParticipantIDs(*message.RoomID)
	}
	return nil, nil
}

// MarkRead is idempotent: marking an already-read notification succeeds.
func (s *NotificationService) MarkRead(notificationID, userID uint) error {
	notification, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		return translate(err)
	}
	if notification.UserID != userID {
		return ErrForbidden
	}
	return s.notificationRepo.MarkRead(notificationID)
}

func (s *NotificationService) MarkAllRead(userID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(userID)
}

func (s *NotificationService) ListUnread(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.notificationRepo.ListUnread(userID, limit)
}

func (s *NotificationService) CountUnread(userID uint) (int64, error) {
	return s.notificationRepo.CountUnread(userID)
}
