package service

import (
	"log"

	"github.com/google/uuid"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/repository"
	"github.com/workzen-hq/collab-backend/internal/validation"
)

const defaultPageSize = 50

// Notifier receives successfully persisted messages for unread-notification
// fan-out. Delivery failures never reach the posting user.
type Notifier interface {
	OnMessagePosted(message *models.Message)
}

// MessagePageCache caches the newest page of a group's history. Every write
// that changes what that page renders must invalidate it.
type MessagePageCache interface {
	GetFirstPage(ref models.GroupRef) ([]models.Message, bool)
	SetFirstPage(ref models.GroupRef, messages []models.Message) error
	Invalidate(ref models.GroupRef) error
}

type MessageService struct {
	messageRepo  repository.MessageRepositoryInterface
	access       *AccessService
	messageCache MessagePageCache
	notifier     Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	access *AccessService,
	messageCache MessagePageCache,
	notifier Notifier,
) *MessageService {
	return &MessageService{
		messageRepo:  messageRepo,
		access:       access,
		messageCache: messageCache,
		notifier:     notifier,
	}
}

type PostMessageInput struct {
	RoomID    *uint                `json:"room_id"`
	ChannelID *uint                `json:"channel_id"`
	Content   string               `json:"content"`
	Kind      models.MessageKind   `json:"message_type"`
	ParentID  *uint                `json:"parent_id"`
	ClientID  string               `json:"client_id"`
	File      *models.FileMetadata `json:"file_metadata"`
}

// PostMessage persists a new message with read_by={sender} and triggers
// notification fan-out for the rest of the audience. Posts carrying a
// client_id already seen from this sender return the stored message instead
// of a duplicate.
func (s *MessageService) PostMessage(senderID uint, input PostMessageInput) (*models.Message, error) {
	if (input.RoomID == nil) == (input.ChannelID == nil) {
		return nil, ErrInvalidInput
	}

	content := validation.TrimAndLimit(input.Content, validation.MaxMessageLength())
	if content == "" && input.Kind != models.FileMessage {
		return nil, ErrInvalidInput
	}
	if input.Kind == "" {
		input.Kind = models.TextMessage
	}
	if input.Kind == models.FileMessage && (input.File == nil || input.File.StorageRef == "") {
		return nil, ErrInvalidInput
	}

	var ref models.GroupRef
	if input.RoomID != nil {
		ref = models.RoomRef(*input.RoomID)
	} else {
		ref = models.ChannelRef(*input.ChannelID)
	}

	allowed, err := s.access.CanPost(senderID, ref)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbidden
	}

	if input.ParentID != nil {
		allowed, err := s.access.CanReply(ref)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrForbidden
		}
	}

	// At-least-once: a retried post with the same client_id is the same
	// message.
	if input.ClientID != "" {
		if existing, err := s.messageRepo.FindByClientID(input.ClientID, senderID); err == nil {
			return existing, nil
		}
	} else {
		input.ClientID = uuid.NewString()
	}

	message := &models.Message{
		ClientID:  input.ClientID,
		SenderID:  senderID,
		RoomID:    input.RoomID,
		ChannelID: input.ChannelID,
		ParentID:  input.ParentID,
		Content:   content,
		Kind:      input.Kind,
		Reads:     []models.MessageRead{{UserID: senderID}},
	}
	if input.File != nil {
		message.File = *input.File
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		return nil, err
	}

	s.invalidatePage(ref)

	// Fan-out must never block or fail the sender's response.
	if s.notifier != nil {
		go s.notifier.OnMessagePosted(stored)
	}

	return stored, nil
}

// EditMessage replaces content; only the original sender may edit.
func (s *MessageService) EditMessage(messageID, editorID uint, newContent string) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, translate(err)
	}
	if message.IsDeleted {
		return nil, ErrNotFound
	}
	if message.SenderID != editorID {
		return nil, ErrForbidden
	}

	newContent = validation.TrimAndLimit(newContent, validation.MaxMessageLength())
	if newContent == "" {
		return nil, ErrInvalidInput
	}

	if err := s.messageRepo.UpdateContent(messageID, newContent); err != nil {
		return nil, err
	}
	s.invalidatePage(message.GroupRef())
	return s.messageRepo.FindByID(messageID)
}

// DeleteMessage soft-deletes; the sender or a group moderator may delete.
// The row is retained for audit and stays reachable by direct id lookup.
func (s *MessageService) DeleteMessage(messageID, requesterID uint) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return translate(err)
	}
	if message.SenderID != requesterID {
		allowed, err := s.access.CanModerate(requesterID, message.GroupRef())
		if err != nil {
			return err
		}
		if !allowed {
			return ErrForbidden
		}
	}

	if err := s.messageRepo.SoftDelete(messageID); err != nil {
		return err
	}
	s.invalidatePage(message.GroupRef())
	return nil
}

// MarkRead adds the user to the message's read_by set. Re-marking is a
// no-op so duplicate deliveries cause no corruption.
func (s *MessageService) MarkRead(messageID, userID uint) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return translate(err)
	}
	if err := s.messageRepo.AddRead(messageID, userID); err != nil {
		return err
	}
	s.invalidatePage(message.GroupRef())
	return nil
}

func (s *MessageService) AddReaction(messageID, userID uint, emoji string) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return translate(err)
	}
	if !validation.ValidateEmoji(emoji) {
		return ErrInvalidInput
	}
	allowed, err := s.access.CanReact(message.GroupRef())
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	if err := s.messageRepo.AddReaction(messageID, userID, emoji); err != nil {
		return err
	}
	s.invalidatePage(message.GroupRef())
	return nil
}

func (s *MessageService) RemoveReaction(messageID, userID uint, emoji string) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return translate(err)
	}
	if err := s.messageRepo.RemoveReaction(messageID, userID, emoji); err != nil {
		return err
	}
	s.invalidatePage(message.GroupRef())
	return nil
}

// invalidatePage drops the cached newest page. A write that cannot reach
// the cache is logged; the stored row is already the source of truth.
func (s *MessageService) invalidatePage(ref models.GroupRef) {
	if err := s.messageCache.Invalidate(ref); err != nil {
		log.Printf("message cache invalidate failed group=%s: %v", ref.Key(), err)
	}
}

// ListMessages returns a group's history newest-first, soft-deleted rows
// excluded. The newest page is served from cache when warm.
func (s *MessageService) ListMessages(ref models.GroupRef, limit, offset int) ([]models.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if offset == 0 && limit == defaultPageSize {
		if cached, ok := s.messageCache.GetFirstPage(ref); ok {
			return cached, nil
		}
	}

	messages, err := s.messageRepo.ListByGroup(ref, limit, offset)
	if err != nil {
		return nil, err
	}

	if offset == 0 && limit == defaultPageSize {
		if err := s.messageCache.SetFirstPage(ref, messages); err != nil {
			log.Printf("message cache set failed group=%s: %v", ref.Key(), err)
		}
	}
	return messages, nil
}

// SearchMessages does a case-insensitive substring match over content,
// soft-deleted rows excluded, result size capped.
func (s *MessageService) SearchMessages(ref models.GroupRef, query string, limit int) ([]models.Message, error) {
	query = validation.TrimAndLimit(query, 200)
	if query == "" {
		return nil, ErrInvalidInput
	}
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	return s.messageRepo.SearchByGroup(ref, query, limit)
}

// GetMessage looks a message up by id, including soft-deleted ones.
func (s *MessageService) GetMessage(messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return nil, translate(err)
	}
	return message, nil
}
