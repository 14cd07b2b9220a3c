package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/service"
)

// MessageHandler exposes the message store to the surrounding CRUD layer.
// Real-time posting normally goes through the WebSocket gateway; the POST
// endpoints here serve the synchronous clients.
type MessageHandler struct {
	messageService *service.MessageService
	accessService  *service.AccessService
}

func NewMessageHandler(messageService *service.MessageService, accessService *service.AccessService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		accessService:  accessService,
	}
}

func (h *MessageHandler) groupRef(c *fiber.Ctx, scope models.GroupScope) (models.GroupRef, uint, error) {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return models.GroupRef{}, 0, httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return models.GroupRef{}, 0, httpx.BadRequest(c, "invalid_id", "Invalid group id")
	}
	ref := models.GroupRef{Scope: scope, ID: id}

	allowed, err := h.accessService.CanJoin(userID, ref)
	if err != nil {
		return models.GroupRef{}, 0, serviceError(c, err, "access_check_failed")
	}
	if !allowed {
		return models.GroupRef{}, 0, httpx.Forbidden(c, "forbidden", "Not a member of this group")
	}
	return ref, userID, nil
}

func (h *MessageHandler) listMessages(c *fiber.Ctx, scope models.GroupScope) error {
	ref, _, err := h.groupRef(c, scope)
	if err != nil {
		return err
	}

	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	messages, err := h.messageService.ListMessages(ref, limit, offset)
	if err != nil {
		return httpx.Internal(c, "fetch_messages_failed")
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return c.JSON(fiber.Map{"messages": responses})
}

func (h *MessageHandler) searchMessages(c *fiber.Ctx, scope models.GroupScope) error {
	ref, _, err := h.groupRef(c, scope)
	if err != nil {
		return err
	}

	query := c.Query("q")
	if query == "" {
		return httpx.BadRequest(c, "missing_query", "q is required")
	}

	messages, err := h.messageService.SearchMessages(ref, query, queryInt(c, "limit", 0))
	if err != nil {
		return serviceError(c, err, "search_messages_failed")
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return c.JSON(fiber.Map{"messages": responses})
}

func (h *MessageHandler) postMessage(c *fiber.Ctx, scope models.GroupScope) error {
	ref, userID, err := h.groupRef(c, scope)
	if err != nil {
		return err
	}

	var input service.PostMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if scope == models.ScopeRoom {
		id := ref.ID
		input.RoomID = &id
		input.ChannelID = nil
	} else {
		id := ref.ID
		input.ChannelID = &id
		input.RoomID = nil
	}

	message, err := h.messageService.PostMessage(userID, input)
	if err != nil {
		return serviceError(c, err, "post_message_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetRoomMessages(c *fiber.Ctx) error {
	return h.listMessages(c, models.ScopeRoom)
}

func (h *MessageHandler) GetChannelMessages(c *fiber.Ctx) error {
	return h.listMessages(c, models.ScopeChannel)
}

func (h *MessageHandler) SearchRoomMessages(c *fiber.Ctx) error {
	return h.searchMessages(c, models.ScopeRoom)
}

func (h *MessageHandler) SearchChannelMessages(c *fiber.Ctx) error {
	return h.searchMessages(c, models.ScopeChannel)
}

func (h *MessageHandler) PostRoomMessage(c *fiber.Ctx) error {
	return h.postMessage(c, models.ScopeRoom)
}

func (h *MessageHandler) PostChannelMessage(c *fiber.Ctx) error {
	return h.postMessage(c, models.ScopeChannel)
}

// GetMessage returns a message by id, including soft-deleted ones (audit
// lookups); the requester must still have access to the owning group.
func (h *MessageHandler) GetMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	message, err := h.messageService.GetMessage(id)
	if err != nil {
		return serviceError(c, err, "fetch_message_failed")
	}

	allowed, err := h.accessService.CanJoin(userID, message.GroupRef())
	if err != nil || !allowed {
		return httpx.Forbidden(c, "forbidden", "Not a member of this group")
	}
	return c.JSON(message.ToResponse())
}

func (h *MessageHandler) EditMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	message, err := h.messageService.EditMessage(id, userID, body.Content)
	if err != nil {
		return serviceError(c, err, "edit_message_failed")
	}
	return c.JSON(message.ToResponse())
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	if err := h.messageService.DeleteMessage(id, userID); err != nil {
		return serviceError(c, err, "delete_message_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessageHandler) MarkMessageRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	if err := h.messageService.MarkRead(id, userID); err != nil {
		return serviceError(c, err, "mark_read_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessageHandler) AddReaction(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.messageService.AddReaction(id, userID, body.Emoji); err != nil {
		return serviceError(c, err, "add_reaction_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessageHandler) RemoveReaction(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid message id")
	}

	var body struct {
		Emoji string `json:"emoji"`
	}
	if err := c.BodyParser(&body); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.messageService.RemoveReaction(id, userID, body.Emoji); err != nil {
		return serviceError(c, err, "remove_reaction_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
