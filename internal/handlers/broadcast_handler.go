package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/handlers/ws"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/service"
)

// BroadcastHandler lets moderators push an announcement event to every
// connection currently subscribed to a group.
type BroadcastHandler struct {
	hub           *ws.Hub
	accessService *service.AccessService
}

func NewBroadcastHandler(hub *ws.Hub, accessService *service.AccessService) *BroadcastHandler {
	return &BroadcastHandler{hub: hub, accessService: accessService}
}

func (h *BroadcastHandler) broadcast(c *fiber.Ctx, scope models.GroupScope) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid group id")
	}
	ref := models.GroupRef{Scope: scope, ID: id}

	allowed, err := h.accessService.CanModerate(userID, ref)
	if err != nil {
		return serviceError(c, err, "access_check_failed")
	}
	if !allowed {
		return httpx.Forbidden(c, "forbidden", "Moderator rights required")
	}

	var body struct {
		Data interface{} `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil || body.Data == nil {
		return httpx.BadRequest(c, "invalid_request_body", "data is required")
	}

	senderName := httpx.LocalString(c, "username")
	result := h.hub.Broadcast(ref.Key(), ws.NewBroadcastEvent(body.Data, userID, senderName), nil)

	return c.JSON(fiber.Map{
		"delivered": result.Delivered,
		"failed":    result.Failed,
	})
}

func (h *BroadcastHandler) BroadcastToRoom(c *fiber.Ctx) error {
	return h.broadcast(c, models.ScopeRoom)
}

func (h *BroadcastHandler) BroadcastToChannel(c *fiber.Ctx) error {
	return h.broadcast(c, models.ScopeChannel)
}
