package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) GetUnread(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	notifications, err := h.notificationService.ListUnread(userID, queryInt(c, "limit", 0))
	if err != nil {
		return httpx.Internal(c, "fetch_notifications_failed")
	}

	count, err := h.notificationService.CountUnread(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_notifications_failed")
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"unread_count":  count,
	})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid notification id")
	}

	if err := h.notificationService.MarkRead(id, userID); err != nil {
		return serviceError(c, err, "mark_notification_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	updated, err := h.notificationService.MarkAllRead(userID)
	if err != nil {
		return httpx.Internal(c, "mark_notifications_failed")
	}
	return c.JSON(fiber.Map{"updated": updated})
}
