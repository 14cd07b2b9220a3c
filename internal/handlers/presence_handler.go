package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/service"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
}

func NewPresenceHandler(presenceService *service.PresenceService) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService}
}

// GetOnlineUsers lists online presence records, optionally restricted to
// ?user_ids=1,2,3.
func (h *PresenceHandler) GetOnlineUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var userIDs []uint
	if raw := c.Query("user_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32); err == nil && id > 0 {
				userIDs = append(userIDs, uint(id))
			}
		}
	}

	records, err := h.presenceService.GetOnlineUsers(userIDs)
	if err != nil {
		return httpx.Internal(c, "fetch_presence_failed")
	}
	return c.JSON(fiber.Map{"online": records})
}

func (h *PresenceHandler) GetPresence(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid user id")
	}

	record, err := h.presenceService.GetPresence(id)
	if err != nil {
		return serviceError(c, err, "fetch_presence_failed")
	}
	return c.JSON(record)
}
