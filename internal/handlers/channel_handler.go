package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/service"
)

type ChannelHandler struct {
	channelService *service.ChannelService
}

func NewChannelHandler(channelService *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) CreateChannel(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateChannelInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	channel, err := h.channelService.CreateChannel(userID, input)
	if err != nil {
		return serviceError(c, err, "create_channel_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(channel.ToResponse())
}

func (h *ChannelHandler) GetMyChannels(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	channels, err := h.channelService.ListChannelsForUser(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_channels_failed")
	}
	return c.JSON(fiber.Map{"channels": channelResponses(channels)})
}

func (h *ChannelHandler) GetPublicChannels(c *fiber.Ctx) error {
	channels, err := h.channelService.ListPublicChannels(queryInt(c, "limit", 0))
	if err != nil {
		return httpx.Internal(c, "fetch_channels_failed")
	}
	return c.JSON(fiber.Map{"channels": channelResponses(channels)})
}

func (h *ChannelHandler) GetChannel(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	channel, err := h.channelService.GetChannel(id)
	if err != nil {
		return serviceError(c, err, "fetch_channel_failed")
	}
	return c.JSON(channel.ToResponse())
}

func (h *ChannelHandler) JoinChannel(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	if err := h.channelService.JoinChannel(id, userID); err != nil {
		return serviceError(c, err, "join_channel_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChannelHandler) LeaveChannel(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	if err := h.channelService.LeaveChannel(id, userID); err != nil {
		return serviceError(c, err, "leave_channel_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChannelHandler) AddMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	var body struct {
		UserID uint               `json:"user_id"`
		Role   models.ChannelRole `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.channelService.AddMember(id, userID, body.UserID, body.Role); err != nil {
		return serviceError(c, err, "add_member_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChannelHandler) RemoveMember(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}
	targetID, err := paramUint(c, "user_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid user id")
	}

	if err := h.channelService.RemoveMember(id, userID, targetID); err != nil {
		return serviceError(c, err, "remove_member_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChannelHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	var settings models.ChannelSettings
	if err := c.BodyParser(&settings); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.channelService.UpdateSettings(id, userID, settings); err != nil {
		return serviceError(c, err, "update_settings_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ChannelHandler) DeactivateChannel(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid channel id")
	}

	if err := h.channelService.DeactivateChannel(id, userID); err != nil {
		return serviceError(c, err, "deactivate_channel_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func channelResponses(channels []models.Channel) []models.ChannelResponse {
	responses := make([]models.ChannelResponse, 0, len(channels))
	for i := range channels {
		responses = append(responses, channels[i].ToResponse())
	}
	return responses
}
