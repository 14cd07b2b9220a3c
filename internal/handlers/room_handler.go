package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/workzen-hq/collab-backend/internal/httpx"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/service"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.CreateRoomInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	room, err := h.roomService.CreateRoom(userID, input)
	if err != nil {
		return serviceError(c, err, "create_room_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(room.ToResponse())
}

func (h *RoomHandler) GetMyRooms(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	rooms, err := h.roomService.ListRoomsForUser(userID)
	if err != nil {
		return httpx.Internal(c, "fetch_rooms_failed")
	}

	responses := make([]models.RoomResponse, 0, len(rooms))
	for i := range rooms {
		responses = append(responses, rooms[i].ToResponse())
	}
	return c.JSON(fiber.Map{"rooms": responses})
}

func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid room id")
	}

	room, err := h.roomService.GetRoom(id)
	if err != nil {
		return serviceError(c, err, "fetch_room_failed")
	}
	if !room.HasParticipant(userID) {
		return httpx.Forbidden(c, "forbidden", "Not a participant of this room")
	}
	return c.JSON(room.ToResponse())
}

func (h *RoomHandler) AddParticipant(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid room id")
	}

	var body struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == 0 {
		return httpx.BadRequest(c, "invalid_request_body", "user_id is required")
	}

	if err := h.roomService.AddParticipant(id, userID, body.UserID); err != nil {
		return serviceError(c, err, "add_participant_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RoomHandler) RemoveParticipant(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid room id")
	}
	targetID, err := paramUint(c, "user_id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid user id")
	}

	if err := h.roomService.RemoveParticipant(id, userID, targetID); err != nil {
		return serviceError(c, err, "remove_participant_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RoomHandler) DeactivateRoom(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	id, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_id", "Invalid room id")
	}

	if err := h.roomService.DeactivateRoom(id, userID); err != nil {
		return serviceError(c, err, "deactivate_room_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
