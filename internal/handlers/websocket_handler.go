package handlers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/workzen-hq/collab-backend/internal/handlers/ws"
	"github.com/workzen-hq/collab-backend/internal/models"
	"github.com/workzen-hq/collab-backend/internal/service"
)

type WebSocketHandler struct {
	hub             *ws.Hub
	accessService   *service.AccessService
	messageService  *service.MessageService
	presenceService *service.PresenceService
}

func NewWebSocketHandler(
	hub *ws.Hub,
	accessService *service.AccessService,
	messageService *service.MessageService,
	presenceService *service.PresenceService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		accessService:   accessService,
		messageService:  messageService,
		presenceService: presenceService,
	}
}

// GetHub returns the hub instance (useful for broadcasting from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// parseTarget extracts the room/channel the connection wants to subscribe
// to. Neither set means global presence only.
func parseTarget(c *websocket.Conn) (models.GroupRef, error) {
	if roomStr := c.Query("room"); roomStr != "" {
		id, err := strconv.ParseUint(roomStr, 10, 32)
		if err != nil || id == 0 {
			return models.GroupRef{}, errors.New("invalid room id")
		}
		return models.RoomRef(uint(id)), nil
	}
	if channelStr := c.Query("channel"); channelStr != "" {
		id, err := strconv.ParseUint(channelStr, 10, 32)
		if err != nil || id == 0 {
			return models.GroupRef{}, errors.New("invalid channel id")
		}
		return models.ChannelRef(uint(id)), nil
	}
	return models.GroupRef{}, nil
}

// HandleWebSocket owns one connection's lifetime: authenticate (done by
// middleware before the upgrade), authorize the target group, join,
// process frames, and guarantee cleanup on any exit path.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	username, _ := c.Locals("username").(string)

	target, err := parseTarget(c)
	if err != nil {
		c.WriteJSON(ws.ErrorEvent{Type: ws.EventError, Code: "invalid_target", Error: err.Error()})
		return
	}

	if !target.IsZero() {
		allowed, err := h.accessService.CanJoin(userID, target)
		if err != nil || !allowed {
			c.WriteJSON(ws.ErrorEvent{Type: ws.EventError, Code: "forbidden", Error: "Not authorized for this group"})
			return
		}
	}

	client, first := h.hub.Register(userID, username, c)

	c.SetPongHandler(func(string) error {
		h.hub.Touch(client)
		c.SetReadDeadline(time.Now().Add(h.hub.PongTimeout()))
		return nil
	})
	c.SetReadDeadline(time.Now().Add(h.hub.PongTimeout()))

	h.hub.Join(models.GlobalRef().Key(), client)
	if !target.IsZero() {
		h.hub.Join(target.Key(), client)
	}

	// Cleanup must run on abnormal termination too. Presence goes offline
	// only when the user's last connection closes, so a second tab never
	// flaps them offline.
	defer func() {
		last := h.hub.Unregister(client)
		if !target.IsZero() {
			h.hub.Broadcast(target.Key(), ws.NewUserLeftEvent(userID, username), client)
		}
		if last {
			if err := h.presenceService.SetOffline(userID); err != nil {
				log.Printf("ws: set offline user=%d: %v", userID, err)
			}
			h.hub.Broadcast(models.GlobalRef().Key(), ws.NewStatusChangeEvent(userID, false), client)
		}
	}()

	if first {
		if err := h.presenceService.SetOnline(userID); err != nil {
			log.Printf("ws: set online user=%d: %v", userID, err)
		}
		h.hub.Broadcast(models.GlobalRef().Key(), ws.NewStatusChangeEvent(userID, true), client)
	}
	if !target.IsZero() {
		h.hub.Broadcast(target.Key(), ws.NewUserJoinedEvent(userID, username), client)
	}

	for {
		_, payload, err := c.ReadMessage()
		if err != nil {
			break
		}

		frame, err := ws.DecodeFrame(payload)
		if err != nil {
			client.SendError("invalid_frame", "Invalid frame", err.Error())
			continue
		}

		h.handleFrame(client, target, frame)
	}
}

func (h *WebSocketHandler) handleFrame(client *ws.ClientConnection, target models.GroupRef, frame ws.Frame) {
	switch f := frame.(type) {
	case ws.PostMessageFrame:
		h.handlePost(client, target, f)
	case ws.TypingFrame:
		if target.IsZero() {
			return
		}
		h.hub.Broadcast(target.Key(), ws.NewTypingEvent(client.UserID, client.Username, f.Start), client)
	case ws.ReadReceiptFrame:
		h.handleReadReceipt(client, f)
	case ws.ReactionFrame:
		h.handleReaction(client, f)
	case ws.PingFrame:
		client.Send(ws.PongEvent{Type: ws.EventPong})
	}
}

func (h *WebSocketHandler) handlePost(client *ws.ClientConnection, target models.GroupRef, f ws.PostMessageFrame) {
	input := service.PostMessageInput{
		Content:  f.Content,
		Kind:     f.Kind,
		ClientID: f.ClientID,
		ParentID: f.ParentID,
		File:     f.File,
	}
	switch target.Scope {
	case models.ScopeRoom:
		id := target.ID
		input.RoomID = &id
	case models.ScopeChannel:
		id := target.ID
		input.ChannelID = &id
	default:
		client.SendError("invalid_target", "Connection is not joined to a room or channel", "")
		return
	}

	message, err := h.messageService.PostMessage(client.UserID, input)
	if err != nil {
		h.sendServiceError(client, err)
		return
	}

	// The sender receives the stored message too, as delivery confirmation.
	h.hub.Broadcast(target.Key(), ws.NewMessageEvent(message.ToResponse()), nil)
}

func (h *WebSocketHandler) handleReadReceipt(client *ws.ClientConnection, f ws.ReadReceiptFrame) {
	if err := h.messageService.MarkRead(f.MessageID, client.UserID); err != nil {
		h.sendServiceError(client, err)
		return
	}

	message, err := h.messageService.GetMessage(f.MessageID)
	if err != nil {
		return
	}
	h.hub.Broadcast(message.GroupRef().Key(), ws.NewReadReceiptEvent(f.MessageID, client.UserID, client.Username), client)
}

func (h *WebSocketHandler) handleReaction(client *ws.ClientConnection, f ws.ReactionFrame) {
	var err error
	if f.Remove {
		err = h.messageService.RemoveReaction(f.MessageID, client.UserID, f.Emoji)
	} else {
		err = h.messageService.AddReaction(f.MessageID, client.UserID, f.Emoji)
	}
	if err != nil {
		h.sendServiceError(client, err)
		return
	}

	message, err := h.messageService.GetMessage(f.MessageID)
	if err != nil {
		return
	}
	h.hub.Broadcast(message.GroupRef().Key(), ws.NewReactionEvent(f.MessageID, client.UserID, f.Emoji, f.Remove), nil)
}

// sendServiceError maps the service error taxonomy onto error frames. None
// of these close the connection.
func (h *WebSocketHandler) sendServiceError(client *ws.ClientConnection, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		client.SendError("forbidden", "Not authorized for this action", "")
	case errors.Is(err, service.ErrNotFound):
		client.SendError("not_found", "Target not found", "")
	case errors.Is(err, service.ErrInvalidInput):
		client.SendError("invalid_message", "Invalid message", "")
	default:
		log.Printf("ws: frame from user %d failed: %v", client.UserID, err)
		client.SendError("internal", "Failed to process frame", "")
	}
}
