package ws

import (
	"time"

	"github.com/workzen-hq/collab-backend/internal/models"
)

// Outbound event types
const (
	EventMessage      = "message"
	EventTyping       = "typing"
	EventUserJoined   = "user_joined"
	EventUserLeft     = "user_left"
	EventReadReceipt  = "read_receipt"
	EventReaction     = "reaction"
	EventStatusChange = "status_change"
	EventBroadcast    = "broadcast"
	EventError        = "error"
	EventPong         = "pong"
)

type MessageEvent struct {
	Type string                 `json:"type"`
	Data models.MessageResponse `json:"data"`
}

func NewMessageEvent(m models.MessageResponse) MessageEvent {
	return MessageEvent{Type: EventMessage, Data: m}
}

type TypingEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

func NewTypingEvent(userID uint, username string, isTyping bool) TypingEvent {
	return TypingEvent{Type: EventTyping, UserID: userID, Username: username, IsTyping: isTyping}
}

// UserEvent announces a user joining or leaving a group.
type UserEvent struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func NewUserJoinedEvent(userID uint, username string) UserEvent {
	return UserEvent{Type: EventUserJoined, UserID: userID, Username: username, Timestamp: time.Now()}
}

func NewUserLeftEvent(userID uint, username string) UserEvent {
	return UserEvent{Type: EventUserLeft, UserID: userID, Username: username, Timestamp: time.Now()}
}

type ReadReceiptEvent struct {
	Type      string    `json:"type"`
	MessageID uint      `json:"message_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReadReceiptEvent(messageID, userID uint, username string) ReadReceiptEvent {
	return ReadReceiptEvent{
		Type:      EventReadReceipt,
		MessageID: messageID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
	}
}

type ReactionEvent struct {
	Type      string `json:"type"`
	MessageID uint   `json:"message_id"`
	UserID    uint   `json:"user_id"`
	Emoji     string `json:"emoji"`
	Removed   bool   `json:"removed,omitempty"`
}

func NewReactionEvent(messageID, userID uint, emoji string, removed bool) ReactionEvent {
	return ReactionEvent{
		Type:      EventReaction,
		MessageID: messageID,
		UserID:    userID,
		Emoji:     emoji,
		Removed:   removed,
	}
}

type StatusChangeEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	IsOnline bool   `json:"is_online"`
}

func NewStatusChangeEvent(userID uint, isOnline bool) StatusChangeEvent {
	return StatusChangeEvent{Type: EventStatusChange, UserID: userID, IsOnline: isOnline}
}

// BroadcastEvent carries an administrative announcement to a group.
type BroadcastEvent struct {
	Type       string      `json:"type"`
	Data       interface{} `json:"data"`
	SenderID   uint        `json:"sender_id"`
	SenderName string      `json:"sender_name"`
	Timestamp  time.Time   `json:"timestamp"`
}

func NewBroadcastEvent(data interface{}, senderID uint, senderName string) BroadcastEvent {
	return BroadcastEvent{
		Type:       EventBroadcast,
		Data:       data,
		SenderID:   senderID,
		SenderName: senderName,
		Timestamp:  time.Now(),
	}
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type PongEvent struct {
	Type string `json:"type"`
}
