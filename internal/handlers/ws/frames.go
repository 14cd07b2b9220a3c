package ws

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/workzen-hq/collab-backend/internal/models"
)

// Inbound frame types
const (
	FrameMessage     = "message"
	FrameTypingStart = "typing_start"
	FrameTypingStop  = "typing_stop"
	FrameReadReceipt = "read_receipt"
	FrameReaction    = "reaction"
	FramePing        = "ping"
)

var ErrMalformedFrame = errors.New("malformed frame")

// Frame is the decoded form of one inbound wire frame. The variant set is
// closed: decoding happens exactly once at the connection boundary and
// everything downstream works with typed frames.
type Frame interface {
	frameType() string
}

type PostMessageFrame struct {
	Content  string
	Kind     models.MessageKind
	ClientID string
	ParentID *uint
	File     *models.FileMetadata
}

type TypingFrame struct {
	Start bool
}

type ReadReceiptFrame struct {
	MessageID uint
}

type ReactionFrame struct {
	MessageID uint
	Emoji     string
	Remove    bool
}

type PingFrame struct{}

func (PostMessageFrame) frameType() string { return FrameMessage }
func (TypingFrame) frameType() string      { return "typing" }
func (ReadReceiptFrame) frameType() string { return FrameReadReceipt }
func (ReactionFrame) frameType() string    { return FrameReaction }
func (PingFrame) frameType() string        { return FramePing }

// wireFrame is the raw JSON shape shared by all inbound frames.
type wireFrame struct {
	Type        string               `json:"type"`
	Content     string               `json:"content"`
	MessageType models.MessageKind   `json:"message_type"`
	ClientID    string               `json:"client_id"`
	ParentID    *uint                `json:"parent_id"`
	File        *models.FileMetadata `json:"file_metadata"`
	MessageID   uint                 `json:"message_id"`
	Emoji       string               `json:"emoji"`
	Remove      bool                 `json:"remove"`
}

// DecodeFrame parses one inbound payload into its frame variant. Any
// malformed payload yields ErrMalformedFrame; callers answer with an error
// frame and keep the connection open.
func DecodeFrame(data []byte) (Frame, error) {
	var wire wireFrame
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch wire.Type {
	case FrameMessage:
		if wire.Content == "" && wire.File == nil {
			return nil, fmt.Errorf("%w: message frame without content", ErrMalformedFrame)
		}
		return PostMessageFrame{
			Content:  wire.Content,
			Kind:     wire.MessageType,
			ClientID: wire.ClientID,
			ParentID: wire.ParentID,
			File:     wire.File,
		}, nil
	case FrameTypingStart:
		return TypingFrame{Start: true}, nil
	case FrameTypingStop:
		return TypingFrame{Start: false}, nil
	case FrameReadReceipt:
		if wire.MessageID == 0 {
			return nil, fmt.Errorf("%w: read_receipt without message_id", ErrMalformedFrame)
		}
		return ReadReceiptFrame{MessageID: wire.MessageID}, nil
	case FrameReaction:
		if wire.MessageID == 0 || wire.Emoji == "" {
			return nil, fmt.Errorf("%w: reaction without message_id or emoji", ErrMalformedFrame)
		}
		return ReactionFrame{MessageID: wire.MessageID, Emoji: wire.Emoji, Remove: wire.Remove}, nil
	case FramePing:
		return PingFrame{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, wire.Type)
	}
}
