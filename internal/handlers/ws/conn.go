package ws

import "time"

// Conn is the subset of *websocket.Conn the hub writes to. Narrowing the
// dependency keeps the hub testable with an in-memory connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}
