package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// ClientConnection wraps one WebSocket connection with its identity and
// group subscriptions. A user may hold several at once (multiple tabs).
type ClientConnection struct {
	ID       uint64
	UserID   uint
	Username string
	Conn     Conn

	// writeMu serializes writes: broadcasts, direct sends and pings all
	// share the underlying socket.
	writeMu sync.Mutex

	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}
	closeOnce  sync.Once

	// groups this connection is subscribed to, guarded by the hub mutex.
	groups map[string]bool
}

func (c *ClientConnection) write(frameType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(frameType, data)
}

// Send marshals and writes a single event to this connection.
func (c *ClientConnection) Send(event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.write(websocket.TextMessage, data)
}

// SendError sends an error frame without closing the connection.
func (c *ClientConnection) SendError(code, message, details string) error {
	return c.Send(ErrorEvent{
		Type:    EventError,
		Code:    code,
		Error:   message,
		Details: details,
	})
}

func (c *ClientConnection) markClosed() {
	c.closeOnce.Do(func() {
		if c.PingTicker != nil {
			c.PingTicker.Stop()
		}
		close(c.CloseChan)
	})
}
