package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/beka-birhanu/cheese-chase-server/protocol"
)

// ErrTextFrame is returned when a WebSocket peer sends a text message; envelopes are binary.
var ErrTextFrame = errors.New("websocket text frames are not supported")

// WSConn carries one envelope per binary WebSocket message.
type WSConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	mu           sync.Mutex
}

// NewWSConn wraps an upgraded WebSocket connection.
func NewWSConn(ws *websocket.Conn, writeTimeout time.Duration) *WSConn {
	ws.SetReadLimit(protocol.MaxFrameSize)
	return &WSConn{ws: ws, writeTimeout: writeTimeout}
}

// ReadMessage reads the next binary message and decodes its envelope.
func (c *WSConn) ReadMessage() (protocol.Message, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		return protocol.Message{}, err
	}
	if kind != websocket.BinaryMessage {
		return protocol.Message{}, ErrTextFrame
	}
	return protocol.Unmarshal(data)
}

// WriteMessage sends m as a single binary message.
func (c *WSConn) WriteMessage(m protocol.Message) error {
	data, err := protocol.Marshal(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

// Close closes the underlying connection without a closing handshake.
func (c *WSConn) Close() error {
	return c.ws.Close()
}

// RemoteAddr returns the peer address.
func (c *WSConn) RemoteAddr() string {
	if addr := c.ws.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
