// Package transport adapts stream and WebSocket connections to the message oriented
// connection the game sessions consume.
package transport

import (
	"bufio"
	"net"
	"sync"
	"time"

	"github.com/beka-birhanu/cheese-chase-server/protocol"
)

// TCPConn carries length-prefixed frames over a stream connection.
type TCPConn struct {
	conn         net.Conn      // Underlying stream.
	reader       *bufio.Reader // Buffered reads of frame headers and bodies.
	writeTimeout time.Duration // Deadline applied to every write; zero disables it.
	mu           sync.Mutex    // Serializes writers.
}

// NewTCPConn wraps c. A positive writeTimeout bounds each write.
func NewTCPConn(c net.Conn, writeTimeout time.Duration) *TCPConn {
	return &TCPConn{
		conn:         c,
		reader:       bufio.NewReader(c),
		writeTimeout: writeTimeout,
	}
}

// ReadMessage reads the next frame.
func (t *TCPConn) ReadMessage() (protocol.Message, error) {
	return protocol.ReadFrame(t.reader)
}

// WriteMessage writes one frame.
func (t *TCPConn) WriteMessage(m protocol.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}
	return protocol.WriteFrame(t.conn, m)
}

// Close closes the stream.
func (t *TCPConn) Close() error {
	return t.conn.Close()
}

// RemoteAddr returns the peer address.
func (t *TCPConn) RemoteAddr() string {
	if addr := t.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return "unknown"
}
