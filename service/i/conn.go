package i

import "github.com/beka-birhanu/cheese-chase-server/protocol"

// Conn is a message oriented client connection.
// ReadMessage is called from a single goroutine; WriteMessage may be called concurrently with it.
type Conn interface {
	// ReadMessage blocks until the next message arrives or the connection fails.
	ReadMessage() (protocol.Message, error)

	// WriteMessage sends one message.
	WriteMessage(protocol.Message) error

	// Close closes the connection, unblocking a pending ReadMessage.
	Close() error

	// RemoteAddr describes the peer for logging.
	RemoteAddr() string
}
