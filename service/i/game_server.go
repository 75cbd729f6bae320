package i

import (
	"context"
	"net"
)

// GameServer defines the interface for the cat and mouse game server.
type GameServer interface {
	// Start launches the fixed-rate tick loop; it runs until ctx is done or Stop is called.
	Start(ctx context.Context)

	// Serve accepts connections on ln until it is closed, one session per connection.
	Serve(ln net.Listener) error

	// Attach runs a session over an already established connection and returns when it ends.
	Attach(conn Conn)

	// Stop cancels the tick loop, stops accepting and closes every session.
	Stop()
}
