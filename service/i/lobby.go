package i

import "github.com/beka-birhanu/cheese-chase-server/protocol"

// LobbyInspector exposes a read-only view of the lobby to the admin surfaces.
type LobbyInspector interface {
	// Roster returns the current host and players in join order.
	Roster() protocol.Lobby

	// Started reports whether a match is in progress.
	Started() bool

	// WinThreshold returns the delivered cheese count the mice need in the current or next match.
	WinThreshold() int
}
