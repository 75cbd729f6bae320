// Package protocol implements the wire format shared by the game server and its clients:
// a versioned (type, payload) envelope and the delimiter based payload grammars carried in it.
package protocol

import "fmt"

// Version is the envelope version written by this package and the only one it accepts.
const Version uint8 = 1

// MessageType identifies the meaning of an envelope's payload.
type MessageType uint8

const (
	Connect     MessageType = iota + 1 // Client join request: "<intent>|<name>".
	Disconnect                         // Close notice, free-text reason.
	State                              // World snapshot.
	SetVelocity                        // Client input: "<vx>,<vy>".
	LobbyUpdate                        // Roster listing.
	AssignRole                         // Host request "<id>,<role>" or server notice "<role>".
	StartGame                          // Host request "<threshold>" or server notice "start".
	ResetLobby                         // Back-to-lobby notice.
	KickPlayer                         // Host request "<id>".
)

var messageTypeNames = map[MessageType]string{
	Connect:     "CONNECT",
	Disconnect:  "DISCONNECT",
	State:       "STATE",
	SetVelocity: "SET_VELOCITY",
	LobbyUpdate: "LOBBY_UPDATE",
	AssignRole:  "ASSIGN_ROLE",
	StartGame:   "START_GAME",
	ResetLobby:  "RESET_LOBBY",
	KickPlayer:  "KICK_PLAYER",
}

func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", uint8(t))
}

// Valid reports whether t belongs to the closed set of message types.
func (t MessageType) Valid() bool {
	_, ok := messageTypeNames[t]
	return ok
}

// Message is the decoded (type, payload) pair.
type Message struct {
	Type    MessageType
	Payload string
}

// NewMessage is shorthand for building a Message.
func NewMessage(t MessageType, payload string) Message {
	return Message{Type: t, Payload: payload}
}
