package service

import (
	"errors"
	"fmt"
	"sync"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"

	"github.com/beka-birhanu/cheese-chase-server/protocol"
	"github.com/beka-birhanu/cheese-chase-server/service/i"
)

// Session is the server side of one client connection. It reads and applies the client's
// messages in arrival order and owns the connection's outbound queue.
type Session struct {
	id     string                // Opaque ID minted at accept time.
	conn   i.Conn                // Client connection, written only by writePump.
	lobby  *Lobby                // Registry the session belongs to.
	logger general_i.Logger      // Logger for connection level events.
	out    chan protocol.Message // Outbound queue drained by writePump.
	closed bool                  // Set once out is closed.
	done   chan struct{}         // Closed when writePump returns.
	mu     sync.Mutex            // Guards out and closed.
}

func newSession(id string, conn i.Conn, lobby *Lobby, queueSize int, logger general_i.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		lobby:  lobby,
		logger: logger,
		out:    make(chan protocol.Message, queueSize),
		done:   make(chan struct{}),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Run serves the connection until the client leaves or the connection fails, then
// removes the session from the lobby.
func (s *Session) Run() {
	go s.writePump()
	defer func() {
		s.close("")
		<-s.done
		s.lobby.Leave(s.id)
	}()

	for {
		msg, err := s.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownMessageType) {
				s.logger.Warning(fmt.Sprintf("session %s: dropped message: %v", s.id, err))
				continue
			}
			if s.isClosed() {
				s.logger.Info(fmt.Sprintf("session %s: connection closed", s.id))
			} else {
				s.logger.Info(fmt.Sprintf("session %s: read failed: %v", s.id, err))
			}
			return
		}

		if !s.handle(msg) {
			return
		}
		s.lobby.ConcludeMatch()
	}
}

// handle applies one client message. It returns false when the client asked to disconnect.
func (s *Session) handle(msg protocol.Message) bool {
	var err error
	switch msg.Type {
	case protocol.Connect:
		var req protocol.ConnectRequest
		if req, err = protocol.ParseConnect(msg.Payload); err == nil {
			err = s.lobby.Join(s.id, req)
		}
	case protocol.Disconnect:
		s.logger.Info(fmt.Sprintf("session %s: client disconnected", s.id))
		return false
	case protocol.SetVelocity:
		var v protocol.Velocity
		if v, err = protocol.ParseVelocity(msg.Payload); err == nil {
			err = s.lobby.SetVelocity(s.id, v)
		}
	case protocol.AssignRole:
		var a protocol.RoleAssignment
		if a, err = protocol.ParseRoleAssignment(msg.Payload); err == nil {
			err = s.lobby.AssignRole(s.id, a.SessionID, a.Role)
		}
	case protocol.StartGame:
		var threshold int
		if threshold, err = protocol.ParseWinThreshold(msg.Payload); err == nil {
			err = s.lobby.Start(s.id, threshold)
		}
	case protocol.KickPlayer:
		var target string
		if target, err = protocol.ParseKick(msg.Payload); err == nil {
			err = s.lobby.Kick(s.id, target)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Type)
	}

	if err != nil {
		s.reject(msg, err)
	}
	return true
}

func (s *Session) reject(msg protocol.Message, err error) {
	switch {
	case errors.Is(err, ErrNotHost):
		s.logger.Warning(fmt.Sprintf("session %s: ignored %s: %v", s.id, msg.Type, err))
	case errors.Is(err, protocol.ErrMalformedPayload), errors.Is(err, ErrUnexpectedMessage):
		s.logger.Warning(fmt.Sprintf("session %s: dropped %s: %v", s.id, msg.Type, err))
	default:
		s.logger.Info(fmt.Sprintf("session %s: %s not applied: %v", s.id, msg.Type, err))
	}
}

// send queues m for delivery. A full queue means the client stopped reading; the session
// is closed rather than letting it hold up the broadcaster.
func (s *Session) send(m protocol.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.out <- m:
		s.mu.Unlock()
		return
	default:
	}
	s.closed = true
	close(s.out)
	s.mu.Unlock()

	s.logger.Warning(fmt.Sprintf("session %s: outbound queue full, dropping slow client", s.id))
}

// close stops the outbound queue, optionally after a DISCONNECT notice carrying reason.
// The writer closes the connection once the queue is drained.
func (s *Session) close(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if reason != "" {
		select {
		case s.out <- protocol.NewMessage(protocol.Disconnect, reason):
		default:
		}
	}
	s.closed = true
	close(s.out)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) writePump() {
	defer close(s.done)
	defer func() {
		_ = s.conn.Close()
	}()

	for m := range s.out {
		if err := s.conn.WriteMessage(m); err != nil {
			s.logger.Info(fmt.Sprintf("session %s: write failed: %v", s.id, err))
			s.close("")
			return
		}
	}
}
