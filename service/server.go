package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/google/uuid"

	"github.com/beka-birhanu/cheese-chase-server/game"
	"github.com/beka-birhanu/cheese-chase-server/protocol"
	"github.com/beka-birhanu/cheese-chase-server/service/i"
	"github.com/beka-birhanu/cheese-chase-server/transport"
)

const (
	defaultTickInterval  = 16 * time.Millisecond
	defaultSendQueueSize = 256
	acceptRetryDelay     = 50 * time.Millisecond
)

var (
	ErrMissingWorld  = errors.New("server needs a world")
	ErrMissingLogger = errors.New("server needs a logger")
	ErrServerStopped = errors.New("server stopped")
)

var (
	_ i.GameServer     = (*Server)(nil)
	_ i.LobbyInspector = (*Lobby)(nil)
)

// Server owns the world, the lobby and the tick loop, and turns accepted connections
// into sessions.
type Server struct {
	world         *game.World
	lobby         *Lobby
	logger        general_i.Logger
	sessionLogger general_i.Logger
	tickInterval  time.Duration
	sendQueueSize int
	writeTimeout  time.Duration

	listeners map[net.Listener]struct{}
	cancel    context.CancelFunc
	stopped   bool
	ticking   sync.WaitGroup
	sessions  sync.WaitGroup
	mu        sync.Mutex
}

// Config configures a Server. World and Logger are required; LobbyLogger and
// SessionLogger fall back to Logger.
type Config struct {
	World         *game.World
	Logger        general_i.Logger
	LobbyLogger   general_i.Logger
	SessionLogger general_i.Logger
	TickInterval  time.Duration // Simulation period, 16ms when zero.
	SendQueueSize int           // Per session outbound queue, 256 when zero.
	WriteTimeout  time.Duration // Per write deadline on TCP clients; zero disables it.
}

// NewServer creates a server in the lobby phase.
func NewServer(c *Config) (*Server, error) {
	if c.World == nil {
		return nil, ErrMissingWorld
	}
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}

	lobbyLogger := c.LobbyLogger
	if lobbyLogger == nil {
		lobbyLogger = c.Logger
	}
	sessionLogger := c.SessionLogger
	if sessionLogger == nil {
		sessionLogger = c.Logger
	}
	tick := c.TickInterval
	if tick <= 0 {
		tick = defaultTickInterval
	}
	queue := c.SendQueueSize
	if queue <= 0 {
		queue = defaultSendQueueSize
	}

	return &Server{
		world:         c.World,
		lobby:         newLobby(c.World, lobbyLogger),
		logger:        c.Logger,
		sessionLogger: sessionLogger,
		tickInterval:  tick,
		sendQueueSize: queue,
		writeTimeout:  c.WriteTimeout,
		listeners:     make(map[net.Listener]struct{}),
	}, nil
}

// Lobby returns the server's session registry.
func (s *Server) Lobby() *Lobby {
	return s.lobby
}

// Start launches the tick loop. It runs until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) {
	s.mu.Lock()
	if s.stopped || s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.ticking.Add(1)
	s.mu.Unlock()

	go s.tickLoop(ctx)
	s.logger.Info(fmt.Sprintf("tick loop started, period %s", s.tickInterval))
}

func (s *Server) tickLoop(ctx context.Context) {
	defer s.ticking.Done()

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances a running match by one step and publishes the result. Game over found
// here is concluded in the background so the loop keeps its cadence.
func (s *Server) tick() {
	if !s.lobby.Started() {
		return
	}

	s.world.Advance()
	snap := s.world.Snapshot()
	s.lobby.Broadcast(protocol.NewMessage(protocol.State, protocol.EncodeState(snap)))

	if snap.GameOver && !s.lobby.Concluding() {
		go s.lobby.ConcludeMatch()
	}
}

// Serve accepts connections on ln until ln is closed or the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrServerStopped
	}
	s.listeners[ln] = struct{}{}
	s.mu.Unlock()

	s.logger.Info(fmt.Sprintf("accepting connections on %s", ln.Addr()))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isStopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error(fmt.Sprintf("accepting connection: %v", err))
			time.Sleep(acceptRetryDelay)
			continue
		}
		go s.Attach(transport.NewTCPConn(conn, s.writeTimeout))
	}
}

// Attach runs a session over conn and returns when the session ends.
func (s *Server) Attach(conn i.Conn) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.sessions.Add(1)
	s.mu.Unlock()
	defer s.sessions.Done()

	sess := newSession(uuid.NewString(), conn, s.lobby, s.sendQueueSize, s.sessionLogger)
	if err := s.lobby.Register(sess); err != nil {
		_ = conn.Close()
		return
	}
	s.logger.Info(fmt.Sprintf("session %s connected from %s", sess.ID(), conn.RemoteAddr()))
	sess.Run()
}

// Stop halts the tick loop, closes the listeners and disconnects every client, then waits
// for the sessions to finish.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	listeners := s.listeners
	s.listeners = make(map[net.Listener]struct{})
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.ticking.Wait()

	for ln := range listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warning(fmt.Sprintf("closing listener %s: %v", ln.Addr(), err))
		}
	}

	s.lobby.Shutdown(shutdownReason)
	s.sessions.Wait()
	s.logger.Info("server stopped")
}

func (s *Server) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
