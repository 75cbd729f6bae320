package service

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"

	"github.com/beka-birhanu/cheese-chase-server/game"
	"github.com/beka-birhanu/cheese-chase-server/protocol"
)

const (
	kickReason     = "You have been kicked from the game."
	shutdownReason = "Server shutting down."
	backToLobby    = "BackToLobby"
	startNotice    = "start"

	defaultResultPause = 2 * time.Second
)

var (
	ErrNotHost           = errors.New("only the host may do this")
	ErrUnknownSession    = errors.New("unknown session")
	ErrNotEnoughRoles    = errors.New("a match needs a cat and at least one mouse")
	ErrAlreadyStarted    = errors.New("match already in progress")
	ErrAlreadyJoined     = errors.New("session already joined")
	ErrSelfKick          = errors.New("host cannot kick itself")
	ErrInvalidRole       = errors.New("role cannot be assigned")
	ErrNotPlaying        = errors.New("session has no playing role")
	ErrUnexpectedMessage = errors.New("message type is not accepted from clients")
	ErrLobbyClosed       = errors.New("lobby closed")
)

type member struct {
	session *Session
	name    string
	role    protocol.Role // Pending or mouse; the cat is tracked by Lobby.catID.
	joined  bool          // Set once the client sent CONNECT.
}

// Lobby is the registry of connected sessions. It tracks names, roles, the host and the
// match lifecycle, and fans messages out to every session.
//
// Lock order is Lobby.mu then the world's lock. Broadcasts only enqueue, so they are
// safe to issue with Lobby.mu held.
type Lobby struct {
	world        *game.World
	logger       general_i.Logger
	members      []*member     // Join order.
	hostID       string        // Empty until a session connects with host intent.
	catID        string        // Holder of the single cat slot.
	started      bool          // True between a start and the following reset.
	closed       bool          // Set by Shutdown; no further registrations.
	winThreshold int           // Threshold of the current or next match.
	resultPause  time.Duration // How long the final state stays up before the lobby reset.
	concluding   atomic.Bool   // Guards the end of match sequence.
	mu           sync.Mutex
}

func newLobby(world *game.World, logger general_i.Logger) *Lobby {
	return &Lobby{
		world:        world,
		logger:       logger,
		winThreshold: world.WinThreshold(),
		resultPause:  defaultResultPause,
	}
}

// Register adds a freshly accepted session. The session is not listed until it connects.
func (l *Lobby) Register(s *Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLobbyClosed
	}
	l.members = append(l.members, &member{session: s, role: protocol.RolePending})
	return nil
}

// Join handles a CONNECT. The first host intent wins the host seat and the cat role;
// everyone else starts as a mouse.
func (l *Lobby) Join(id string, req protocol.ConnectRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := l.findLocked(id)
	if m == nil {
		return ErrUnknownSession
	}
	if m.joined {
		return ErrAlreadyJoined
	}
	m.name = req.Name
	m.joined = true

	role := protocol.RoleMouse
	if req.Intent == protocol.IntentHost && l.hostID == "" {
		l.hostID = id
		role = protocol.RoleCat
		l.logger.Info(fmt.Sprintf("%s (%s) is hosting", req.Name, id))
	}
	l.setRoleLocked(m, role)
	m.session.send(protocol.NewMessage(protocol.AssignRole, string(role)))
	l.logger.Info(fmt.Sprintf("%s (%s) joined as %s", req.Name, id, role))

	l.broadcastListingLocked()
	return nil
}

// Leave removes a session. Outside a match the remaining clients get a fresh listing.
func (l *Lobby) Leave(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := l.findLocked(id)
	if m == nil {
		return
	}
	l.removeLocked(m)
	l.logger.Info(fmt.Sprintf("session %s left", id))
	if !l.started {
		l.broadcastListingLocked()
	}
}

// SetVelocity routes a velocity request to the requester's body in the world.
func (l *Lobby) SetVelocity(id string, v protocol.Velocity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := l.findLocked(id)
	if m == nil {
		return ErrUnknownSession
	}
	switch l.roleLocked(m) {
	case protocol.RoleCat:
		l.world.SetCatVelocity(v.VX, v.VY)
	case protocol.RoleMouse:
		l.world.SetMouseVelocity(id, v.VX, v.VY)
	default:
		return ErrNotPlaying
	}
	return nil
}

// AssignRole lets the host move a joined session to cat, mouse or pending. Assigning the
// cat demotes the previous cat to mouse.
func (l *Lobby) AssignRole(byID, targetID string, role protocol.Role) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if byID != l.hostID {
		return ErrNotHost
	}
	if role == protocol.RoleHost {
		return ErrInvalidRole
	}
	target := l.findLocked(targetID)
	if target == nil || !target.joined {
		return fmt.Errorf("%w: %s", ErrUnknownSession, targetID)
	}
	if l.roleLocked(target) == role {
		return nil
	}

	l.setRoleLocked(target, role)
	target.session.send(protocol.NewMessage(protocol.AssignRole, string(role)))
	l.logger.Info(fmt.Sprintf("%s (%s) is now %s", target.name, targetID, role))

	l.broadcastListingLocked()
	return nil
}

// Start begins a match with the given win threshold.
func (l *Lobby) Start(byID string, winThreshold int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if byID != l.hostID {
		return ErrNotHost
	}
	if l.started {
		return ErrAlreadyStarted
	}
	if l.catID == "" || !l.anyMouseLocked() {
		return ErrNotEnoughRoles
	}

	l.winThreshold = winThreshold
	l.world.Reset(winThreshold)
	for _, m := range l.members {
		if l.roleLocked(m) == protocol.RoleMouse {
			l.world.SpawnMouse(m.session.ID())
		}
	}
	l.started = true
	l.logger.Info(fmt.Sprintf("match started, mice need %d cheese", winThreshold))

	l.broadcastLocked(protocol.NewMessage(protocol.StartGame, startNotice))
	l.broadcastLocked(l.stateMessage())
	return nil
}

// Kick removes targetID on the host's request and tells the target why.
func (l *Lobby) Kick(byID, targetID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if byID != l.hostID {
		return ErrNotHost
	}
	if targetID == byID {
		return ErrSelfKick
	}
	target := l.findLocked(targetID)
	if target == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, targetID)
	}

	l.removeLocked(target)
	target.session.close(kickReason)
	l.logger.Info(fmt.Sprintf("%s (%s) was kicked", target.name, targetID))

	l.broadcastListingLocked()
	return nil
}

// ConcludeMatch runs the end of match sequence once the world reports game over: the
// final state is broadcast, held for the result pause, then everyone returns to the lobby.
// Concurrent callers past the first return immediately.
func (l *Lobby) ConcludeMatch() {
	if !l.Started() || !l.world.IsGameOver() {
		return
	}
	if !l.concluding.CompareAndSwap(false, true) {
		return
	}
	defer l.concluding.Store(false)

	// A reset may have landed between the check and the swap.
	if !l.Started() || !l.world.IsGameOver() {
		return
	}

	snap := l.world.Snapshot()
	l.logger.Info(fmt.Sprintf("match over, winner: %s, cheese delivered: %d", snap.Winner, snap.TotalDelivered()))
	l.Broadcast(protocol.NewMessage(protocol.State, protocol.EncodeState(snap)))

	time.Sleep(l.resultPause)
	l.ResetToLobby()
}

// Concluding reports whether an end of match sequence is running.
func (l *Lobby) Concluding() bool {
	return l.concluding.Load()
}

// ResetToLobby ends the match. Everyone but the host goes back to pending and the host
// keeps its role.
func (l *Lobby) ResetToLobby() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.started = false
	l.world.Reset(l.winThreshold)
	if l.catID != l.hostID {
		l.catID = ""
	}
	for _, m := range l.members {
		id := m.session.ID()
		if id != l.hostID {
			m.role = protocol.RolePending
			continue
		}
		switch l.roleLocked(m) {
		case protocol.RoleCat:
			l.world.CenterCat()
		case protocol.RoleMouse:
			l.world.SpawnMouse(id)
		}
	}
	l.logger.Info("back to lobby")

	l.broadcastLocked(protocol.NewMessage(protocol.ResetLobby, backToLobby))
	l.broadcastListingLocked()
}

// BroadcastState sends the current world snapshot to every session.
func (l *Lobby) BroadcastState() {
	l.Broadcast(l.stateMessage())
}

// Broadcast sends m to every registered session.
func (l *Lobby) Broadcast(m protocol.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.broadcastLocked(m)
}

// Shutdown closes every session with reason and refuses new registrations.
func (l *Lobby) Shutdown(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	for _, m := range l.members {
		m.session.close(reason)
	}
	l.members = nil
	l.hostID = ""
	l.catID = ""
}

// Roster returns the host and the joined players in join order.
func (l *Lobby) Roster() protocol.Lobby {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rosterLocked()
}

// Started reports whether a match is in progress.
func (l *Lobby) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started
}

// WinThreshold returns the threshold of the current or next match.
func (l *Lobby) WinThreshold() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.winThreshold
}

// RoleOf returns the role of a joined session.
func (l *Lobby) RoleOf(id string) (protocol.Role, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := l.findLocked(id)
	if m == nil || !m.joined {
		return "", false
	}
	return l.roleLocked(m), true
}

func (l *Lobby) stateMessage() protocol.Message {
	return protocol.NewMessage(protocol.State, protocol.EncodeState(l.world.Snapshot()))
}

func (l *Lobby) broadcastLocked(m protocol.Message) {
	for _, mem := range l.members {
		mem.session.send(m)
	}
}

func (l *Lobby) broadcastListingLocked() {
	l.broadcastLocked(protocol.NewMessage(protocol.LobbyUpdate, protocol.EncodeLobby(l.rosterLocked())))
}

func (l *Lobby) rosterLocked() protocol.Lobby {
	roster := protocol.Lobby{HostID: l.hostID}
	for _, m := range l.members {
		if !m.joined {
			continue
		}
		roster.Players = append(roster.Players, protocol.Player{
			ID:   m.session.ID(),
			Name: m.name,
			Role: l.roleLocked(m),
		})
	}
	return roster
}

func (l *Lobby) findLocked(id string) *member {
	for _, m := range l.members {
		if m.session.ID() == id {
			return m
		}
	}
	return nil
}

func (l *Lobby) roleLocked(m *member) protocol.Role {
	if l.catID != "" && m.session.ID() == l.catID {
		return protocol.RoleCat
	}
	return m.role
}

func (l *Lobby) anyMouseLocked() bool {
	for _, m := range l.members {
		if m.joined && l.roleLocked(m) == protocol.RoleMouse {
			return true
		}
	}
	return false
}

// setRoleLocked moves m to role and keeps the world's bodies in step with it.
func (l *Lobby) setRoleLocked(m *member, role protocol.Role) {
	id := m.session.ID()
	switch role {
	case protocol.RoleCat:
		if prev := l.findLocked(l.catID); prev != nil && prev != m {
			prev.role = protocol.RoleMouse
			l.world.SpawnMouse(prev.session.ID())
			prev.session.send(protocol.NewMessage(protocol.AssignRole, string(protocol.RoleMouse)))
		}
		l.world.RemoveMouse(id)
		l.catID = id
		l.world.CenterCat()
	case protocol.RoleMouse:
		if l.catID == id {
			l.catID = ""
		}
		m.role = role
		l.world.SpawnMouse(id)
	default:
		if l.catID == id {
			l.catID = ""
		}
		m.role = protocol.RolePending
		l.world.RemoveMouse(id)
	}
}

func (l *Lobby) removeLocked(m *member) {
	id := m.session.ID()
	for idx, mem := range l.members {
		if mem == m {
			l.members = append(l.members[:idx], l.members[idx+1:]...)
			break
		}
	}
	l.world.RemoveMouse(id)
	if l.catID == id {
		l.catID = ""
	}
}
