package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPayload is wrapped by every payload parse failure.
var ErrMalformedPayload = errors.New("malformed payload")

// Delimiters of the payload grammars. Field values cannot contain them; there is no escaping.
const (
	fieldSep   = "|"
	valueSep   = ","
	segmentSep = ";"
)

// Role is a lobby role. RoleHost only appears as a connect intent; the host privilege
// is tracked separately from the gameplay role it is paired with.
type Role string

const (
	RolePending Role = "pending"
	RoleHost    Role = "host"
	RoleCat     Role = "cat"
	RoleMouse   Role = "mouse"
)

// ParseRole accepts the four role names.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RolePending, RoleHost, RoleCat, RoleMouse:
		return r, nil
	}
	return "", malformed("role %q", s)
}

// Playing reports whether the role steers an entity.
func (r Role) Playing() bool {
	return r == RoleCat || r == RoleMouse
}

// Intent is what a client asks for when it connects.
type Intent string

const (
	IntentHost    Intent = "host"
	IntentPending Intent = "pending"
)

// ConnectRequest is the CONNECT payload.
type ConnectRequest struct {
	Intent Intent
	Name   string
}

// FormatConnect renders "<intent>|<name>".
func FormatConnect(c ConnectRequest) string {
	return string(c.Intent) + fieldSep + c.Name
}

// ParseConnect parses "<intent>|<name>".
func ParseConnect(payload string) (ConnectRequest, error) {
	parts := strings.Split(payload, fieldSep)
	if len(parts) != 2 {
		return ConnectRequest{}, malformed("connect %q: want 2 fields, got %d", payload, len(parts))
	}
	intent := Intent(parts[0])
	if intent != IntentHost && intent != IntentPending {
		return ConnectRequest{}, malformed("connect intent %q", parts[0])
	}
	if err := ValidateField(parts[1]); err != nil {
		return ConnectRequest{}, err
	}
	return ConnectRequest{Intent: intent, Name: parts[1]}, nil
}

// Velocity is the SET_VELOCITY payload.
type Velocity struct {
	VX, VY int
}

// FormatVelocity renders "<vx>,<vy>".
func FormatVelocity(v Velocity) string {
	return strconv.Itoa(v.VX) + valueSep + strconv.Itoa(v.VY)
}

// ParseVelocity parses "<vx>,<vy>".
func ParseVelocity(payload string) (Velocity, error) {
	vals, err := parseInts(payload, 2)
	if err != nil {
		return Velocity{}, fmt.Errorf("velocity: %w", err)
	}
	return Velocity{VX: vals[0], VY: vals[1]}, nil
}

// RoleAssignment is the client to server ASSIGN_ROLE payload.
type RoleAssignment struct {
	SessionID string
	Role      Role
}

// FormatRoleAssignment renders "<sessionId>,<role>".
func FormatRoleAssignment(a RoleAssignment) string {
	return a.SessionID + valueSep + string(a.Role)
}

// ParseRoleAssignment parses "<sessionId>,<role>".
func ParseRoleAssignment(payload string) (RoleAssignment, error) {
	parts := strings.Split(payload, valueSep)
	if len(parts) != 2 || parts[0] == "" {
		return RoleAssignment{}, malformed("role assignment %q", payload)
	}
	role, err := ParseRole(parts[1])
	if err != nil {
		return RoleAssignment{}, err
	}
	return RoleAssignment{SessionID: parts[0], Role: role}, nil
}

// ParseWinThreshold parses the START_GAME payload; the threshold must be positive.
func ParseWinThreshold(payload string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil || n < 1 {
		return 0, malformed("win threshold %q", payload)
	}
	return n, nil
}

// ParseKick parses the KICK_PLAYER payload.
func ParseKick(payload string) (string, error) {
	id := strings.TrimSpace(payload)
	if id == "" {
		return "", malformed("kick target is empty")
	}
	if err := ValidateField(id); err != nil {
		return "", err
	}
	return id, nil
}

// ValidateField rejects values that are empty or contain a grammar delimiter.
func ValidateField(v string) error {
	if v == "" {
		return malformed("empty field")
	}
	if strings.ContainsAny(v, fieldSep+valueSep+segmentSep) {
		return malformed("field %q contains a delimiter", v)
	}
	return nil
}

func parseInts(s string, want int) ([]int, error) {
	parts := strings.Split(s, valueSep)
	if len(parts) != want {
		return nil, malformed("%q: want %d values, got %d", s, want, len(parts))
	}
	out := make([]int, want)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, malformed("%q is not an integer", p)
		}
		out[i] = n
	}
	return out, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}
