package protocol

import "strings"

const (
	hostTag    = "HOST"
	playersTag = "PLAYERS"
	noneValue  = "none"
)

// Player is one roster entry of a lobby listing.
type Player struct {
	ID   string
	Name string
	Role Role
}

// Lobby is the LOBBY_UPDATE payload: the full roster and the host, if any.
type Lobby struct {
	HostID  string // Empty when nobody holds the host privilege.
	Players []Player
}

// EncodeLobby renders "HOST|<id|none>;PLAYERS|<id>|<name>,<role>;...". Every player entry is
// followed by ';', as legacy clients expect.
func EncodeLobby(l Lobby) string {
	var sb strings.Builder
	host := l.HostID
	if host == "" {
		host = noneValue
	}
	sb.WriteString(hostTag + fieldSep + host + segmentSep + playersTag + fieldSep)
	for _, p := range l.Players {
		sb.WriteString(p.ID + fieldSep + p.Name + valueSep + string(p.Role) + segmentSep)
	}
	return sb.String()
}

// DecodeLobby parses an EncodeLobby payload, tolerating a missing trailing ';'.
func DecodeLobby(payload string) (Lobby, error) {
	segments := strings.Split(payload, segmentSep)
	if len(segments) < 2 {
		return Lobby{}, malformed("lobby %q: missing sections", payload)
	}

	host, ok := strings.CutPrefix(segments[0], hostTag+fieldSep)
	if !ok || host == "" {
		return Lobby{}, malformed("lobby host section %q", segments[0])
	}
	var l Lobby
	if host != noneValue {
		l.HostID = host
	}

	first, ok := strings.CutPrefix(segments[1], playersTag+fieldSep)
	if !ok {
		return Lobby{}, malformed("lobby players section %q", segments[1])
	}
	entries := append([]string{first}, segments[2:]...)
	for _, e := range entries {
		if e == "" {
			continue
		}
		p, err := decodePlayer(e)
		if err != nil {
			return Lobby{}, err
		}
		l.Players = append(l.Players, p)
	}
	return l, nil
}

func decodePlayer(entry string) (Player, error) {
	id, rest, ok := strings.Cut(entry, fieldSep)
	if !ok || id == "" {
		return Player{}, malformed("lobby entry %q", entry)
	}
	name, roleName, ok := strings.Cut(rest, valueSep)
	if !ok || strings.Contains(roleName, valueSep) {
		return Player{}, malformed("lobby entry %q", entry)
	}
	role, err := ParseRole(roleName)
	if err != nil {
		return Player{}, err
	}
	return Player{ID: id, Name: name, Role: role}, nil
}
