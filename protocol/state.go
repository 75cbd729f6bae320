package protocol

import (
	"strconv"
	"strings"

	"github.com/beka-birhanu/cheese-chase-server/game"
)

const (
	gameOverTag = "GAMEOVER"
	catTag      = "CAT"
	mouseTag    = "MOUSE"
	cheeseTag   = "CHEESE"
	holesTag    = "HOLES"

	mouseFields = 9
)

// EncodeState renders a snapshot as the STATE payload:
//
//	GAMEOVER|<bool>,<winner>;CAT|x,y,vx,vy;MOUSE|id,x,y,vx,vy,alive,carrying,delivered,facingLeft;...;CHEESE|x,y,...;HOLES|x,y,...
func EncodeState(s game.Snapshot) string {
	var sb strings.Builder

	winner := s.Winner
	if winner == "" {
		winner = game.WinnerNone
	}
	sb.WriteString(gameOverTag + fieldSep + strconv.FormatBool(s.GameOver) + valueSep + string(winner))

	sb.WriteString(segmentSep + catTag + fieldSep)
	writeInts(&sb, s.Cat.X, s.Cat.Y, s.Cat.VX, s.Cat.VY)

	for _, m := range s.Mice {
		sb.WriteString(segmentSep + mouseTag + fieldSep + m.ID + valueSep)
		writeInts(&sb, m.X, m.Y, m.VX, m.VY)
		sb.WriteString(valueSep + strconv.FormatBool(m.Alive))
		sb.WriteString(valueSep + strconv.FormatBool(m.Carrying))
		sb.WriteString(valueSep + strconv.Itoa(m.Delivered))
		sb.WriteString(valueSep + strconv.FormatBool(m.FacingLeft))
	}

	sb.WriteString(segmentSep + cheeseTag + fieldSep)
	writePoints(&sb, s.Cheese)
	sb.WriteString(segmentSep + holesTag + fieldSep)
	writePoints(&sb, s.Holes)

	return sb.String()
}

// DecodeState parses an EncodeState payload.
func DecodeState(payload string) (game.Snapshot, error) {
	s := game.Snapshot{Winner: game.WinnerNone}
	for _, segment := range strings.Split(payload, segmentSep) {
		if segment == "" {
			continue
		}
		tag, body, ok := strings.Cut(segment, fieldSep)
		if !ok {
			return game.Snapshot{}, malformed("state segment %q", segment)
		}

		var err error
		switch tag {
		case gameOverTag:
			err = decodeGameOver(body, &s)
		case catTag:
			err = decodeCat(body, &s)
		case mouseTag:
			var m game.Mouse
			m, err = decodeMouse(body)
			s.Mice = append(s.Mice, m)
		case cheeseTag:
			s.Cheese, err = decodePoints(body)
		case holesTag:
			s.Holes, err = decodePoints(body)
		default:
			err = malformed("state segment tag %q", tag)
		}
		if err != nil {
			return game.Snapshot{}, err
		}
	}
	return s, nil
}

func decodeGameOver(body string, s *game.Snapshot) error {
	over, winner, ok := strings.Cut(body, valueSep)
	if !ok {
		return malformed("game over %q", body)
	}
	b, err := strconv.ParseBool(over)
	if err != nil {
		return malformed("game over flag %q", over)
	}
	switch w := game.Winner(winner); w {
	case game.WinnerNone, game.WinnerCat, game.WinnerMice:
		s.GameOver, s.Winner = b, w
		return nil
	}
	return malformed("winner %q", winner)
}

func decodeCat(body string, s *game.Snapshot) error {
	v, err := parseInts(body, 4)
	if err != nil {
		return err
	}
	s.Cat = game.Cat{X: v[0], Y: v[1], VX: v[2], VY: v[3]}
	return nil
}

func decodeMouse(body string) (game.Mouse, error) {
	f := strings.Split(body, valueSep)
	if len(f) != mouseFields || f[0] == "" {
		return game.Mouse{}, malformed("mouse %q: want %d fields, got %d", body, mouseFields, len(f))
	}
	pos, err := parseInts(strings.Join(f[1:5], valueSep), 4)
	if err != nil {
		return game.Mouse{}, err
	}
	flags := make([]bool, 0, 3)
	for _, raw := range []string{f[5], f[6], f[8]} {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return game.Mouse{}, malformed("mouse flag %q", raw)
		}
		flags = append(flags, b)
	}
	delivered, err := strconv.Atoi(f[7])
	if err != nil {
		return game.Mouse{}, malformed("mouse delivered count %q", f[7])
	}
	return game.Mouse{
		ID:         f[0],
		X:          pos[0],
		Y:          pos[1],
		VX:         pos[2],
		VY:         pos[3],
		Alive:      flags[0],
		Carrying:   flags[1],
		Delivered:  delivered,
		FacingLeft: flags[2],
	}, nil
}

func decodePoints(body string) ([]game.Point, error) {
	if body == "" {
		return nil, nil
	}
	n := strings.Count(body, valueSep) + 1
	if n%2 != 0 {
		return nil, malformed("point list %q has an odd number of coordinates", body)
	}
	v, err := parseInts(body, n)
	if err != nil {
		return nil, err
	}
	points := make([]game.Point, 0, n/2)
	for i := 0; i < n; i += 2 {
		points = append(points, game.Point{X: v[i], Y: v[i+1]})
	}
	return points, nil
}

func writeInts(sb *strings.Builder, vals ...int) {
	for i, v := range vals {
		if i > 0 {
			sb.WriteString(valueSep)
		}
		sb.WriteString(strconv.Itoa(v))
	}
}

func writePoints(sb *strings.Builder, points []game.Point) {
	for i, p := range points {
		if i > 0 {
			sb.WriteString(valueSep)
		}
		writeInts(sb, p.X, p.Y)
	}
}
