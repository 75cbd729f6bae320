package game

// Winner names the side that ended the match.
type Winner string

const (
	WinnerNone Winner = "none"
	WinnerCat  Winner = "cat"
	WinnerMice Winner = "mice"
)

// Point is a fixed location on the field.
type Point struct {
	X, Y int
}

// Cat is the single hunter entity. It is not keyed by session, the lobby decides who steers it.
type Cat struct {
	X, Y   int
	VX, VY int
}

// Mouse is the per-session record of a player holding the mouse role.
type Mouse struct {
	ID         string
	X, Y       int
	VX, VY     int
	Alive      bool
	Carrying   bool
	Delivered  int
	FacingLeft bool
}

// Snapshot is a point-in-time copy of the world, safe to read without the world lock.
type Snapshot struct {
	GameOver bool
	Winner   Winner
	Cat      Cat
	Mice     []Mouse // Ordered by ID.
	Cheese   []Point
	Holes    []Point
}

// TotalDelivered sums delivered cheese across every mouse, dead or alive.
func (s Snapshot) TotalDelivered() int {
	total := 0
	for _, m := range s.Mice {
		total += m.Delivered
	}
	return total
}

// Mouse returns the record for id, if present.
func (s Snapshot) Mouse(id string) (Mouse, bool) {
	for _, m := range s.Mice {
		if m.ID == id {
			return m, true
		}
	}
	return Mouse{}, false
}
