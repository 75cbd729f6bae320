package game

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
)

// World is the authoritative simulation: the cat, the mice, and the fixed cheese and hole layout.
// Every exported method is safe for concurrent use.
type World struct {
	cfg          Config            // Immutable tuning.
	cat          Cat               // The singleton cat entity.
	mice         map[string]*Mouse // Mouse records indexed by session ID.
	cheese       []Point           // Inexhaustible cheese sources.
	holes        []Point           // Delivery points, also used as mouse spawns.
	gameOver     bool              // Set by a win condition, cleared by Reset.
	winner       Winner            // Side that ended the match.
	winThreshold int               // Delivered cheese needed for the mice to win.
	mu           sync.RWMutex
}

// NewWorld creates a world with the cat centered and the default layout in place.
// Returns an error if the tuning is out of range.
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		cfg:  cfg,
		mice: make(map[string]*Mouse),
	}
	w.resetLocked(cfg.WinThreshold)
	return w, nil
}

// Config returns the tuning the world was created with.
func (w *World) Config() Config {
	return w.cfg
}

// SetCatVelocity stores the cat velocity for the next tick, scaled by the cat speed.
func (w *World) SetCatVelocity(vx, vy int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.cat.VX = vx * w.cfg.CatSpeed
	w.cat.VY = vy * w.cfg.CatSpeed
}

// SetMouseVelocity stores the velocity of mouse id for the next tick, scaled by the mouse speed.
// Unknown ids are ignored.
func (w *World) SetMouseVelocity(id string, vx, vy int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	m, ok := w.mice[id]
	if !ok {
		return
	}
	m.VX = vx * w.cfg.MouseSpeed
	m.VY = vy * w.cfg.MouseSpeed
	switch {
	case vx < 0:
		m.FacingLeft = true
	case vx > 0:
		m.FacingLeft = false
	}
}

// AddMouse inserts a fresh living mouse at (x, y), replacing any record id already had.
func (w *World) AddMouse(id string, x, y int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.addMouseLocked(id, x, y)
}

// SpawnMouse inserts a fresh mouse near a randomly chosen hole and returns where it landed.
func (w *World) SpawnMouse(id string) Point {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.spawnPointLocked()
	w.addMouseLocked(id, p.X, p.Y)
	return p
}

// RemoveMouse erases the record of id. It reports whether a record existed.
func (w *World) RemoveMouse(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.mice[id]
	delete(w.mice, id)
	return ok
}

// HasMouse reports whether id currently has a mouse record.
func (w *World) HasMouse(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	_, ok := w.mice[id]
	return ok
}

// CenterCat moves the cat to the middle of the field and stops it.
func (w *World) CenterCat() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.centerCatLocked()
}

// SetWinThreshold changes the delivered cheese count the mice need.
func (w *World) SetWinThreshold(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.winThreshold = n
}

// WinThreshold returns the delivered cheese count the mice need.
func (w *World) WinThreshold() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.winThreshold
}

// IsGameOver reports whether a win condition has been reached since the last reset.
func (w *World) IsGameOver() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.gameOver
}

// Reset restores the world for a new round: result cleared, cat centered, every mouse record
// dropped and the layout regenerated. Callers re-add the mice that carry over.
func (w *World) Reset(winThreshold int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.resetLocked(winThreshold)
}

// Snapshot returns a copy of the whole world.
func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ids := slices.SortedFunc(maps.Keys(w.mice), strings.Compare)
	mice := make([]Mouse, 0, len(ids))
	for _, id := range ids {
		mice = append(mice, *w.mice[id])
	}

	return Snapshot{
		GameOver: w.gameOver,
		Winner:   w.winner,
		Cat:      w.cat,
		Mice:     mice,
		Cheese:   slices.Clone(w.cheese),
		Holes:    slices.Clone(w.holes),
	}
}

// Advance runs one simulation step. It is a no-op once the match is over.
func (w *World) Advance() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.gameOver {
		return
	}

	w.cat.X, w.cat.Y = w.clamp(w.cat.X+w.cat.VX, w.cat.Y+w.cat.VY)
	for _, m := range w.mice {
		if !m.Alive {
			continue
		}
		m.X, m.Y = w.clamp(m.X+m.VX, m.Y+m.VY)
	}

	for _, m := range w.mice {
		if m.Alive && !m.Carrying && nearAny(m.X, m.Y, w.cheese, w.cfg.PickupRadius) {
			m.Carrying = true
		}
	}

	for _, m := range w.mice {
		if m.Alive && m.Carrying && nearAny(m.X, m.Y, w.holes, w.cfg.HoleRadius) {
			m.Carrying = false
			m.Delivered++
		}
	}

	anyAlive := false
	for _, m := range w.mice {
		if !m.Alive {
			continue
		}
		if distance(w.cat.X, w.cat.Y, m.X, m.Y) <= w.cfg.CatchRadius {
			m.Alive = false
			m.Carrying = false
			continue
		}
		anyAlive = true
	}

	total := 0
	for _, m := range w.mice {
		total += m.Delivered
	}
	if total >= w.winThreshold {
		w.gameOver = true
		w.winner = WinnerMice
		return
	}

	if !anyAlive {
		w.gameOver = true
		w.winner = WinnerCat
	}
}

func (w *World) resetLocked(winThreshold int) {
	w.gameOver = false
	w.winner = WinnerNone
	w.winThreshold = winThreshold
	w.centerCatLocked()
	clear(w.mice)
	w.cheese, w.holes = Layout(w.cfg)
}

func (w *World) centerCatLocked() {
	w.cat = Cat{X: w.cfg.Width / 2, Y: w.cfg.Height / 2}
}

func (w *World) addMouseLocked(id string, x, y int) {
	x, y = w.clamp(x, y)
	w.mice[id] = &Mouse{ID: id, X: x, Y: y, Alive: true}
}

func (w *World) spawnPointLocked() Point {
	hole := w.holes[rand.IntN(len(w.holes))]
	j := w.cfg.SpawnJitter
	x, y := hole.X, hole.Y
	if j > 0 {
		x += rand.IntN(2*j+1) - j
		y += rand.IntN(2*j+1) - j
	}
	x, y = w.clamp(x, y)
	return Point{X: x, Y: y}
}

func (w *World) clamp(x, y int) (int, int) {
	return min(max(x, 0), w.cfg.Width), min(max(y, 0), w.cfg.Height)
}

// nearAny reports whether (x, y) is within radius of any point, checked in list order.
func nearAny(x, y int, points []Point, radius float64) bool {
	for _, p := range points {
		if distance(x, y, p.X, p.Y) <= radius {
			return true
		}
	}
	return false
}

func distance(x1, y1, x2, y2 int) float64 {
	return math.Hypot(float64(x2-x1), float64(y2-y1))
}
