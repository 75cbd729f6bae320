package game

import (
	"testing"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(DefaultConfig())
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestNewWorldRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	if _, err := NewWorld(cfg); err == nil {
		t.Fatalf("expected error for zero width")
	}

	cfg = DefaultConfig()
	cfg.HoleMargin = 400
	if _, err := NewWorld(cfg); err == nil {
		t.Fatalf("expected error for hole margin larger than the field")
	}
}

func TestNewWorldCentersCat(t *testing.T) {
	w := newTestWorld(t)
	s := w.Snapshot()
	if s.Cat.X != 400 || s.Cat.Y != 300 {
		t.Fatalf("cat at (%d,%d), want (400,300)", s.Cat.X, s.Cat.Y)
	}
	if s.GameOver || s.Winner != WinnerNone {
		t.Fatalf("fresh world reports game over=%v winner=%q", s.GameOver, s.Winner)
	}
	if len(s.Cheese) != 2 || len(s.Holes) != 4 {
		t.Fatalf("layout has %d cheese and %d holes, want 2 and 4", len(s.Cheese), len(s.Holes))
	}
}

func TestVelocityIsScaledOnWrite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CatSpeed = 3
	cfg.MouseSpeed = 2
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	w.AddMouse("m1", 100, 100)

	w.SetCatVelocity(1, -2)
	w.SetMouseVelocity("m1", -2, 1)

	s := w.Snapshot()
	if s.Cat.VX != 3 || s.Cat.VY != -6 {
		t.Fatalf("cat velocity (%d,%d), want (3,-6)", s.Cat.VX, s.Cat.VY)
	}
	m, _ := s.Mouse("m1")
	if m.VX != -4 || m.VY != 2 {
		t.Fatalf("mouse velocity (%d,%d), want (-4,2)", m.VX, m.VY)
	}
	if !m.FacingLeft {
		t.Fatalf("expected mouse moving left to face left")
	}

	w.SetMouseVelocity("m1", 0, 1)
	m, _ = w.Snapshot().Mouse("m1")
	if !m.FacingLeft {
		t.Fatalf("expected facing to persist when vx is zero")
	}

	w.SetMouseVelocity("m1", 1, 0)
	m, _ = w.Snapshot().Mouse("m1")
	if m.FacingLeft {
		t.Fatalf("expected mouse moving right to face right")
	}

	// Unknown mouse is ignored.
	w.SetMouseVelocity("ghost", 1, 1)
	if w.HasMouse("ghost") {
		t.Fatalf("velocity write created a mouse record")
	}
}

func TestAdvanceClampsToField(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 700, 50)
	w.AddMouse("m2", 50, 550)

	w.SetCatVelocity(50, 50)
	w.SetMouseVelocity("m1", 40, -40)
	w.SetMouseVelocity("m2", -40, 40)

	for i := 0; i < 100; i++ {
		w.Advance()
		s := w.Snapshot()
		if s.Cat.X < 0 || s.Cat.X > 800 || s.Cat.Y < 0 || s.Cat.Y > 600 {
			t.Fatalf("tick %d: cat escaped to (%d,%d)", i, s.Cat.X, s.Cat.Y)
		}
		for _, m := range s.Mice {
			if m.X < 0 || m.X > 800 || m.Y < 0 || m.Y > 600 {
				t.Fatalf("tick %d: mouse %s escaped to (%d,%d)", i, m.ID, m.X, m.Y)
			}
		}
	}

	s := w.Snapshot()
	if s.Cat.X != 800 || s.Cat.Y != 600 {
		t.Fatalf("cat at (%d,%d), want pinned to (800,600)", s.Cat.X, s.Cat.Y)
	}
}

func TestAddMouseClampsSpawn(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", -30, 900)
	m, _ := w.Snapshot().Mouse("m1")
	if m.X != 0 || m.Y != 600 {
		t.Fatalf("mouse at (%d,%d), want (0,600)", m.X, m.Y)
	}
}

func TestMousePicksUpCheese(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 345, 300)

	w.Advance()

	m, _ := w.Snapshot().Mouse("m1")
	if !m.Carrying {
		t.Fatalf("expected mouse 5 units from cheese to pick it up")
	}
	if s := w.Snapshot(); len(s.Cheese) != 2 {
		t.Fatalf("cheese point consumed, have %d points", len(s.Cheese))
	}
}

func TestMouseOutOfRangeDoesNotPickUp(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 340, 250)

	w.Advance()

	m, _ := w.Snapshot().Mouse("m1")
	if m.Carrying {
		t.Fatalf("mouse 50 units from cheese picked it up")
	}
}

func TestMouseDeliversCheese(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 29, 300)
	w.mice["m1"].Carrying = true

	w.Advance()

	s := w.Snapshot()
	m, _ := s.Mouse("m1")
	if m.Carrying || m.Delivered != 1 {
		t.Fatalf("carrying=%v delivered=%d, want false and 1", m.Carrying, m.Delivered)
	}
	if s.GameOver {
		t.Fatalf("one delivery ended the match with threshold %d", w.WinThreshold())
	}
}

func TestCatCatchesMouseAndDropsCheese(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 410, 300)
	w.AddMouse("m2", 100, 100)
	w.mice["m1"].Carrying = true

	w.Advance()

	s := w.Snapshot()
	m, _ := s.Mouse("m1")
	if m.Alive || m.Carrying {
		t.Fatalf("alive=%v carrying=%v, want both false", m.Alive, m.Carrying)
	}
	if s.GameOver {
		t.Fatalf("match ended while a mouse is still alive")
	}
}

func TestDeadMouseDoesNotMove(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)
	w.AddMouse("m2", 200, 200)
	w.mice["m1"].Alive = false
	w.SetMouseVelocity("m1", 5, 5)

	w.Advance()

	m, _ := w.Snapshot().Mouse("m1")
	if m.X != 100 || m.Y != 100 {
		t.Fatalf("dead mouse moved to (%d,%d)", m.X, m.Y)
	}
}

func TestCatWinsWhenNoMouseAlive(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)
	w.AddMouse("m2", 700, 500)
	w.mice["m1"].Alive = false
	w.mice["m2"].Alive = false

	w.Advance()

	s := w.Snapshot()
	if !s.GameOver || s.Winner != WinnerCat {
		t.Fatalf("game over=%v winner=%q, want true and cat", s.GameOver, s.Winner)
	}
}

func TestMiceWinAtThreshold(t *testing.T) {
	w := newTestWorld(t)
	w.SetWinThreshold(2)
	w.AddMouse("m1", 29, 300)
	w.AddMouse("m2", 771, 300)
	w.mice["m1"].Delivered = 1
	w.mice["m2"].Carrying = true

	w.Advance()

	s := w.Snapshot()
	if s.TotalDelivered() != 2 {
		t.Fatalf("total delivered %d, want 2", s.TotalDelivered())
	}
	if !s.GameOver || s.Winner != WinnerMice {
		t.Fatalf("game over=%v winner=%q, want true and mice", s.GameOver, s.Winner)
	}
}

func TestDeliveredCheeseOfDeadMiceCounts(t *testing.T) {
	w := newTestWorld(t)
	w.SetWinThreshold(3)
	w.AddMouse("m1", 100, 100)
	w.AddMouse("m2", 29, 300)
	w.mice["m1"].Alive = false
	w.mice["m1"].Delivered = 2
	w.mice["m2"].Carrying = true

	w.Advance()

	if s := w.Snapshot(); s.Winner != WinnerMice {
		t.Fatalf("winner %q, want mice", s.Winner)
	}
}

func TestMiceWinBeatsSimultaneousCatch(t *testing.T) {
	w := newTestWorld(t)
	w.SetWinThreshold(1)
	w.AddMouse("m1", 29, 300)
	w.mice["m1"].Carrying = true
	w.cat.X, w.cat.Y = 35, 300

	w.Advance()

	s := w.Snapshot()
	m, _ := s.Mouse("m1")
	if m.Alive {
		t.Fatalf("expected the mouse to be caught in the same tick")
	}
	if s.Winner != WinnerMice {
		t.Fatalf("winner %q, want mice", s.Winner)
	}
}

func TestAdvanceFreezesAfterGameOver(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)
	w.mice["m1"].Alive = false
	w.Advance()

	w.SetCatVelocity(5, 0)
	before := w.Snapshot()
	w.Advance()
	after := w.Snapshot()
	if after.Cat.X != before.Cat.X {
		t.Fatalf("cat moved after game over: %d -> %d", before.Cat.X, after.Cat.X)
	}
	if after.Winner != WinnerCat {
		t.Fatalf("winner changed to %q", after.Winner)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)
	w.SetCatVelocity(4, 4)
	for i := 0; i < 10; i++ {
		w.Advance()
	}

	w.Reset(5)
	first := w.Snapshot()
	w.Reset(5)
	second := w.Snapshot()

	if first.Cat != (Cat{X: 400, Y: 300}) || second.Cat != first.Cat {
		t.Fatalf("cat after resets: %+v then %+v", first.Cat, second.Cat)
	}
	if len(first.Mice) != 0 || len(second.Mice) != 0 {
		t.Fatalf("mice survived reset")
	}
	if len(first.Cheese) != len(second.Cheese) || len(first.Holes) != len(second.Holes) {
		t.Fatalf("layout size changed between resets")
	}
	for i := range first.Cheese {
		if first.Cheese[i] != second.Cheese[i] {
			t.Fatalf("cheese %d differs: %+v vs %+v", i, first.Cheese[i], second.Cheese[i])
		}
	}
	for i := range first.Holes {
		if first.Holes[i] != second.Holes[i] {
			t.Fatalf("hole %d differs: %+v vs %+v", i, first.Holes[i], second.Holes[i])
		}
	}
	if first.GameOver || first.Winner != WinnerNone {
		t.Fatalf("reset left game over=%v winner=%q", first.GameOver, first.Winner)
	}
	if w.WinThreshold() != 5 {
		t.Fatalf("win threshold %d, want 5", w.WinThreshold())
	}
}

func TestSpawnMouseLandsNearAHole(t *testing.T) {
	w := newTestWorld(t)
	holes := w.Snapshot().Holes
	jitter := w.Config().SpawnJitter

	for i := 0; i < 50; i++ {
		p := w.SpawnMouse("m1")
		near := false
		for _, h := range holes {
			if abs(p.X-h.X) <= jitter && abs(p.Y-h.Y) <= jitter {
				near = true
				break
			}
		}
		if !near {
			t.Fatalf("spawn (%d,%d) is not within %d of any hole", p.X, p.Y, jitter)
		}
		m, ok := w.Snapshot().Mouse("m1")
		if !ok || !m.Alive || m.X != p.X || m.Y != p.Y {
			t.Fatalf("spawned record %+v does not match spawn point %+v", m, p)
		}
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)

	s := w.Snapshot()
	s.Mice[0].X = 999
	s.Cheese[0].X = 999

	again := w.Snapshot()
	if again.Mice[0].X != 100 || again.Cheese[0].X == 999 {
		t.Fatalf("snapshot shares memory with the world")
	}
}

func TestRemoveMouse(t *testing.T) {
	w := newTestWorld(t)
	w.AddMouse("m1", 100, 100)
	if !w.RemoveMouse("m1") {
		t.Fatalf("expected existing record to be removed")
	}
	if w.RemoveMouse("m1") {
		t.Fatalf("second removal reported a record")
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
