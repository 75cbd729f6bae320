package game

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config holds the immutable tuning values of a world. Client and server must agree on
// the field size for rendering to line up; the rest only matter to the simulation.
type Config struct {
	Width  int `validate:"gt=0"` // Field width.
	Height int `validate:"gt=0"` // Field height.

	CatchRadius  float64 `validate:"gt=0"` // Cat to mouse distance that catches the mouse.
	PickupRadius float64 `validate:"gt=0"` // Mouse to cheese distance that picks cheese up.
	HoleRadius   float64 `validate:"gt=0"` // Mouse to hole distance that delivers cheese.

	CatSpeed   int `validate:"gte=1"` // Multiplier applied to cat velocity on write.
	MouseSpeed int `validate:"gte=1"` // Multiplier applied to mouse velocity on write.

	HoleMargin   int `validate:"gte=0"` // Inset of the holes from the field edges.
	SpawnJitter  int `validate:"gte=0"` // Max offset of a spawned mouse from its hole, per axis.
	WinThreshold int `validate:"gte=1"` // Delivered cheese needed for the mice to win.
}

// DefaultConfig returns the tuning the presentation client is built against.
func DefaultConfig() Config {
	return Config{
		Width:        800,
		Height:       600,
		CatchRadius:  20,
		PickupRadius: 15,
		HoleRadius:   12,
		CatSpeed:     2,
		MouseSpeed:   2,
		HoleMargin:   29,
		SpawnJitter:  20,
		WinThreshold: 3,
	}
}

var validate = validator.New()

// Validate reports the first tuning value that is out of range.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid world config: %w", err)
	}
	if c.HoleMargin*2 > c.Width || c.HoleMargin*2 > c.Height {
		return fmt.Errorf("invalid world config: hole margin %d does not fit a %dx%d field", c.HoleMargin, c.Width, c.Height)
	}
	return nil
}
