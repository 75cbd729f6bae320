package game

// Layout derives the cheese and hole points from the field size. The result depends only on
// cfg, so every reset produces the same layout.
//
// Cheese sits on the horizontal midline either side of the center; one hole sits at the
// middle of each edge, inset by the hole margin.
func Layout(cfg Config) (cheese, holes []Point) {
	cx, cy := cfg.Width/2, cfg.Height/2
	offset := cfg.Width * 3 / 40

	cheese = []Point{
		{X: cx - offset, Y: cy},
		{X: cx + offset, Y: cy},
	}

	m := cfg.HoleMargin
	holes = []Point{
		{X: cx, Y: m},              // top
		{X: cx, Y: cfg.Height - m}, // bottom
		{X: m, Y: cy},              // left
		{X: cfg.Width - m, Y: cy},  // right
	}
	return cheese, holes
}
