package scale

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
)

// Linear maps a numeric domain [min, max] continuously onto a palette.
// A single Linear instance must be shared between region fills and the
// legend that describes them so the two can never disagree.
type Linear struct {
	pal Palette
	min float64
	max float64
}

// NewLinear builds a continuous scale over [min, max]. The bounds must be
// finite and ordered. A zero-width domain (min == max) is permitted and
// yields a degenerate scale that maps every value to the palette midpoint.
func NewLinear(p Palette, min, max float64) (*Linear, error) {
	if math.IsNaN(min) || math.IsInf(min, 0) || math.IsNaN(max) || math.IsInf(max, 0) {
		return nil, eris.Errorf("scale: non-finite domain [%v, %v]", min, max)
	}
	if min > max {
		return nil, eris.Errorf("scale: inverted domain [%v, %v]", min, max)
	}
	return &Linear{pal: p, min: min, max: max}, nil
}

// Domain returns the scale's bounds.
func (s *Linear) Domain() (min, max float64) { return s.min, s.max }

// Degenerate reports whether the domain has zero width.
func (s *Linear) Degenerate() bool { return s.min == s.max }

// Palette returns the palette the scale interpolates over.
func (s *Linear) Palette() Palette { return s.pal }

// Position normalizes v into [0, 1] along the domain, clamping values that
// fall outside it. A degenerate domain positions every value at 0.5.
func (s *Linear) Position(v float64) float64 {
	if s.Degenerate() {
		return 0.5
	}
	t := (v - s.min) / (s.max - s.min)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Color returns the palette color for v. Monotonic in v: a higher value
// never maps to an earlier palette position.
func (s *Linear) Color(v float64) color.NRGBA {
	return s.pal.At(s.Position(v))
}

// Hex returns Color(v) as a #rrggbb string.
func (s *Linear) Hex(v float64) string {
	return Hex(s.Color(v))
}

// Ticks returns n values evenly spaced across the domain, endpoints
// included. n below 2, or a degenerate domain, yields the single minimum.
func (s *Linear) Ticks(n int) []float64 {
	if n < 2 || s.Degenerate() {
		return []float64{s.min}
	}
	out := make([]float64, n)
	step := (s.max - s.min) / float64(n-1)
	for i := range out {
		out[i] = s.min + float64(i)*step
	}
	// Guard the last tick against accumulated float error.
	out[n-1] = s.max
	return out
}
