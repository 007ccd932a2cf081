// Package choropleth renders region collections into styled map artifacts.
// The renderer is a pure function: it performs no I/O, never mutates its
// inputs, and produces identical artifacts for identical inputs. Geometry
// is treated as opaque; acquisition, joining, and display all live with
// the caller.
package choropleth

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrNoData marks a render request with nothing to map: an empty
// collection, or one where every region's value is missing.
var ErrNoData = eris.New("choropleth: no mappable values")

// Region is one mapped entity: a display name, an opaque boundary
// geometry, and the numeric value to color-encode. A nil Value is the
// explicit missing marker (an unmatched join, a gap in the source data)
// and is excluded from color-scale domain computation.
type Region struct {
	Name     string
	Geometry geom.T
	Value    *float64
}

// Collection is an ordered sequence of regions, one per geographic unit.
// Order is preserved into the artifact; duplicate names pass through.
type Collection []Region

// Config controls the visual styling of a render. Zero-valued fields
// inherit the defaults from DefaultConfig.
type Config struct {
	// BorderWeight is the region outline width in pixels.
	BorderWeight float64
	// BorderColor is the outline color as a #rrggbb string.
	BorderColor string
	// FillOpacity is the region fill opacity in (0, 1]. A partial
	// transparency keeps base-map context visible under the fill.
	FillOpacity float64
	// Palette names the color scheme; see the scale package.
	Palette string
	// MissingFill is the fill for regions whose value is missing.
	MissingFill string
	// LegendSteps is the number of labeled stops in the legend.
	LegendSteps int
}

// DefaultConfig returns the standard styling: thin black borders, 0.6
// fill opacity, the viridis palette, and a five-stop legend.
func DefaultConfig() Config {
	return Config{
		BorderWeight: 1,
		BorderColor:  "#000000",
		FillOpacity:  0.6,
		Palette:      "viridis",
		MissingFill:  "#cccccc",
		LegendSteps:  5,
	}
}

// normalized fills zero-valued fields with defaults and rejects values
// that cannot be styled.
func (c Config) normalized() (Config, error) {
	d := DefaultConfig()
	if c.BorderWeight < 0 {
		return c, eris.Errorf("choropleth: negative border weight %v", c.BorderWeight)
	}
	if c.BorderWeight == 0 {
		c.BorderWeight = d.BorderWeight
	}
	if c.BorderColor == "" {
		c.BorderColor = d.BorderColor
	}
	if c.FillOpacity < 0 || c.FillOpacity > 1 {
		return c, eris.Errorf("choropleth: fill opacity %v outside [0, 1]", c.FillOpacity)
	}
	if c.FillOpacity == 0 {
		c.FillOpacity = d.FillOpacity
	}
	if c.Palette == "" {
		c.Palette = d.Palette
	}
	if c.MissingFill == "" {
		c.MissingFill = d.MissingFill
	}
	if c.LegendSteps <= 0 {
		c.LegendSteps = d.LegendSteps
	}
	return c, nil
}
