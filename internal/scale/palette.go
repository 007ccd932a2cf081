// Package scale provides perceptually-uniform color palettes and continuous
// value-to-color scales for choropleth rendering.
package scale

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/rotisserie/eris"
)

// Palette is an ordered set of RGB anchor colors interpolated linearly.
// The zero value is not usable; obtain palettes via ByName.
type Palette struct {
	name    string
	anchors []color.NRGBA
}

// Name returns the palette's registered name.
func (p Palette) Name() string { return p.name }

// At returns the interpolated color at position t, clamping t to [0, 1].
// t=0 yields the first anchor and t=1 the last, so scale extremes always
// map onto exact palette endpoints.
func (p Palette) At(t float64) color.NRGBA {
	if t <= 0 {
		return p.anchors[0]
	}
	if t >= 1 {
		return p.anchors[len(p.anchors)-1]
	}

	pos := t * float64(len(p.anchors)-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= len(p.anchors) {
		hi = len(p.anchors) - 1
	}
	return lerp(p.anchors[lo], p.anchors[hi], pos-float64(lo))
}

// HexAt returns At(t) formatted as a #rrggbb string.
func (p Palette) HexAt(t float64) string { return Hex(p.At(t)) }

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: 255,
	}
}

// Hex formats a color as a lowercase #rrggbb string, dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Anchor values match matplotlib's viridis-family colormaps.
var (
	viridis = Palette{name: "viridis", anchors: []color.NRGBA{
		{68, 1, 84, 255},
		{72, 35, 116, 255},
		{64, 67, 135, 255},
		{52, 94, 141, 255},
		{41, 120, 142, 255},
		{32, 144, 140, 255},
		{34, 167, 132, 255},
		{68, 190, 112, 255},
		{121, 209, 81, 255},
		{189, 222, 38, 255},
		{253, 231, 37, 255},
	}}

	plasma = Palette{name: "plasma", anchors: []color.NRGBA{
		{13, 8, 135, 255},
		{75, 3, 161, 255},
		{125, 3, 168, 255},
		{168, 34, 150, 255},
		{203, 70, 121, 255},
		{229, 107, 93, 255},
		{248, 148, 65, 255},
		{253, 195, 40, 255},
		{240, 249, 33, 255},
	}}

	inferno = Palette{name: "inferno", anchors: []color.NRGBA{
		{0, 0, 4, 255},
		{40, 11, 84, 255},
		{101, 21, 110, 255},
		{159, 42, 99, 255},
		{212, 72, 66, 255},
		{245, 125, 21, 255},
		{250, 193, 39, 255},
		{252, 255, 164, 255},
	}}

	magma = Palette{name: "magma", anchors: []color.NRGBA{
		{0, 0, 4, 255},
		{28, 16, 68, 255},
		{79, 18, 123, 255},
		{129, 37, 129, 255},
		{181, 54, 122, 255},
		{229, 80, 100, 255},
		{251, 135, 97, 255},
		{254, 194, 135, 255},
		{252, 253, 191, 255},
	}}
)

var palettes = map[string]Palette{
	"viridis": viridis,
	"plasma":  plasma,
	"inferno": inferno,
	"magma":   magma,
}

// Names lists the available palette names in a stable order.
func Names() []string {
	return []string{"viridis", "plasma", "inferno", "magma"}
}

// ByName looks up a palette by name, case-insensitively.
func ByName(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Palette{}, eris.Errorf("scale: unknown palette %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}
