package choropleth

import (
	"math"

	"github.com/twpayne/go-geom"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/atlas-cli/internal/scale"
)

// Artifact is the composed result of a render: one styled layer per input
// region plus a single legend. Both are derived from one shared color
// scale, so the legend always describes exactly the colors on the map.
type Artifact struct {
	Label  string
	Config Config
	Layers []Layer
	Legend Legend

	scale *scale.Linear
}

// Scale exposes the color scale the artifact was rendered with. Fills and
// legend stops were both produced by this instance.
func (a *Artifact) Scale() *scale.Linear { return a.scale }

// Layer is one region's rendered styling. Value keeps full precision;
// Display carries the human-rounded form used for labels.
type Layer struct {
	Name     string   `json:"name"`
	Value    *float64 `json:"value,omitempty"`
	Display  string   `json:"display"`
	Fill     string   `json:"fill"`
	Missing  bool     `json:"missing,omitempty"`
	Geometry geom.T   `json:"-"`
}

// Legend is the visual key mapping colors back to values.
type Legend struct {
	Title      string  `json:"title"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Stops      []Stop  `json:"stops"`
	Opacity    float64 `json:"opacity"`
	Degenerate bool    `json:"degenerate,omitempty"`
}

// Stop is one labeled legend entry.
type Stop struct {
	Value float64 `json:"value"`
	Color string  `json:"color"`
	Label string  `json:"label"`
}

// displayPrinter groups thousands for readability ("1,234,567").
var displayPrinter = message.NewPrinter(language.English)

// formatValue rounds to the nearest integer for display. Rounding is
// presentation only; scale computation always sees full precision.
func formatValue(v float64) string {
	return displayPrinter.Sprintf("%d", int64(math.Round(v)))
}
