package choropleth

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/atlas-cli/internal/scale"
)

// Render transforms a region collection and a legend label into a map
// artifact. The color-scale domain is computed fresh from the present
// values of this collection; missing values never widen it. Degenerate
// domains (single region, all values equal) produce a constant fill and
// a single-stop legend rather than an error.
//
// Error conditions: an empty collection or one whose values are all
// missing returns ErrNoData; a NaN or infinite value is rejected before
// scale construction.
func Render(regions Collection, label string, cfg Config) (*Artifact, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, eris.Wrap(ErrNoData, "empty region collection")
	}

	pal, err := scale.ByName(cfg.Palette)
	if err != nil {
		return nil, err
	}

	var (
		min, max float64
		present  int
	)
	for _, r := range regions {
		if r.Value == nil {
			continue
		}
		v := *r.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, eris.Errorf("choropleth: region %q has non-finite value %v", r.Name, v)
		}
		if present == 0 || v < min {
			min = v
		}
		if present == 0 || v > max {
			max = v
		}
		present++
	}
	if present == 0 {
		return nil, eris.Wrap(ErrNoData, "all region values missing")
	}

	s, err := scale.NewLinear(pal, min, max)
	if err != nil {
		return nil, eris.Wrap(err, "build color scale")
	}

	layers := make([]Layer, 0, len(regions))
	for _, r := range regions {
		l := Layer{Name: r.Name, Value: r.Value, Geometry: r.Geometry}
		if r.Value == nil {
			l.Missing = true
			l.Fill = cfg.MissingFill
			l.Display = "n/a"
		} else {
			l.Fill = s.Hex(*r.Value)
			l.Display = formatValue(*r.Value)
		}
		layers = append(layers, l)
	}

	return &Artifact{
		Label:  label,
		Config: cfg,
		Layers: layers,
		Legend: buildLegend(label, s, cfg),
		scale:  s,
	}, nil
}

// buildLegend derives the legend from the same scale instance that
// colored the layers.
func buildLegend(title string, s *scale.Linear, cfg Config) Legend {
	min, max := s.Domain()
	lg := Legend{
		Title:      title,
		Min:        min,
		Max:        max,
		Opacity:    cfg.FillOpacity,
		Degenerate: s.Degenerate(),
	}
	for _, v := range s.Ticks(cfg.LegendSteps) {
		lg.Stops = append(lg.Stops, Stop{Value: v, Color: s.Hex(v), Label: formatValue(v)})
	}
	return lg
}
