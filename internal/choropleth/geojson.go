package choropleth

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// geoJSONDoc is a FeatureCollection with a foreign "metadata" member
// (permitted by RFC 7946 §6.1) carrying the label and legend.
type geoJSONDoc struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
	Metadata geoJSONMeta       `json:"metadata"`
}

type geoJSONMeta struct {
	Label  string `json:"label"`
	Legend Legend `json:"legend"`
}

// nullFeature stands in for a layer whose geometry is absent. The feature
// keeps its name, value, and styling but draws nothing; one bad region
// never fails the rest of the artifact.
type nullFeature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   any            `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// GeoJSON encodes the artifact as a styled FeatureCollection. Per-feature
// styling uses the simplestyle property names (fill, fill-opacity, stroke,
// stroke-width) so generic viewers render the composed look.
func (a *Artifact) GeoJSON() ([]byte, error) {
	features := make([]json.RawMessage, 0, len(a.Layers))
	for i, l := range a.Layers {
		props := map[string]any{
			"name":         l.Name,
			"display":      l.Display,
			"fill":         l.Fill,
			"fill-opacity": a.Config.FillOpacity,
			"stroke":       a.Config.BorderColor,
			"stroke-width": a.Config.BorderWeight,
		}
		if l.Value != nil {
			props["value"] = *l.Value
		}
		if l.Missing {
			props["missing"] = true
		}

		id := strconv.Itoa(i)
		var (
			raw []byte
			err error
		)
		if l.Geometry == nil {
			raw, err = json.Marshal(nullFeature{Type: "Feature", ID: id, Properties: props})
		} else {
			raw, err = json.Marshal(&geojson.Feature{ID: id, Geometry: l.Geometry, Properties: props})
		}
		if err != nil {
			return nil, eris.Wrapf(err, "encode feature %q", l.Name)
		}
		features = append(features, raw)
	}

	out, err := json.Marshal(geoJSONDoc{
		Type:     "FeatureCollection",
		Features: features,
		Metadata: geoJSONMeta{Label: a.Label, Legend: a.Legend},
	})
	if err != nil {
		return nil, eris.Wrap(err, "encode feature collection")
	}
	return out, nil
}
