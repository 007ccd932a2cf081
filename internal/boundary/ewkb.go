package boundary

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

const srid4326 = 4326

// MarshalGeometry encodes a geometry as little-endian EWKB, the form the
// store persists. Geometries without an SRID are stamped 4326 first.
func MarshalGeometry(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	if g.SRID() == 0 {
		switch t := g.(type) {
		case *geom.Polygon:
			t.SetSRID(srid4326)
		case *geom.MultiPolygon:
			t.SetSRID(srid4326)
		}
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: encode geometry")
	}
	return data, nil
}

// UnmarshalGeometry decodes an EWKB blob produced by MarshalGeometry.
func UnmarshalGeometry(data []byte) (geom.T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "boundary: decode geometry")
	}
	return g, nil
}
