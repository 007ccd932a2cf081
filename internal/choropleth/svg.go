package choropleth

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

const (
	svgDefaultWidth = 960
	svgLegendWidth  = 180
	svgPad          = 10.0
)

// SVG encodes the artifact as a static image. Region geometries are
// fitted linearly to the drawing area (latitude axis flipped, no
// reprojection) with a legend column on the right. Layers whose geometry
// is absent or not areal are skipped; everything else draws in input
// order.
func (a *Artifact) SVG(width int) ([]byte, error) {
	if width <= 0 {
		width = svgDefaultWidth
	}

	bounds := geom.NewBounds(geom.XY)
	drawable := 0
	for _, l := range a.Layers {
		switch l.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
			bounds.Extend(l.Geometry)
			drawable++
		}
	}

	minX, minY, maxX, maxY := 0.0, 0.0, 1.0, 1.0
	if drawable > 0 {
		minX, minY = bounds.Min(0), bounds.Min(1)
		maxX, maxY = bounds.Max(0), bounds.Max(1)
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	mapW := float64(width) - svgLegendWidth - 3*svgPad
	if mapW < 100 {
		mapW = 100
	}
	sc := mapW / spanX
	mapH := spanY * sc
	height := mapH + 2*svgPad

	minHeight := svgPad*2 + 24 + float64(len(a.Legend.Stops)+2)*20
	if height < minHeight {
		height = minHeight
	}

	tf := svgTransform{minX: minX, maxY: maxY, scale: sc, pad: svgPad}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%s" viewBox="0 0 %d %s">`+"\n",
		width, svgNum(height), width, svgNum(height))
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>` + "\n")

	fmt.Fprintf(&b, `<g stroke="%s" stroke-width="%s" fill-opacity="%s" fill-rule="evenodd">`+"\n",
		a.Config.BorderColor, fmtFloat(a.Config.BorderWeight), fmtFloat(a.Config.FillOpacity))
	for _, l := range a.Layers {
		path := svgPath(l.Geometry, tf)
		if path == "" {
			continue
		}
		fmt.Fprintf(&b, `<path d="%s" fill="%s"><title>%s: %s</title></path>`+"\n",
			path, l.Fill, html.EscapeString(l.Name), html.EscapeString(l.Display))
	}
	b.WriteString("</g>\n")

	writeSVGLegend(&b, a, float64(width)-svgLegendWidth-svgPad)

	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}

type svgTransform struct {
	minX  float64
	maxY  float64
	scale float64
	pad   float64
}

func (t svgTransform) apply(x, y float64) (float64, float64) {
	return t.pad + (x-t.minX)*t.scale, t.pad + (t.maxY-y)*t.scale
}

// svgPath builds the path data for a polygonal geometry; other geometry
// types yield an empty string.
func svgPath(g geom.T, tf svgTransform) string {
	var b strings.Builder
	switch g := g.(type) {
	case *geom.Polygon:
		writePolygonPath(&b, g, tf)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			writePolygonPath(&b, g.Polygon(i), tf)
		}
	}
	return b.String()
}

func writePolygonPath(b *strings.Builder, p *geom.Polygon, tf svgTransform) {
	for i := 0; i < p.NumLinearRings(); i++ {
		ring := p.LinearRing(i)
		fc := ring.FlatCoords()
		stride := ring.Stride()
		for j := 0; j+1 < len(fc); j += stride {
			x, y := tf.apply(fc[j], fc[j+1])
			if j == 0 {
				fmt.Fprintf(b, "M%s %s", svgNum(x), svgNum(y))
			} else {
				fmt.Fprintf(b, "L%s %s", svgNum(x), svgNum(y))
			}
		}
		b.WriteString("Z")
	}
}

func writeSVGLegend(b *strings.Builder, a *Artifact, x float64) {
	fmt.Fprintf(b, `<g font-family="sans-serif" font-size="12">`+"\n")
	fmt.Fprintf(b, `<text x="%s" y="%s" font-weight="bold">%s</text>`+"\n",
		svgNum(x), svgNum(svgPad+12), html.EscapeString(a.Label))

	y := svgPad + 24
	for _, st := range a.Legend.Stops {
		fmt.Fprintf(b, `<rect x="%s" y="%s" width="14" height="14" fill="%s" fill-opacity="%s"/>`+"\n",
			svgNum(x), svgNum(y), st.Color, fmtFloat(a.Legend.Opacity))
		fmt.Fprintf(b, `<text x="%s" y="%s">%s</text>`+"\n",
			svgNum(x+20), svgNum(y+11), html.EscapeString(st.Label))
		y += 20
	}
	for _, l := range a.Layers {
		if l.Missing {
			fmt.Fprintf(b, `<rect x="%s" y="%s" width="14" height="14" fill="%s" fill-opacity="%s"/>`+"\n",
				svgNum(x), svgNum(y), a.Config.MissingFill, fmtFloat(a.Legend.Opacity))
			fmt.Fprintf(b, `<text x="%s" y="%s">n/a</text>`+"\n", svgNum(x+20), svgNum(y+11))
			break
		}
	}
	b.WriteString("</g>\n")
}

func svgNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
