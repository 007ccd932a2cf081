package choropleth

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
)

// HTML encodes the artifact as a self-contained interactive page: a
// Leaflet base map, the styled GeoJSON overlay with per-region popups,
// and a legend control. Projection and tiling stay Leaflet's concern;
// this encoder only embeds data and styling.
func (a *Artifact) HTML() ([]byte, error) {
	data, err := a.GeoJSON()
	if err != nil {
		return nil, err
	}
	// A literal "</" inside the embedded JSON would end the script block.
	embedded := strings.ReplaceAll(string(data), "</", `<\/`)

	page := fmt.Sprintf(leafletPage,
		html.EscapeString(a.Label),
		embedded,
		jsString(a.Config.BorderColor),
		fmtFloat(a.Config.BorderWeight),
		jsString(a.Config.MissingFill),
		fmtFloat(a.Config.FillOpacity),
		jsString(html.EscapeString(a.Label)),
		jsString(a.legendHTML()),
	)
	return []byte(page), nil
}

// legendHTML builds the legend control body: the label as title, one
// swatch per stop, and a missing-value swatch when the map has one.
func (a *Artifact) legendHTML() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>%s</strong><br/>", html.EscapeString(a.Label))
	for _, st := range a.Legend.Stops {
		fmt.Fprintf(&b, `<i style="background:%s;opacity:%s"></i>%s<br/>`,
			st.Color, fmtFloat(a.Legend.Opacity), st.Label)
	}
	for _, l := range a.Layers {
		if l.Missing {
			fmt.Fprintf(&b, `<i style="background:%s;opacity:%s"></i>n/a<br/>`,
				a.Config.MissingFill, fmtFloat(a.Legend.Opacity))
			break
		}
	}
	return b.String()
}

// jsString encodes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

const leafletPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>%[1]s</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
html, body, #map { height: 100%%; margin: 0; }
.legend { background: rgba(255,255,255,0.9); padding: 8px 10px; border-radius: 4px; font: 12px/1.5 sans-serif; box-shadow: 0 0 8px rgba(0,0,0,0.2); }
.legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; }
</style>
</head>
<body>
<div id="map"></div>
<script>
var data = %[2]s;
var map = L.map("map");
L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
  attribution: "&copy; OpenStreetMap contributors"
}).addTo(map);
function styleOf(f) {
  var p = f.properties || {};
  return {
    color: %[3]s,
    weight: %[4]s,
    fillColor: p["fill"] || %[5]s,
    fillOpacity: %[6]s,
    opacity: 1
  };
}
function esc(s) {
  return String(s).replace(/&/g, "&amp;").replace(/</g, "&lt;").replace(/>/g, "&gt;").replace(/"/g, "&quot;");
}
var overlay = L.geoJSON(data, {
  style: styleOf,
  onEachFeature: function (f, lyr) {
    var p = f.properties || {};
    lyr.bindPopup("<b>" + esc(p["name"]) + "</b><br/>" + %[7]s + ": " + esc(p["display"]));
  }
}).addTo(map);
var bounds = overlay.getBounds();
if (bounds.isValid()) { map.fitBounds(bounds); } else { map.setView([0, 0], 2); }
var legend = L.control({position: "bottomright"});
legend.onAdd = function () {
  var div = L.DomUtil.create("div", "legend");
  div.innerHTML = %[8]s;
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`
