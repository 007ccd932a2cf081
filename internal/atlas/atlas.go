// Package atlas ties the pipeline together: a map definition names a
// boundary set and a dataset, and the builder fetches both (through the
// store cache), joins them by region name, and renders the artifact.
package atlas

import (
	"github.com/sells-group/atlas-cli/internal/choropleth"
)

// MapDef declares one renderable map. Styling fields left zero inherit
// the renderer defaults.
type MapDef struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"` // legend and popup label; defaults to the dataset label
	Boundary string `yaml:"boundary"`
	Dataset  string `yaml:"dataset"`

	// Scale multiplies raw values before rendering so displays read in
	// sensible units (1e-6 turns persons into millions). Zero means 1.
	Scale float64 `yaml:"scale"`

	Palette      string  `yaml:"palette"`
	BorderWeight float64 `yaml:"border_weight"`
	BorderColor  string  `yaml:"border_color"`
	FillOpacity  float64 `yaml:"fill_opacity"`
	MissingFill  string  `yaml:"missing_fill"`
	LegendSteps  int     `yaml:"legend_steps"`
}

// renderConfig maps the definition's styling onto the renderer config.
func (d MapDef) renderConfig() choropleth.Config {
	return choropleth.Config{
		BorderWeight: d.BorderWeight,
		BorderColor:  d.BorderColor,
		FillOpacity:  d.FillOpacity,
		Palette:      d.Palette,
		MissingFill:  d.MissingFill,
		LegendSteps:  d.LegendSteps,
	}
}

// builtinMaps returns the stock definitions, one per built-in dataset.
func builtinMaps() []MapDef {
	return []MapDef{
		{
			Name:     "world-population",
			Title:    "Population [M]",
			Boundary: "world-countries",
			Dataset:  "world-population",
			Scale:    1e-6,
		},
		{
			Name:     "world-gdp",
			Title:    "GDP [$B]",
			Boundary: "world-countries",
			Dataset:  "world-gdp",
			Scale:    1e-9,
		},
		{
			Name:     "us-state-population",
			Title:    "Population [M]",
			Boundary: "us-states",
			Dataset:  "us-state-population",
			Scale:    1e-6,
			Palette:  "plasma",
		},
		{
			Name:     "us-state-gdp",
			Title:    "GDP [$B]",
			Boundary: "us-states",
			Dataset:  "us-state-gdp",
			Scale:    1e-3, // BEA publishes millions of dollars
			Palette:  "magma",
		},
	}
}
