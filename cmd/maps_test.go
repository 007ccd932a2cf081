package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/atlas-cli/internal/atlas"
	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/dataset"
)

func TestFormatMapDefs(t *testing.T) {
	defs := []atlas.MapDef{
		{Name: "world-gdp", Title: "GDP [$B]", Boundary: "world-countries", Dataset: "world-gdp", Scale: 1e-9},
		{Name: "us-state-gdp", Title: "GDP [$B]", Boundary: "us-states", Dataset: "us-state-gdp", Scale: 1e-3, Palette: "magma"},
	}

	var buf bytes.Buffer
	formatMapDefs(&buf, defs)

	output := buf.String()
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, "PALETTE")
	assert.Contains(t, output, "world-gdp")
	assert.Contains(t, output, "GDP [$B]")
	assert.Contains(t, output, "1e-09")
	assert.Contains(t, output, "magma")
}

func TestFormatMapDefs_DefaultsShownAsDash(t *testing.T) {
	defs := []atlas.MapDef{
		{Name: "plain", Title: "Plain", Boundary: "world-countries", Dataset: "world-gdp"},
	}

	var buf bytes.Buffer
	formatMapDefs(&buf, defs)

	// Unset scale and palette render as "-".
	assert.Contains(t, buf.String(), "-")
}

func TestFormatBoundaries(t *testing.T) {
	var buf bytes.Buffer
	formatBoundaries(&buf, boundary.NewRegistry().All())

	output := buf.String()
	assert.Contains(t, output, "world-countries")
	assert.Contains(t, output, "us-states")
	assert.Contains(t, output, "naciscdn.org")
	assert.Contains(t, output, "census.gov")
}

func TestFormatDatasets(t *testing.T) {
	var buf bytes.Buffer
	formatDatasets(&buf, dataset.NewRegistry(dataset.Options{}).All())

	output := buf.String()
	assert.Contains(t, output, "world-population")
	assert.Contains(t, output, "world-gdp")
	assert.Contains(t, output, "us-state-population")
	assert.Contains(t, output, "us-state-gdp")
	assert.Contains(t, output, "Population")
	assert.Contains(t, output, "world-countries")
}
