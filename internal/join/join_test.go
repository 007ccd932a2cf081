package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/dataset"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Germany", "GERMANY"},
		{"trims whitespace", "  France  ", "FRANCE"},
		{"lowercases input", "russia", "RUSSIA"},
		{"folds diacritics", "Côte d'Ivoire", "IVORY COAST"},
		{"world bank comma form", "Korea, Rep.", "SOUTH KOREA"},
		{"world bank the suffix", "Bahamas, The", "BAHAMAS"},
		{"world bank drc", "Congo, Dem. Rep.", "DEM REP CONGO"},
		{"natural earth drc", "Dem. Rep. Congo", "DEM REP CONGO"},
		{"natural earth long us", "United States of America", "UNITED STATES"},
		{"natural earth abbreviation", "S. Sudan", "SOUTH SUDAN"},
		{"parenthetical", "Myanmar (Burma)", "MYANMAR"},
		{"ampersand", "Bosnia & Herz.", "BOSNIA AND HERZEGOVINA"},
		{"hyphen", "Timor-Leste", "EAST TIMOR"},
		{"russian federation", "Russian Federation", "RUSSIA"},
		{"turkiye", "Turkiye", "TURKEY"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.input))
		})
	}
}

func TestNormalizeKey_BothSidesAgree(t *testing.T) {
	// Provider naming pairs that must land on the same key.
	pairs := [][2]string{
		{"Korea, Rep.", "South Korea"},
		{"Congo, Dem. Rep.", "Dem. Rep. Congo"},
		{"United States", "United States of America"},
		{"Russian Federation", "Russia"},
		{"Egypt, Arab Rep.", "Egypt"},
		{"Lao PDR", "Laos"},
		{"Czechia", "Czech Republic"},
		{"Gambia, The", "Gambia"},
	}

	for _, p := range pairs {
		assert.Equal(t, NormalizeKey(p[0]), NormalizeKey(p[1]),
			"%q and %q should normalize identically", p[0], p[1])
	}
}

func regions(names ...string) []boundary.Region {
	out := make([]boundary.Region, len(names))
	for i, n := range names {
		out[i] = boundary.Region{Key: n[:min(3, len(n))], Name: n}
	}
	return out
}

func TestJoin_FullMatch(t *testing.T) {
	coll, report := Join(
		regions("South Korea", "Russia"),
		[]dataset.Value{
			{Key: "Korea, Rep.", Value: 51.7},
			{Key: "Russian Federation", Value: 143.8},
		},
	)

	require.Len(t, coll, 2)
	assert.True(t, report.Clean())
	assert.Equal(t, 2, report.Matched)

	require.NotNil(t, coll[0].Value)
	assert.Equal(t, 51.7, *coll[0].Value)
	assert.Equal(t, "South Korea", coll[0].Name)

	require.NotNil(t, coll[1].Value)
	assert.Equal(t, 143.8, *coll[1].Value)
}

func TestJoin_UnmatchedRegionGetsNilValue(t *testing.T) {
	coll, report := Join(
		regions("Atlantis", "France"),
		[]dataset.Value{{Key: "France", Value: 68.2}},
	)

	require.Len(t, coll, 2)
	assert.Nil(t, coll[0].Value)
	require.NotNil(t, coll[1].Value)

	assert.False(t, report.Clean())
	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, []string{"Atlantis"}, report.UnmatchedRegions)
	assert.Empty(t, report.UnmatchedValues)
}

func TestJoin_UnmatchedValuesReported(t *testing.T) {
	coll, report := Join(
		regions("France"),
		[]dataset.Value{
			{Key: "France", Value: 68.2},
			{Key: "Narnia", Value: 1},
			{Key: "Narnia", Value: 2},
			{Key: "Mordor", Value: 3},
		},
	)

	require.Len(t, coll, 1)
	assert.Equal(t, []string{"Narnia", "Mordor"}, report.UnmatchedValues)
}

func TestJoin_PreservesRegionOrder(t *testing.T) {
	names := []string{"Chile", "Argentina", "Bolivia", "Peru"}
	coll, _ := Join(regions(names...), nil)

	require.Len(t, coll, len(names))
	for i, n := range names {
		assert.Equal(t, n, coll[i].Name)
	}
}

func TestJoin_DuplicateValueKeysLastWins(t *testing.T) {
	coll, report := Join(
		regions("France"),
		[]dataset.Value{
			{Key: "France", Value: 1},
			{Key: "france", Value: 2},
		},
	)

	require.NotNil(t, coll[0].Value)
	assert.Equal(t, 2.0, *coll[0].Value)
	assert.True(t, report.Clean())
}

func TestJoin_NoValues(t *testing.T) {
	coll, report := Join(regions("France", "Spain"), nil)

	require.Len(t, coll, 2)
	assert.Nil(t, coll[0].Value)
	assert.Nil(t, coll[1].Value)
	assert.Equal(t, 0, report.Matched)
	assert.Len(t, report.UnmatchedRegions, 2)
}

func TestJoin_ValueCopiesAreIndependent(t *testing.T) {
	values := []dataset.Value{{Key: "France", Value: 68.2}}
	coll, _ := Join(regions("France"), values)

	values[0].Value = 0
	require.NotNil(t, coll[0].Value)
	assert.Equal(t, 68.2, *coll[0].Value)
}
