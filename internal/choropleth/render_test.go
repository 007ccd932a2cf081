package choropleth

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/atlas-cli/internal/scale"
)

func fptr(v float64) *float64 { return &v }

// unitSquare returns a simple polygon offset along the x axis so each
// region has distinct geometry.
func unitSquare(t *testing.T, offset float64) *geom.Polygon {
	t.Helper()
	p := geom.NewPolygon(geom.XY)
	_, err := p.SetCoords([][]geom.Coord{{
		{offset, 0}, {offset + 1, 0}, {offset + 1, 1}, {offset, 1}, {offset, 0},
	}})
	require.NoError(t, err)
	return p
}

func TestRender_EndToEnd(t *testing.T) {
	regions := Collection{
		{Name: "A", Geometry: unitSquare(t, 0), Value: fptr(1)},
		{Name: "B", Geometry: unitSquare(t, 2), Value: fptr(100)},
	}

	art, err := Render(regions, "Test", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, art.Layers, 2)

	assert.Equal(t, "Test", art.Legend.Title)
	assert.Equal(t, 1.0, art.Legend.Min)
	assert.Equal(t, 100.0, art.Legend.Max)

	// Domain extremes land on the palette's endpoints.
	assert.Equal(t, "#440154", art.Layers[0].Fill)
	assert.Equal(t, "#fde725", art.Layers[1].Fill)
}

func TestRender_MissingValuesExcludedFromDomain(t *testing.T) {
	regions := Collection{
		{Name: "X", Value: fptr(10)},
		{Name: "Y", Value: fptr(20)},
		{Name: "Z", Value: nil},
	}

	art, err := Render(regions, "Metric", DefaultConfig())
	require.NoError(t, err)

	min, max := art.Scale().Domain()
	assert.Equal(t, 10.0, min)
	assert.Equal(t, 20.0, max)
	assert.Equal(t, 10.0, art.Legend.Min)
	assert.Equal(t, 20.0, art.Legend.Max)

	require.Len(t, art.Layers, 3)
	assert.True(t, art.Layers[2].Missing)
	assert.Equal(t, DefaultConfig().MissingFill, art.Layers[2].Fill)
	assert.Equal(t, "n/a", art.Layers[2].Display)
}

func TestRender_MonotonicFills(t *testing.T) {
	regions := Collection{
		{Name: "a", Value: fptr(0)},
		{Name: "b", Value: fptr(25)},
		{Name: "c", Value: fptr(50)},
		{Name: "d", Value: fptr(75)},
		{Name: "e", Value: fptr(100)},
	}

	art, err := Render(regions, "m", DefaultConfig())
	require.NoError(t, err)

	s := art.Scale()
	prev := -1.0
	for _, l := range art.Layers {
		pos := s.Position(*l.Value)
		assert.Greater(t, pos, prev, "scale position must increase with value")
		prev = pos
	}
}

func TestRender_LegendMatchesScale(t *testing.T) {
	regions := Collection{
		{Name: "lo", Value: fptr(3)},
		{Name: "mid", Value: fptr(47)},
		{Name: "hi", Value: fptr(92)},
	}

	art, err := Render(regions, "m", DefaultConfig())
	require.NoError(t, err)

	// Legend stops and layer fills must come from the one shared scale.
	for _, st := range art.Legend.Stops {
		assert.Equal(t, art.Scale().Hex(st.Value), st.Color)
	}
	for _, l := range art.Layers {
		assert.Equal(t, art.Scale().Hex(*l.Value), l.Fill)
	}
	assert.Equal(t, DefaultConfig().FillOpacity, art.Legend.Opacity)
}

func TestRender_Idempotent(t *testing.T) {
	regions := Collection{
		{Name: "A", Geometry: unitSquare(t, 0), Value: fptr(5)},
		{Name: "B", Geometry: unitSquare(t, 2), Value: fptr(15)},
		{Name: "C", Geometry: unitSquare(t, 4), Value: nil},
	}

	first, err := Render(regions, "Twice", DefaultConfig())
	require.NoError(t, err)
	second, err := Render(regions, "Twice", DefaultConfig())
	require.NoError(t, err)

	require.Len(t, second.Layers, len(first.Layers))
	for i := range first.Layers {
		assert.Equal(t, first.Layers[i].Fill, second.Layers[i].Fill)
		assert.Equal(t, first.Layers[i].Display, second.Layers[i].Display)
	}
	assert.Equal(t, first.Legend, second.Legend)
}

func TestRender_DegenerateDomain_ConstantFill(t *testing.T) {
	regions := Collection{
		{Name: "p", Value: fptr(42)},
		{Name: "q", Value: fptr(42)},
		{Name: "r", Value: fptr(42)},
	}

	art, err := Render(regions, "flat", DefaultConfig())
	require.NoError(t, err)

	require.True(t, art.Legend.Degenerate)
	require.Len(t, art.Legend.Stops, 1)
	for _, l := range art.Layers {
		assert.Equal(t, art.Layers[0].Fill, l.Fill)
	}
}

func TestRender_SingleRegion(t *testing.T) {
	art, err := Render(Collection{{Name: "only", Value: fptr(7)}}, "one", DefaultConfig())
	require.NoError(t, err)
	require.Len(t, art.Layers, 1)
	assert.True(t, art.Legend.Degenerate)
	assert.NotEmpty(t, art.Layers[0].Fill)
}

func TestRender_EmptyCollection(t *testing.T) {
	_, err := Render(Collection{}, "none", DefaultConfig())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestRender_AllValuesMissing(t *testing.T) {
	regions := Collection{
		{Name: "a", Value: nil},
		{Name: "b", Value: nil},
	}
	_, err := Render(regions, "none", DefaultConfig())
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoData))
}

func TestRender_RejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name string
		v    float64
	}{
		{"nan", math.NaN()},
		{"pos inf", math.Inf(1)},
		{"neg inf", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regions := Collection{
				{Name: "ok", Value: fptr(1)},
				{Name: "bad", Value: fptr(tt.v)},
			}
			_, err := Render(regions, "m", DefaultConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "non-finite")
			assert.Contains(t, err.Error(), "bad")
		})
	}
}

func TestRender_ZeroConfigInheritsDefaults(t *testing.T) {
	art, err := Render(Collection{
		{Name: "a", Value: fptr(1)},
		{Name: "b", Value: fptr(2)},
	}, "m", Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), art.Config)
}

func TestRender_ConfigValidation(t *testing.T) {
	regions := Collection{{Name: "a", Value: fptr(1)}}

	_, err := Render(regions, "m", Config{FillOpacity: 1.5})
	assert.Error(t, err)

	_, err = Render(regions, "m", Config{BorderWeight: -2})
	assert.Error(t, err)

	_, err = Render(regions, "m", Config{Palette: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown palette")
}

func TestRender_AlternatePalette(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Palette = "magma"

	art, err := Render(Collection{
		{Name: "lo", Value: fptr(0)},
		{Name: "hi", Value: fptr(10)},
	}, "m", cfg)
	require.NoError(t, err)

	p, err := scale.ByName("magma")
	require.NoError(t, err)
	assert.Equal(t, scale.Hex(p.At(0)), art.Layers[0].Fill)
	assert.Equal(t, scale.Hex(p.At(1)), art.Layers[1].Fill)
}

func TestRender_DisplayRoundingKeepsScalePrecision(t *testing.T) {
	// 10.4 and 10.6 both display near "10"/"11" but must get distinct
	// fills: rounding is presentation only.
	regions := Collection{
		{Name: "a", Value: fptr(10.4)},
		{Name: "b", Value: fptr(10.6)},
		{Name: "top", Value: fptr(20)},
	}
	art, err := Render(regions, "m", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "10", art.Layers[0].Display)
	assert.Equal(t, "11", art.Layers[1].Display)
	assert.NotEqual(t, art.Layers[0].Fill, art.Layers[1].Fill)
}

func TestRender_DisplayGroupsThousands(t *testing.T) {
	art, err := Render(Collection{
		{Name: "big", Value: fptr(1234567.6)},
		{Name: "sm", Value: fptr(1)},
	}, "m", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "1,234,568", art.Layers[0].Display)
}

func TestRender_DoesNotMutateInput(t *testing.T) {
	v := 5.0
	regions := Collection{{Name: "a", Value: &v}, {Name: "b", Value: fptr(9)}}

	_, err := Render(regions, "m", DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 5.0, v)
	assert.Equal(t, "a", regions[0].Name)
}
