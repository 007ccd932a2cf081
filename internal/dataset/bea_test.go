package dataset

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func beaWorkbookBytes(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Table 1")
	require.NoError(t, err)

	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().Value = v
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseBEARows(t *testing.T) {
	rows := [][]string{
		{"", "2024:Q3", "2024:Q4", "2025:Q1"},
		{"United States", "29182345", "29502345", "29734567"},
		{"New England", "1402345", "1412345", "1423456"},
		{"Connecticut", "345678.1", "347890.2", "(D)"},
		{"Maine", "91234.5", "92345.6", "93456.7"},
		{"Note: (D) indicates a suppressed estimate."},
	}

	values, err := parseBEARows(rows)
	require.NoError(t, err)

	require.Len(t, values, 2)
	assert.Equal(t, Value{Key: "Connecticut", Value: 347890.2}, values[0])
	assert.Equal(t, Value{Key: "Maine", Value: 93456.7}, values[1])
}

func TestParseBEARows_NoStates(t *testing.T) {
	_, err := parseBEARows([][]string{
		{"", "2025:Q1"},
		{"United States", "29734567"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no state rows")
}

func TestParseBEANumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"345678.1", 345678.1, true},
		{"1,402,345", 1402345, true},
		{" 91234.5 ", 91234.5, true},
		{"(D)", 0, false},
		{"(NA)", 0, false},
		{"--", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseBEANumber(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.want, got, "input %q", tt.input)
		}
	}
}

func TestStateGDP_Fetch(t *testing.T) {
	payload := beaWorkbookBytes(t, [][]string{
		{"Table 1. Gross Domestic Product by State"},
		{"Millions of current dollars"},
		{"Seasonally adjusted at annual rates"},
		{""},
		{"", "2024:Q4", "2025:Q1"},
		{"United States", "29502345", "29734567"},
		{"Connecticut", "347890.2", "349012.3"},
	})

	d := &StateGDP{}
	assert.Equal(t, "us-state-gdp", d.Name())
	assert.Equal(t, "us-states", d.Boundary())

	stub := &stubFetcher{payload: payload}
	values, err := d.Fetch(context.Background(), stub, t.TempDir())
	require.NoError(t, err)

	require.Len(t, values, 1)
	assert.Equal(t, Value{Key: "Connecticut", Value: 349012.3}, values[0])

	require.Len(t, stub.calls, 1)
	assert.Contains(t, stub.calls[0], "apps.bea.gov")
}

func TestStateGDP_Fetch_CustomWorkbookURL(t *testing.T) {
	payload := beaWorkbookBytes(t, [][]string{
		{"t"}, {"t"}, {"t"}, {"t"},
		{"Vermont", "45678.9"},
	})

	d := &StateGDP{WorkbookURL: "https://example.com/gdp.xlsx"}
	stub := &stubFetcher{payload: payload}

	values, err := d.Fetch(context.Background(), stub, t.TempDir())
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "Vermont", values[0].Key)
	assert.Equal(t, []string{"https://example.com/gdp.xlsx"}, stub.calls)
}
