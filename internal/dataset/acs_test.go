package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePopulation_Fetch(t *testing.T) {
	payload := `[["NAME","B01003_001E","state"],
["Alabama","5108468","01"],
["Alaska","733406","02"],
["Puerto Rico","3205691","72"]]`

	d := &StatePopulation{}
	stub := &stubFetcher{payload: []byte(payload)}

	values, err := d.Fetch(context.Background(), stub, t.TempDir())
	require.NoError(t, err)

	require.Len(t, values, 3)
	assert.Equal(t, Value{Key: "Alabama", Value: 5108468}, values[0])
	assert.Equal(t, Value{Key: "Puerto Rico", Value: 3205691}, values[2])

	require.Len(t, stub.calls, 1)
	assert.Contains(t, stub.calls[0], "api.census.gov")
	assert.Contains(t, stub.calls[0], "B01003_001E")
	assert.Contains(t, stub.calls[0], "for=state%3A%2A")
	assert.NotContains(t, stub.calls[0], "key=")
}

func TestStatePopulation_Fetch_SendsAPIKey(t *testing.T) {
	payload := `[["NAME","B01003_001E","state"],["Alabama","5108468","01"]]`

	d := &StatePopulation{APIKey: "secret"}
	stub := &stubFetcher{payload: []byte(payload)}

	_, err := d.Fetch(context.Background(), stub, t.TempDir())
	require.NoError(t, err)
	require.Len(t, stub.calls, 1)
	assert.Contains(t, stub.calls[0], "key=secret")
}

func TestStatePopulation_Fetch_DropsSuppressedEstimates(t *testing.T) {
	payload := `[["NAME","B01003_001E","state"],
["Alabama","5108468","01"],
["Guam","-666666666","66"]]`

	d := &StatePopulation{}
	values, err := d.Fetch(context.Background(), &stubFetcher{payload: []byte(payload)}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, values, 1)
	assert.Equal(t, "Alabama", values[0].Key)
}

func TestStatePopulation_Fetch_RejectsNonArray(t *testing.T) {
	d := &StatePopulation{}
	_, err := d.Fetch(context.Background(), &stubFetcher{payload: []byte(`{"error":"nope"}`)}, t.TempDir())
	assert.Error(t, err)
}

func TestStatePopulation_Fetch_Empty(t *testing.T) {
	payload := `[["NAME","B01003_001E","state"]]`

	d := &StatePopulation{}
	_, err := d.Fetch(context.Background(), &stubFetcher{payload: []byte(payload)}, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no values")
}
