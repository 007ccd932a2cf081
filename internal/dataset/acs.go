package dataset

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

const (
	acsEndpoint = "https://api.census.gov/data/2023/acs/acs5"
	// B01003_001E is total population from the ACS 5-year estimates.
	acsPopulationVariable = "B01003_001E"
)

// StatePopulation loads total population by state from the Census ACS
// API. Responses arrive as a JSON array of row arrays, header first.
type StatePopulation struct {
	// APIKey raises rate limits; small workloads run keyless.
	APIKey string
}

func (d *StatePopulation) Name() string     { return "us-state-population" }
func (d *StatePopulation) Label() string    { return "Population" }
func (d *StatePopulation) Boundary() string { return "us-states" }

func (d *StatePopulation) Description() string {
	return "Total population by state (Census ACS 5-year B01003)"
}

func (d *StatePopulation) Fetch(ctx context.Context, f fetcher.Fetcher, _ string) ([]Value, error) {
	q := url.Values{}
	q.Set("get", "NAME,"+acsPopulationVariable)
	q.Set("for", "state:*")
	if d.APIKey != "" {
		q.Set("key", d.APIKey)
	}

	zap.L().Info("dataset: querying census acs", zap.String("variable", acsPopulationVariable))
	body, err := f.Download(ctx, acsEndpoint+"?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "dataset: query census acs")
	}
	defer func() { _ = body.Close() }()

	rows, errs := fetcher.DecodeJSONArray[[]string](ctx, body)

	var values []Value
	first := true
	for row := range rows {
		if first {
			// Header row: ["NAME","B01003_001E","state"].
			first = false
			continue
		}
		if len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		// Negative sentinels mark suppressed estimates.
		if v < 0 {
			zap.L().Debug("dataset: dropping suppressed acs estimate",
				zap.String("state", row[0]),
			)
			continue
		}
		values = append(values, Value{Key: row[0], Value: v})
	}
	if err := <-errs; err != nil {
		return nil, eris.Wrap(err, "dataset: parse census acs response")
	}
	if len(values) == 0 {
		return nil, eris.New("dataset: census acs returned no values")
	}
	return values, nil
}
