// Package dataset fetches tabular statistics keyed by region name from
// public providers: the World Bank indicator API, the Census Bureau ACS
// API, and BEA regional accounts workbooks.
package dataset

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// Value is one region's statistic. Key is the provider's region name and
// is matched against boundary names by the join layer.
type Value struct {
	Key   string
	Value float64
}

// Dataset fetches one statistic for every region of its boundary set.
type Dataset interface {
	// Name is the registry key, e.g. "world-population".
	Name() string
	// Description is a one-line summary for listings.
	Description() string
	// Label is the statistic's display name for legends and popups.
	Label() string
	// Boundary names the boundary source this dataset joins against.
	Boundary() string
	// Fetch downloads and decodes the statistic. tempDir receives any
	// intermediate archives.
	Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Value, error)
}

// Options carries provider settings for the built-in datasets.
type Options struct {
	// CensusAPIKey raises the Census API rate limits. Small workloads
	// run keyless.
	CensusAPIKey string
	// BEAWorkbookURL overrides the pinned GDP-by-state release workbook.
	BEAWorkbookURL string
}

// Registry holds datasets in registration order.
type Registry struct {
	datasets map[string]Dataset
	order    []string
}

// NewRegistry creates a registry populated with the built-in datasets.
func NewRegistry(opts Options) *Registry {
	r := &Registry{datasets: make(map[string]Dataset)}
	r.Register(&WorldPopulation{})
	r.Register(&WorldGDP{})
	r.Register(&StatePopulation{APIKey: opts.CensusAPIKey})
	r.Register(&StateGDP{WorkbookURL: opts.BEAWorkbookURL})
	return r
}

// Register adds a dataset to the registry.
func (r *Registry) Register(d Dataset) {
	name := d.Name()
	r.datasets[name] = d
	r.order = append(r.order, name)
}

// Get returns a dataset by name.
func (r *Registry) Get(name string) (Dataset, error) {
	d, ok := r.datasets[name]
	if !ok {
		return nil, eris.Errorf("dataset: unknown dataset %q", name)
	}
	return d, nil
}

// All returns all datasets in registration order.
func (r *Registry) All() []Dataset {
	out := make([]Dataset, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.datasets[name])
	}
	return out
}

// Names returns registered dataset names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
