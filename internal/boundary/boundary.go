// Package boundary supplies named region geometries from public
// providers: world countries from Natural Earth and US states from the
// Census Bureau's cartographic boundary files.
package boundary

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/atlas-cli/internal/fetcher"
)

// Region is one named boundary geometry in EPSG:4326.
type Region struct {
	Key      string // stable short code (ISO alpha-3, state postal)
	Name     string // display name; the join key for tabular statistics
	Geometry geom.T
}

// Source downloads and decodes one boundary set.
type Source interface {
	// Name is the registry key, e.g. "world-countries".
	Name() string
	// Description is a one-line summary for listings.
	Description() string
	// URL is the primary download location.
	URL() string
	// Fetch downloads the source archive into tempDir and decodes it.
	Fetch(ctx context.Context, f fetcher.Fetcher, tempDir string) ([]Region, error)
}

// Registry holds boundary sources in registration order.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates a registry populated with the built-in sources.
func NewRegistry() *Registry {
	r := &Registry{sources: make(map[string]Source)}
	r.Register(&WorldCountries{})
	r.Register(&USStates{})
	return r
}

// Register adds a source to the registry.
func (r *Registry) Register(s Source) {
	name := s.Name()
	r.sources[name] = s
	r.order = append(r.order, name)
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, eris.Errorf("boundary: unknown source %q", name)
	}
	return s, nil
}

// All returns all sources in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.sources[name])
	}
	return out
}

// Names returns registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
