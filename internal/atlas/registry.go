package atlas

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/atlas-cli/internal/boundary"
	"github.com/sells-group/atlas-cli/internal/dataset"
	"github.com/sells-group/atlas-cli/internal/scale"
)

// Registry holds the map definitions available to render, keyed by name.
// Definitions are validated on registration against the boundary and
// dataset registries so a bad reference fails at startup rather than
// mid-render.
type Registry struct {
	boundaries *boundary.Registry
	datasets   *dataset.Registry
	defs       map[string]MapDef
	order      []string
}

// NewRegistry returns a registry seeded with the built-in maps.
func NewRegistry(boundaries *boundary.Registry, datasets *dataset.Registry) (*Registry, error) {
	r := &Registry{
		boundaries: boundaries,
		datasets:   datasets,
		defs:       make(map[string]MapDef),
	}
	for _, def := range builtinMaps() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates def and adds it to the registry.
func (r *Registry) Register(def MapDef) error {
	if def.Name == "" {
		return eris.New("atlas: map definition missing name")
	}
	if _, ok := r.defs[def.Name]; ok {
		return eris.Errorf("atlas: duplicate map definition %q", def.Name)
	}
	if _, err := r.boundaries.Get(def.Boundary); err != nil {
		return eris.Wrapf(err, "atlas: map %q", def.Name)
	}
	ds, err := r.datasets.Get(def.Dataset)
	if err != nil {
		return eris.Wrapf(err, "atlas: map %q", def.Name)
	}
	if ds.Boundary() != def.Boundary {
		return eris.Errorf("atlas: map %q joins dataset %q (keyed to %q) against boundary %q",
			def.Name, def.Dataset, ds.Boundary(), def.Boundary)
	}
	if def.Scale < 0 {
		return eris.Errorf("atlas: map %q has negative scale %v", def.Name, def.Scale)
	}
	if def.Palette != "" {
		if _, err := scale.ByName(def.Palette); err != nil {
			return eris.Wrapf(err, "atlas: map %q", def.Name)
		}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (MapDef, error) {
	def, ok := r.defs[name]
	if !ok {
		return MapDef{}, eris.Errorf("atlas: unknown map %q", name)
	}
	return def, nil
}

// All returns every definition in registration order.
func (r *Registry) All() []MapDef {
	defs := make([]MapDef, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.defs[name])
	}
	return defs
}

// Names returns the registered map names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// mapsFile is the YAML shape accepted by LoadFile.
type mapsFile struct {
	Maps []MapDef `yaml:"maps"`
}

// LoadFile registers user-defined maps from a YAML file and reports how
// many were added. Validation stops at the first bad definition.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, eris.Wrapf(err, "atlas: read maps file %s", path)
	}
	var mf mapsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return 0, eris.Wrapf(err, "atlas: parse maps file %s", path)
	}
	for i, def := range mf.Maps {
		if err := r.Register(def); err != nil {
			return i, err
		}
	}
	return len(mf.Maps), nil
}
