// internal/driver/registry.go
package driver

import (
	"fmt"
	"sort"
)

// Registry maps a driver identifier to its implementation.
// Built once at startup; read-only afterwards.
type Registry struct {
	drivers map[string]Driver
}

// NewRegistry builds a registry, rejecting empty or duplicate ids.
func NewRegistry(ds ...Driver) (*Registry, error) {
	r := &Registry{drivers: make(map[string]Driver, len(ds))}
	for _, d := range ds {
		id := d.ID()
		if id == "" {
			return nil, fmt.Errorf("driver: empty id for %s", d.Version())
		}
		if _, dup := r.drivers[id]; dup {
			return nil, fmt.Errorf("driver: duplicate id %q", id)
		}
		r.drivers[id] = d
	}
	return r, nil
}

// Lookup resolves a driver by id.
func (r *Registry) Lookup(id string) (Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, id)
	}
	return d, nil
}

// IDs returns the registered ids, sorted.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.drivers))
	for id := range r.drivers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Builtin lists every supported device model.
func Builtin() []*Model {
	return []*Model{
		DCBKernelST0HS2425,
		MeteorologyBoydak,
		SchneiderION7650,
		SchneiderION7650Voltages,
		SchneiderION7650Inavitas,
		EKKSchneiderION7650,
		SocomecDirisA10,
		ABBPVS800,
		ABBPVS980,
	}
}

// Default returns the registry of built-in models.
func Default() *Registry {
	models := Builtin()
	ds := make([]Driver, 0, len(models))
	for _, m := range models {
		ds = append(ds, m)
	}
	r, err := NewRegistry(ds...)
	if err != nil {
		panic(err)
	}
	return r
}
