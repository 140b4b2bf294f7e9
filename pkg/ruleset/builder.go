package ruleset

import (
	"fmt"
	"maps"
)

// NewRuleset creates an empty ruleset.
func NewRuleset(name string) *Ruleset {
	return &Ruleset{Name: name}
}

// AddLayer appends a layer with the given socket names.
func (r *Ruleset) AddLayer(name string, sockets ...string) *Ruleset {
	l := Layer{Name: name, Sockets: make([]Socket, len(sockets))}
	for i, s := range sockets {
		l.Sockets[i] = Socket{Name: s}
	}
	r.Layers = append(r.Layers, l)
	return r
}

// AddLayerN appends a layer with n sockets named s0..s(n-1).
func (r *Ruleset) AddLayerN(name string, n int) *Ruleset {
	sockets := make([]string, n)
	for i := range sockets {
		sockets[i] = fmt.Sprintf("s%d", i)
	}
	return r.AddLayer(name, sockets...)
}

// AddModule appends a module and returns the index it will compile to.
func (r *Ruleset) AddModule(m Module) int {
	r.Modules = append(r.Modules, m)
	return len(r.Modules) - 1
}

// WithWeight returns a copy of m with the given weight.
func (m Module) WithWeight(w float64) Module {
	m.Weight = w
	return m
}

// WithSpawns returns a copy of m with the given spawn limits.
func (m Module) WithSpawns(minSpawns, maxSpawns int32) Module {
	m.MinSpawns = minSpawns
	m.MaxSpawns = maxSpawns
	return m
}

// WithAsset returns a copy of m referencing the given asset.
func (m Module) WithAsset(asset string) Module {
	m.Asset = asset
	return m
}

// WithSockets returns a copy of m requiring the given sockets in a layer.
func (m Module) WithSockets(layer string, sockets ...string) Module {
	m.Layers = maps.Clone(m.Layers)
	if m.Layers == nil {
		m.Layers = make(map[string]LayerConfig)
	}
	cfg := m.Layers[layer]
	cfg.Sockets = append(append([]string(nil), cfg.Sockets...), sockets...)
	m.Layers[layer] = cfg
	return m
}

// WithNeighbors returns a copy of m that accepts the given modules behind a
// socket of a layer.
func (m Module) WithNeighbors(layer, socket string, modules ...int) Module {
	m.Layers = maps.Clone(m.Layers)
	if m.Layers == nil {
		m.Layers = make(map[string]LayerConfig)
	}
	cfg := m.Layers[layer]
	cfg.Neighbors = maps.Clone(cfg.Neighbors)
	if cfg.Neighbors == nil {
		cfg.Neighbors = make(map[string][]int)
	}
	cfg.Neighbors[socket] = append(append([]int(nil), cfg.Neighbors[socket]...), modules...)
	m.Layers[layer] = cfg
	return m
}
