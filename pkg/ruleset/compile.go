package ruleset

import (
	"fmt"
	"log/slog"
	"slices"

	"crosswarped.com/valence/pkg/primitives"
)

// Compile flattens the ruleset into its runtime form using the default logger.
// See CompileWithLogger.
func (r *Ruleset) Compile() bool {
	return r.CompileWithLogger(slog.Default())
}

// CompileWithLogger flattens the ruleset into its runtime form.
//
// On failure it returns false, logs the cause, and leaves the ruleset without
// compiled data; CompileErr returns the cause. On success Compiled returns the
// new data, which replaces any earlier compilation.
func (r *Ruleset) CompileWithLogger(logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	compiled, err := r.compile()
	if err != nil {
		r.compiled = nil
		r.compileErr = err
		logger.Error("failed to compile ruleset", "ruleset", r.Name, "error", err)
		return false
	}

	r.compiled = compiled
	r.compileErr = nil
	logger.Warn("compiled ruleset",
		"ruleset", r.Name,
		"modules", compiled.ModuleCount,
		"layers", compiled.LayerCount)
	return true
}

func (r *Ruleset) compile() (*Compiled, error) {
	// Socket bits first; a layer that cannot fit in a mask fails everything.
	for li := range r.Layers {
		l := &r.Layers[li]
		if len(l.Sockets) > primitives.MaxSockets {
			return nil, fmt.Errorf("%w: layer %q has %d sockets, at most %d are supported",
				ErrTooManySockets, l.Name, len(l.Sockets), primitives.MaxSockets)
		}
		for si := range l.Sockets {
			l.Sockets[si].Bit = si
		}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	numModules := len(r.Modules)
	numLayers := len(r.Layers)

	c := &Compiled{
		ModuleCount:       numModules,
		LayerCount:        numLayers,
		ModuleNames:       make([]string, numModules),
		ModuleWeights:     make([]float64, numModules),
		ModuleMinSpawns:   make([]int32, numModules),
		ModuleMaxSpawns:   make([]int32, numModules),
		ModuleAssets:      make([]string, numModules),
		ModuleSocketMasks: make([]primitives.SocketMask, numModules*numLayers),
		Layers:            make([]CompiledLayer, numLayers),
	}

	for mi := range r.Modules {
		m := &r.Modules[mi]
		c.ModuleNames[mi] = m.Name
		c.ModuleWeights[mi] = m.Weight
		c.ModuleMinSpawns[mi] = m.MinSpawns
		c.ModuleMaxSpawns[mi] = m.MaxSpawns
		c.ModuleAssets[mi] = m.Asset

		for li := range r.Layers {
			cfg, ok := m.Layers[r.Layers[li].Name]
			if !ok {
				continue
			}
			var mask primitives.SocketMask
			for _, name := range cfg.Sockets {
				if err := mask.Add(r.Layers[li].SocketBit(name)); err != nil {
					return nil, fmt.Errorf("%w: module %q: %w", ErrInvalidRuleset, m.Name, err)
				}
			}
			c.ModuleSocketMasks[mi*numLayers+li] = mask
		}
	}

	for li := range r.Layers {
		c.Layers[li] = r.compileLayer(li)
	}

	if numLayers == 1 {
		c.maskGroups = buildMaskGroups(c)
	}

	return c, nil
}

func (r *Ruleset) compileLayer(li int) CompiledLayer {
	layer := &r.Layers[li]
	numSockets := len(layer.Sockets)

	out := CompiledLayer{
		Name:        layer.Name,
		SocketCount: numSockets,
		Headers:     make([]NeighborHeader, len(r.Modules)*numSockets),
	}

	for mi := range r.Modules {
		cfg := r.Modules[mi].Layers[layer.Name]
		for si := range layer.Sockets {
			neighbors := cfg.Neighbors[layer.Sockets[si].Name]
			out.Headers[mi*numSockets+si] = NeighborHeader{
				Start: len(out.AllNeighbors),
				Count: len(neighbors),
			}
			out.AllNeighbors = append(out.AllNeighbors, neighbors...)
		}
	}
	return out
}

func buildMaskGroups(c *Compiled) []maskGroup {
	var groups []maskGroup
	for mi := 0; mi < c.ModuleCount; mi++ {
		mask := c.ModuleSocketMasks[mi]
		idx := slices.IndexFunc(groups, func(g maskGroup) bool { return g.mask == mask })
		if idx < 0 {
			groups = append(groups, maskGroup{mask: mask})
			idx = len(groups) - 1
		}
		groups[idx].modules = append(groups[idx].modules, mi)
	}
	return groups
}
