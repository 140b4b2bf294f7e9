package ruleset

import (
	"slices"

	"crosswarped.com/valence/pkg/primitives"
)

// NeighborHeader locates the neighbor list of one (module, socket) pair
// inside CompiledLayer.AllNeighbors.
type NeighborHeader struct {
	Start int
	Count int
}

// CompiledLayer is the flattened neighbor compatibility table of one layer.
//
// The header of (module, socket) lives at module*SocketCount + socket. A header
// with Count 0 means no neighbor is compatible through that socket.
type CompiledLayer struct {
	Name         string
	SocketCount  int
	Headers      []NeighborHeader
	AllNeighbors []int
}

// Neighbors returns the modules allowed behind the given socket of a module.
func (l *CompiledLayer) Neighbors(module, socket int) []int {
	if socket < 0 || socket >= l.SocketCount {
		return nil
	}
	idx := module*l.SocketCount + socket
	if module < 0 || idx >= len(l.Headers) {
		return nil
	}
	h := l.Headers[idx]
	return l.AllNeighbors[h.Start : h.Start+h.Count]
}

// IsNeighborValid reports whether neighbor is declared behind the socket.
func (l *CompiledLayer) IsNeighborValid(module, socket, neighbor int) bool {
	return slices.Contains(l.Neighbors(module, socket), neighbor)
}

type maskGroup struct {
	mask    primitives.SocketMask
	modules []int
}

// Compiled is the runtime form of a Ruleset. It is immutable once returned by
// Compile and may be shared by any number of concurrent solves.
type Compiled struct {
	ModuleCount int
	LayerCount  int

	ModuleNames     []string
	ModuleWeights   []float64
	ModuleMinSpawns []int32
	ModuleMaxSpawns []int32
	ModuleAssets    []string

	// ModuleSocketMasks is indexed by module*LayerCount + layer.
	ModuleSocketMasks []primitives.SocketMask

	Layers []CompiledLayer

	// maskGroups buckets modules by their exact socket mask. Only built for
	// single-layer rulesets.
	maskGroups []maskGroup
}

// GetModuleSocketMask returns the socket mask of a module for a layer.
func (c *Compiled) GetModuleSocketMask(module, layer int) primitives.SocketMask {
	if module < 0 || module >= c.ModuleCount || layer < 0 || layer >= c.LayerCount {
		return 0
	}
	return c.ModuleSocketMasks[module*c.LayerCount+layer]
}

// HasMaskLookup reports whether FittingModules can be used.
func (c *Compiled) HasMaskLookup() bool {
	return c.LayerCount == 1
}

// FittingModules returns, in ascending order, every module whose layer 0 mask
// is contained in slotMask. The second result is false if the ruleset has no
// mask lookup.
func (c *Compiled) FittingModules(slotMask primitives.SocketMask) ([]int, bool) {
	if !c.HasMaskLookup() {
		return nil, false
	}
	var out []int
	for _, g := range c.maskGroups {
		if slotMask.ContainsAll(g.mask) {
			out = append(out, g.modules...)
		}
	}
	slices.Sort(out)
	return out, true
}
