package solver

import (
	"math/rand/v2"

	"crosswarped.com/valence/pkg/distribution"
	"crosswarped.com/valence/pkg/ruleset"
)

// kSeedStream is the fixed PCG stream; only the seed varies between solves.
const kSeedStream = 0x9e3779b97f4a7c15

// Base holds the state and predicates shared by every strategy.
type Base struct {
	Compiled *ruleset.Compiled
	Slots    []NodeSlot
	Tracker  *distribution.Tracker
	Rand     *rand.Rand
}

// Initialize stores the inputs, seeds the random source and marks every slot
// without sockets as a boundary. Other slots are reset to UnsetModule.
//
// A nil compiled ruleset leaves the solver with nothing to do.
func (b *Base) Initialize(compiled *ruleset.Compiled, slots []NodeSlot, seed int64) {
	b.Compiled = compiled
	b.Slots = slots
	b.Rand = rand.New(rand.NewPCG(uint64(seed), kSeedStream))
	b.Tracker = distribution.NewTracker(compiled)

	if compiled == nil {
		return
	}
	for i := range slots {
		if slots[i].HasSockets() {
			slots[i].ResolvedModule = UnsetModule
		} else {
			slots[i].ResolvedModule = NullModule
		}
	}
}

func (b *Base) ready() bool {
	return b.Compiled != nil && b.Slots != nil
}

// IsModuleCompatibleWithNeighbor reports whether neighbor is declared behind
// the given socket of module.
//
// Only layer 0 is consulted. Compatibility declared on further layers is not
// checked here even though DoesModuleFitSlot checks the masks of all layers.
func (b *Base) IsModuleCompatibleWithNeighbor(module, socket, neighbor int) bool {
	if b.Compiled == nil || len(b.Compiled.Layers) == 0 {
		return false
	}
	return b.Compiled.Layers[0].IsNeighborValid(module, socket, neighbor)
}

// DoesModuleFitSlot reports whether every socket the module needs, in every
// layer, is present on the slot. Extra slot sockets are allowed.
func (b *Base) DoesModuleFitSlot(module int, slot *NodeSlot) bool {
	if b.Compiled == nil || slot == nil || module < 0 || module >= b.Compiled.ModuleCount {
		return false
	}
	for l := range b.Compiled.LayerCount {
		if !slot.SocketMask(l).ContainsAll(b.Compiled.GetModuleSocketMask(module, l)) {
			return false
		}
	}
	return true
}

// placedNeighbor returns the slot index behind socket if that slot holds a
// module, or -1.
func (b *Base) placedNeighbor(slot *NodeSlot, socket int) int {
	n := slot.Neighbor(socket)
	if n < 0 || n >= len(b.Slots) || !b.Slots[n].IsPlaced() {
		return -1
	}
	return n
}

func (b *Base) tally() Result {
	var r Result
	for i := range b.Slots {
		s := &b.Slots[i]
		switch {
		case s.IsBoundary():
			r.BoundaryCount++
		case s.IsUnsolvable():
			r.UnsolvableCount++
		case s.IsPlaced():
			r.ResolvedCount++
		}
	}
	r.MinimumsSatisfied = b.Tracker.AreMinimumsSatisfied()
	r.Success = r.UnsolvableCount == 0 && r.MinimumsSatisfied
	return r
}
