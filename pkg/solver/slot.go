package solver

import (
	"fmt"

	"crosswarped.com/valence/pkg/primitives"
)

// Outcome sentinels stored in NodeSlot.ResolvedModule. Any value >= 0 is a
// resolved module index.
const (
	UnsetModule      = -1
	NullModule       = -2 // boundary: the slot has no sockets at all
	UnsolvableModule = -3
)

// NodeSlot is the per-node record a solver resolves.
//
// The caller owns the slot array. A solver only writes ResolvedModule.
type NodeSlot struct {
	// NodeIndex is the node's index in the caller's topology.
	NodeIndex int

	// SocketMasks holds one mask per layer.
	SocketMasks []primitives.SocketMask

	// SocketToNeighbor maps a socket bit to the index, in the slot array, of
	// the slot behind it, or -1.
	SocketToNeighbor []int

	ResolvedModule int
}

// NewNodeSlot creates an unresolved slot with no neighbors.
func NewNodeSlot(nodeIndex int, masks ...primitives.SocketMask) NodeSlot {
	s := NodeSlot{
		NodeIndex:        nodeIndex,
		SocketMasks:      masks,
		SocketToNeighbor: make([]int, primitives.MaxSockets),
		ResolvedModule:   UnsetModule,
	}
	for i := range s.SocketToNeighbor {
		s.SocketToNeighbor[i] = -1
	}
	return s
}

// SetNeighbor links the slot at neighbor behind socket.
func (s *NodeSlot) SetNeighbor(socket, neighbor int) {
	if socket < 0 || socket >= len(s.SocketToNeighbor) {
		return
	}
	s.SocketToNeighbor[socket] = neighbor
}

// Neighbor returns the slot behind socket, or -1.
func (s *NodeSlot) Neighbor(socket int) int {
	if socket < 0 || socket >= len(s.SocketToNeighbor) {
		return -1
	}
	return s.SocketToNeighbor[socket]
}

// SocketMask returns the mask of a layer; 0 if the slot has none for it.
func (s *NodeSlot) SocketMask(layer int) primitives.SocketMask {
	if layer < 0 || layer >= len(s.SocketMasks) {
		return 0
	}
	return s.SocketMasks[layer]
}

// HasSockets reports whether any layer mask has a bit set.
func (s *NodeSlot) HasSockets() bool {
	for _, m := range s.SocketMasks {
		if !m.IsEmpty() {
			return true
		}
	}
	return false
}

func (s *NodeSlot) IsResolved() bool   { return s.ResolvedModule != UnsetModule }
func (s *NodeSlot) IsPlaced() bool     { return s.ResolvedModule >= 0 }
func (s *NodeSlot) IsBoundary() bool   { return s.ResolvedModule == NullModule }
func (s *NodeSlot) IsUnsolvable() bool { return s.ResolvedModule == UnsolvableModule }

func (s *NodeSlot) String() string {
	switch s.ResolvedModule {
	case UnsetModule:
		return fmt.Sprintf("slot %d: unset", s.NodeIndex)
	case NullModule:
		return fmt.Sprintf("slot %d: boundary", s.NodeIndex)
	case UnsolvableModule:
		return fmt.Sprintf("slot %d: unsolvable", s.NodeIndex)
	default:
		return fmt.Sprintf("slot %d: module %d", s.NodeIndex, s.ResolvedModule)
	}
}
