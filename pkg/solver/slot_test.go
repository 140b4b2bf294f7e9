package solver

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"crosswarped.com/valence/pkg/primitives"
)

func TestNodeSlotNeighbors(t *testing.T) {
	s := NewNodeSlot(4, 0b101)
	if got := len(s.SocketToNeighbor); got != primitives.MaxSockets {
		t.Fatalf("len(SocketToNeighbor) = %d, want %d", got, primitives.MaxSockets)
	}

	s.SetNeighbor(2, 7)
	s.SetNeighbor(-1, 3)
	s.SetNeighbor(primitives.MaxSockets, 3)

	got := []int{s.Neighbor(0), s.Neighbor(2), s.Neighbor(-1), s.Neighbor(primitives.MaxSockets)}
	if diff := cmp.Diff([]int{-1, 7, -1, -1}, got); diff != "" {
		t.Errorf("neighbors mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeSlotMasks(t *testing.T) {
	s := NewNodeSlot(0, 0, 0b10)
	if !s.HasSockets() {
		t.Errorf("HasSockets() = false with a non-empty second layer")
	}
	if got := s.SocketMask(1); got != 0b10 {
		t.Errorf("SocketMask(1) = %v", got)
	}
	if got := s.SocketMask(5); got != 0 {
		t.Errorf("SocketMask(5) = %v, want empty", got)
	}

	if empty := NewNodeSlot(1); empty.HasSockets() {
		t.Errorf("HasSockets() = true for a slot without masks")
	}
}

func TestNodeSlotOutcomes(t *testing.T) {
	tests := []struct {
		module                               int
		resolved, placed, boundary, unsolved bool
		str                                  string
	}{
		{UnsetModule, false, false, false, false, "slot 3: unset"},
		{NullModule, true, false, true, false, "slot 3: boundary"},
		{UnsolvableModule, true, false, false, true, "slot 3: unsolvable"},
		{0, true, true, false, false, "slot 3: module 0"},
		{12, true, true, false, false, "slot 3: module 12"},
	}
	for _, tt := range tests {
		s := NewNodeSlot(3)
		s.ResolvedModule = tt.module
		got := []bool{s.IsResolved(), s.IsPlaced(), s.IsBoundary(), s.IsUnsolvable()}
		want := []bool{tt.resolved, tt.placed, tt.boundary, tt.unsolved}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("module %d: predicates mismatch (-want +got):\n%s", tt.module, diff)
		}
		if s.String() != tt.str {
			t.Errorf("String() = %q, want %q", s.String(), tt.str)
		}
	}
}
