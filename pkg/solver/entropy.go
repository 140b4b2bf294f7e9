package solver

import (
	"context"
	"slices"

	"crosswarped.com/valence/pkg/primitives"
	"crosswarped.com/valence/pkg/ruleset"
)

// DefaultMinSpawnBoost is the weight multiplier for modules below their minimum.
const DefaultMinSpawnBoost = 2.0

// kResolvedNeighborBias scales how much placed neighbors lower a slot's entropy.
const kResolvedNeighborBias = 0.5

type slotState struct {
	candidates primitives.ModuleSet
	entropy    float64
}

// EntropySolver collapses the unresolved slot with the lowest entropy first,
// picking a module by weighted random among its remaining candidates.
//
// Candidates are filtered against placed neighbors only when a slot is
// collapsed; placing a module merely refreshes its neighbors' entropy. There
// is no backtracking: a slot left without candidates becomes unsolvable and
// the solve moves on.
type EntropySolver struct {
	Base

	minSpawnBoost float64
	states        []slotState
	cumulative    []float64
}

// NewEntropySolver creates an entropy solver. A boost below 1 selects
// DefaultMinSpawnBoost.
func NewEntropySolver(minSpawnBoost float64) *EntropySolver {
	if minSpawnBoost < 1 {
		minSpawnBoost = DefaultMinSpawnBoost
	}
	return &EntropySolver{minSpawnBoost: minSpawnBoost}
}

func (s *EntropySolver) Name() string {
	return string(KindEntropy)
}

// MinSpawnBoost returns the configured weight multiplier.
func (s *EntropySolver) MinSpawnBoost() float64 {
	return s.minSpawnBoost
}

// Initialize builds the candidate set of every unresolved slot. Slots with
// sockets but no fitting module are marked unsolvable right away.
func (s *EntropySolver) Initialize(compiled *ruleset.Compiled, slots []NodeSlot, seed int64) {
	s.Base.Initialize(compiled, slots, seed)
	s.states = make([]slotState, len(slots))
	if !s.ready() {
		return
	}

	for i := range slots {
		slot := &slots[i]
		if slot.IsResolved() {
			continue
		}
		fitting := s.fittingModules(slot)
		if len(fitting) == 0 {
			slot.ResolvedModule = UnsolvableModule
			continue
		}
		s.states[i].candidates = primitives.MakeModuleSet(fitting)
	}
}

func (s *EntropySolver) fittingModules(slot *NodeSlot) []int {
	if modules, ok := s.Compiled.FittingModules(slot.SocketMask(0)); ok {
		return modules
	}
	var out []int
	for m := range s.Compiled.ModuleCount {
		if s.DoesModuleFitSlot(m, slot) {
			out = append(out, m)
		}
	}
	return out
}

// Candidates returns the current candidate set of a slot.
func (s *EntropySolver) Candidates(slot int) primitives.ModuleSet {
	if slot < 0 || slot >= len(s.states) {
		return primitives.ModuleSet{}
	}
	return s.states[slot].candidates
}

func (s *EntropySolver) Solve() Result {
	r, _ := s.SolveContext(context.Background())
	return r
}

func (s *EntropySolver) SolveContext(ctx context.Context) (Result, error) {
	if !s.ready() {
		return Result{}, nil
	}

	queue := make([]int, 0, len(s.Slots))
	for i := range s.Slots {
		if s.Slots[i].IsResolved() {
			continue
		}
		s.states[i].entropy = s.entropy(i)
		queue = append(queue, i)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return s.tally(), err
		}

		// Entropies change as neighbors resolve, so rescan on every pop.
		best := 0
		for qi := 1; qi < len(queue); qi++ {
			if s.states[queue[qi]].entropy < s.states[queue[best]].entropy {
				best = qi
			}
		}
		idx := queue[best]
		queue = slices.Delete(queue, best, best+1)

		s.collapse(idx)
	}

	return s.tally(), nil
}

// entropy is the candidate count, lowered by the share of placed neighbors.
func (s *EntropySolver) entropy(idx int) float64 {
	slot := &s.Slots[idx]

	var total, placed int
	for socket, n := range slot.SocketToNeighbor {
		if n < 0 || n >= len(s.Slots) {
			continue
		}
		total++
		if s.placedNeighbor(slot, socket) >= 0 {
			placed++
		}
	}

	e := float64(s.states[idx].candidates.Len())
	if total > 0 {
		e -= kResolvedNeighborBias * float64(placed) / float64(total)
	}
	return e
}

func (s *EntropySolver) collapse(idx int) {
	slot := &s.Slots[idx]
	state := &s.states[idx]

	state.candidates = state.candidates.Filter(func(m int) bool {
		if !s.Tracker.CanSpawn(m) {
			return false
		}
		for socket := range slot.SocketToNeighbor {
			n := s.placedNeighbor(slot, socket)
			if n < 0 {
				continue
			}
			if !s.IsModuleCompatibleWithNeighbor(m, socket, s.Slots[n].ResolvedModule) {
				return false
			}
		}
		return true
	})

	if state.candidates.IsEmpty() {
		slot.ResolvedModule = UnsolvableModule
		return
	}

	chosen := s.selectModule(state.candidates)
	slot.ResolvedModule = chosen
	state.candidates = primitives.ModuleSet{}
	s.Tracker.RecordSpawn(chosen)

	for _, n := range slot.SocketToNeighbor {
		if n < 0 || n >= len(s.Slots) || s.Slots[n].IsResolved() {
			continue
		}
		s.states[n].entropy = s.entropy(n)
	}
}

// selectModule draws a candidate proportionally to its weight, boosted for
// modules below their minimum. Degenerate weights fall back to a uniform draw.
func (s *EntropySolver) selectModule(candidates primitives.ModuleSet) int {
	s.cumulative = s.cumulative[:0]
	total := 0.0
	for m := range candidates.Iterate() {
		w := s.Compiled.ModuleWeights[m]
		if s.Tracker.NeedsMinimum(m) {
			w *= s.minSpawnBoost
		}
		total += w
		s.cumulative = append(s.cumulative, total)
	}

	if total <= 0 {
		return candidates.At(s.Rand.IntN(candidates.Len()))
	}
	return candidates.At(pickCumulative(s.cumulative, s.Rand.Float64()*total))
}

// pickCumulative returns the first index whose cumulative weight reaches draw.
func pickCumulative(cumulative []float64, draw float64) int {
	for i, c := range cumulative {
		if c >= draw {
			return i
		}
	}
	return len(cumulative) - 1
}
