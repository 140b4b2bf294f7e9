// Package distribution tracks per-module spawn counts against the minimum and
// maximum constraints of a compiled ruleset for the duration of one solve.
package distribution

import (
	"crosswarped.com/valence/pkg/ruleset"
)

// Tracker counts placements per module.
//
// A module at its maximum can never be recorded again. A module leaves the
// "needs minimum" set exactly when its count reaches its minimum.
type Tracker struct {
	counts    []int32
	minSpawns []int32
	maxSpawns []int32

	needsMin    []bool
	numNeedsMin int
	atMax       []bool
}

// NewTracker creates a tracker initialized from the compiled ruleset.
func NewTracker(compiled *ruleset.Compiled) *Tracker {
	t := &Tracker{}
	t.Initialize(compiled)
	return t
}

// Initialize resets all counts for the modules of the compiled ruleset.
//
// Modules with MaxSpawns == 0 start at their maximum.
func (t *Tracker) Initialize(compiled *ruleset.Compiled) {
	if compiled == nil {
		*t = Tracker{}
		return
	}

	n := compiled.ModuleCount
	t.counts = make([]int32, n)
	t.minSpawns = compiled.ModuleMinSpawns
	t.maxSpawns = compiled.ModuleMaxSpawns
	t.needsMin = make([]bool, n)
	t.atMax = make([]bool, n)
	t.numNeedsMin = 0

	for m := range n {
		if t.minSpawns[m] > 0 {
			t.needsMin[m] = true
			t.numNeedsMin++
		}
		if t.maxSpawns[m] == 0 {
			t.atMax[m] = true
		}
	}
}

func (t *Tracker) valid(module int) bool {
	return module >= 0 && module < len(t.counts)
}

// RecordSpawn counts one placement of the module. It returns false, without
// changing anything, if the module is unknown or already at its maximum.
func (t *Tracker) RecordSpawn(module int) bool {
	if !t.valid(module) || t.atMax[module] {
		return false
	}

	t.counts[module]++
	count := t.counts[module]

	if t.needsMin[module] && count >= t.minSpawns[module] {
		t.needsMin[module] = false
		t.numNeedsMin--
	}
	if limit := t.maxSpawns[module]; limit >= 0 && count >= limit {
		t.atMax[module] = true
	}
	return true
}

// CanSpawn reports whether the module may still be placed.
func (t *Tracker) CanSpawn(module int) bool {
	return t.valid(module) && !t.atMax[module]
}

// NeedsMinimum reports whether the module is still below its minimum.
func (t *Tracker) NeedsMinimum(module int) bool {
	return t.valid(module) && t.needsMin[module]
}

// IsAtMaximum reports whether the module has reached its maximum.
func (t *Tracker) IsAtMaximum(module int) bool {
	return t.valid(module) && t.atMax[module]
}

// SpawnCount returns how many times the module has been placed.
func (t *Tracker) SpawnCount(module int) int32 {
	if !t.valid(module) {
		return 0
	}
	return t.counts[module]
}

// AreMinimumsSatisfied reports whether every module reached its minimum.
func (t *Tracker) AreMinimumsSatisfied() bool {
	return t.numNeedsMin == 0
}

// PendingMinimums returns the modules still below their minimum.
func (t *Tracker) PendingMinimums() []int {
	var out []int
	for m, needs := range t.needsMin {
		if needs {
			out = append(out, m)
		}
	}
	return out
}
