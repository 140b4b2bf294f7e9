package primitives

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
)

// ModuleSet represents the set of module indices still possible for a slot.
//
// Module indices are kept in ascending order so iteration, and therefore any
// selection made from the set, is deterministic.
type ModuleSet struct {
	modules []int
}

// MakeModuleSet creates a set from the given module indices. The input is
// sorted and deduplicated in place.
func MakeModuleSet(modules []int) ModuleSet {
	if len(modules) == 0 {
		return ModuleSet{}
	}
	slices.Sort(modules)
	return ModuleSet{modules: slices.Compact(modules)}
}

// Len returns the number of modules in the set.
func (s ModuleSet) Len() int {
	return len(s.modules)
}

// IsEmpty checks if no module is possible anymore.
func (s ModuleSet) IsEmpty() bool {
	return len(s.modules) == 0
}

// At returns the i-th module index, in ascending order.
func (s ModuleSet) At(i int) int {
	return s.modules[i]
}

// Contains checks if a module index is in the set.
func (s ModuleSet) Contains(module int) bool {
	_, found := slices.BinarySearch(s.modules, module)
	return found
}

// Filter returns the subset of modules for which keep returns true.
//
// The receiver is returned unchanged if every module is kept, so callers can
// compare lengths to detect a change without paying for a copy.
func (s ModuleSet) Filter(keep func(module int) bool) ModuleSet {
	// Lazy: First check if any module is rejected at all.
	// Otherwise we don't need to copy the list.
	firstRejected := slices.IndexFunc(s.modules, func(m int) bool {
		return !keep(m)
	})
	if firstRejected < 0 {
		return s
	}

	filtered := make([]int, firstRejected, len(s.modules)-1)
	copy(filtered, s.modules[:firstRejected])
	for _, m := range s.modules[firstRejected+1:] {
		if keep(m) {
			filtered = append(filtered, m)
		}
	}
	return ModuleSet{modules: filtered}
}

// Iterate returns a sequence of all module indices in the set.
func (s ModuleSet) Iterate() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, m := range s.modules {
			if !yield(m) {
				return
			}
		}
	}
}

// Slice returns a copy of the module indices.
func (s ModuleSet) Slice() []int {
	return slices.Clone(s.modules)
}

func arrayStr(arr []int) string {
	const maxPrint = 3

	if len(arr) == 0 {
		return "[]"
	}
	strs := make([]string, 0, min(len(arr), maxPrint))
	for _, v := range arr[:min(len(arr), maxPrint)] {
		strs = append(strs, strconv.Itoa(v))
	}
	if len(arr) <= maxPrint {
		return fmt.Sprintf("[%s]", strings.Join(strs, ", "))
	}
	return fmt.Sprintf("[%s, ...%d]", strings.Join(strs, ", "), len(arr)-maxPrint)
}

func (s ModuleSet) String() string {
	return fmt.Sprintf("Modules(%s)", arrayStr(s.modules))
}
