package primitives

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMakeModuleSetSortsAndDedupes(t *testing.T) {
	s := MakeModuleSet([]int{4, 1, 4, 0})
	if diff := cmp.Diff([]int{0, 1, 4}, s.Slice()); diff != "" {
		t.Errorf("Slice() mismatch (-want +got):\n%s", diff)
	}
	if !s.Contains(4) || s.Contains(2) {
		t.Errorf("Contains mismatch for %v", s)
	}
}

func TestModuleSetFilter(t *testing.T) {
	s := MakeModuleSet([]int{0, 1, 2, 3, 4})

	t.Run("keeps all", func(t *testing.T) {
		got := s.Filter(func(int) bool { return true })
		if got.Len() != 5 {
			t.Errorf("Len() = %d, want 5", got.Len())
		}
	})

	t.Run("removes odd", func(t *testing.T) {
		got := s.Filter(func(m int) bool { return m%2 == 0 })
		if diff := cmp.Diff([]int{0, 2, 4}, slices.Collect(got.Iterate())); diff != "" {
			t.Errorf("Filter mismatch (-want +got):\n%s", diff)
		}
		if s.Len() != 5 {
			t.Errorf("receiver modified: %v", s)
		}
	})

	t.Run("removes all", func(t *testing.T) {
		got := s.Filter(func(int) bool { return false })
		if !got.IsEmpty() {
			t.Errorf("IsEmpty() = false for %v", got)
		}
	})
}

func TestModuleSetString(t *testing.T) {
	if got, want := MakeModuleSet(nil).String(), "Modules([])"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := MakeModuleSet([]int{5, 4, 3, 2, 1}).String(), "Modules([1, 2, 3, ...2])"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
