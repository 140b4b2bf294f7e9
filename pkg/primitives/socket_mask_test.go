package primitives

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSocketMask(t *testing.T) {
	m, err := MakeSocketMask(0, 5, 63)
	if err != nil {
		t.Fatalf("MakeSocketMask: %v", err)
	}

	if got := m.Count(); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	for _, s := range []int{0, 5, 63} {
		if !m.Contains(s) {
			t.Errorf("Contains(%d) = false, want true", s)
		}
	}
	for _, s := range []int{-1, 1, 62, 64} {
		if m.Contains(s) {
			t.Errorf("Contains(%d) = true, want false", s)
		}
	}
	if diff := cmp.Diff([]int{0, 5, 63}, m.Sockets()); diff != "" {
		t.Errorf("Sockets() mismatch (-want +got):\n%s", diff)
	}
}

func TestSocketMaskAddOutOfRange(t *testing.T) {
	var m SocketMask
	if err := m.Add(64); err == nil {
		t.Error("Add(64) succeeded, want error")
	}
	if err := m.Add(-1); err == nil {
		t.Error("Add(-1) succeeded, want error")
	}
	if !m.IsEmpty() {
		t.Errorf("mask changed after failed Add: %v", m)
	}
}

func TestSocketMaskContainsAll(t *testing.T) {
	tests := []struct {
		name  string
		slot  SocketMask
		other SocketMask
		want  bool
	}{
		{"exact", 0b11, 0b11, true},
		{"superset slot", 0b111, 0b011, true},
		{"missing socket", 0b01, 0b11, false},
		{"empty other", 0b01, 0, true},
		{"empty slot, empty other", 0, 0, true},
		{"empty slot", 0, 0b1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.slot.ContainsAll(tt.other); got != tt.want {
				t.Errorf("%v.ContainsAll(%v) = %v, want %v", tt.slot, tt.other, got, tt.want)
			}
		})
	}
}

func TestSocketMaskString(t *testing.T) {
	if got, want := SocketMask(0).String(), "sockets [] (0/64)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := SocketMask(0b101).String(), "sockets [0, 2] (2/64)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
