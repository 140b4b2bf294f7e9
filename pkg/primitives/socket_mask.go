package primitives

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxSockets is the number of distinct sockets a single layer can express.
// It is the width of a SocketMask.
const MaxSockets = 64

// SocketMask represents a set of sockets using bit manipulation, one bit per
// socket index in [0, MaxSockets).
type SocketMask uint64

// MakeSocketMask creates a mask with the given socket indices set.
func MakeSocketMask(sockets ...int) (SocketMask, error) {
	var m SocketMask
	for _, s := range sockets {
		if err := m.Add(s); err != nil {
			return 0, err
		}
	}
	return m, nil
}

// Add adds a socket index to the mask.
func (m *SocketMask) Add(socket int) error {
	if socket < 0 || socket >= MaxSockets {
		return fmt.Errorf("socket %d is out of range", socket)
	}
	*m |= 1 << uint(socket)
	return nil
}

// AddAll adds all sockets from another mask to this mask.
func (m *SocketMask) AddAll(other SocketMask) {
	*m |= other
}

// Contains checks if a socket index is in the mask.
func (m SocketMask) Contains(socket int) bool {
	if socket < 0 || socket >= MaxSockets {
		return false
	}
	return m&(1<<uint(socket)) != 0
}

// ContainsAll reports whether every socket of other is also present in m.
// An empty other is contained by any mask.
func (m SocketMask) ContainsAll(other SocketMask) bool {
	return m&other == other
}

// Intersect returns the sockets present in both masks.
func (m SocketMask) Intersect(other SocketMask) SocketMask {
	return m & other
}

// IsEmpty checks if the mask has no sockets.
func (m SocketMask) IsEmpty() bool {
	return m == 0
}

// Count returns the number of sockets in the mask.
func (m SocketMask) Count() int {
	return bits.OnesCount64(uint64(m))
}

// Sockets returns the socket indices present in the mask, in ascending order.
func (m SocketMask) Sockets() []int {
	if m == 0 {
		return nil
	}
	out := make([]int, 0, m.Count())
	for rest := uint64(m); rest != 0; rest &= rest - 1 {
		out = append(out, bits.TrailingZeros64(rest))
	}
	return out
}

// String returns a string representation of the mask.
func (m SocketMask) String() string {
	if m == 0 {
		return "sockets [] (0/64)"
	}

	var sockets []string
	for _, s := range m.Sockets() {
		sockets = append(sockets, fmt.Sprintf("%d", s))
	}
	return fmt.Sprintf("sockets [%s] (%d/%d)", strings.Join(sockets, ", "), m.Count(), MaxSockets)
}
