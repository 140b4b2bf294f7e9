package primitives

import "fmt"

// Placement represents the staged outcome for a single point of a cluster.
type Placement struct {
	Point      int    `json:"point" yaml:"point"`
	Module     int    `json:"module" yaml:"module"`
	Asset      string `json:"asset,omitempty" yaml:"asset,omitempty"`
	Unsolvable bool   `json:"unsolvable,omitempty" yaml:"unsolvable,omitempty"`
}

// IsPlaced returns true if a module was resolved for the point.
func (p *Placement) IsPlaced() bool {
	return p.Module >= 0
}

func (p *Placement) String() string {
	if p.Unsolvable {
		return fmt.Sprintf("#%d: unsolvable", p.Point)
	}
	if !p.IsPlaced() {
		return fmt.Sprintf("#%d: -", p.Point)
	}
	return fmt.Sprintf("#%d: %d (%s)", p.Point, p.Module, p.Asset)
}
