// Package solver resolves node slots to modules of a compiled ruleset.
package solver

import (
	"context"
	"errors"
	"fmt"

	"crosswarped.com/valence/pkg/ruleset"
)

var ErrUnknownSolver = errors.New("unknown solver")

// Result summarizes one solve.
type Result struct {
	ResolvedCount     int  `json:"resolved" yaml:"resolved"`
	UnsolvableCount   int  `json:"unsolvable" yaml:"unsolvable"`
	BoundaryCount     int  `json:"boundary" yaml:"boundary"`
	MinimumsSatisfied bool `json:"minimums_satisfied" yaml:"minimums_satisfied"`

	// Success is true iff no slot is unsolvable and every minimum is met.
	Success bool `json:"success" yaml:"success"`
}

func (r Result) String() string {
	return fmt.Sprintf("resolved=%d unsolvable=%d boundary=%d minimums=%v success=%v",
		r.ResolvedCount, r.UnsolvableCount, r.BoundaryCount, r.MinimumsSatisfied, r.Success)
}

// Solver is a strategy that resolves every non-boundary slot either to a
// module or to UnsolvableModule.
//
// A Solver instance serves a single solve at a time. The slot array passed
// to Initialize is written in place and must not be touched by anyone else
// until Solve returns.
type Solver interface {
	Name() string
	Initialize(compiled *ruleset.Compiled, slots []NodeSlot, seed int64)
	Solve() Result

	// SolveContext is Solve with cancellation checked between collapses. On
	// cancellation the slots not yet reached stay unset.
	SolveContext(ctx context.Context) (Result, error)
}

// Kind names a solving strategy.
type Kind string

const KindEntropy Kind = "entropy"

// Options selects and configures a solver.
type Options struct {
	Kind Kind

	// MinSpawnBoost multiplies the weight of modules still below their
	// minimum. Values below 1 are replaced by DefaultMinSpawnBoost.
	MinSpawnBoost float64
}

// New creates a solver for the given options. An empty Kind selects the
// entropy solver.
func New(opts Options) (Solver, error) {
	switch opts.Kind {
	case KindEntropy, "":
		return NewEntropySolver(opts.MinSpawnBoost), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, opts.Kind)
	}
}
