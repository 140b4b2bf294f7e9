// Package staging runs the module solver over the clusters of a graph and
// turns the solved slots into per-point placements.
package staging

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"crosswarped.com/valence/pkg/logging"
	"crosswarped.com/valence/pkg/primitives"
	"crosswarped.com/valence/pkg/ruleset"
	"crosswarped.com/valence/pkg/solver"
)

var ErrNoRuleset = errors.New("no ruleset provided")

// Options configures a Stager.
type Options struct {
	Solver solver.Options

	Seed int64

	// PerClusterSeed mixes the cluster id into Seed so every cluster gets
	// its own variation.
	PerClusterSeed bool

	// Workers bounds how many clusters are solved at once. Zero uses
	// GOMAXPROCS.
	Workers int

	// PruneUnsolvable drops unsolvable points from the placements.
	PruneUnsolvable bool

	// UnsolvableMarker sets Placement.Unsolvable on unsolvable points.
	UnsolvableMarker bool
}

// Staged is the outcome of one cluster.
type Staged struct {
	RunID      string                 `json:"run_id"`
	ClusterID  string                 `json:"cluster_id"`
	Seed       int64                  `json:"seed"`
	Solver     string                 `json:"solver"`
	Result     solver.Result          `json:"result"`
	Placements []primitives.Placement `json:"placements"`
	Pruned     int                    `json:"pruned"`
	Duration   time.Duration          `json:"duration_ns"`
}

// Stager solves clusters against one compiled ruleset. The compiled data is
// shared read-only, so a Stager may serve concurrent calls.
type Stager struct {
	compiled *ruleset.Compiled
	opts     Options
	logger   *slog.Logger
}

// New creates a Stager, compiling the ruleset first if needed.
func New(rs *ruleset.Ruleset, opts Options, logger *slog.Logger) (*Stager, error) {
	logger = logging.OrDefault(logger)
	if rs == nil {
		return nil, ErrNoRuleset
	}
	if !rs.IsCompiled() && !rs.CompileWithLogger(logger) {
		return nil, fmt.Errorf("%w: %w", ruleset.ErrNotCompiled, rs.CompileErr())
	}
	if _, err := solver.New(opts.Solver); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Stager{compiled: rs.Compiled(), opts: opts, logger: logger}, nil
}

// Compiled returns the ruleset data the stager solves against.
func (s *Stager) Compiled() *ruleset.Compiled {
	return s.compiled
}

// ClusterSeed combines a base seed with a hash of the cluster id.
func ClusterSeed(seed int64, clusterID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(clusterID))
	sum := h.Sum64()

	s := uint64(seed)
	return int64(s ^ (sum + 0x9e3779b9 + (s << 6) + (s >> 2)))
}

func (s *Stager) seedFor(clusterID string) int64 {
	if s.opts.PerClusterSeed {
		return ClusterSeed(s.opts.Seed, clusterID)
	}
	return s.opts.Seed
}

// Stage solves every cluster on a bounded worker pool. Results keep the
// order of clusters. The first error cancels the clusters not yet started.
func (s *Stager) Stage(ctx context.Context, clusters []Cluster) ([]*Staged, error) {
	runID := uuid.NewString()

	ctx, span := getTracer().Start(ctx, "staging.Stager.Stage",
		trace.WithAttributes(
			attribute.String("run_id", runID),
			attribute.Int("clusters", len(clusters)),
			attribute.Int("workers", s.opts.Workers),
		))
	defer span.End()

	out := make([]*Staged, len(clusters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i := range clusters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			staged, err := s.StageCluster(gctx, runID, &clusters[i])
			if err != nil {
				return err
			}
			out[i] = staged
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "staging failed")
		return nil, err
	}

	var unsolvable int
	for _, st := range out {
		unsolvable += st.Result.UnsolvableCount
	}
	span.SetAttributes(attribute.Int("unsolvable", unsolvable))
	span.SetStatus(codes.Ok, "staged")
	return out, nil
}

// StageCluster solves a single cluster.
func (s *Stager) StageCluster(ctx context.Context, runID string, c *Cluster) (*Staged, error) {
	ctx, span := getTracer().Start(ctx, "staging.Stager.StageCluster",
		trace.WithAttributes(
			attribute.String("cluster_id", c.ID),
			attribute.Int("nodes", len(c.Nodes)),
		))
	defer span.End()

	slots, err := BuildSlots(c)
	if err != nil {
		clustersStaged.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid cluster")
		return nil, err
	}

	sv, err := solver.New(s.opts.Solver)
	if err != nil {
		return nil, err
	}

	seed := s.seedFor(c.ID)
	start := time.Now()
	sv.Initialize(s.compiled, slots, seed)
	res, err := sv.SolveContext(ctx)
	elapsed := time.Since(start)
	if err != nil {
		clustersStaged.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "solve interrupted")
		return nil, fmt.Errorf("cluster %q: %w", c.ID, err)
	}
	solveDuration.Observe(elapsed.Seconds())

	slotOutcomes.WithLabelValues("resolved").Add(float64(res.ResolvedCount))
	slotOutcomes.WithLabelValues("unsolvable").Add(float64(res.UnsolvableCount))
	slotOutcomes.WithLabelValues("boundary").Add(float64(res.BoundaryCount))

	if res.UnsolvableCount > 0 {
		s.logger.Warn("nodes were unsolvable", "cluster", c.ID, "unsolvable", res.UnsolvableCount)
	}
	if !res.MinimumsSatisfied {
		s.logger.Warn("minimum spawn constraints were not satisfied", "cluster", c.ID)
	}
	if res.Success {
		clustersStaged.WithLabelValues("success").Inc()
	} else {
		clustersStaged.WithLabelValues("partial").Inc()
	}

	staged := &Staged{
		RunID:     runID,
		ClusterID: c.ID,
		Seed:      seed,
		Solver:    sv.Name(),
		Result:    res,
		Duration:  elapsed,
	}
	staged.Placements, staged.Pruned = s.placements(c, slots)

	span.SetAttributes(
		attribute.Int("resolved", res.ResolvedCount),
		attribute.Int("unsolvable", res.UnsolvableCount),
		attribute.Bool("success", res.Success),
	)
	span.SetStatus(codes.Ok, "cluster staged")
	return staged, nil
}

func (s *Stager) placements(c *Cluster, slots []solver.NodeSlot) ([]primitives.Placement, int) {
	out := make([]primitives.Placement, 0, len(slots))
	pruned := 0
	for i := range slots {
		slot := &slots[i]
		if s.opts.PruneUnsolvable && slot.IsUnsolvable() {
			pruned++
			continue
		}
		p := primitives.Placement{
			Point:  c.Nodes[slot.NodeIndex].Point,
			Module: slot.ResolvedModule,
		}
		if slot.IsPlaced() {
			p.Asset = s.compiled.ModuleAssets[slot.ResolvedModule]
		}
		if s.opts.UnsolvableMarker {
			p.Unsolvable = slot.IsUnsolvable()
		}
		out = append(out, p)
	}
	return out, pruned
}
