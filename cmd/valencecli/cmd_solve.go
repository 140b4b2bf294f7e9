package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"crosswarped.com/valence"
	"crosswarped.com/valence/pkg/ruleset"
	"crosswarped.com/valence/pkg/staging"
)

type solveFlags struct {
	ruleset    string
	graph      string
	out        string
	seed       int64
	randomSeed bool
	timeout    time.Duration
	export     bool
	trace      bool
	metricsOut string
}

func newSolveCmd(c *cli) *cobra.Command {
	f := &solveFlags{}

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve every cluster of a graph against a ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, f)
		},
	}

	cmd.Flags().StringVarP(&f.ruleset, "ruleset", "r", "", "Ruleset file (YAML or JSON)")
	cmd.Flags().StringVarP(&f.graph, "graph", "g", "", "Graph file with the clusters to solve (YAML or JSON)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Write the staged output to this file instead of stdout")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Override the configured seed")
	cmd.Flags().BoolVar(&f.randomSeed, "random-seed", false, "Draw a fresh seed from the clock")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 1*time.Minute, "The timeout for the whole run")
	cmd.Flags().BoolVar(&f.export, "export", false, "Export cluster summaries to BigQuery")
	cmd.Flags().BoolVar(&f.trace, "trace", false, "Print staging spans to stderr")
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "Write staging metrics to this file in the Prometheus text format")
	cmd.MarkFlagRequired("ruleset")
	cmd.MarkFlagRequired("graph")
	cmd.MarkFlagsMutuallyExclusive("seed", "random-seed")
	return cmd
}

func (c *cli) runSolve(cmd *cobra.Command, f *solveFlags) error {
	rs, err := ruleset.Load(f.ruleset)
	if err != nil {
		return err
	}
	graph, err := staging.LoadGraph(f.graph)
	if err != nil {
		return err
	}

	opts := c.cfg.StageOptions()
	switch {
	case f.randomSeed:
		src := rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().Nanosecond()))
		opts.Seed = int64(rand.New(src).Uint64())
	case cmd.Flags().Changed("seed"):
		opts.Seed = f.seed
	}

	stager, err := staging.New(rs, opts, c.logger)
	if err != nil {
		return err
	}

	if f.trace {
		shutdown, err := initTracing(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	staged, err := stager.Stage(ctx, graph.Clusters)
	if err != nil {
		return err
	}

	var unsolvable int
	for _, st := range staged {
		unsolvable += st.Result.UnsolvableCount
		c.logger.Info("staged cluster", "cluster", st.ClusterID, "result", st.Result.String())
	}
	c.logger.Info("staging complete", "clusters", len(staged), "unsolvable", unsolvable, "seed", opts.Seed)

	if f.export || c.cfg.BigQuery.Enabled {
		bq := c.cfg.BigQuery
		if !bq.Enabled {
			return errors.New("--export needs a bigquery section in the config")
		}
		if err := valence.ExportSummaries(ctx, bq, valence.SummaryRows(staged, time.Now())); err != nil {
			return err
		}
	}

	if f.metricsOut != "" {
		if err := writeMetrics(f.metricsOut); err != nil {
			return err
		}
	}

	resp := valence.NewSolveResponse(staged, c.cfg.AttributeNames())

	var w io.Writer = cmd.OutOrStdout()
	if f.out != "" {
		file, err := os.Create(f.out)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
