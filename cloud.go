package valence

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"crosswarped.com/valence/pkg/config"
	"crosswarped.com/valence/pkg/staging"
)

// SummaryRow is one exported cluster solve.
type SummaryRow struct {
	RunID             string    `bigquery:"run_id"`
	ClusterID         string    `bigquery:"cluster_id"`
	Solver            string    `bigquery:"solver"`
	Seed              int64     `bigquery:"seed"`
	Nodes             int       `bigquery:"nodes"`
	Resolved          int       `bigquery:"resolved"`
	Unsolvable        int       `bigquery:"unsolvable"`
	Boundary          int       `bigquery:"boundary"`
	Pruned            int       `bigquery:"pruned"`
	MinimumsSatisfied bool      `bigquery:"minimums_satisfied"`
	Success           bool      `bigquery:"success"`
	DurationMillis    float64   `bigquery:"duration_ms"`
	StagedAt          time.Time `bigquery:"staged_at"`
}

// SummaryRows builds one summary row per staged cluster.
func SummaryRows(staged []*staging.Staged, now time.Time) []*SummaryRow {
	rows := make([]*SummaryRow, 0, len(staged))
	for _, st := range staged {
		r := st.Result
		rows = append(rows, &SummaryRow{
			RunID:             st.RunID,
			ClusterID:         st.ClusterID,
			Solver:            st.Solver,
			Seed:              st.Seed,
			Nodes:             r.ResolvedCount + r.UnsolvableCount + r.BoundaryCount,
			Resolved:          r.ResolvedCount,
			Unsolvable:        r.UnsolvableCount,
			Boundary:          r.BoundaryCount,
			Pruned:            st.Pruned,
			MinimumsSatisfied: r.MinimumsSatisfied,
			Success:           r.Success,
			DurationMillis:    float64(st.Duration) / float64(time.Millisecond),
			StagedAt:          now.UTC(),
		})
	}
	return rows
}

// ExportSummaries streams the rows into the configured BigQuery table.
func ExportSummaries(ctx context.Context, cfg config.BigQuery, rows []*SummaryRow) error {
	if !cfg.Enabled || len(rows) == 0 {
		return nil
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return fmt.Errorf("failed to create BigQuery client: %w", err)
	}
	defer client.Close()

	inserter := client.Dataset(cfg.Dataset).Table(cfg.Table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("failed to insert %d summaries into %s.%s: %w", len(rows), cfg.Dataset, cfg.Table, err)
	}
	return nil
}
