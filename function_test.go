package valence

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswarped.com/valence/pkg/config"
	"crosswarped.com/valence/pkg/logging"
	"crosswarped.com/valence/pkg/solver"
	"crosswarped.com/valence/pkg/staging"
)

const solveBody = `{
  "seed": 5,
  "ruleset": {
    "name": "walls",
    "layers": [{"name": "main", "sockets": [{"name": "n"}, {"name": "s"}]}],
    "modules": [
      {
        "name": "wall",
        "asset": "/Game/Walls/Wall",
        "layers": {"main": {"sockets": ["n"], "neighbors": {"n": [0]}}}
      }
    ]
  },
  "clusters": [
    {
      "id": "c0",
      "nodes": [
        {"point": 0, "masks": [1], "links": [{"node": 1}]},
        {"point": 1, "masks": [1], "links": [{"node": 0}]},
        {"point": 2, "masks": [2]}
      ]
    }
  ]
}`

func post(t *testing.T, cfg config.Config, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleSolve(rec, req, cfg, logging.Discard())
	return rec
}

func TestHandleSolve(t *testing.T) {
	cfg := config.Default()
	cfg.Output.UnsolvableMarker = true

	rec := post(t, cfg, solveBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		RunID    string `json:"run_id"`
		Clusters []struct {
			ClusterID  string           `json:"cluster_id"`
			Seed       int64            `json:"seed"`
			Result     solver.Result    `json:"result"`
			Attributes []map[string]any `json:"attributes"`
		} `json:"clusters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.RunID)
	require.Len(t, resp.Clusters, 1)
	c := resp.Clusters[0]
	assert.Equal(t, "c0", c.ClusterID)
	assert.Equal(t, staging.ClusterSeed(5, "c0"), c.Seed)
	assert.Equal(t, 2, c.Result.ResolvedCount)
	assert.Equal(t, 1, c.Result.UnsolvableCount)

	require.Len(t, c.Attributes, 3)
	assert.Equal(t, "/Game/Walls/Wall", c.Attributes[0]["AssetPath"])
	assert.EqualValues(t, 0, c.Attributes[1]["ModuleIndex"])
	assert.EqualValues(t, solver.UnsolvableModule, c.Attributes[2]["ModuleIndex"])
	assert.Equal(t, true, c.Attributes[2]["Unsolvable"])
}

func TestHandleSolveErrors(t *testing.T) {
	cfg := config.Default()

	t.Run("method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		HandleSolve(rec, req, cfg, logging.Discard())
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	tests := map[string]string{
		"malformed":    `{"ruleset": [`,
		"no ruleset":   `{"clusters": []}`,
		"bad ruleset":  `{"ruleset": {"name": "r", "modules": [{"name": ""}]}}`,
		"missing node": `{"ruleset": {"name": "r"}, "clusters": [{"id": "x", "nodes": [{"links": [{"node": 4}]}]}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, post(t, cfg, body).Code)
		})
	}
}

func TestSummaryRows(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	staged := []*staging.Staged{{
		RunID:     "run",
		ClusterID: "c0",
		Solver:    "entropy",
		Seed:      11,
		Result: solver.Result{
			ResolvedCount:     4,
			UnsolvableCount:   1,
			BoundaryCount:     2,
			MinimumsSatisfied: true,
		},
		Pruned:   1,
		Duration: 1500 * time.Microsecond,
	}}

	rows := SummaryRows(staged, now)
	require.Len(t, rows, 1)
	assert.Equal(t, &SummaryRow{
		RunID:             "run",
		ClusterID:         "c0",
		Solver:            "entropy",
		Seed:              11,
		Nodes:             7,
		Resolved:          4,
		Unsolvable:        1,
		Boundary:          2,
		Pruned:            1,
		MinimumsSatisfied: true,
		DurationMillis:    1.5,
		StagedAt:          now,
	}, rows[0])
}

func TestExportSummariesDisabled(t *testing.T) {
	err := ExportSummaries(t.Context(), config.BigQuery{}, []*SummaryRow{{RunID: "r"}})
	assert.NoError(t, err)
}
