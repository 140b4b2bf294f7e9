// Package valence exposes the module solver as a cloud function and exports
// solve summaries to BigQuery.
package valence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"gopkg.in/yaml.v3"

	"crosswarped.com/valence/pkg/config"
	"crosswarped.com/valence/pkg/logging"
	"crosswarped.com/valence/pkg/ruleset"
	"crosswarped.com/valence/pkg/staging"
)

// ConfigEnv names the environment variable holding the function's config
// file path.
const ConfigEnv = "VALENCE_CONFIG"

const maxRequestBytes = 32 << 20

func init() {
	functions.HTTP("SolveValence", SolveValence)
}

var (
	functionOnce   sync.Once
	functionConfig config.Config
	functionErr    error
	functionLogger *slog.Logger
)

func loadFunctionConfig() (config.Config, *slog.Logger, error) {
	functionOnce.Do(func() {
		functionConfig, functionErr = config.Load(os.Getenv(ConfigEnv))
		functionLogger = logging.New(functionConfig.Logging)
	})
	return functionConfig, functionLogger, functionErr
}

// SolveRequest is the body accepted by SolveValence, as JSON or YAML.
type SolveRequest struct {
	Ruleset  *ruleset.Ruleset  `yaml:"ruleset" json:"ruleset"`
	Clusters []staging.Cluster `yaml:"clusters" json:"clusters"`

	// Seed overrides the configured seed when set.
	Seed *int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ClusterResponse is the staged outcome of one cluster.
type ClusterResponse struct {
	*staging.Staged
	Attributes []map[string]any `json:"attributes"`
}

// SolveResponse is the body written by SolveValence.
type SolveResponse struct {
	RunID    string            `json:"run_id"`
	Clusters []ClusterResponse `json:"clusters"`
}

// NewSolveResponse renders staged clusters with their point attributes.
func NewSolveResponse(staged []*staging.Staged, names staging.AttributeNames) SolveResponse {
	resp := SolveResponse{Clusters: make([]ClusterResponse, len(staged))}
	for i, st := range staged {
		resp.RunID = st.RunID
		resp.Clusters[i] = ClusterResponse{Staged: st, Attributes: st.Attributes(names)}
	}
	return resp
}

// SolveValence is the HTTP cloud function entry point.
func SolveValence(w http.ResponseWriter, r *http.Request) {
	cfg, logger, err := loadFunctionConfig()
	if err != nil {
		http.Error(w, "function is misconfigured", http.StatusInternalServerError)
		logger.Error("failed to load config", "error", err)
		return
	}
	HandleSolve(w, r, cfg, logger)
}

// HandleSolve stages the request's clusters with the given configuration.
func HandleSolve(w http.ResponseWriter, r *http.Request, cfg config.Config, logger *slog.Logger) {
	logger = logging.OrDefault(logger)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := cfg.StageOptions()
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	stager, err := staging.New(req.Ruleset, opts, logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	staged, err := stager.Stage(r.Context(), req.Clusters)
	switch {
	case errors.Is(err, staging.ErrInvalidGraph):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		logger.Error("staging failed", "error", err)
		http.Error(w, "staging failed", http.StatusInternalServerError)
		return
	}

	if cfg.BigQuery.Enabled {
		if err := ExportSummaries(r.Context(), cfg.BigQuery, SummaryRows(staged, time.Now())); err != nil {
			logger.Error("failed to export summaries", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewSolveResponse(staged, cfg.AttributeNames())); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

func decodeRequest(r *http.Request) (*SolveRequest, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}
	var req SolveRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Ruleset == nil {
		return nil, errors.New("request has no ruleset")
	}
	return &req, nil
}
