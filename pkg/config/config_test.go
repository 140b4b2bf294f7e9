package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosswarped.com/valence/pkg/solver"
	"crosswarped.com/valence/pkg/staging"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, staging.DefaultAttributeNames, cfg.AttributeNames())

	opts := cfg.StageOptions()
	assert.Equal(t, solver.KindEntropy, opts.Solver.Kind)
	assert.Equal(t, solver.DefaultMinSpawnBoost, opts.Solver.MinSpawnBoost)
	assert.True(t, opts.PerClusterSeed)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
seed: 1234
workers: 4
prune_unsolvable: true
solver:
  min_spawn_boost: 3.5
output:
  module_index_attribute: Module
  unsolvable_marker: true
logging:
  level: debug
  json: true
bigquery:
  enabled: true
  project_id: proj
  dataset: pcg
  table: solves
`))
	require.NoError(t, err)

	assert.Equal(t, int64(1234), cfg.Seed)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "entropy", cfg.Solver.Kind)
	assert.Equal(t, 3.5, cfg.Solver.MinSpawnBoost)
	assert.Equal(t, "Module", cfg.Output.ModuleIndexAttribute)
	assert.Equal(t, "AssetPath", cfg.Output.AssetPathAttribute)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, "solves", cfg.BigQuery.Table)

	opts := cfg.StageOptions()
	assert.True(t, opts.PruneUnsolvable)
	assert.True(t, opts.UnsolvableMarker)
	assert.Equal(t, 4, opts.Workers)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"boost below one":     "solver: {min_spawn_boost: 0.5}",
		"unknown solver":      "solver: {kind: chemistry}",
		"negative workers":    "workers: -2",
		"missing index name":  "output: {module_index_attribute: ''}",
		"marker without name": "output: {unsolvable_marker: true, unsolvable_attribute: ''}",
		"bigquery incomplete": "bigquery: {enabled: true, project_id: p}",
		"bad log level":       "logging: {level: loud}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("seed: [1"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "valence.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 9\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
