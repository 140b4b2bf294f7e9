// Package config holds the run configuration of a valence staging run.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"crosswarped.com/valence/pkg/logging"
	"crosswarped.com/valence/pkg/solver"
	"crosswarped.com/valence/pkg/staging"
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Solver selects the solving strategy.
type Solver struct {
	Kind          string  `yaml:"kind" json:"kind" validate:"omitempty,oneof=entropy"`
	MinSpawnBoost float64 `yaml:"min_spawn_boost" json:"min_spawn_boost" validate:"gte=1"`
}

// Output names the attributes written back per point.
type Output struct {
	PointAttribute       string `yaml:"point_attribute" json:"point_attribute"`
	ModuleIndexAttribute string `yaml:"module_index_attribute" json:"module_index_attribute" validate:"required"`
	AssetPathAttribute   string `yaml:"asset_path_attribute" json:"asset_path_attribute"`
	UnsolvableAttribute  string `yaml:"unsolvable_attribute" json:"unsolvable_attribute" validate:"required_if=UnsolvableMarker true"`

	// UnsolvableMarker flags unsolvable points in the output.
	UnsolvableMarker bool `yaml:"unsolvable_marker" json:"unsolvable_marker"`
}

// BigQuery configures the export of per-cluster summaries.
type BigQuery struct {
	Enabled         bool   `yaml:"enabled" json:"enabled"`
	ProjectID       string `yaml:"project_id" json:"project_id" validate:"required_if=Enabled true"`
	Dataset         string `yaml:"dataset" json:"dataset" validate:"required_if=Enabled true"`
	Table           string `yaml:"table" json:"table" validate:"required_if=Enabled true"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// Config is the full run configuration.
type Config struct {
	Solver Solver `yaml:"solver" json:"solver"`

	Seed int64 `yaml:"seed" json:"seed"`

	// PerClusterSeed mixes each cluster id into Seed.
	PerClusterSeed bool `yaml:"per_cluster_seed" json:"per_cluster_seed"`

	// Workers bounds concurrent cluster solves. 0 uses GOMAXPROCS.
	Workers int `yaml:"workers" json:"workers" validate:"gte=0"`

	PruneUnsolvable bool `yaml:"prune_unsolvable" json:"prune_unsolvable"`

	Output   Output         `yaml:"output" json:"output"`
	Logging  logging.Config `yaml:"logging" json:"logging"`
	BigQuery BigQuery       `yaml:"bigquery" json:"bigquery"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	names := staging.DefaultAttributeNames
	return Config{
		Solver: Solver{
			Kind:          string(solver.KindEntropy),
			MinSpawnBoost: solver.DefaultMinSpawnBoost,
		},
		PerClusterSeed: true,
		Output: Output{
			PointAttribute:       names.Point,
			ModuleIndexAttribute: names.ModuleIndex,
			AssetPathAttribute:   names.AssetPath,
			UnsolvableAttribute:  names.Unsolvable,
		},
		Logging: logging.Config{Level: "info"},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a config file. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// StageOptions converts the config into staging options.
func (c *Config) StageOptions() staging.Options {
	return staging.Options{
		Solver: solver.Options{
			Kind:          solver.Kind(c.Solver.Kind),
			MinSpawnBoost: c.Solver.MinSpawnBoost,
		},
		Seed:             c.Seed,
		PerClusterSeed:   c.PerClusterSeed,
		Workers:          c.Workers,
		PruneUnsolvable:  c.PruneUnsolvable,
		UnsolvableMarker: c.Output.UnsolvableMarker,
	}
}

// AttributeNames returns the configured output attribute names.
func (c *Config) AttributeNames() staging.AttributeNames {
	return staging.AttributeNames{
		Point:       c.Output.PointAttribute,
		ModuleIndex: c.Output.ModuleIndexAttribute,
		AssetPath:   c.Output.AssetPathAttribute,
		Unsolvable:  c.Output.UnsolvableAttribute,
	}
}
