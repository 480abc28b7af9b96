package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	defaults "github.com/xtxerr/wearsim/config"
	wserrors "github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// Config represents the complete run configuration.
type Config struct {
	// OutputDir is the directory every artifact is written to.
	OutputDir string `yaml:"output_dir"`

	// Logging configures the process logger.
	Logging LoggingConfig `yaml:"logging"`

	// Simulation configures the synthetic sensor.
	Simulation SimulationConfig `yaml:"simulation"`

	// Aggregation configures the segment and rollup stages.
	Aggregation AggregationConfig `yaml:"aggregation"`

	// Export configures the written artifacts.
	Export ExportConfig `yaml:"export"`

	// Query configures the DuckDB query service.
	Query QueryConfig `yaml:"query"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is one of auto, text, json.
	Format string `yaml:"format"`
}

// SimulationConfig configures the synthetic sensor.
type SimulationConfig struct {
	// DurationSec is the number of per-second readings to generate.
	DurationSec int `yaml:"duration_sec"`

	// StartTimestamp is the Unix base time. Reading i has timestamp base+i.
	// Zero means the current time.
	StartTimestamp int64 `yaml:"start_timestamp"`

	// Identity of the simulated wearer. Empty means a random identity.
	Identity string `yaml:"identity"`

	// Seed makes generation reproducible. Zero means a random seed.
	Seed uint64 `yaml:"seed"`

	HeartRate       RangeConfig `yaml:"heart_rate"`
	RespiratoryRate RangeConfig `yaml:"respiratory_rate"`
	Activity        RangeConfig `yaml:"activity"`
}

// RangeConfig is an inclusive integer interval.
type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// AggregationConfig configures the segment and rollup stages.
type AggregationConfig struct {
	// WindowSizeSec is the number of readings per fine window.
	WindowSizeSec int `yaml:"window_size_sec"`

	// GroupSize is the number of fine windows per rollup.
	GroupSize int `yaml:"group_size"`

	// Percentile configures DDSketch heart-rate percentiles per window.
	Percentile PercentileConfig `yaml:"percentile"`
}

// PercentileConfig configures DDSketch percentile calculation.
type PercentileConfig struct {
	// Enabled enables percentile calculation.
	Enabled bool `yaml:"enabled"`

	// Accuracy is the relative accuracy (0.01 = 1% error).
	Accuracy float64 `yaml:"accuracy"`
}

// Handoff modes between the segment and rollup stages.
const (
	HandoffFile   = "file"
	HandoffMemory = "memory"
)

// ExportConfig configures the written artifacts.
type ExportConfig struct {
	// RawFile is the raw series JSON document.
	RawFile string `yaml:"raw_file"`

	// JSONIndent is the indentation width of the raw document.
	JSONIndent int `yaml:"json_indent"`

	// SegmentFile is the fine-window CSV.
	SegmentFile string `yaml:"segment_file"`

	// RollupFile is the rollup CSV.
	RollupFile string `yaml:"rollup_file"`

	// Handoff selects how the rollup stage receives its input:
	// "file" reads SegmentFile back, "memory" passes the summaries directly.
	Handoff string `yaml:"handoff"`

	// Parquet configures the per-tier Parquet files.
	Parquet ParquetConfig `yaml:"parquet"`

	// Workbook configures the XLSX workbook.
	Workbook WorkbookConfig `yaml:"workbook"`
}

// ParquetConfig configures the per-tier Parquet files.
type ParquetConfig struct {
	Enabled bool `yaml:"enabled"`

	// Dir is relative to OutputDir unless absolute.
	Dir string `yaml:"dir"`

	// Compression is one of snappy, zstd, lz4, gzip, none.
	Compression string `yaml:"compression"`

	// Tiers lists the tier files written per run: raw, segment, rollup.
	// The exact-rollup cross check needs the raw tier.
	Tiers []string `yaml:"tiers"`
}

// WorkbookConfig configures the XLSX workbook.
type WorkbookConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// QueryConfig configures the query service.
type QueryConfig struct {
	// Enabled runs the post-run DuckDB cross check.
	Enabled bool `yaml:"enabled"`

	// MemoryLimit is the DuckDB memory limit.
	MemoryLimit string `yaml:"memory_limit"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wserrors.NewIOFailure("read config file", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w: %w", path, wserrors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: defaults.DefaultOutputDir,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Simulation: SimulationConfig{
			DurationSec: defaults.DefaultDurationSec,
			HeartRate: RangeConfig{
				Min: defaults.DefaultHeartRateMin,
				Max: defaults.DefaultHeartRateMax,
			},
			RespiratoryRate: RangeConfig{
				Min: defaults.DefaultRespiratoryRateMin,
				Max: defaults.DefaultRespiratoryRateMax,
			},
			Activity: RangeConfig{
				Min: defaults.DefaultActivityMin,
				Max: defaults.DefaultActivityMax,
			},
		},
		Aggregation: AggregationConfig{
			WindowSizeSec: defaults.DefaultWindowSizeSec,
			GroupSize:     defaults.DefaultGroupSize,
			Percentile: PercentileConfig{
				Enabled:  false,
				Accuracy: defaults.DefaultPercentileAccuracy,
			},
		},
		Export: ExportConfig{
			RawFile:     defaults.DefaultRawFile,
			JSONIndent:  defaults.DefaultJSONIndent,
			SegmentFile: defaults.DefaultSegmentFile,
			RollupFile:  defaults.DefaultRollupFile,
			Handoff:     HandoffFile,
			Parquet: ParquetConfig{
				Enabled:     false,
				Dir:         defaults.DefaultParquetDir,
				Compression: "zstd",
				Tiers:       []string{"raw", "segment", "rollup"},
			},
			Workbook: WorkbookConfig{
				Enabled: false,
				File:    defaults.DefaultWorkbookFile,
			},
		},
		Query: QueryConfig{
			Enabled:     false,
			MemoryLimit: defaults.DefaultQueryMemoryLimit,
		},
	}
}

// Path resolves an artifact file name against OutputDir.
func (c *Config) Path(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// ParquetDir returns the Parquet root directory.
func (c *Config) ParquetDir() string {
	if filepath.IsAbs(c.Export.Parquet.Dir) {
		return c.Export.Parquet.Dir
	}
	return filepath.Join(c.OutputDir, c.Export.Parquet.Dir)
}

// ParquetTiers returns the configured tiers in pipeline order, without
// duplicates. Unknown names are skipped; Validate reports them.
func (c *Config) ParquetTiers() []types.Tier {
	var tiers []types.Tier
	for _, tier := range types.AllTiers() {
		for _, name := range c.Export.Parquet.Tiers {
			if t, err := types.ParseTier(name); err == nil && t == tier {
				tiers = append(tiers, tier)
				break
			}
		}
	}
	return tiers
}

// WritesTier reports whether Parquet output is enabled for tier.
func (c *Config) WritesTier(tier types.Tier) bool {
	if !c.Export.Parquet.Enabled {
		return false
	}
	return slices.Contains(c.ParquetTiers(), tier)
}

// TierDir returns the directory path for a tier.
func (c *Config) TierDir(tier string) string {
	return filepath.Join(c.ParquetDir(), tier)
}
