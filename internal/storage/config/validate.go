package config

import (
	"errors"
	"fmt"
	"os"

	wserrors "github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xtxerr/wearsim/internal/validation"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.OutputDir == "" {
		errs = append(errs, wserrors.NewMissingField("output_dir"))
	}

	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}

	if err := c.Aggregation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("aggregation: %w", err))
	}

	if err := c.Export.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("export: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the simulation configuration.
func (c *SimulationConfig) Validate() error {
	v := wserrors.NewValidationErrors()

	if c.DurationSec <= 0 {
		v.AddField("duration_sec", "must be positive")
	}

	if c.StartTimestamp < 0 {
		v.AddField("start_timestamp", "must not be negative")
	}

	if c.Identity != "" {
		if err := validation.ValidateIdentity(c.Identity); err != nil {
			v.AddField("identity", err.Error())
		}
	}

	ranges := []struct {
		name string
		r    RangeConfig
	}{
		{"heart_rate", c.HeartRate},
		{"respiratory_rate", c.RespiratoryRate},
		{"activity", c.Activity},
	}
	for _, rc := range ranges {
		if err := validation.ValidateRange(rc.r.Min, rc.r.Max); err != nil {
			v.AddField(rc.name, err.Error())
		}
	}

	return v.Err()
}

// Validate checks the aggregation configuration.
func (c *AggregationConfig) Validate() error {
	v := wserrors.NewValidationErrors()

	if c.WindowSizeSec <= 0 {
		v.AddField("window_size_sec", "must be positive")
	}

	if c.GroupSize <= 0 {
		v.AddField("group_size", "must be positive")
	}

	if c.Percentile.Enabled {
		if c.Percentile.Accuracy <= 0 || c.Percentile.Accuracy >= 1 {
			v.AddField("percentile.accuracy", "must be between 0 and 1")
		}
	}

	return v.Err()
}

// Validate checks the export configuration.
func (c *ExportConfig) Validate() error {
	v := wserrors.NewValidationErrors()

	names := []struct {
		field string
		value string
	}{
		{"raw_file", c.RawFile},
		{"segment_file", c.SegmentFile},
		{"rollup_file", c.RollupFile},
	}
	if c.Workbook.Enabled {
		names = append(names, struct {
			field string
			value string
		}{"workbook.file", c.Workbook.File})
	}
	for _, n := range names {
		if n.value == "" {
			v.AddMissing(n.field)
			continue
		}
		if err := validation.ValidateFileName(n.value); err != nil {
			v.AddField(n.field, err.Error())
		}
	}

	if c.JSONIndent < 0 || c.JSONIndent > 16 {
		v.AddField("json_indent", "must be between 0 and 16")
	}

	switch c.Handoff {
	case HandoffFile, HandoffMemory:
	default:
		v.AddField("handoff", "must be one of: file, memory")
	}

	if c.Parquet.Enabled {
		switch c.Parquet.Compression {
		case "snappy", "zstd", "lz4", "gzip", "none", "":
		default:
			v.AddField("parquet.compression", "must be one of: snappy, zstd, lz4, gzip, none")
		}
		if c.Parquet.Dir == "" {
			v.AddMissing("parquet.dir")
		}
		if len(c.Parquet.Tiers) == 0 {
			v.AddMissing("parquet.tiers")
		}
		for _, name := range c.Parquet.Tiers {
			if _, err := types.ParseTier(name); err != nil {
				v.AddField("parquet.tiers", err.Error())
			}
		}
	}

	return v.Err()
}

// EnsureDirectories creates all required output directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDir}
	if c.Export.Parquet.Enabled {
		for _, tier := range c.ParquetTiers() {
			dirs = append(dirs, c.TierDir(tier.String()))
		}
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return wserrors.NewIOFailure("create directory", dir, err)
		}
	}

	return nil
}
