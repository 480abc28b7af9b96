// Package config provides configuration defaults for the wearsim application.
//
// This package defines all configurable constants with documented defaults.
// Users can override these values via config.yaml or command line flags.
package config

// =============================================================================
// Simulation Defaults
// =============================================================================

const (
	// DefaultDurationSec is the length of one simulated run (two hours).
	// Override via config: simulation.duration_sec
	DefaultDurationSec = 2 * 60 * 60

	// DefaultIdentityLength is the length of a generated identity when none
	// is configured. Identities are drawn from lowercase ASCII letters.
	DefaultIdentityLength = 3
)

// =============================================================================
// Value Bounds (inclusive)
// =============================================================================

const (
	// Heart rate in beats per minute.
	// Override via config: simulation.heart_rate
	DefaultHeartRateMin = 60
	DefaultHeartRateMax = 100

	// Respiratory rate in breaths per minute.
	// Override via config: simulation.respiratory_rate
	DefaultRespiratoryRateMin = 12
	DefaultRespiratoryRateMax = 60

	// Activity level on an arbitrary 1-10 scale.
	// Override via config: simulation.activity
	DefaultActivityMin = 1
	DefaultActivityMax = 10
)

// =============================================================================
// Aggregation Defaults
// =============================================================================

const (
	// DefaultWindowSizeSec is the fine window length (15 minutes).
	// Override via config: aggregation.window_size_sec
	DefaultWindowSizeSec = 15 * 60

	// DefaultGroupSize is the number of fine windows per rollup (one hour).
	// Override via config: aggregation.group_size
	DefaultGroupSize = 4

	// DefaultPercentileAccuracy is the DDSketch relative accuracy.
	// Override via config: aggregation.percentile.accuracy
	DefaultPercentileAccuracy = 0.01
)

// =============================================================================
// Export Defaults
// =============================================================================

const (
	// DefaultOutputDir is where every artifact of a run is written.
	// Override via config: output_dir
	DefaultOutputDir = "."

	// DefaultRawFile is the raw series JSON document.
	DefaultRawFile = "simulator_data.json"

	// DefaultRawCollectionKey names the collection inside the raw document.
	DefaultRawCollectionKey = "user_data"

	// DefaultSegmentFile is the fine-window CSV. It is also the handoff
	// contract read back by the rollup stage.
	DefaultSegmentFile = "15_min_segment.csv"

	// DefaultRollupFile is the rollup CSV.
	DefaultRollupFile = "avg_hour_segment.csv"

	// DefaultWorkbookFile is the optional XLSX workbook.
	DefaultWorkbookFile = "segments.xlsx"

	// DefaultJSONIndent is the indentation width of the raw document.
	DefaultJSONIndent = 4

	// DefaultParquetDir holds the per-tier Parquet files, relative to output_dir.
	DefaultParquetDir = "tiers"
)

// =============================================================================
// Query Defaults
// =============================================================================

const (
	// DefaultQueryMemoryLimit is the DuckDB memory limit.
	// Override via config: query.memory_limit
	DefaultQueryMemoryLimit = "512MB"
)
