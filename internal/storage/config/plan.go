package config

import "fmt"

// Plan describes the shape of a run before it executes.
type Plan struct {
	Readings int

	Windows         int
	DroppedReadings int

	Rollups          int
	DroppedSummaries int

	// Parquet row estimate, per tier
	RawBytes     int64
	SegmentBytes int64
	RollupBytes  int64
}

// Estimated compressed bytes per Parquet row.
const (
	bytesPerRawRow     = 12
	bytesPerSegmentRow = 48
	bytesPerRollupRow  = 40
)

// CalculatePlan computes the window and rollup counts implied by the
// configuration, including the trailing items that truncation drops.
// Counts are per identity.
func (c *Config) CalculatePlan() Plan {
	p := Plan{Readings: c.Simulation.DurationSec}

	if w := c.Aggregation.WindowSizeSec; w > 0 {
		p.Windows = p.Readings / w
		p.DroppedReadings = p.Readings - p.Windows*w
	}

	if g := c.Aggregation.GroupSize; g > 0 {
		p.Rollups = p.Windows / g
		p.DroppedSummaries = p.Windows - p.Rollups*g
	}

	p.RawBytes = int64(p.Readings) * bytesPerRawRow
	p.SegmentBytes = int64(p.Windows) * bytesPerSegmentRow
	p.RollupBytes = int64(p.Rollups) * bytesPerRollupRow

	return p
}

// FormatPlan returns a human-readable summary of the plan.
func (p *Plan) FormatPlan() string {
	return fmt.Sprintf(`Run Plan
========

Readings:            %d
Windows:             %d (dropped trailing readings: %d)
Rollups:             %d (dropped trailing windows: %d)

Parquet (estimate):
  Raw Tier:          %s
  Segment Tier:      %s
  Rollup Tier:       %s
`,
		p.Readings,
		p.Windows, p.DroppedReadings,
		p.Rollups, p.DroppedSummaries,
		formatBytes(p.RawBytes),
		formatBytes(p.SegmentBytes),
		formatBytes(p.RollupBytes),
	)
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.2f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.2f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.2f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
