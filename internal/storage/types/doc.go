// Package types defines the core data types used throughout the pipeline.
//
// Key types:
//   - Reading: one per-second vital-sign sample from the wearable
//   - RawSeries: the positionally indexed sequence of readings
//   - WindowSummary: statistics for one fixed-size window of readings
//   - RollupSummary: statistics re-aggregated from a group of window summaries
//   - Tier: aggregation level (Raw, Segment, Rollup)
package types
