package types

import "time"

// WindowSummary holds the statistics of one fixed-size window of readings
// for a single identity.
type WindowSummary struct {
	Identity string

	MinHeartRate       int
	MaxHeartRate       int
	AvgHeartRate       float64
	AvgRespiratoryRate float64

	StartTimestamp int64 // min timestamp in window
	EndTimestamp   int64 // max timestamp in window

	// Count is the number of readings that contributed. It is not part of
	// the tabular export and is zero for summaries read back from CSV.
	Count int64

	// Heart-rate percentiles, nil unless percentile tracking is enabled.
	HeartRateP50 *float64
	HeartRateP90 *float64
	HeartRateP99 *float64
}

// StartTime returns the window start as a time.Time.
func (w *WindowSummary) StartTime() time.Time {
	return time.Unix(w.StartTimestamp, 0).UTC()
}

// EndTime returns the window end as a time.Time.
func (w *WindowSummary) EndTime() time.Time {
	return time.Unix(w.EndTimestamp, 0).UTC()
}

// HasPercentiles returns true if percentile data is available.
func (w *WindowSummary) HasPercentiles() bool {
	return w.HeartRateP50 != nil
}

// SetPercentiles sets all heart-rate percentile values.
func (w *WindowSummary) SetPercentiles(p50, p90, p99 float64) {
	w.HeartRateP50 = &p50
	w.HeartRateP90 = &p90
	w.HeartRateP99 = &p99
}

// RollupSummary holds statistics re-aggregated from a group of
// WindowSummary values. It is never computed from raw readings.
type RollupSummary struct {
	Identity string

	AvgHeartRate       float64 // mean of the group's AvgHeartRate
	MinHeartRate       int     // min of the group's MinHeartRate
	MaxHeartRate       int     // max of the group's MaxHeartRate
	AvgRespiratoryRate float64 // mean of the group's AvgRespiratoryRate

	StartTimestamp int64
	EndTimestamp   int64

	// Windows is the number of window summaries merged.
	Windows int
}

// StartTime returns the rollup start as a time.Time.
func (r *RollupSummary) StartTime() time.Time {
	return time.Unix(r.StartTimestamp, 0).UTC()
}

// EndTime returns the rollup end as a time.Time.
func (r *RollupSummary) EndTime() time.Time {
	return time.Unix(r.EndTimestamp, 0).UTC()
}

// Duration returns the covered time span.
func (r *RollupSummary) Duration() time.Duration {
	return time.Duration(r.EndTimestamp-r.StartTimestamp) * time.Second
}
