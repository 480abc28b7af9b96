// Package aggregate implements the two aggregation levels of the pipeline:
// fixed-size windows over raw readings, and rollups over window summaries.
//
// Each level accumulates every statistic of a group in a single traversal
// (min, max, sum, count and timestamp bounds) and emits one summary per
// identity per group.
package aggregate

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	defaults "github.com/xtxerr/wearsim/config"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// WindowAccumulator maintains running statistics over the readings of one
// identity within one window. It optionally tracks heart-rate percentiles
// with a DDSketch.
type WindowAccumulator struct {
	identity string

	count   int64
	hrSum   int64
	hrMin   int
	hrMax   int
	rrSum   int64
	firstTs int64
	lastTs  int64

	// DDSketch for heart-rate percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

// NewWindowAccumulator creates an accumulator without percentile tracking.
func NewWindowAccumulator(identity string) *WindowAccumulator {
	return &WindowAccumulator{
		identity: identity,
		hrMin:    math.MaxInt,
		hrMax:    math.MinInt,
	}
}

// NewWindowAccumulatorWithAccuracy creates an accumulator that also tracks
// heart-rate percentiles at the given relative accuracy. An accuracy the
// sketch rejects falls back to the default accuracy.
func NewWindowAccumulatorWithAccuracy(identity string, accuracy float64) *WindowAccumulator {
	acc := NewWindowAccumulator(identity)

	sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
	if err != nil {
		sketch, _ = ddsketch.NewDefaultDDSketch(defaults.DefaultPercentileAccuracy)
	}
	acc.sketch = sketch

	return acc
}

// Add folds one reading into the accumulator.
func (a *WindowAccumulator) Add(r types.Reading) {
	a.count++
	a.hrSum += int64(r.HeartRate)
	a.rrSum += int64(r.RespiratoryRate)

	if r.HeartRate < a.hrMin {
		a.hrMin = r.HeartRate
	}
	if r.HeartRate > a.hrMax {
		a.hrMax = r.HeartRate
	}

	if a.count == 1 || r.Timestamp < a.firstTs {
		a.firstTs = r.Timestamp
	}
	if a.count == 1 || r.Timestamp > a.lastTs {
		a.lastTs = r.Timestamp
	}

	if a.sketch != nil {
		a.sketch.Add(float64(r.HeartRate))
	}
}

// Count returns the number of readings added.
func (a *WindowAccumulator) Count() int64 {
	return a.count
}

// IsEmpty returns true if no readings have been added.
func (a *WindowAccumulator) IsEmpty() bool {
	return a.count == 0
}

// Result returns the window summary. Statistics are zero when empty.
func (a *WindowAccumulator) Result() types.WindowSummary {
	result := types.WindowSummary{
		Identity:       a.identity,
		StartTimestamp: a.firstTs,
		EndTimestamp:   a.lastTs,
		Count:          a.count,
	}

	if a.count == 0 {
		return result
	}

	result.MinHeartRate = a.hrMin
	result.MaxHeartRate = a.hrMax
	result.AvgHeartRate = float64(a.hrSum) / float64(a.count)
	result.AvgRespiratoryRate = float64(a.rrSum) / float64(a.count)

	if a.sketch != nil {
		p50, _ := a.sketch.GetValueAtQuantile(0.50)
		p90, _ := a.sketch.GetValueAtQuantile(0.90)
		p99, _ := a.sketch.GetValueAtQuantile(0.99)
		result.SetPercentiles(p50, p90, p99)
	}

	return result
}

// RollupAccumulator merges window summaries of one identity into a rollup.
//
// Averages are the unweighted mean of the input averages. This equals the
// mean over the underlying readings only when every window holds the same
// number of readings.
type RollupAccumulator struct {
	identity string

	windows  int
	hrAvgSum float64
	rrAvgSum float64
	hrMin    int
	hrMax    int
	startTs  int64
	endTs    int64
}

// NewRollupAccumulator creates an empty rollup accumulator.
func NewRollupAccumulator(identity string) *RollupAccumulator {
	return &RollupAccumulator{
		identity: identity,
		hrMin:    math.MaxInt,
		hrMax:    math.MinInt,
	}
}

// Merge folds one window summary into the rollup.
func (a *RollupAccumulator) Merge(w types.WindowSummary) {
	a.windows++
	a.hrAvgSum += w.AvgHeartRate
	a.rrAvgSum += w.AvgRespiratoryRate

	if w.MinHeartRate < a.hrMin {
		a.hrMin = w.MinHeartRate
	}
	if w.MaxHeartRate > a.hrMax {
		a.hrMax = w.MaxHeartRate
	}

	if a.windows == 1 || w.StartTimestamp < a.startTs {
		a.startTs = w.StartTimestamp
	}
	if a.windows == 1 || w.EndTimestamp > a.endTs {
		a.endTs = w.EndTimestamp
	}
}

// Windows returns the number of summaries merged.
func (a *RollupAccumulator) Windows() int {
	return a.windows
}

// Result returns the rollup summary. Statistics are zero when empty.
func (a *RollupAccumulator) Result() types.RollupSummary {
	result := types.RollupSummary{
		Identity:       a.identity,
		StartTimestamp: a.startTs,
		EndTimestamp:   a.endTs,
		Windows:        a.windows,
	}

	if a.windows == 0 {
		return result
	}

	n := float64(a.windows)
	result.AvgHeartRate = a.hrAvgSum / n
	result.AvgRespiratoryRate = a.rrAvgSum / n
	result.MinHeartRate = a.hrMin
	result.MaxHeartRate = a.hrMax

	return result
}
