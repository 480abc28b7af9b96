package parquet

import "github.com/xtxerr/wearsim/internal/storage/types"

// ReadingRow represents a raw reading in Parquet format.
type ReadingRow struct {
	Identity        string `parquet:"user_id,dict"`
	Timestamp       int64  `parquet:"timestamp"`
	HeartRate       int32  `parquet:"heart_rate"`
	RespiratoryRate int32  `parquet:"respiratory_rate"`
	Activity        int32  `parquet:"activity"`
}

// SegmentRow represents a window summary in Parquet format.
type SegmentRow struct {
	Identity           string   `parquet:"user_id,dict"`
	StartTimestamp     int64    `parquet:"start_seg"`
	EndTimestamp       int64    `parquet:"end_seg"`
	MinHeartRate       int32    `parquet:"min_hr"`
	MaxHeartRate       int32    `parquet:"max_hr"`
	AvgHeartRate       float64  `parquet:"avg_hr"`
	AvgRespiratoryRate float64  `parquet:"avg_rr"`
	Count              int64    `parquet:"count"`
	// Pointer fields are optional columns, null when percentiles are off.
	P50                *float64 `parquet:"hr_p50"`
	P90                *float64 `parquet:"hr_p90"`
	P99                *float64 `parquet:"hr_p99"`
}

// RollupRow represents a rollup summary in Parquet format.
type RollupRow struct {
	Identity           string  `parquet:"user_id,dict"`
	StartTimestamp     int64   `parquet:"start_seg"`
	EndTimestamp       int64   `parquet:"end_seg"`
	MinHeartRate       int32   `parquet:"min_hr"`
	MaxHeartRate       int32   `parquet:"max_hr"`
	AvgHeartRate       float64 `parquet:"avg_hr"`
	AvgRespiratoryRate float64 `parquet:"avg_rr"`
	Windows            int32   `parquet:"windows"`
}

// ReadingToRow converts a Reading to a ReadingRow.
func ReadingToRow(r *types.Reading) ReadingRow {
	return ReadingRow{
		Identity:        r.Identity,
		Timestamp:       r.Timestamp,
		HeartRate:       int32(r.HeartRate),
		RespiratoryRate: int32(r.RespiratoryRate),
		Activity:        int32(r.Activity),
	}
}

// RowToReading converts a ReadingRow to a Reading.
func RowToReading(r *ReadingRow) types.Reading {
	return types.Reading{
		Identity:        r.Identity,
		Timestamp:       r.Timestamp,
		HeartRate:       int(r.HeartRate),
		RespiratoryRate: int(r.RespiratoryRate),
		Activity:        int(r.Activity),
	}
}

// SegmentToRow converts a WindowSummary to a SegmentRow.
func SegmentToRow(w *types.WindowSummary) SegmentRow {
	return SegmentRow{
		Identity:           w.Identity,
		StartTimestamp:     w.StartTimestamp,
		EndTimestamp:       w.EndTimestamp,
		MinHeartRate:       int32(w.MinHeartRate),
		MaxHeartRate:       int32(w.MaxHeartRate),
		AvgHeartRate:       w.AvgHeartRate,
		AvgRespiratoryRate: w.AvgRespiratoryRate,
		Count:              w.Count,
		P50:                w.HeartRateP50,
		P90:                w.HeartRateP90,
		P99:                w.HeartRateP99,
	}
}

// RowToSegment converts a SegmentRow to a WindowSummary.
func RowToSegment(r *SegmentRow) types.WindowSummary {
	w := types.WindowSummary{
		Identity:           r.Identity,
		StartTimestamp:     r.StartTimestamp,
		EndTimestamp:       r.EndTimestamp,
		MinHeartRate:       int(r.MinHeartRate),
		MaxHeartRate:       int(r.MaxHeartRate),
		AvgHeartRate:       r.AvgHeartRate,
		AvgRespiratoryRate: r.AvgRespiratoryRate,
		Count:              r.Count,
	}

	if r.P50 != nil && r.P90 != nil && r.P99 != nil {
		w.SetPercentiles(*r.P50, *r.P90, *r.P99)
	}

	return w
}

// RollupToRow converts a RollupSummary to a RollupRow.
func RollupToRow(r *types.RollupSummary) RollupRow {
	return RollupRow{
		Identity:           r.Identity,
		StartTimestamp:     r.StartTimestamp,
		EndTimestamp:       r.EndTimestamp,
		MinHeartRate:       int32(r.MinHeartRate),
		MaxHeartRate:       int32(r.MaxHeartRate),
		AvgHeartRate:       r.AvgHeartRate,
		AvgRespiratoryRate: r.AvgRespiratoryRate,
		Windows:            int32(r.Windows),
	}
}

// RowToRollup converts a RollupRow to a RollupSummary.
func RowToRollup(r *RollupRow) types.RollupSummary {
	return types.RollupSummary{
		Identity:           r.Identity,
		StartTimestamp:     r.StartTimestamp,
		EndTimestamp:       r.EndTimestamp,
		MinHeartRate:       int(r.MinHeartRate),
		MaxHeartRate:       int(r.MaxHeartRate),
		AvgHeartRate:       r.AvgHeartRate,
		AvgRespiratoryRate: r.AvgRespiratoryRate,
		Windows:            int(r.Windows),
	}
}
