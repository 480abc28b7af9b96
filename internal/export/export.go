// Package export serializes a run to its durable external forms: the raw
// series as a JSON document, the fine-window and rollup summaries as CSV,
// and optionally both summary levels as an XLSX workbook.
//
// The fine-window CSV doubles as the handoff between the two aggregation
// levels, so ReadSegmentsCSV must reconstruct exactly what
// WriteSegmentsCSV was given (less the reading count and percentiles,
// which are not part of the tabular form).
package export

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/xtxerr/wearsim/internal/errors"
)

// Column names shared by the CSV and workbook exports.
const (
	ColIdentity           = "user_id"
	ColAvgRespiratoryRate = "avg_rr"
	ColMinHeartRate       = "min_hr"
	ColMaxHeartRate       = "max_hr"
	ColAvgHeartRate       = "avg_hr"
	ColStart              = "start_seg"
	ColEnd                = "end_seg"
)

// SegmentHeader is the fine-window column order.
var SegmentHeader = []string{
	ColIdentity,
	ColAvgRespiratoryRate,
	ColMinHeartRate,
	ColMaxHeartRate,
	ColAvgHeartRate,
	ColStart,
	ColEnd,
}

// RollupHeader is the rollup column order.
var RollupHeader = []string{
	ColIdentity,
	ColStart,
	ColAvgHeartRate,
	ColAvgRespiratoryRate,
	ColMinHeartRate,
	ColMaxHeartRate,
	ColEnd,
}

// formatFloat writes the shortest representation that parses back to v.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// createFile creates path and its parent directory.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewIOFailure("create directory", filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewIOFailure("create", path, err)
	}
	return f, nil
}
