package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// WriteSegmentsCSV writes fine-window summaries to path, one row per
// (identity, window) in input order.
func WriteSegmentsCSV(path string, summaries []types.WindowSummary) error {
	return writeCSV(path, SegmentHeader, len(summaries), func(i int) []string {
		w := &summaries[i]
		return []string{
			w.Identity,
			formatFloat(w.AvgRespiratoryRate),
			formatInt(int64(w.MinHeartRate)),
			formatInt(int64(w.MaxHeartRate)),
			formatFloat(w.AvgHeartRate),
			formatInt(w.StartTimestamp),
			formatInt(w.EndTimestamp),
		}
	})
}

// WriteRollupsCSV writes rollup summaries to path in input order.
func WriteRollupsCSV(path string, rollups []types.RollupSummary) error {
	return writeCSV(path, RollupHeader, len(rollups), func(i int) []string {
		r := &rollups[i]
		return []string{
			r.Identity,
			formatInt(r.StartTimestamp),
			formatFloat(r.AvgHeartRate),
			formatFloat(r.AvgRespiratoryRate),
			formatInt(int64(r.MinHeartRate)),
			formatInt(int64(r.MaxHeartRate)),
			formatInt(r.EndTimestamp),
		}
	})
}

// ReadSegmentsCSV reads a fine-window CSV. Columns are located by header
// name; extra columns are ignored.
func ReadSegmentsCSV(path string) ([]types.WindowSummary, error) {
	return readCSV(path, SegmentHeader, func(rec record) (types.WindowSummary, error) {
		w := types.WindowSummary{Identity: rec.str(ColIdentity)}
		w.AvgRespiratoryRate = rec.f64(ColAvgRespiratoryRate)
		w.MinHeartRate = int(rec.i64(ColMinHeartRate))
		w.MaxHeartRate = int(rec.i64(ColMaxHeartRate))
		w.AvgHeartRate = rec.f64(ColAvgHeartRate)
		w.StartTimestamp = rec.i64(ColStart)
		w.EndTimestamp = rec.i64(ColEnd)
		return w, rec.err
	})
}

// ReadRollupsCSV reads a rollup CSV.
func ReadRollupsCSV(path string) ([]types.RollupSummary, error) {
	return readCSV(path, RollupHeader, func(rec record) (types.RollupSummary, error) {
		r := types.RollupSummary{Identity: rec.str(ColIdentity)}
		r.StartTimestamp = rec.i64(ColStart)
		r.AvgHeartRate = rec.f64(ColAvgHeartRate)
		r.AvgRespiratoryRate = rec.f64(ColAvgRespiratoryRate)
		r.MinHeartRate = int(rec.i64(ColMinHeartRate))
		r.MaxHeartRate = int(rec.i64(ColMaxHeartRate))
		r.EndTimestamp = rec.i64(ColEnd)
		return r, rec.err
	})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	cw := csv.NewWriter(bw)

	if err := cw.Write(header); err != nil {
		f.Close()
		return errors.NewIOFailure("write", path, err)
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(row(i)); err != nil {
			f.Close()
			return errors.NewIOFailure("write", path, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return errors.NewIOFailure("write", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return errors.NewIOFailure("write", path, err)
	}

	return errors.NewIOFailure("close", path, f.Close())
}

// record is one parsed CSV row addressed by column name. The first parse
// failure is kept in err; later lookups return zero values.
type record struct {
	fields []string
	index  map[string]int
	err    error
}

func (r *record) str(col string) string {
	return r.fields[r.index[col]]
}

func (r *record) i64(col string) int64 {
	v, err := strconv.ParseInt(r.str(col), 10, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (r *record) f64(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func readCSV[T any](path string, required []string, parse func(record) (T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOFailure("open", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(bufio.NewReader(f))
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.NewMalformedRecord(path, 1, "missing header")
	}
	if err != nil {
		return nil, errors.NewIOFailure("read", path, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, errors.NewMalformedRecord(path, 1, "missing column "+col)
		}
	}

	results := []T{}
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewMalformedRecord(path, line, err.Error())
		}

		v, err := parse(record{fields: fields, index: index})
		if err != nil {
			return nil, errors.NewMalformedRecord(path, line, err.Error())
		}
		results = append(results, v)
	}

	return results, nil
}
