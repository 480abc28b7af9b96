package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xuri/excelize/v2"
)

func testSeries() *types.RawSeries {
	s := types.NewRawSeries(3)
	s.Add(types.Reading{Identity: "abc", HeartRate: 72, Timestamp: 1700000001, RespiratoryRate: 14, Activity: 3})
	s.Add(types.Reading{Identity: "abc", HeartRate: 99, Timestamp: 1700000002, RespiratoryRate: 60, Activity: 10})
	s.Add(types.Reading{Identity: "abc", HeartRate: 60, Timestamp: 1700000003, RespiratoryRate: 12, Activity: 1})
	return s
}

func testSummaries() []types.WindowSummary {
	return []types.WindowSummary{
		{Identity: "abc", AvgRespiratoryRate: 36.123456789, MinHeartRate: 60, MaxHeartRate: 100, AvgHeartRate: 80.1, StartTimestamp: 1700000001, EndTimestamp: 1700000900, Count: 900},
		{Identity: "abc", AvgRespiratoryRate: 35, MinHeartRate: 61, MaxHeartRate: 99, AvgHeartRate: 1.0 / 3.0, StartTimestamp: 1700000901, EndTimestamp: 1700001800, Count: 900},
	}
}

func testRollups() []types.RollupSummary {
	return []types.RollupSummary{
		{Identity: "abc", StartTimestamp: 1700000001, AvgHeartRate: 80.0625, AvgRespiratoryRate: 35.5, MinHeartRate: 60, MaxHeartRate: 100, EndTimestamp: 1700003600, Windows: 4},
	}
}

func TestEncodeRawJSON(t *testing.T) {
	var buf bytes.Buffer

	if err := EncodeRawJSON(&buf, testSeries(), 4); err != nil {
		t.Fatalf("EncodeRawJSON: %v", err)
	}

	out := buf.String()

	if !strings.HasPrefix(out, "{\n    \"user_data\": [\n") {
		t.Errorf("unexpected document start:\n%s", out)
	}

	// Field order follows the record layout.
	first := `"user_id": "abc",
            "heart_rate": 72,
            "timestamp": 1700000001,
            "respiratory_rate": 14,
            "activity": 3`
	if !strings.Contains(out, first) {
		t.Errorf("first record not found in:\n%s", out)
	}
}

func TestRawJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simulator_data.json")
	series := testSeries()

	if err := WriteRawJSON(path, series, 4); err != nil {
		t.Fatalf("WriteRawJSON: %v", err)
	}

	got, err := ReadRawJSON(path)
	if err != nil {
		t.Fatalf("ReadRawJSON: %v", err)
	}

	if got.Len() != series.Len() {
		t.Fatalf("expected %d readings, got %d", series.Len(), got.Len())
	}
	for i := range series.Readings {
		if got.Readings[i] != series.Readings[i] {
			t.Errorf("reading %d: expected %+v, got %+v", i, series.Readings[i], got.Readings[i])
		}
	}
}

func TestRawJSONEmpty(t *testing.T) {
	var buf bytes.Buffer

	if err := EncodeRawJSON(&buf, nil, 0); err != nil {
		t.Fatalf("EncodeRawJSON: %v", err)
	}

	if strings.TrimSpace(buf.String()) != `{"user_data":[]}` {
		t.Errorf("unexpected empty document %q", buf.String())
	}
}

func TestReadRawJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"user_data": [`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := ReadRawJSON(path)
	if !errors.Is(err, errors.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}

	_, err = ReadRawJSON(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.IsIOFailure(err) {
		t.Errorf("expected i/o failure, got %v", err)
	}
}

func TestWriteSegmentsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "15_min_segment.csv")

	if err := WriteSegmentsCSV(path, testSummaries()); err != nil {
		t.Fatalf("WriteSegmentsCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}

	if lines[0] != "user_id,avg_rr,min_hr,max_hr,avg_hr,start_seg,end_seg" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "abc,36.123456789,60,100,80.1,1700000001,1700000900" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestSegmentsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "15_min_segment.csv")
	summaries := testSummaries()

	if err := WriteSegmentsCSV(path, summaries); err != nil {
		t.Fatalf("WriteSegmentsCSV: %v", err)
	}

	got, err := ReadSegmentsCSV(path)
	if err != nil {
		t.Fatalf("ReadSegmentsCSV: %v", err)
	}

	if len(got) != len(summaries) {
		t.Fatalf("expected %d summaries, got %d", len(summaries), len(got))
	}

	for i, want := range summaries {
		// Count is not part of the tabular form.
		want.Count = 0
		if got[i].Identity != want.Identity ||
			got[i].AvgRespiratoryRate != want.AvgRespiratoryRate ||
			got[i].MinHeartRate != want.MinHeartRate ||
			got[i].MaxHeartRate != want.MaxHeartRate ||
			got[i].AvgHeartRate != want.AvgHeartRate ||
			got[i].StartTimestamp != want.StartTimestamp ||
			got[i].EndTimestamp != want.EndTimestamp ||
			got[i].Count != want.Count {
			t.Errorf("summary %d: expected %+v, got %+v", i, want, got[i])
		}
	}
}

func TestRollupsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avg_hour_segment.csv")
	rollups := testRollups()

	if err := WriteRollupsCSV(path, rollups); err != nil {
		t.Fatalf("WriteRollupsCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "user_id,start_seg,avg_hr,avg_rr,min_hr,max_hr,end_seg\n") {
		t.Errorf("unexpected header in %q", data)
	}

	got, err := ReadRollupsCSV(path)
	if err != nil {
		t.Fatalf("ReadRollupsCSV: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 rollup, got %d", len(got))
	}

	want := rollups[0]
	want.Windows = 0
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}
}

func TestReadSegmentsCSVByHeaderName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.csv")

	// Reordered columns plus a leading index column.
	content := ",end_seg,start_seg,user_id,avg_hr,max_hr,min_hr,avg_rr\n" +
		"0,1900,1001,abc,80.5,100,60,36\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadSegmentsCSV(path)
	if err != nil {
		t.Fatalf("ReadSegmentsCSV: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(got))
	}

	w := got[0]
	if w.Identity != "abc" || w.StartTimestamp != 1001 || w.EndTimestamp != 1900 ||
		w.MinHeartRate != 60 || w.MaxHeartRate != 100 || w.AvgHeartRate != 80.5 || w.AvgRespiratoryRate != 36 {
		t.Errorf("unexpected summary %+v", w)
	}
}

func TestReadSegmentsCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"missing column", "user_id,avg_rr,min_hr,max_hr,avg_hr,start_seg\nabc,1,2,3,4,5\n"},
		{"bad number", "user_id,avg_rr,min_hr,max_hr,avg_hr,start_seg,end_seg\nabc,x,60,100,80,1,900\n"},
		{"short row", "user_id,avg_rr,min_hr,max_hr,avg_hr,start_seg,end_seg\nabc,36,60\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "segments.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}

			_, err := ReadSegmentsCSV(path)
			if !errors.Is(err, errors.ErrMalformedRecord) {
				t.Errorf("expected malformed record, got %v", err)
			}
			if errors.ExitCode(err) != errors.ExitIOFailure {
				t.Errorf("expected i/o exit code, got %d", errors.ExitCode(err))
			}
		})
	}
}

func TestCSVEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := WriteSegmentsCSV(path, nil); err != nil {
		t.Fatalf("WriteSegmentsCSV: %v", err)
	}

	got, err := ReadSegmentsCSV(path)
	if err != nil {
		t.Fatalf("ReadSegmentsCSV: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestWriteCSVUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Parent path is a regular file.
	err := WriteSegmentsCSV(filepath.Join(blocker, "out.csv"), testSummaries())
	if !errors.IsIOFailure(err) {
		t.Errorf("expected i/o failure, got %v", err)
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "segments.xlsx")

	if err := WriteWorkbook(path, testSummaries(), testRollups()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SegmentSheet || sheets[1] != RollupSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(SegmentSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(SegmentHeader, ",") {
		t.Errorf("unexpected segment header %v", rows[0])
	}
	if rows[1][0] != "abc" || rows[1][2] != "60" {
		t.Errorf("unexpected first segment row %v", rows[1])
	}

	rows, err = f.GetRows(RollupSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[1][1] != "1700000001" {
		t.Errorf("unexpected rollup start %v", rows[1])
	}
}
