package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/storage/aggregate"
	"github.com/xtxerr/wearsim/internal/storage/config"
	"github.com/xtxerr/wearsim/internal/storage/parquet"
	"github.com/xtxerr/wearsim/internal/storage/query"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xtxerr/wearsim/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.Export.Parquet.Enabled = true
	return cfg
}

func newTestService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	return svc
}

func TestService_New(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	if svc.Query() != nil {
		t.Error("expected no query service when queries are disabled")
	}

	usage := svc.DiskUsage()
	for _, tier := range types.AllTiers() {
		if usage[tier].FileCount != 0 {
			t.Errorf("tier %s: expected no files, got %d", tier, usage[tier].FileCount)
		}
	}
}

func TestService_NewInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Aggregation.WindowSizeSec = 0

	if _, err := New(cfg); !errors.IsInvalidArgument(err) {
		t.Errorf("expected invalid-argument, got %v", err)
	}
}

func TestService_WriteTiers(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	series := testutil.Series("abc", 3600, 1000)
	summaries, err := aggregate.Segment(series, 900, 3600)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	rollups, err := aggregate.Rollup(summaries, 4, len(summaries))
	if err != nil {
		t.Fatalf("Rollup: %v", err)
	}

	rawPath, err := svc.WriteReadings("abc", 1000, series.Readings)
	if err != nil {
		t.Fatalf("WriteReadings: %v", err)
	}
	if _, err := svc.WriteSegments("abc", 1000, summaries); err != nil {
		t.Fatalf("WriteSegments: %v", err)
	}
	if _, err := svc.WriteRollups("abc", 1000, rollups); err != nil {
		t.Fatalf("WriteRollups: %v", err)
	}

	if !strings.HasSuffix(rawPath, "raw/abc_1000.parquet") {
		t.Errorf("unexpected raw path %s", rawPath)
	}

	info, err := parquet.GetFileInfo(rawPath)
	if err != nil {
		t.Fatalf("GetFileInfo: %v", err)
	}
	if info.NumRows != 3600 || info.Tier != "raw" {
		t.Errorf("unexpected file info %+v", info)
	}

	stats := svc.Stats()
	if stats.FilesWritten != 3 || stats.RowsWritten != 3600+4+1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	usage := svc.DiskUsage()
	for _, tier := range types.AllTiers() {
		if usage[tier].FileCount != 1 || usage[tier].TotalSize == 0 {
			t.Errorf("tier %s: unexpected usage %+v", tier, usage[tier])
		}
	}

	out := svc.FormatDiskUsage()
	if !strings.Contains(out, "Total:   3 files") {
		t.Errorf("unexpected disk usage output:\n%s", out)
	}
}

func TestService_Query(t *testing.T) {
	cfg := testConfig(t)
	cfg.Query.Enabled = true
	svc := newTestService(t, cfg)

	if svc.Query() == nil {
		t.Fatal("expected query service")
	}

	summaries := testutil.Windows("abc", 8, 900)
	if _, err := svc.WriteSegments("abc", 0, summaries); err != nil {
		t.Fatalf("WriteSegments: %v", err)
	}

	got, err := svc.Query().Segments(context.Background(), query.Filter{Identity: "abc"})
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(got) != 8 {
		t.Errorf("expected 8 segments, got %d", len(got))
	}

	if svc.Stats().Query.QueriesExecuted != 1 {
		t.Errorf("unexpected query stats %+v", svc.Stats().Query)
	}
}

func TestService_Close(t *testing.T) {
	cfg := testConfig(t)
	cfg.Query.Enabled = true

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	if _, err := svc.WriteRollups("abc", 0, nil); !errors.Is(err, errors.ErrServiceClosed) {
		t.Errorf("expected ErrServiceClosed, got %v", err)
	}
}
