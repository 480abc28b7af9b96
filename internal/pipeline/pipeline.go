// Package pipeline runs one simulation end to end: generate the raw series,
// aggregate it into fine windows, roll the windows up, and write every
// artifact of the run.
//
// The stages run strictly in sequence and each fully consumes its
// predecessor's output. Only the independent artifact writes at the end run
// concurrently.
package pipeline

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/export"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/simulator"
	"github.com/xtxerr/wearsim/internal/storage"
	"github.com/xtxerr/wearsim/internal/storage/aggregate"
	"github.com/xtxerr/wearsim/internal/storage/config"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// Result holds everything a run produced.
type Result struct {
	RunID    string
	Identity string
	Start    int64

	Series   *types.RawSeries
	Segments []types.WindowSummary
	Rollups  []types.RollupSummary

	SegmentStats aggregate.SegmentStats
	RollupStats  aggregate.RollupStats

	// Artifacts lists every file written, in no particular order.
	Artifacts []string

	// Check is nil unless the query service ran.
	Check *CrossCheck

	Storage storage.ServiceStats

	Elapsed time.Duration
}

// CrossCheck compares the rollup stage with statistics recomputed by DuckDB
// directly from the raw tier, and the fine-window CSV as DuckDB reads it
// with the in-memory summaries.
type CrossCheck struct {
	Rollups      int
	ExactRollups int

	// Largest absolute differences between approximate and exact averages.
	MaxAvgHeartRateDelta       float64
	MaxAvgRespiratoryRateDelta float64

	// BoundMismatches counts groups whose min/max or span differ. It is
	// zero whenever every window is full.
	BoundMismatches int

	// CSVSegments is the row count DuckDB read from the fine-window CSV.
	CSVSegments int
}

// Pipeline runs a configured simulation.
type Pipeline struct {
	cfg *config.Config
	now func() time.Time
}

// New creates a pipeline. The configuration is validated up front so that
// a bad value fails before anything is written.
func New(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Pipeline{cfg: cfg, now: time.Now}, nil
}

// Run executes every stage and writes the artifacts.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	began := p.now()
	cfg := p.cfg

	res := &Result{RunID: logging.NewRunID()}
	ctx = logging.ContextWithRunID(ctx, res.RunID)

	store, err := storage.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	defer store.Close()

	// =========================================================================
	// Generate
	// =========================================================================

	gen, err := simulator.New(simulator.Config{
		HeartRate:       simulator.Range(cfg.Simulation.HeartRate),
		RespiratoryRate: simulator.Range(cfg.Simulation.RespiratoryRate),
		Activity:        simulator.Range(cfg.Simulation.Activity),
		Seed:            cfg.Simulation.Seed,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create generator")
	}

	res.Identity = cfg.Simulation.Identity
	if res.Identity == "" {
		res.Identity = gen.RandomIdentity(0)
	}
	res.Start = cfg.Simulation.StartTimestamp
	if res.Start == 0 {
		res.Start = began.Unix()
	}

	ctx = logging.ContextWithIdentity(ctx, res.Identity)
	log := logging.ComponentContext(ctx, "pipeline")

	log.Info("run started",
		"duration_sec", cfg.Simulation.DurationSec,
		"start", res.Start,
		"window_size_sec", cfg.Aggregation.WindowSizeSec,
		"group_size", cfg.Aggregation.GroupSize,
		"handoff", cfg.Export.Handoff)

	res.Series, err = gen.Generate(cfg.Simulation.DurationSec, res.Start, res.Identity)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// Segment
	// =========================================================================

	seg := aggregate.NewSegmenter(aggregate.SegmentOptions{
		Percentiles: cfg.Aggregation.Percentile.Enabled,
		Accuracy:    cfg.Aggregation.Percentile.Accuracy,
	})

	res.Segments, err = seg.Aggregate(res.Series, cfg.Aggregation.WindowSizeSec, cfg.Simulation.DurationSec)
	if err != nil {
		return nil, errors.Wrap(err, "segment")
	}
	res.SegmentStats = seg.Stats()

	log.Info("segment stage complete",
		"readings", res.Series.Len(),
		"windows", res.SegmentStats.Windows,
		"summaries", len(res.Segments),
		"dropped_readings", res.SegmentStats.DroppedReadings)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// Handoff + Rollup
	// =========================================================================

	segmentPath := cfg.Path(cfg.Export.SegmentFile)

	input := res.Segments
	if cfg.Export.Handoff == config.HandoffFile {
		if err := export.WriteSegmentsCSV(segmentPath, res.Segments); err != nil {
			return nil, errors.Wrap(err, "write segment handoff")
		}
		res.Artifacts = append(res.Artifacts, segmentPath)

		input, err = export.ReadSegmentsCSV(segmentPath)
		if err != nil {
			return nil, errors.Wrap(err, "read segment handoff")
		}

		log.Debug("segment handoff read back", "path", segmentPath, "summaries", len(input))
	}

	res.Rollups, res.RollupStats, err = aggregate.RollupWithStats(input, cfg.Aggregation.GroupSize, len(input))
	if err != nil {
		return nil, errors.Wrap(err, "rollup")
	}

	log.Info("rollup stage complete",
		"summaries", len(input),
		"rollups", len(res.Rollups),
		"dropped_summaries", res.RollupStats.DroppedSummaries)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// Artifacts
	// =========================================================================

	written, err := p.writeArtifacts(ctx, store, res)
	if err != nil {
		return nil, err
	}
	res.Artifacts = append(res.Artifacts, written...)

	// =========================================================================
	// Cross check
	// =========================================================================

	if cfg.Query.Enabled {
		res.Check, err = p.crossCheck(ctx, store, res)
		if err != nil {
			return nil, errors.Wrap(err, "cross check")
		}
	}

	res.Storage = store.Stats()
	res.Elapsed = time.Since(began)

	if cfg.Export.Parquet.Enabled {
		log.Debug("tier disk usage", "usage", store.DiskUsage())
	}

	log.Info("run complete",
		"artifacts", len(res.Artifacts),
		"elapsed", res.Elapsed)

	return res, nil
}

// writeArtifacts writes every remaining artifact concurrently. Each file is
// written by exactly one goroutine.
func (p *Pipeline) writeArtifacts(ctx context.Context, store *storage.Service, res *Result) ([]string, error) {
	cfg := p.cfg
	log := logging.ComponentContext(ctx, "export")

	var (
		mu      sync.Mutex
		written []string
	)

	g, gctx := errgroup.WithContext(ctx)

	// write runs fn in the group and records the path it reports.
	write := func(fn func() (string, error)) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path, err := fn()
			if err != nil {
				return err
			}

			mu.Lock()
			written = append(written, path)
			mu.Unlock()

			log.Debug("artifact written", "path", path)
			return nil
		})
	}

	write(func() (string, error) {
		path := cfg.Path(cfg.Export.RawFile)
		return path, export.WriteRawJSON(path, res.Series, cfg.Export.JSONIndent)
	})

	if cfg.Export.Handoff == config.HandoffMemory {
		write(func() (string, error) {
			path := cfg.Path(cfg.Export.SegmentFile)
			return path, export.WriteSegmentsCSV(path, res.Segments)
		})
	}

	write(func() (string, error) {
		path := cfg.Path(cfg.Export.RollupFile)
		return path, export.WriteRollupsCSV(path, res.Rollups)
	})

	if cfg.WritesTier(types.TierRaw) {
		write(func() (string, error) {
			return store.WriteReadings(res.Identity, res.Start, res.Series.Readings)
		})
	}
	if cfg.WritesTier(types.TierSegment) {
		write(func() (string, error) {
			return store.WriteSegments(res.Identity, res.Start, res.Segments)
		})
	}
	if cfg.WritesTier(types.TierRollup) {
		write(func() (string, error) {
			return store.WriteRollups(res.Identity, res.Start, res.Rollups)
		})
	}

	if cfg.Export.Workbook.Enabled {
		write(func() (string, error) {
			path := cfg.Path(cfg.Export.Workbook.File)
			return path, export.WriteWorkbook(path, res.Segments, res.Rollups)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "write artifacts")
	}

	log.Info("artifacts written", "count", len(written))

	return written, nil
}

// crossCheck runs the DuckDB comparisons over the written artifacts.
func (p *Pipeline) crossCheck(ctx context.Context, store *storage.Service, res *Result) (*CrossCheck, error) {
	cfg := p.cfg
	svc := store.Query()
	log := logging.ComponentContext(ctx, "query")

	check := &CrossCheck{Rollups: len(res.Rollups)}

	csvSegments, err := svc.SegmentsFromCSV(ctx, cfg.Path(cfg.Export.SegmentFile))
	if err != nil {
		return nil, err
	}
	check.CSVSegments = len(csvSegments)

	if cfg.WritesTier(types.TierRaw) {
		rawFile := store.TierFile(types.TierRaw, res.Identity, res.Start)

		exact, err := svc.ExactRollups(ctx, cfg.Aggregation.WindowSizeSec, cfg.Aggregation.GroupSize, rawFile)
		if err != nil {
			return nil, err
		}
		check.ExactRollups = len(exact)
		compareRollups(check, res.Rollups, exact)

		if check.ExactRollups != check.Rollups {
			log.Warn("exact rollup count differs",
				"exact", check.ExactRollups,
				"rollups", check.Rollups)
		}
	}

	log.Info("cross check complete",
		"rollups", check.Rollups,
		"exact_rollups", check.ExactRollups,
		"max_avg_hr_delta", check.MaxAvgHeartRateDelta,
		"max_avg_rr_delta", check.MaxAvgRespiratoryRateDelta,
		"bound_mismatches", check.BoundMismatches,
		"csv_segments", check.CSVSegments)

	if check.CSVSegments != len(res.Segments) {
		log.Warn("fine-window csv row count differs",
			"csv", check.CSVSegments,
			"memory", len(res.Segments))
	}

	return check, nil
}

// compareRollups pairs approximate and exact rollups by identity and start
// timestamp.
func compareRollups(check *CrossCheck, approx, exact []types.RollupSummary) {
	type key struct {
		identity string
		start    int64
	}

	index := make(map[key]types.RollupSummary, len(exact))
	for _, r := range exact {
		index[key{r.Identity, r.StartTimestamp}] = r
	}

	for _, a := range approx {
		e, ok := index[key{a.Identity, a.StartTimestamp}]
		if !ok {
			check.BoundMismatches++
			continue
		}

		check.MaxAvgHeartRateDelta = math.Max(check.MaxAvgHeartRateDelta, math.Abs(a.AvgHeartRate-e.AvgHeartRate))
		check.MaxAvgRespiratoryRateDelta = math.Max(check.MaxAvgRespiratoryRateDelta, math.Abs(a.AvgRespiratoryRate-e.AvgRespiratoryRate))

		if a.MinHeartRate != e.MinHeartRate || a.MaxHeartRate != e.MaxHeartRate || a.EndTimestamp != e.EndTimestamp {
			check.BoundMismatches++
		}
	}
}
