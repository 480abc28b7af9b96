package aggregate

import (
	"slices"

	defaults "github.com/xtxerr/wearsim/config"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// SegmentOptions configures a Segmenter.
type SegmentOptions struct {
	// Percentiles enables DDSketch heart-rate percentiles per window.
	Percentiles bool

	// Accuracy is the DDSketch relative accuracy.
	Accuracy float64
}

// Segmenter partitions a raw series into fixed-size windows and summarizes
// each window per identity.
type Segmenter struct {
	opts  SegmentOptions
	stats SegmentStats
}

// SegmentStats holds statistics of the last Aggregate call.
type SegmentStats struct {
	ReadingsConsidered int
	Windows            int
	Summaries          int
	DroppedReadings    int
}

// NewSegmenter creates a segmenter. An accuracy outside (0, 1) is replaced
// by the default.
func NewSegmenter(opts SegmentOptions) *Segmenter {
	if opts.Percentiles && (opts.Accuracy <= 0 || opts.Accuracy >= 1) {
		opts.Accuracy = defaults.DefaultPercentileAccuracy
	}
	return &Segmenter{opts: opts}
}

// Segment aggregates series with default options.
func Segment(series *types.RawSeries, windowSize, total int) ([]types.WindowSummary, error) {
	return NewSegmenter(SegmentOptions{}).Aggregate(series, windowSize, total)
}

// Aggregate partitions positions [0, total) of series into consecutive
// windows of windowSize readings: window k covers [k*w, (k+1)*w). total is
// clamped to the series length, and only windows whose upper bound is
// within it are produced; a trailing partial window is dropped. Summaries are emitted in window order and, within a
// window, in identity order.
func (s *Segmenter) Aggregate(series *types.RawSeries, windowSize, total int) ([]types.WindowSummary, error) {
	if windowSize <= 0 {
		return nil, errors.NewInvalidArgument("window_size_seconds", windowSize, "must be positive")
	}
	if total < 0 {
		return nil, errors.NewInvalidArgument("total_duration_seconds", total, "must not be negative")
	}

	s.stats = SegmentStats{}
	summaries := []types.WindowSummary{}

	if series == nil || series.Len() == 0 {
		return summaries, nil
	}

	log := logging.Component("segment")

	considered := min(total, series.Len())
	s.stats.ReadingsConsidered = considered

	for start, end := 0, windowSize; end <= considered; start, end = end, end+windowSize {
		window := series.Window(start, end)

		results := s.summarize(window)
		summaries = append(summaries, results...)

		s.stats.Windows++
		log.Debug("window aggregated",
			"window", s.stats.Windows-1,
			"start", start,
			"end", end,
			"readings", len(window),
			"identities", len(results))
	}

	s.stats.Summaries = len(summaries)
	s.stats.DroppedReadings = considered - min(considered, s.stats.Windows*windowSize)

	if s.stats.DroppedReadings > 0 {
		log.Warn("trailing partial window dropped",
			"readings", s.stats.DroppedReadings,
			"window_size", windowSize)
	}

	return summaries, nil
}

// Stats returns statistics of the last Aggregate call.
func (s *Segmenter) Stats() SegmentStats {
	return s.stats
}

// summarize accumulates one window in a single pass and returns one summary
// per identity, sorted by identity.
func (s *Segmenter) summarize(window []types.Reading) []types.WindowSummary {
	accs := make(map[string]*WindowAccumulator)

	for _, r := range window {
		acc, ok := accs[r.Identity]
		if !ok {
			acc = s.newAccumulator(r.Identity)
			accs[r.Identity] = acc
		}
		acc.Add(r)
	}

	identities := make([]string, 0, len(accs))
	for id := range accs {
		identities = append(identities, id)
	}
	slices.Sort(identities)

	results := make([]types.WindowSummary, 0, len(identities))
	for _, id := range identities {
		results = append(results, accs[id].Result())
	}
	return results
}

func (s *Segmenter) newAccumulator(identity string) *WindowAccumulator {
	if s.opts.Percentiles {
		return NewWindowAccumulatorWithAccuracy(identity, s.opts.Accuracy)
	}
	return NewWindowAccumulator(identity)
}
