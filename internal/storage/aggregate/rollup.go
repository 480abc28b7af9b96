package aggregate

import (
	"slices"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/storage/types"
)

// RollupStats holds statistics of one Rollup call.
type RollupStats struct {
	Identities       int
	Groups           int
	Rollups          int
	DroppedSummaries int
}

// Rollup re-aggregates window summaries into coarser summaries. It never
// looks at raw readings.
//
// The input is first partitioned by identity, preserving order. Within each
// identity the first span summaries are cut into consecutive groups of
// groupSize; a trailing partial group is dropped. Output is ordered by group
// index and, within a group index, by identity.
func Rollup(summaries []types.WindowSummary, groupSize, span int) ([]types.RollupSummary, error) {
	rollups, _, err := RollupWithStats(summaries, groupSize, span)
	return rollups, err
}

// RollupWithStats is Rollup that also reports what was grouped and dropped.
func RollupWithStats(summaries []types.WindowSummary, groupSize, span int) ([]types.RollupSummary, RollupStats, error) {
	var stats RollupStats

	if groupSize <= 0 {
		return nil, stats, errors.NewInvalidArgument("group_size", groupSize, "must be positive")
	}
	if span < 0 {
		return nil, stats, errors.NewInvalidArgument("total_groups_span", span, "must not be negative")
	}

	rollups := []types.RollupSummary{}
	if len(summaries) == 0 {
		return rollups, stats, nil
	}

	log := logging.Component("rollup")

	parts := make(map[string][]types.WindowSummary)
	for _, w := range summaries {
		parts[w.Identity] = append(parts[w.Identity], w)
	}

	identities := make([]string, 0, len(parts))
	for id := range parts {
		identities = append(identities, id)
	}
	slices.Sort(identities)
	stats.Identities = len(identities)

	groups := make(map[string]int, len(parts))
	maxGroups := 0
	for id, part := range parts {
		limit := min(span, len(part))
		n := limit / groupSize
		groups[id] = n
		maxGroups = max(maxGroups, n)
		stats.DroppedSummaries += limit - n*groupSize
	}
	stats.Groups = maxGroups

	for g := 0; g < maxGroups; g++ {
		for _, id := range identities {
			if g >= groups[id] {
				continue
			}

			acc := NewRollupAccumulator(id)
			for _, w := range parts[id][g*groupSize : (g+1)*groupSize] {
				acc.Merge(w)
			}
			rollups = append(rollups, acc.Result())
		}
	}

	stats.Rollups = len(rollups)

	if stats.DroppedSummaries > 0 {
		log.Warn("trailing partial group dropped",
			"summaries", stats.DroppedSummaries,
			"group_size", groupSize)
	}

	return rollups, stats, nil
}
