package types

import (
	"fmt"

	"github.com/xtxerr/wearsim/internal/errors"
)

// Tier is an aggregation level of the pipeline.
type Tier int

const (
	// TierRaw holds per-second readings.
	TierRaw Tier = iota

	// TierSegment holds fixed-size window summaries (15 minutes by default).
	TierSegment

	// TierRollup holds summaries re-aggregated from segments (1 hour by default).
	TierRollup
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierRaw:
		return "raw"
	case TierSegment:
		return "segment"
	case TierRollup:
		return "rollup"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// ParseTier parses a tier name as written in configuration.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "raw":
		return TierRaw, nil
	case "segment":
		return TierSegment, nil
	case "rollup":
		return TierRollup, nil
	default:
		return TierRaw, errors.NewInvalidArgument("tier", s, "must be one of: raw, segment, rollup")
	}
}

// AllTiers returns all tiers in order.
func AllTiers() []Tier {
	return []Tier{TierRaw, TierSegment, TierRollup}
}
