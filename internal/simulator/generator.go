// Package simulator produces the synthetic per-second readings of a single
// wearable sensor.
package simulator

import (
	"math/rand/v2"
	"time"

	defaults "github.com/xtxerr/wearsim/config"
	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/storage/types"
	"github.com/xtxerr/wearsim/internal/validation"
)

// Range is an inclusive integer interval values are drawn from.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v lies in the interval.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Config holds the value bounds and seed of a Generator.
type Config struct {
	HeartRate       Range
	RespiratoryRate Range
	Activity        Range

	// Seed makes the generated values reproducible. Zero draws a random seed.
	Seed uint64
}

// DefaultConfig returns the standard physiological bounds.
func DefaultConfig() Config {
	return Config{
		HeartRate:       Range{Min: defaults.DefaultHeartRateMin, Max: defaults.DefaultHeartRateMax},
		RespiratoryRate: Range{Min: defaults.DefaultRespiratoryRateMin, Max: defaults.DefaultRespiratoryRateMax},
		Activity:        Range{Min: defaults.DefaultActivityMin, Max: defaults.DefaultActivityMax},
	}
}

// Generator draws uniform readings within fixed bounds. It is not safe for
// concurrent use.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a generator. It fails if any bound is inverted.
func New(cfg Config) (*Generator, error) {
	v := errors.NewValidationErrors()
	for _, b := range []struct {
		name string
		r    Range
	}{
		{"heart_rate", cfg.HeartRate},
		{"respiratory_rate", cfg.RespiratoryRate},
		{"activity", cfg.Activity},
	} {
		if err := validation.ValidateRange(b.r.Min, b.r.Max); err != nil {
			v.Add(errors.NewInvalidArgument(b.name, b.r, err.Error()))
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// Generate produces exactly duration readings. Reading i (1-based) has
// timestamp start+i.
func (g *Generator) Generate(duration int, start int64, identity string) (*types.RawSeries, error) {
	if duration <= 0 {
		return nil, errors.NewInvalidArgument("duration_seconds", duration, "must be positive")
	}
	if identity == "" {
		return nil, errors.NewInvalidArgument("identity", identity, "must not be empty")
	}

	log := logging.Component("simulator")
	began := time.Now()

	series := types.NewRawSeries(duration)
	for i := 1; i <= duration; i++ {
		series.Add(types.Reading{
			Identity:        identity,
			HeartRate:       g.draw(g.cfg.HeartRate),
			RespiratoryRate: g.draw(g.cfg.RespiratoryRate),
			Activity:        g.draw(g.cfg.Activity),
			Timestamp:       start + int64(i),
		})
	}

	log.Debug("series generated",
		"identity", identity,
		"readings", series.Len(),
		"start", start,
		"elapsed", time.Since(began))

	return series, nil
}

// RandomIdentity returns n lowercase ASCII letters.
func (g *Generator) RandomIdentity(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if n <= 0 {
		n = defaults.DefaultIdentityLength
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[g.rng.IntN(len(letters))]
	}
	return string(b)
}

func (g *Generator) draw(r Range) int {
	return r.Min + g.rng.IntN(r.Max-r.Min+1)
}
