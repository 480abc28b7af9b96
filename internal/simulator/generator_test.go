package simulator

import (
	"testing"

	"github.com/xtxerr/wearsim/internal/errors"
)

func newGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Seed = seed

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestGenerateCountAndTimestamps(t *testing.T) {
	g := newGenerator(t, 1)

	for _, duration := range []int{1, 30, 7200} {
		series, err := g.Generate(duration, 1000, "abc")
		if err != nil {
			t.Fatalf("Generate(%d): %v", duration, err)
		}

		if series.Len() != duration {
			t.Fatalf("expected %d readings, got %d", duration, series.Len())
		}

		for i, r := range series.Readings {
			expected := int64(1000 + i + 1)
			if r.Timestamp != expected {
				t.Fatalf("reading %d: expected timestamp %d, got %d", i, expected, r.Timestamp)
			}
			if r.Identity != "abc" {
				t.Fatalf("reading %d: expected identity abc, got %s", i, r.Identity)
			}
		}
	}
}

func TestGenerateBounds(t *testing.T) {
	g := newGenerator(t, 7)
	cfg := DefaultConfig()

	series, err := g.Generate(20000, 0, "abc")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	seenHR := map[int]bool{}
	for i, r := range series.Readings {
		if !cfg.HeartRate.Contains(r.HeartRate) {
			t.Fatalf("reading %d: heart_rate %d out of range", i, r.HeartRate)
		}
		if !cfg.RespiratoryRate.Contains(r.RespiratoryRate) {
			t.Fatalf("reading %d: respiratory_rate %d out of range", i, r.RespiratoryRate)
		}
		if !cfg.Activity.Contains(r.Activity) {
			t.Fatalf("reading %d: activity %d out of range", i, r.Activity)
		}
		seenHR[r.HeartRate] = true
	}

	// Both ends are inclusive; 20k draws over 41 values hit each end.
	if !seenHR[60] || !seenHR[100] {
		t.Errorf("expected both heart_rate bounds to be drawn, got 60=%v 100=%v", seenHR[60], seenHR[100])
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	a, err := newGenerator(t, 42).Generate(100, 0, "abc")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := newGenerator(t, 42).Generate(100, 0, "abc")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := range a.Readings {
		if a.Readings[i] != b.Readings[i] {
			t.Fatalf("reading %d differs: %+v vs %+v", i, a.Readings[i], b.Readings[i])
		}
	}
}

func TestGenerateInvalidArgument(t *testing.T) {
	g := newGenerator(t, 1)

	tests := []struct {
		name     string
		duration int
		identity string
	}{
		{"zero duration", 0, "abc"},
		{"negative duration", -5, "abc"},
		{"empty identity", 10, ""},
	}

	for _, tt := range tests {
		_, err := g.Generate(tt.duration, 0, tt.identity)
		if !errors.Is(err, errors.ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.name, err)
		}
	}
}

func TestNewInvalidRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Activity = Range{Min: 10, Max: 1}

	if _, err := New(cfg); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSingleValueRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeartRate = Range{Min: 72, Max: 72}
	cfg.Seed = 3

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	series, err := g.Generate(50, 0, "abc")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, r := range series.Readings {
		if r.HeartRate != 72 {
			t.Fatalf("expected heart_rate 72, got %d", r.HeartRate)
		}
	}
}

func TestRandomIdentity(t *testing.T) {
	g := newGenerator(t, 9)

	id := g.RandomIdentity(0)
	if len(id) != 3 {
		t.Fatalf("expected 3 letters, got %q", id)
	}
	for _, c := range id {
		if c < 'a' || c > 'z' {
			t.Fatalf("unexpected character %q in %q", c, id)
		}
	}

	if len(g.RandomIdentity(8)) != 8 {
		t.Error("expected 8 letters")
	}
}
