package types

import "time"

// Reading is a single per-second sample emitted by the wearable sensor.
type Reading struct {
	Identity        string
	HeartRate       int
	RespiratoryRate int
	Activity        int
	Timestamp       int64 // Unix seconds
}

// Time returns the timestamp as a time.Time.
func (r *Reading) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// RawSeries is the ordered sequence of readings for one run.
//
// Windowing slices the series by position, not by timestamp: Readings[i] is
// the (i+1)th sample emitted. Positions coincide with elapsed seconds only
// because exactly one reading is emitted per second.
type RawSeries struct {
	Readings []Reading
}

// NewRawSeries creates an empty series with the given capacity.
func NewRawSeries(capacity int) *RawSeries {
	return &RawSeries{
		Readings: make([]Reading, 0, capacity),
	}
}

// Add appends a reading to the series.
func (s *RawSeries) Add(r Reading) {
	s.Readings = append(s.Readings, r)
}

// Len returns the number of readings.
func (s *RawSeries) Len() int {
	return len(s.Readings)
}

// Window returns the readings at positions [start, end), clamped to the
// series length.
func (s *RawSeries) Window(start, end int) []Reading {
	n := len(s.Readings)
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	if start < 0 || start >= end {
		return nil
	}
	return s.Readings[start:end]
}

// Span returns the first and last timestamps of the series.
func (s *RawSeries) Span() (first, last int64) {
	if len(s.Readings) == 0 {
		return 0, 0
	}
	return s.Readings[0].Timestamp, s.Readings[len(s.Readings)-1].Timestamp
}
