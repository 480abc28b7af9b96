// Package testutil provides fixtures and goroutine helpers shared by the
// wearsim tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xtxerr/wearsim/internal/storage/types"
)

// =============================================================================
// Fixtures
// =============================================================================

// Series returns n readings for identity with timestamps start+1..start+n.
// Values cycle deterministically through their full physiological bounds so
// that every window of a realistic size sees both extremes.
func Series(identity string, n int, start int64) *types.RawSeries {
	s := types.NewRawSeries(n)
	for i := 1; i <= n; i++ {
		s.Add(types.Reading{
			Identity:        identity,
			HeartRate:       60 + (i*7)%41,
			RespiratoryRate: 12 + (i*5)%49,
			Activity:        1 + i%10,
			Timestamp:       start + int64(i),
		})
	}
	return s
}

// Windows returns n consecutive window summaries of width seconds for
// identity, starting at timestamp 1. Window i has min_hr 60+i, max_hr 90+i,
// avg_hr 70+i and avg_rr 20+i.
func Windows(identity string, n int, width int64) []types.WindowSummary {
	out := make([]types.WindowSummary, 0, n)
	for i := 0; i < n; i++ {
		start := 1 + int64(i)*width
		out = append(out, types.WindowSummary{
			Identity:           identity,
			MinHeartRate:       60 + i,
			MaxHeartRate:       90 + i,
			AvgHeartRate:       float64(70 + i),
			AvgRespiratoryRate: float64(20 + i),
			StartTimestamp:     start,
			EndTimestamp:       start + width - 1,
			Count:              width,
		})
	}
	return out
}

// =============================================================================
// Goroutines
// =============================================================================

// GoroutineTest runs functions concurrently and reports their errors on the
// test goroutine. Functions return errors instead of calling t.Fatal, which
// must not be called from a goroutine other than the test's own.
//
//	gt := testutil.NewGoroutineTest(t, 10*time.Second)
//	defer gt.Wait()
//
//	gt.Go(func(ctx context.Context) error {
//	    _, err := svc.Segments(ctx, query.Filter{})
//	    return err
//	})
type GoroutineTest struct {
	t      testing.TB
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	errs []error
}

// NewGoroutineTest creates a helper whose context expires after timeout.
func NewGoroutineTest(t testing.TB, timeout time.Duration) *GoroutineTest {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return &GoroutineTest{t: t, ctx: ctx, cancel: cancel}
}

// Go runs fn in a goroutine. A non-nil error fails the test at Wait.
func (gt *GoroutineTest) Go(fn func(ctx context.Context) error) {
	gt.wg.Add(1)
	go func() {
		defer gt.wg.Done()
		if err := fn(gt.ctx); err != nil {
			gt.mu.Lock()
			gt.errs = append(gt.errs, err)
			gt.mu.Unlock()
		}
	}()
}

// Wait blocks until every goroutine returns, then fails the test if any of
// them returned an error.
func (gt *GoroutineTest) Wait() {
	gt.t.Helper()

	gt.wg.Wait()
	gt.cancel()

	gt.mu.Lock()
	defer gt.mu.Unlock()

	for i, err := range gt.errs {
		gt.t.Errorf("goroutine error [%d]: %v", i+1, err)
	}
	if len(gt.errs) > 0 {
		gt.t.FailNow()
	}
}

// Context returns the shared context.
func (gt *GoroutineTest) Context() context.Context {
	return gt.ctx
}

// AssertEqual returns an error when got differs from want.
func AssertEqual[T comparable](got, want T, msg string) error {
	if got != want {
		return fmt.Errorf("%s: got %v, want %v", msg, got, want)
	}
	return nil
}
