package sql

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// QueryStats holds statement execution statistics of a Driver.
type QueryStats struct {
	// TotalQueries is the total number of queries executed.
	TotalQueries atomic.Int64
	// TotalExecs is the total number of exec statements executed.
	TotalExecs atomic.Int64
	// TotalDuration is the total time spent executing statements.
	TotalDuration atomic.Int64 // nanoseconds
	// SlowQueries is the count of statements exceeding the slow threshold.
	SlowQueries atomic.Int64
	// Errors is the count of failed statements.
	Errors atomic.Int64
}

// Stats returns a snapshot of the current statistics.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset resets all statistics to zero.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of statement statistics.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration returns the average statement duration.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// DefaultSlowThreshold is the duration above which a statement is slow.
const DefaultSlowThreshold = 100 * time.Millisecond

// WithSlowThreshold sets the threshold for slow statement detection. Slow
// statements are counted and, with a logger, logged at warn level. A zero
// or negative threshold disables detection.
func WithSlowThreshold(d time.Duration) DriverOption {
	return func(drv *Driver) {
		drv.slow = d
	}
}

// Stats returns a snapshot of the statements executed through the driver
// and its transactions.
func (d *Driver) Stats() StatsSnapshot {
	return d.stats.Stats()
}

// ResetStats resets the driver statistics to zero.
func (d *Driver) ResetStats() {
	d.stats.Reset()
}

// record updates the statistics with an executed statement and logs it.
func (c Conn) record(ctx context.Context, op, query string, start time.Time, err error) {
	duration := time.Since(start)
	slow := c.slow > 0 && duration > c.slow
	if s := c.stats; s != nil {
		if op == "query" {
			s.TotalQueries.Add(1)
		} else {
			s.TotalExecs.Add(1)
		}
		s.TotalDuration.Add(int64(duration))
		if err != nil {
			s.Errors.Add(1)
		}
		if slow {
			s.SlowQueries.Add(1)
		}
	}
	if c.log == nil {
		return
	}
	switch {
	case err != nil:
		c.log.ErrorContext(ctx, "statement failed", "op", op, "dialect", c.dialect, "query", query, "duration", duration, "error", err)
	case slow:
		c.log.WarnContext(ctx, "slow statement", "op", op, "dialect", c.dialect, "query", query, "duration", duration, "threshold", c.slow)
	default:
		c.log.DebugContext(ctx, "statement executed", "op", op, "dialect", c.dialect, "query", query, "duration", duration)
	}
}
