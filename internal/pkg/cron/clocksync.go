package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
)

// TimeSource yields a trusted reference time, in practice the database
// server's clock.
type TimeSource func(ctx context.Context) (time.Time, error)

// ClockSync keeps the process clock aligned with a reference source so
// durations and night-window checks agree across devices even when the
// host clock drifts. A failed pass keeps the last good offset.
type ClockSync struct {
	source TimeSource
	clock  *clock.OffsetClock
}

func NewClockSync(source TimeSource, clk *clock.OffsetClock) *ClockSync {
	return &ClockSync{source: source, clock: clk}
}

func (c *ClockSync) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("clock_sync", interval, c.Sync)
}

// Sync is one alignment pass.
func (c *ClockSync) Sync(ctx context.Context) error {
	reference, err := c.source(ctx)
	if err != nil {
		return fmt.Errorf("read reference time: %w", err)
	}
	c.clock.SyncOffset(reference)
	return nil
}
