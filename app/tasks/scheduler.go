package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cycleTimeout bounds one aggregation cycle end to end.
const cycleTimeout = 5 * time.Minute

// Scheduler drives the aggregation cycle: once immediately at startup and
// then on a fixed interval for the process lifetime. Overlap protection lives
// in the Aggregator's single-flight guard, so a slow cycle simply causes the
// next tick to be rejected.
type Scheduler struct {
	cron       *cron.Cron
	aggregator AggregatorInterface
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	warmup     sync.WaitGroup
}

func NewScheduler(aggregator AggregatorInterface, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:       cron.New(),
		aggregator: aggregator,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)

	if _, err := s.cron.AddFunc(spec, s.runCycle); err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()
	slog.Info("Scheduler started", "interval", s.interval.String())

	// Warm-up run so the feed is populated without waiting for the first tick.
	s.warmup.Add(1)
	go func() {
		defer s.warmup.Done()
		s.runCycle()
	}()

	return nil
}

// Stop cancels the cycle context and blocks until both the cron jobs and the
// warm-up run have finished.
func (s *Scheduler) Stop() {
	s.cancel()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.warmup.Wait()

	slog.Info("Scheduler stopped")
}

func (s *Scheduler) runCycle() {
	select {
	case <-s.ctx.Done():
		return
	default:
	}

	ctx, cancel := context.WithTimeout(s.ctx, cycleTimeout)
	defer cancel()

	result := s.aggregator.Run(ctx)
	if result.Synced {
		slog.Info("Scheduled sync succeeded", "count", result.Count)
	} else if result.Reason == ReasonSyncInProgress {
		slog.Debug("Scheduled sync skipped, previous cycle still running")
	} else {
		slog.Warn("Scheduled sync failed", "reason", result.Reason)
	}
}
