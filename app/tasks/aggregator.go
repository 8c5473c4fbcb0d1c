package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/careerkit/jobfeed/app/feed"
	"github.com/careerkit/jobfeed/app/store"
)

var _ AggregatorInterface = (*Aggregator)(nil)

// ReasonSyncInProgress is reported when a cycle trigger is rejected because
// another cycle is already running.
const ReasonSyncInProgress = "sync_in_progress"

// Result is the outcome of one aggregation cycle.
type Result struct {
	Synced     bool       `json:"synced"`
	Count      int        `json:"count,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	LastSyncAt *time.Time `json:"lastSyncAt,omitempty"`
}

// SyncMeta is the observability block exposed alongside query responses.
type SyncMeta struct {
	LastSyncAt     *time.Time `json:"lastSyncAt"`
	SyncInProgress bool       `json:"syncInProgress"`
	CachedJobs     int        `json:"cachedJobs"`
}

// Aggregator owns the fetch-merge-store cycle and the in-memory job cache.
// At most one cycle runs at a time process-wide; concurrent triggers are
// rejected immediately, never queued. Queries are served from the cache and
// never block on a running cycle.
type Aggregator struct {
	store   store.Store
	sources []feed.Source
	now     func() time.Time
	maxJobs int

	inFlight atomic.Bool

	mu          sync.RWMutex
	jobs        []feed.Job
	cacheLoaded bool
	lastSyncAt  *time.Time
}

func NewAggregator(st store.Store, sources []feed.Source, maxJobs int, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	if maxJobs <= 0 {
		maxJobs = feed.MaxJobs
	}

	return &Aggregator{
		store:   st,
		sources: sources,
		now:     now,
		maxJobs: maxJobs,
	}
}

// Run executes one fetch-merge-store cycle. An upstream or storage failure is
// reported in the Result, never panicked; the previous cache stays intact.
func (a *Aggregator) Run(ctx context.Context) Result {
	if !a.inFlight.CompareAndSwap(false, true) {
		return Result{Synced: false, Reason: ReasonSyncInProgress}
	}
	defer a.inFlight.Store(false)

	started := a.now()

	existing, err := a.loadJobs(ctx)
	if err != nil {
		slog.Error("Sync failed to load stored jobs", "error", err)
		return Result{Synced: false, Reason: err.Error()}
	}

	incoming, err := a.fetchAll(ctx)
	if err != nil {
		return Result{Synced: false, Reason: err.Error()}
	}

	mergedAt := a.now().UTC()
	merged := feed.Merge(existing, incoming, mergedAt, a.maxJobs)

	if err := store.WriteRows(ctx, a.store, store.TableJobs, merged); err != nil {
		slog.Error("Sync failed to persist jobs", "error", err)
		return Result{Synced: false, Reason: err.Error()}
	}

	syncedAt := a.now().UTC()

	a.mu.Lock()
	a.jobs = merged
	a.cacheLoaded = true
	a.lastSyncAt = &syncedAt
	a.mu.Unlock()

	slog.Info("Sync completed",
		"existing", len(existing),
		"fetched", len(incoming),
		"total", len(merged),
		"duration", a.now().Sub(started))

	return Result{Synced: true, Count: len(merged), LastSyncAt: &syncedAt}
}

// fetchAll pulls every configured source. A failing source is isolated: its
// error is logged and the cycle continues with the other sources. The cycle
// only fails when no source produced anything and at least one errored.
func (a *Aggregator) fetchAll(ctx context.Context) ([]feed.Job, error) {
	var incoming []feed.Job
	var firstErr error
	succeeded := 0

	for _, source := range a.sources {
		jobs, err := source.Fetch(ctx)
		if err != nil {
			slog.Warn("Source fetch failed", "source", source.Name(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("source %s: %w", source.Name(), err)
			}
			continue
		}
		succeeded++
		incoming = append(incoming, jobs...)
		slog.Debug("Source fetched", "source", source.Name(), "jobs", len(jobs))
	}

	if succeeded == 0 && firstErr != nil {
		return nil, firstErr
	}

	return incoming, nil
}

// Jobs returns the cached job set, loading it from the store on first use.
func (a *Aggregator) Jobs(ctx context.Context) ([]feed.Job, error) {
	a.mu.RLock()
	if a.cacheLoaded {
		jobs := a.jobs
		a.mu.RUnlock()
		return jobs, nil
	}
	a.mu.RUnlock()

	return a.loadJobs(ctx)
}

// JobByID returns the cached job with the given id, or nil when absent.
func (a *Aggregator) JobByID(ctx context.Context, id string) (*feed.Job, error) {
	jobs, err := a.Jobs(ctx)
	if err != nil {
		return nil, err
	}

	for i := range jobs {
		if jobs[i].ID == id {
			job := jobs[i]
			return &job, nil
		}
	}
	return nil, nil
}

func (a *Aggregator) Meta() SyncMeta {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return SyncMeta{
		LastSyncAt:     a.lastSyncAt,
		SyncInProgress: a.inFlight.Load(),
		CachedJobs:     len(a.jobs),
	}
}

func (a *Aggregator) loadJobs(ctx context.Context) ([]feed.Job, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cacheLoaded {
		return a.jobs, nil
	}

	jobs, err := store.ReadRows[feed.Job](ctx, a.store, store.TableJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs table: %w", err)
	}

	a.jobs = jobs
	a.cacheLoaded = true
	return jobs, nil
}
