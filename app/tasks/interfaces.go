package tasks

import (
	"context"

	"github.com/careerkit/jobfeed/app/feed"
)

// AggregatorInterface is consumed by the API layer and the scheduler.
// Run drives one fetch-merge-store cycle; the read methods serve the cached
// job set without touching the network.
type AggregatorInterface interface {
	Run(ctx context.Context) Result
	Jobs(ctx context.Context) ([]feed.Job, error)
	JobByID(ctx context.Context, id string) (*feed.Job, error)
	Meta() SyncMeta
}
