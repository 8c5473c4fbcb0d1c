package api

import (
	"time"

	"github.com/careerkit/jobfeed/app/store"
	"github.com/careerkit/jobfeed/app/tasks"
)

type Handler struct {
	aggregator tasks.AggregatorInterface
	store      store.Store
}

type saveJobRequest struct {
	UserID string `json:"userId"`
	JobID  string `json:"jobId"`
}

type matchJobRequest struct {
	JobID      string `json:"jobId"`
	ResumeText string `json:"resumeText"`
}

// listMeta combines pagination with the sync observability fields the client
// polls to render feed freshness.
type listMeta struct {
	Page           int        `json:"page"`
	Limit          int        `json:"limit"`
	Total          int        `json:"total"`
	TotalPages     int        `json:"totalPages"`
	LastSyncAt     *time.Time `json:"lastSyncAt"`
	SyncInProgress bool       `json:"syncInProgress"`
	CachedJobs     int        `json:"cachedJobs"`
}
