package feed

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
)

// MaxJobs is the default working set cap enforced after each merge.
const MaxJobs = 2500

// Job is the canonical listing record shared by the aggregation pipeline,
// the store, and the API.
type Job struct {
	ID                 string    `json:"id"`
	Source             string    `json:"source"`
	SourceID           string    `json:"sourceId"`
	Title              string    `json:"title"`
	Company            string    `json:"company"`
	Location           string    `json:"location"`
	IsRemote           bool      `json:"isRemote"`
	Category           string    `json:"category"`
	SalaryText         string    `json:"salaryText"`
	SalaryMin          *int      `json:"salaryMin"`
	SalaryMax          *int      `json:"salaryMax"`
	Description        string    `json:"description"`
	DescriptionPreview string    `json:"descriptionPreview"`
	ApplyURL           string    `json:"applyUrl"`
	Tags               []string  `json:"tags"`
	PublishedAt        time.Time `json:"publishedAt"`
	MatchScore         int       `json:"matchScore"`
	HighMatch          bool      `json:"highMatch"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// SavedJob links a user to a job they bookmarked. Unique per (user, job).
type SavedJob struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Application links a user to a job they applied to. Unique per (user, job).
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	Status    string    `json:"status"`
	ApplyURL  string    `json:"applyUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

var keyFolder = cases.Fold()

// IdentityKey returns the composite dedup key for a job. Two records with the
// same key are the same logical job across fetch cycles.
func (j Job) IdentityKey() string {
	key := fmt.Sprintf("%s:%s:%s:%s:%s", j.Source, j.SourceID, j.ApplyURL, j.Company, j.Title)
	return keyFolder.String(key)
}
