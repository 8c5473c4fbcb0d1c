package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RemotiveSource fetches the Remotive public API. The endpoint returns the
// full current listing set in one JSON document.
type RemotiveSource struct {
	config    *Config
	client    *http.Client
	userAgent string
	now       func() time.Time
}

func NewRemotiveSource(config *Config, client *http.Client, userAgent string, now func() time.Time) *RemotiveSource {
	return &RemotiveSource{
		config:    config,
		client:    client,
		userAgent: userAgent,
		now:       now,
	}
}

func (s *RemotiveSource) Name() string {
	return s.config.Name
}

type remotivePayload struct {
	Jobs []remotiveJob `json:"jobs"`
}

// flexibleID tolerates upstream ids arriving as either numbers or strings.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleID(n.String())
		return nil
	}

	// Unrecognized id shapes degrade to empty rather than failing the batch.
	*f = ""
	return nil
}

type remotiveJob struct {
	ID              flexibleID  `json:"id"`
	Title           string      `json:"title"`
	CompanyName     string      `json:"company_name"`
	Location        string      `json:"candidate_required_location"`
	Description     string      `json:"description"`
	Category        string      `json:"category"`
	URL             string      `json:"url"`
	Salary          string      `json:"salary"`
	Tags            []string    `json:"tags"`
	PublicationDate string      `json:"publication_date"`
}

func (s *RemotiveSource) Fetch(ctx context.Context) ([]Job, error) {
	timeout := time.Duration(s.config.Settings.Timeout) * time.Second

	data, err := fetchBody(ctx, s.client, s.config.URL, s.userAgent, timeout)
	if err != nil {
		return nil, err
	}

	var payload remotivePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse feed payload: %w", err)
	}

	jobs := make([]Job, 0, len(payload.Jobs))
	for _, raw := range payload.Jobs {
		job := s.normalize(raw)
		if !complete(job) {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// normalize converts one raw upstream record into a canonical Job candidate.
// Every candidate gets a fresh id; identity is reconciled later by the merge.
func (s *RemotiveSource) normalize(raw remotiveJob) Job {
	now := s.now().UTC()

	title := Sanitize(raw.Title, maxTitleLen)
	company := Sanitize(raw.CompanyName, maxCompanyLen)

	location := Sanitize(raw.Location, maxLocationLen)
	if location == "" {
		location = "Remote"
	}

	category := Sanitize(raw.Category, maxCategoryLen)
	if category == "" {
		category = "General"
	}

	description := Sanitize(raw.Description, maxDescriptionLen)
	preview := Truncate(description, maxPreviewLen)

	salaryText, salaryMin, salaryMax := ParseSalary(raw.Salary)

	publishedAt := now
	if ts, err := parseUpstreamTime(raw.PublicationDate); err == nil {
		publishedAt = ts
	}

	score, highMatch := Relevance(title, category, preview)

	return Job{
		ID:                 uuid.NewString(),
		Source:             s.config.Name,
		SourceID:           string(raw.ID),
		Title:              title,
		Company:            company,
		Location:           location,
		IsRemote:           s.config.Settings.DefaultRemote,
		Category:           category,
		SalaryText:         salaryText,
		SalaryMin:          salaryMin,
		SalaryMax:          salaryMax,
		Description:        description,
		DescriptionPreview: preview,
		ApplyURL:           Sanitize(raw.URL, maxApplyURLLen),
		Tags:               sanitizeTags(raw.Tags),
		PublishedAt:        publishedAt,
		MatchScore:         score,
		HighMatch:          highMatch,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

var upstreamTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseUpstreamTime(value string) (time.Time, error) {
	for _, layout := range upstreamTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %q", value)
}
