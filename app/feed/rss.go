package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
)

// RSSSource fetches an RSS/Atom job board feed. Many remote job boards
// publish their listings this way, with items titled "Company: Job Title".
type RSSSource struct {
	config    *Config
	client    *http.Client
	userAgent string
	now       func() time.Time
	parser    *gofeed.Parser
}

func NewRSSSource(config *Config, client *http.Client, userAgent string, now func() time.Time) *RSSSource {
	return &RSSSource{
		config:    config,
		client:    client,
		userAgent: userAgent,
		now:       now,
		parser:    gofeed.NewParser(),
	}
}

func (s *RSSSource) Name() string {
	return s.config.Name
}

func (s *RSSSource) Fetch(ctx context.Context) ([]Job, error) {
	timeout := time.Duration(s.config.Settings.Timeout) * time.Second

	data, err := fetchBody(ctx, s.client, s.config.URL, s.userAgent, timeout)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	jobs := make([]Job, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		job := s.normalize(item)
		if !complete(job) {
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (s *RSSSource) normalize(item *gofeed.Item) Job {
	now := s.now().UTC()

	title, company := splitCompanyTitle(item.Title)
	if company == "" {
		company = authorName(item)
	}

	title = Sanitize(title, maxTitleLen)
	company = Sanitize(company, maxCompanyLen)

	category := "General"
	if len(item.Categories) > 0 {
		if c := Sanitize(item.Categories[0], maxCategoryLen); c != "" {
			category = c
		}
	}

	description := Sanitize(item.Description+" "+item.Content, maxDescriptionLen)
	preview := Truncate(description, maxPreviewLen)

	publishedAt := now
	if item.PublishedParsed != nil {
		publishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		publishedAt = item.UpdatedParsed.UTC()
	}

	score, highMatch := Relevance(title, category, preview)

	return Job{
		ID:                 uuid.NewString(),
		Source:             s.config.Name,
		SourceID:           item.GUID,
		Title:              title,
		Company:            company,
		Location:           "Remote",
		IsRemote:           s.config.Settings.DefaultRemote,
		Category:           category,
		Description:        description,
		DescriptionPreview: preview,
		ApplyURL:           Sanitize(item.Link, maxApplyURLLen),
		Tags:               sanitizeTags(item.Categories),
		PublishedAt:        publishedAt,
		MatchScore:         score,
		HighMatch:          highMatch,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// splitCompanyTitle handles the "Company: Job Title" convention used by
// job board feeds. Titles without a separator keep the whole string.
func splitCompanyTitle(raw string) (title, company string) {
	if idx := strings.Index(raw, ":"); idx > 0 {
		return strings.TrimSpace(raw[idx+1:]), strings.TrimSpace(raw[:idx])
	}
	return strings.TrimSpace(raw), ""
}

func authorName(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}
