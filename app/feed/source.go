package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Field length caps applied during normalization.
const (
	maxTitleLen       = 220
	maxCompanyLen     = 160
	maxLocationLen    = 120
	maxCategoryLen    = 120
	maxPreviewLen     = 220
	maxDescriptionLen = 6000
	maxApplyURLLen    = 500
	maxTags           = 12
	maxTagLen         = 60
)

// Source fetches the current listing set from one upstream feed and returns
// normalized Job candidates. Incomplete upstream records (missing title,
// company or apply URL) are dropped, not errored.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Job, error)
}

// NewSource builds the adapter matching the configured source type.
func NewSource(config *Config, client *http.Client, userAgent string, now func() time.Time) (Source, error) {
	switch config.Type {
	case SourceTypeRemotive:
		return NewRemotiveSource(config, client, userAgent, now), nil
	case SourceTypeRSS:
		return NewRSSSource(config, client, userAgent, now), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", config.Type)
	}
}

// fetchBody performs the upstream HTTP call shared by all source adapters.
// A non-200 response or transport failure surfaces as an error to the caller.
func fetchBody(ctx context.Context, client *http.Client, url, userAgent string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/xml, text/xml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// complete reports whether a normalized candidate carries the fields the
// pipeline requires.
func complete(job Job) bool {
	return job.Title != "" && job.Company != "" && job.ApplyURL != ""
}

func sanitizeTags(raw []string) []string {
	tags := make([]string, 0, maxTags)
	for _, tag := range raw {
		clean := Sanitize(tag, maxTagLen)
		if clean == "" {
			continue
		}
		tags = append(tags, clean)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
