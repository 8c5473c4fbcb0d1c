package feed

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// Query describes a filtered, paginated view over the cached job set.
// Zero values mean "no filter".
type Query struct {
	Text             string
	Location         string
	Category         string
	RemoteOnly       bool
	SalaryMin        int
	SalaryMax        int
	PostedWithinDays int
	Page             int
	Limit            int
}

// QueryResult is one page of the filtered set.
type QueryResult struct {
	Items      []Job
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// Search filters, sorts and paginates the given job set. Read-only: it never
// touches the store or triggers a fetch.
func Search(jobs []Job, q Query, now time.Time) QueryResult {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	location := strings.ToLower(strings.TrimSpace(q.Location))
	category := strings.ToLower(strings.TrimSpace(q.Category))

	filtered := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		if !matchesQuery(job, text, location, category, q, now) {
			continue
		}
		filtered = append(filtered, job)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PublishedAt.After(filtered[j].PublishedAt)
	})

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	return QueryResult{
		Items:      filtered[offset:end],
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func matchesQuery(job Job, text, location, category string, q Query, now time.Time) bool {
	if text != "" {
		haystack := strings.ToLower(job.Title + " " + job.Company + " " + job.DescriptionPreview + " " + job.Category)
		if !strings.Contains(haystack, text) {
			return false
		}
	}

	if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
		return false
	}

	if q.RemoteOnly && !job.IsRemote {
		return false
	}

	if category != "" && !strings.Contains(strings.ToLower(job.Category), category) {
		return false
	}

	// Inclusive overlap against the job's own range; jobs without a parsed
	// salary are excluded by a minimum filter and pass a maximum filter.
	if q.SalaryMin > 0 && intOrZero(job.SalaryMax) < q.SalaryMin {
		return false
	}
	if q.SalaryMax > 0 && intOrZero(job.SalaryMin) > q.SalaryMax {
		return false
	}

	if q.PostedWithinDays > 0 {
		if job.PublishedAt.IsZero() {
			return false
		}
		ageDays := now.Sub(job.PublishedAt).Hours() / 24
		if ageDays > float64(q.PostedWithinDays) {
			return false
		}
	}

	return true
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
