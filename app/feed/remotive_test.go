package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func remotiveTestConfig(url string) *Config {
	return &Config{
		Name: "remotive",
		URL:  url,
		Type: SourceTypeRemotive,
		Settings: ConfigSettings{
			Enabled:       true,
			Timeout:       5,
			DefaultRemote: true,
		},
	}
}

func TestRemotiveFetchNormalizes(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 42,
				"title": "Senior <b>Backend</b> Engineer",
				"company_name": "Acme",
				"candidate_required_location": "Worldwide",
				"description": "<p>Build APIs with node and typescript</p>",
				"category": "Software Development",
				"url": "https://remotive.com/jobs/42",
				"salary": "$100,000 - $130,000",
				"tags": ["go", "backend"],
				"publication_date": "2024-05-01T10:00:00"
			},
			{
				"id": 43,
				"title": "Incomplete Job",
				"company_name": "",
				"url": "https://remotive.com/jobs/43"
			}
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fixedNow := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	source := NewRemotiveSource(remotiveTestConfig(server.URL), server.Client(), "test-agent", func() time.Time { return fixedNow })

	jobs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Incomplete record (no company) must be dropped silently.
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}

	job := jobs[0]
	if job.Title != "Senior Backend Engineer" {
		t.Errorf("Expected HTML-stripped title, got %q", job.Title)
	}
	if job.Company != "Acme" {
		t.Errorf("Expected company 'Acme', got %q", job.Company)
	}
	if job.Source != "remotive" || job.SourceID != "42" {
		t.Errorf("Expected source remotive/42, got %s/%s", job.Source, job.SourceID)
	}
	if !job.IsRemote {
		t.Error("Expected isRemote true for this source")
	}
	if job.SalaryMin == nil || *job.SalaryMin != 100000 {
		t.Errorf("Expected salaryMin 100000, got %v", job.SalaryMin)
	}
	if job.SalaryMax == nil || *job.SalaryMax != 130000 {
		t.Errorf("Expected salaryMax 130000, got %v", job.SalaryMax)
	}
	if job.ID == "" {
		t.Error("Expected a generated id")
	}
	expectedPublished := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !job.PublishedAt.Equal(expectedPublished) {
		t.Errorf("Expected publishedAt %v, got %v", expectedPublished, job.PublishedAt)
	}
	if len(job.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %d", len(job.Tags))
	}
	if !job.CreatedAt.Equal(fixedNow) {
		t.Errorf("Expected createdAt to be the fetch time, got %v", job.CreatedAt)
	}
}

func TestRemotiveFetchDefaults(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": "abc",
				"title": "Designer",
				"company_name": "Globex",
				"url": "https://remotive.com/jobs/abc"
			}
		]
	}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	fixedNow := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	source := NewRemotiveSource(remotiveTestConfig(server.URL), server.Client(), "test-agent", func() time.Time { return fixedNow })

	jobs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("Expected 1 job, got %d", len(jobs))
	}

	job := jobs[0]
	if job.Location != "Remote" {
		t.Errorf("Expected default location 'Remote', got %q", job.Location)
	}
	if job.Category != "General" {
		t.Errorf("Expected default category 'General', got %q", job.Category)
	}
	if !job.PublishedAt.Equal(fixedNow) {
		t.Errorf("Expected publishedAt to default to fetch time, got %v", job.PublishedAt)
	}
	if job.SalaryMin != nil || job.SalaryMax != nil {
		t.Error("Expected nil salary range when salary text is absent")
	}
}

func TestRemotiveFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewRemotiveSource(remotiveTestConfig(server.URL), server.Client(), "test-agent", time.Now)

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestRemotiveFetchMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	source := NewRemotiveSource(remotiveTestConfig(server.URL), server.Client(), "test-agent", time.Now)

	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Expected error for malformed payload")
	}
}

func TestRemotiveTagCap(t *testing.T) {
	tags := "["
	for i := 0; i < 20; i++ {
		if i > 0 {
			tags += ","
		}
		tags += `"tag"`
	}
	tags += "]"

	payload := `{"jobs": [{"id": 1, "title": "T", "company_name": "C", "url": "https://x/1", "tags": ` + tags + `}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	source := NewRemotiveSource(remotiveTestConfig(server.URL), server.Client(), "test-agent", time.Now)

	jobs, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(jobs[0].Tags) != 12 {
		t.Errorf("Expected tags capped at 12, got %d", len(jobs[0].Tags))
	}
}
