package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/careerkit/jobfeed/app/feed"
	"github.com/careerkit/jobfeed/app/store"
)

// GetJobs serves the filtered, sorted, paginated job feed from the cache.
// It never triggers a fetch; sync status is visible through the meta block.
func (h *Handler) GetJobs(c *gin.Context) {
	jobs, err := h.aggregator.Jobs(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	query := feed.Query{
		Text:             feed.Sanitize(c.Query("q"), 120),
		Location:         feed.Sanitize(c.Query("location"), 120),
		Category:         feed.Sanitize(c.Query("category"), 120),
		RemoteOnly:       parseBool(c.Query("remoteOnly")),
		SalaryMin:        parseInt(c.Query("salaryMin")),
		SalaryMax:        parseInt(c.Query("salaryMax")),
		PostedWithinDays: parseInt(c.Query("datePosted")),
		Page:             parseInt(c.Query("page")),
		Limit:            parseInt(c.Query("limit")),
	}

	result := feed.Search(jobs, query, time.Now().UTC())
	meta := h.aggregator.Meta()

	items := result.Items
	if items == nil {
		items = []feed.Job{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"meta": listMeta{
			Page:           result.Page,
			Limit:          result.Limit,
			Total:          result.Total,
			TotalPages:     result.TotalPages,
			LastSyncAt:     meta.LastSyncAt,
			SyncInProgress: meta.SyncInProgress,
			CachedJobs:     meta.CachedJobs,
		},
	})
}

func (h *Handler) GetJobByID(c *gin.Context) {
	id := c.Param("id")

	job, err := h.aggregator.JobByID(c.Request.Context(), id)
	if err != nil {
		slog.Error("Failed to load job", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": job})
}

// SaveJob bookmarks a job for a user. Idempotent per (user, job): repeated
// calls return the existing record.
func (h *Handler) SaveJob(c *gin.Context) {
	req, job, ok := h.bindJoinRequest(c)
	if !ok {
		return
	}

	var saved feed.SavedJob
	_, err := store.UpsertRows(c.Request.Context(), h.store, store.TableSavedJobs,
		func(rows []feed.SavedJob) ([]feed.SavedJob, error) {
			for _, row := range rows {
				if row.UserID == req.UserID && row.JobID == job.ID {
					saved = row
					return rows, nil
				}
			}

			saved = feed.SavedJob{
				ID:        uuid.NewString(),
				UserID:    req.UserID,
				JobID:     job.ID,
				CreatedAt: time.Now().UTC(),
			}
			return append([]feed.SavedJob{saved}, rows...), nil
		})
	if err != nil {
		slog.Error("Failed to save job", "job", job.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": saved})
}

// ApplyJob records an application for a user. Idempotent per (user, job).
func (h *Handler) ApplyJob(c *gin.Context) {
	req, job, ok := h.bindJoinRequest(c)
	if !ok {
		return
	}

	var application feed.Application
	_, err := store.UpsertRows(c.Request.Context(), h.store, store.TableApplications,
		func(rows []feed.Application) ([]feed.Application, error) {
			for _, row := range rows {
				if row.UserID == req.UserID && row.JobID == job.ID {
					application = row
					return rows, nil
				}
			}

			application = feed.Application{
				ID:        uuid.NewString(),
				UserID:    req.UserID,
				JobID:     job.ID,
				Status:    "Applied",
				ApplyURL:  job.ApplyURL,
				CreatedAt: time.Now().UTC(),
			}
			return append([]feed.Application{application}, rows...), nil
		})
	if err != nil {
		slog.Error("Failed to record application", "job", job.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"application": application,
			"redirectUrl": job.ApplyURL,
		},
	})
}

// ListSavedJobs returns a user's saved records joined with their jobs.
func (h *Handler) ListSavedJobs(c *gin.Context) {
	userID := feed.Sanitize(c.Query("userId"), 80)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	savedRows, err := store.ReadRows[feed.SavedJob](c.Request.Context(), h.store, store.TableSavedJobs)
	if err != nil {
		slog.Error("Failed to read saved jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	jobs, err := h.aggregator.Jobs(c.Request.Context())
	if err != nil {
		slog.Error("Failed to load jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	jobsByID := make(map[string]feed.Job, len(jobs))
	for _, job := range jobs {
		jobsByID[job.ID] = job
	}

	data := make([]gin.H, 0)
	for _, row := range savedRows {
		if row.UserID != userID {
			continue
		}

		entry := gin.H{
			"id":        row.ID,
			"userId":    row.UserID,
			"jobId":     row.JobID,
			"createdAt": row.CreatedAt,
		}
		if job, ok := jobsByID[row.JobID]; ok {
			entry["job"] = job
		} else {
			entry["job"] = nil
		}
		data = append(data, entry)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// MatchJob scores a resume against a stored job's description.
func (h *Handler) MatchJob(c *gin.Context) {
	var req matchJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	jobID := feed.Sanitize(req.JobID, 80)
	resumeText := feed.Sanitize(req.ResumeText, 40000)
	if jobID == "" || resumeText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "jobId and resumeText are required"})
		return
	}

	job, err := h.aggregator.JobByID(c.Request.Context(), jobID)
	if err != nil {
		slog.Error("Failed to load job", "id", jobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Job not found"})
		return
	}

	description := job.Description + " " + strings.Join(job.Tags, " ")
	match := feed.ComputeJobMatch(resumeText, description)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": match})
}

// SyncJobs triggers an on-demand aggregation cycle and returns its outcome
// synchronously. A cycle already in flight yields synced=false with the
// sync_in_progress reason, not an error.
func (h *Handler) SyncJobs(c *gin.Context) {
	result := h.aggregator.Run(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (h *Handler) GetHealth(c *gin.Context) {
	meta := h.aggregator.Meta()

	c.JSON(http.StatusOK, gin.H{
		"timestamp":      time.Now().In(time.Local).Format(time.RFC3339),
		"cachedJobs":     meta.CachedJobs,
		"syncInProgress": meta.SyncInProgress,
		"lastSyncAt":     meta.LastSyncAt,
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	meta := h.aggregator.Meta()

	saved, err := h.store.Read(c.Request.Context(), store.TableSavedJobs)
	if err != nil {
		slog.Error("Failed to read saved jobs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	applications, err := h.store.Read(c.Request.Context(), store.TableApplications)
	if err != nil {
		slog.Error("Failed to read applications", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":           meta.CachedJobs,
		"lastSyncAt":     meta.LastSyncAt,
		"syncInProgress": meta.SyncInProgress,
		"savedJobs":      len(saved),
		"applications":   len(applications),
	})
}

// bindJoinRequest validates the shared save/apply request shape and resolves
// the target job.
func (h *Handler) bindJoinRequest(c *gin.Context) (saveJobRequest, *feed.Job, bool) {
	var req saveJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return req, nil, false
	}

	req.UserID = feed.Sanitize(req.UserID, 80)
	req.JobID = feed.Sanitize(req.JobID, 80)
	if req.UserID == "" || req.JobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId and jobId are required"})
		return req, nil, false
	}

	job, err := h.aggregator.JobByID(c.Request.Context(), req.JobID)
	if err != nil {
		slog.Error("Failed to load job", "id", req.JobID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Storage error"})
		return req, nil, false
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Job not found"})
		return req, nil, false
	}

	return req, job, true
}

func parseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
