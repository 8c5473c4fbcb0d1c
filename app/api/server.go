package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerkit/jobfeed/app/store"
	"github.com/careerkit/jobfeed/app/tasks"
)

func NewHandler(aggregator tasks.AggregatorInterface, st store.Store) *Handler {
	return &Handler{
		aggregator: aggregator,
		store:      st,
	}
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for the web client
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	jobs := r.Group("/jobs")
	if apiAccessKey != "" {
		jobs.Use(authMiddleware(apiAccessKey))
	}
	{
		jobs.GET("", handler.GetJobs)
		jobs.GET("/:id", handler.GetJobByID)
		jobs.GET("/saved/list", handler.ListSavedJobs)
		jobs.POST("/save", handler.SaveJob)
		jobs.POST("/apply", handler.ApplyJob)
		jobs.POST("/match", handler.MatchJob)
		jobs.POST("/sync", handler.SyncJobs)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "JobFeed",
			"description": "Job feed aggregator with deduplication, filtering and match scoring",
			"endpoints": map[string]string{
				"jobs":   "/jobs",
				"job":    "/jobs/<id>",
				"saved":  "/jobs/saved/list?userId=<id>",
				"save":   "/jobs/save (POST)",
				"apply":  "/jobs/apply (POST)",
				"match":  "/jobs/match (POST)",
				"sync":   "/jobs/sync (POST)",
				"health": "/health",
				"stats":  "/stats",
			},
			"auth_required": apiAccessKey != "",
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "API key required",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid API key",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
