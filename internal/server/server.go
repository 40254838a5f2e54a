// Package server exposes the acquisition pipeline over a small HTTP
// API: queue a fetch, poll its status, collect the file from the
// output directory.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/telefetch/telefetch/internal/core/config"
	"github.com/telefetch/telefetch/internal/core/engine"
	"github.com/telefetch/telefetch/internal/core/format"
	"github.com/telefetch/telefetch/internal/core/pipeline"
	"github.com/telefetch/telefetch/internal/core/version"
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

// FetchRequest is the request body for POST /api/fetch
type FetchRequest struct {
	URL     string `json:"url" binding:"required"`
	Quality string `json:"quality,omitempty"`
}

// Server is the HTTP front of the acquisition pipeline
type Server struct {
	cfg      *config.Config
	eng      engine.Engine
	merge    bool
	jobQueue *JobQueue
	server   *http.Server
	engine   *gin.Engine
}

// NewServer assembles the server from config and an extraction engine.
func NewServer(cfg *config.Config, eng engine.Engine, mergeCapable bool) *Server {
	s := &Server{
		cfg:   cfg,
		eng:   eng,
		merge: mergeCapable,
	}
	s.jobQueue = NewJobQueue(cfg.Server.MaxConcurrent, s.fetch)
	return s
}

// fetch is the per-job acquisition: ladder selection, transfer and a
// move of the artifact into the output directory before the working
// area is destroyed.
func (s *Server) fetch(ctx context.Context, url, quality string, progressFn func(float64)) (*FetchOutcome, error) {
	tier := format.DefaultTier(s.merge)
	if quality != "" {
		t, err := format.ParseTier(quality)
		if err != nil {
			return nil, err
		}
		if t == format.TierHigh && !s.merge {
			return nil, fmt.Errorf("720p requires merge capability")
		}
		tier = t
	}

	pipe := &pipeline.Pipeline{
		Engine:  s.eng,
		Ceiling: s.cfg.MaxBytes,
		OnProgress: func(p engine.Progress) {
			progressFn(p.Percent)
		},
	}

	req := pipeline.Request{URL: url, Tier: tier, MergeCapable: s.merge}
	if s.cfg.Instagram.SessionID != "" {
		req.CookieData = pipeline.InstagramSessionCookie(s.cfg.Instagram.SessionID)
	}

	var outcome *FetchOutcome
	err := pipe.Acquire(ctx, req, func(res pipeline.Result) error {
		dest := filepath.Join(s.cfg.OutputDir, filepath.Base(res.Path))
		if err := pipeline.MoveFile(res.Path, dest); err != nil {
			return err
		}
		outcome = &FetchOutcome{File: dest, Size: res.Size, Title: res.Title}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s.jobQueue.Start()

	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())
	if s.cfg.Server.APIKey != "" {
		s.engine.Use(s.authMiddleware())
	}

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/fetch", s.handleFetch)
	api.GET("/status/:id", s.handleStatus)
	api.GET("/jobs", s.handleGetJobs)
	api.DELETE("/jobs", s.handleClearJobs)
	api.DELETE("/jobs/:id", s.handleCancelJob)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("[server] listening on port %d", s.cfg.Server.Port)
	log.Printf("[server] output directory: %s", s.cfg.OutputDir)
	if s.cfg.Server.APIKey != "" {
		log.Printf("[server] API key authentication enabled")
	}

	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server. HTTP drains first so no
// in-flight request can enqueue on a stopped queue.
func (s *Server) Stop(ctx context.Context) error {
	err := s.server.Shutdown(ctx)
	s.jobQueue.Stop()
	return err
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Health stays open for probes.
		if c.Request.URL.Path == "/api/health" {
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") != s.cfg.Server.APIKey {
			c.JSON(http.StatusUnauthorized, Response{
				Code:    401,
				Message: "invalid or missing API key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[server] %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Data: gin.H{
			"version":       version.Version,
			"merge_capable": s.merge,
			"max_bytes":     s.cfg.MaxBytes,
		},
		Message: "ok",
	})
}

func (s *Server) handleFetch(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
		return
	}

	if req.Quality != "" {
		if _, err := format.ParseTier(req.Quality); err != nil {
			c.JSON(http.StatusBadRequest, Response{Code: 400, Message: err.Error()})
			return
		}
	}

	job, err := s.jobQueue.AddJob(req.URL, req.Quality)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, Response{Code: 503, Message: err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, Response{Code: 202, Data: job, Message: "queued"})
}

func (s *Server) handleStatus(c *gin.Context) {
	job := s.jobQueue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "job not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Code: 200, Data: job, Message: "ok"})
}

func (s *Server) handleGetJobs(c *gin.Context) {
	c.JSON(http.StatusOK, Response{Code: 200, Data: s.jobQueue.GetAllJobs(), Message: "ok"})
}

func (s *Server) handleClearJobs(c *gin.Context) {
	count := s.jobQueue.ClearHistory()
	c.JSON(http.StatusOK, Response{Code: 200, Data: gin.H{"removed": count}, Message: "ok"})
}

func (s *Server) handleCancelJob(c *gin.Context) {
	if !s.jobQueue.CancelJob(c.Param("id")) {
		c.JSON(http.StatusNotFound, Response{Code: 404, Message: "job not found or not cancellable"})
		return
	}
	c.JSON(http.StatusOK, Response{Code: 200, Message: "cancelled"})
}
