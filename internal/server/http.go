// Package server exposes the assessor over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"authtriage/internal/alerts"
	"authtriage/internal/logger"
	"authtriage/internal/metrics"
	"authtriage/internal/pipeline"
	"authtriage/pkg/models"
)

// Config configures the HTTP server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AnalyzeRequest is the JSON body of POST /v1/analyze.
type AnalyzeRequest struct {
	Logs   string `json:"logs" form:"logs"`
	Source string `json:"source,omitempty" form:"source"`
}

// HTTP serves analysis requests.
type HTTP struct {
	handler     *gin.Engine
	assessor    *pipeline.Assessor
	policy      *alerts.Policy
	reports     pipeline.ReportWriter
	alertWriter pipeline.AlertWriter
	metrics     *metrics.Handler
	cfg         Config

	mu      sync.Mutex
	server  *http.Server
	running bool
	stopped bool
}

// Option customises an HTTP server.
type Option func(*HTTP)

// WithReportWriter also persists every report served.
func WithReportWriter(w pipeline.ReportWriter) Option {
	return func(s *HTTP) { s.reports = w }
}

// WithAlerts evaluates every report against policy and writes resulting alerts.
func WithAlerts(policy *alerts.Policy, w pipeline.AlertWriter) Option {
	return func(s *HTTP) {
		s.policy = policy
		s.alertWriter = w
	}
}

// NewHTTP creates the analysis server.
func NewHTTP(cfg Config, assessor *pipeline.Assessor, m *metrics.Handler, opts ...Option) *HTTP {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}
	s := newBase(cfg, m)
	s.assessor = assessor
	for _, opt := range opts {
		opt(s)
	}
	s.handler.POST("/v1/analyze", s.analyzeHandler)
	return s
}

// NewMetricsHTTP creates a server exposing only /healthz and /metrics.
func NewMetricsHTTP(addr string, m *metrics.Handler) *HTTP {
	return newBase(Config{Addr: addr}, m)
}

func newBase(cfg Config, m *metrics.Handler) *HTTP {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	s := &HTTP{
		handler: gin.New(),
		metrics: m,
		cfg:     cfg,
	}
	s.handler.Use(gin.Recovery())
	s.handler.Use(s.accessLog())
	s.handler.GET("/healthz", s.healthHandler)
	s.handler.GET("/metrics", gin.WrapH(m.HTTPHandler()))
	return s
}

// Handler returns the router, mainly for tests.
func (s *HTTP) Handler() http.Handler {
	return s.handler
}

// Start listens until Stop is called. It returns nil after a clean shutdown
// or when Stop ran first.
func (s *HTTP) Start() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("http server already running")
	}
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	s.running = true
	srv := s.server
	s.mu.Unlock()

	logger.Infof("HTTP server listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTP) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if !s.running || s.server == nil {
		return nil
	}
	s.running = false
	logger.Infof("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Run serves until ctx is done, then shuts down within shutdownTimeout.
func (s *HTTP) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *HTTP) analyzeHandler(c *gin.Context) {
	req, status, err := s.readAnalyzeRequest(c)
	if err != nil {
		s.metrics.IncPayloadErrors(reasonFor(status))
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}

	report := s.assessor.Assess(c.Request.Context(), req.Source, req.Logs)
	s.persist(report)
	c.JSON(http.StatusOK, report)
}

func (s *HTTP) persist(report *models.Report) {
	if s.reports != nil {
		if err := s.reports.WriteReports([]*models.Report{report}); err != nil {
			logger.Errorf("Failed to write report %s: %v", report.ID, err)
		}
	}
	if s.policy == nil || s.alertWriter == nil {
		return
	}
	alert := s.policy.Evaluate(report)
	if alert == nil {
		return
	}
	if err := s.alertWriter.WriteAlerts([]*models.Alert{alert}); err != nil {
		logger.Errorf("Failed to write alert %s: %v", alert.AlertID, err)
		return
	}
	s.metrics.IncAlerts(1)
}

// readAnalyzeRequest accepts a JSON body, a urlencoded or multipart form
// with a logs field, or plain text.
func (s *HTTP) readAnalyzeRequest(c *gin.Context) (AnalyzeRequest, int, error) {
	var req AnalyzeRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		if err := c.ShouldBind(&req); err != nil {
			return req, s.bodyErrorStatus(err), fmt.Errorf("invalid form: %w", err)
		}
	case binding.MIMEJSON:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return req, s.bodyErrorStatus(err), fmt.Errorf("read body: %w", err)
		}
		if len(bytes.TrimSpace(body)) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return req, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err)
			}
		}
	default:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return req, s.bodyErrorStatus(err), fmt.Errorf("read body: %w", err)
		}
		req.Logs = string(body)
	}

	if req.Source == "" {
		req.Source = c.Query("source")
	}
	return req, http.StatusOK, nil
}

func (s *HTTP) bodyErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func reasonFor(status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return "too_large"
	}
	return "bad_request"
}

func (s *HTTP) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func (s *HTTP) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.IncHTTPRequests(path, strconv.Itoa(status))
		logger.Infof("%s %s status=%d latency=%s client=%s",
			c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.ClientIP())
	}
}
