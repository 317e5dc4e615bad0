package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/agenthands/docket/internal/core"
	"github.com/agenthands/docket/internal/core/fingerprint"
	"github.com/agenthands/docket/internal/core/model"
	"github.com/agenthands/docket/internal/emit"
)

// ErrPathNotAllowed is returned for request paths outside the configured roots.
var ErrPathNotAllowed = errors.New("path not allowed")

type Server struct {
	Pipeline *core.Pipeline
	// Defaults fills every field a scan request leaves empty. Its paths are
	// also the roots that request paths must stay under.
	Defaults core.ScanOptions
	Logger   zerolog.Logger
	// AllowMove lets scan requests move files when organizing.
	AllowMove bool
	// APIToken, when set, is required on every route except /healthz.
	APIToken string

	scanMu sync.Mutex
	mu     sync.RWMutex
	last   *model.Report
}

func NewServer(p *core.Pipeline, defaults core.ScanOptions, logger zerolog.Logger) *Server {
	return &Server{Pipeline: p, Defaults: defaults, Logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(s.Logger), gin.Recovery())

	r.GET("/healthz", s.Health)

	api := r.Group("/")
	if s.APIToken != "" {
		api.Use(RequireToken(s.APIToken))
	}
	api.POST("/scan", s.Scan)
	api.GET("/report", s.Report)
	api.POST("/resolve", s.Resolve)
	api.POST("/extract", s.Extract)

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type OrganizeRequest struct {
	Move           bool   `json:"move"`
	DryRun         bool   `json:"dry_run"`
	TargetRoot     string `json:"target_root"`
	SingletonsOnly bool   `json:"singletons_only"`
}

type ScanRequest struct {
	Root         string           `json:"root"`
	Dataset      string           `json:"dataset"`
	ReportPath   string           `json:"report_path"`
	FragmentsDir string           `json:"fragments_dir"`
	IncludeText  *bool            `json:"include_text"`
	Organize     *OrganizeRequest `json:"organize"`
}

// scanOptions overlays req on the defaults. Request paths resolve against
// the matching default path and must not leave it.
func (s *Server) scanOptions(req ScanRequest) (core.ScanOptions, error) {
	opts := s.Defaults
	var err error
	if req.Root != "" {
		if opts.Root, err = within(s.Defaults.Root, req.Root); err != nil {
			return opts, err
		}
	}
	if req.Dataset != "" {
		opts.Dataset = req.Dataset
	}
	if req.ReportPath != "" {
		base := ""
		if s.Defaults.ReportPath != "" {
			base = filepath.Dir(s.Defaults.ReportPath)
		}
		if opts.ReportPath, err = within(base, req.ReportPath); err != nil {
			return opts, err
		}
	}
	if req.FragmentsDir != "" {
		if opts.FragmentsDir, err = within(s.Defaults.FragmentsDir, req.FragmentsDir); err != nil {
			return opts, err
		}
	}
	if req.IncludeText != nil {
		opts.IncludeText = *req.IncludeText
	}
	if req.Organize != nil {
		if req.Organize.Move && !s.AllowMove {
			return opts, fmt.Errorf("%w: moving files is disabled", ErrPathNotAllowed)
		}
		org := &emit.OrganizeOptions{
			Move:           req.Organize.Move,
			DryRun:         req.Organize.DryRun,
			SingletonsOnly: req.Organize.SingletonsOnly,
		}
		base := s.Defaults.Root
		if s.Defaults.Organize != nil && s.Defaults.Organize.TargetRoot != "" {
			base = s.Defaults.Organize.TargetRoot
		}
		target := req.Organize.TargetRoot
		if target == "" {
			target = base
		}
		if org.TargetRoot, err = within(base, target); err != nil {
			return opts, err
		}
		opts.Organize = org
	}
	return opts, nil
}

// within resolves p against base and fails when the result is not base or
// below it. An empty base admits nothing.
func within(base, p string) (string, error) {
	if strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(absBase, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathNotAllowed, p)
	}
	return target, nil
}

func (s *Server) Scan(c *gin.Context) {
	var req ScanRequest
	// an empty body scans with the defaults
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
	}
	opts, err := s.scanOptions(req)
	if err != nil {
		s.Logger.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("scan request rejected")
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(opts.Root) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "root is required"})
		return
	}

	if !s.scanMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "A scan is already running"})
		return
	}
	defer s.scanMu.Unlock()

	res, err := s.Pipeline.Scan(c.Request.Context(), opts)
	if err != nil {
		if errors.Is(err, fingerprint.ErrRootNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error().Err(err).Str("root", opts.Root).Msg("scan failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan"})
		return
	}

	s.mu.Lock()
	s.last = &res.Report
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"report":    res.Report,
		"documents": len(res.Documents),
		"actions":   res.Actions,
	})
}

func (s *Server) Report(c *gin.Context) {
	s.mu.RLock()
	last := s.last
	s.mu.RUnlock()

	if last == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No scan has completed yet"})
		return
	}
	c.JSON(http.StatusOK, last)
}

type ResolveRequest struct {
	Name string `json:"name" binding:"required"`
}

type ResolveResponse struct {
	Name        string  `json:"name"`
	Resolved    bool    `json:"resolved"`
	IdentityID  string  `json:"identity_id,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	MatchedText string  `json:"matched_text,omitempty"`
}

func (s *Server) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	resp := ResolveResponse{Name: req.Name}
	if p, ok := s.Pipeline.Extractor.Canonicalize(req.Name); ok {
		resp.Resolved = true
		resp.IdentityID = p.IdentityID
		resp.Confidence = p.Confidence
		resp.MatchedText = p.MatchedText
	}
	c.JSON(http.StatusOK, resp)
}

type ExtractRequest struct {
	Text string `json:"text"`
}

func (s *Server) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.Pipeline.Extractor.Extract(req.Text))
}
