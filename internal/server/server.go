package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/processor"
)

const shutdownTimeout = 10 * time.Second

// TranslateRequest is the body of POST /v1/translate
type TranslateRequest struct {
	Document  json.RawMessage `json:"document"`
	Languages []string        `json:"languages"`
	Source    string          `json:"source,omitempty"`
}

// OutcomeResponse reports one language of a translate call
type OutcomeResponse struct {
	Status      string   `json:"status"`
	Canonical   string   `json:"canonical"`
	Total       int      `json:"total"`
	Translated  int      `json:"translated"`
	Cached      int      `json:"cached"`
	Failed      int      `json:"failed"`
	FailedPaths []string `json:"failed_paths"`
	Error       string   `json:"error,omitempty"`
}

// TranslateResponse is the body returned by POST /v1/translate
type TranslateResponse struct {
	RunID     string                      `json:"run_id"`
	Documents map[string]document.RawJSON `json:"documents"`
	Outcomes  map[string]OutcomeResponse  `json:"outcomes"`
}

// Server serves the engine over HTTP
type Server struct {
	proc   *processor.Processor
	engine *gin.Engine
}

// New creates a server around proc
func New(proc *processor.Processor) *Server {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	s := &Server{proc: proc, engine: engine}

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/v1")
	{
		api.POST("/translate", s.handleTranslate)
		api.GET("/languages", s.handleLanguages)
	}
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": internal.Version,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	table := s.proc.Options().Languages
	c.JSON(http.StatusOK, gin.H{
		"languages": table.Languages(),
		"aliases":   table.Aliases(),
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Document) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document is required"})
		return
	}
	if len(req.Languages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one target language is required"})
		return
	}

	doc, err := document.ParseJSON(req.Document)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document: " + err.Error()})
		return
	}

	summary, err := s.proc.WithSourceLanguage(req.Source).Translate(c.Request.Context(), doc, req.Languages, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buildResponse(summary))
}

func buildResponse(summary *processor.Summary) TranslateResponse {
	resp := TranslateResponse{
		RunID:     summary.RunID,
		Documents: make(map[string]document.RawJSON),
		Outcomes:  make(map[string]OutcomeResponse),
	}
	for _, code := range summary.Languages {
		o := summary.Outcomes[code]
		if o.Document != nil {
			resp.Documents[code] = document.RawJSON{Node: o.Document}
		}
		out := OutcomeResponse{
			Status:      string(o.Status),
			Canonical:   o.Canonical,
			Total:       o.Total,
			Translated:  o.Translated,
			Cached:      o.Cached,
			Failed:      o.Failed,
			FailedPaths: o.FailedPaths,
		}
		if out.FailedPaths == nil {
			out.FailedPaths = []string{}
		}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		resp.Outcomes[code] = out
	}
	return resp
}
