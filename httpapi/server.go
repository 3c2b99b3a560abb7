// Package httpapi is the thin HTTP adapter over the engine: submission
// and status routes for the five pipelines, synchronous summarization,
// generated-code download, health and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mocksi/webforge/browser"
	"github.com/mocksi/webforge/inference"
	"github.com/mocksi/webforge/metrics"
	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

// maxRequestBodySize limits POST body sizes. The largest legal payload
// is the 1 MiB reverse input plus JSON framing.
const maxRequestBodySize = 2 << 20

// statusWait bounds how long a status query waits for a terminal record
// before reporting "running".
const statusWait = 100 * time.Millisecond

// TaskService is the engine surface the HTTP layer consumes.
type TaskService interface {
	// Submit starts a pipeline and returns its task id.
	Submit(ctx context.Context, kind workflow.Kind, input string) (string, error)

	// Status returns the current task record after a bounded wait,
	// or storage.ErrNotFound.
	Status(ctx context.Context, id string, maxWait time.Duration) (*storage.Task, error)
}

// Server serves the pipeline API.
type Server struct {
	tasks     TaskService
	browser   *browser.Client
	inference *inference.Client
	ready     func() bool
	logger    *slog.Logger
	mux       *http.ServeMux
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithBrowser registers the browser client for health and credential
// checks.
func WithBrowser(client *browser.Client) Option {
	return func(s *Server) {
		s.browser = client
	}
}

// WithInference registers the inference client for health reporting.
func WithInference(client *inference.Client) Option {
	return func(s *Server) {
		s.inference = client
	}
}

// WithReadiness sets the engine connectivity probe used by /health.
func WithReadiness(ready func() bool) Option {
	return func(s *Server) {
		s.ready = ready
	}
}

// New creates the server and registers all routes.
func New(tasks TaskService, opts ...Option) *Server {
	s := &Server{
		tasks:  tasks,
		ready:  func() bool { return true },
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /reverse", s.submitText(workflow.KindReverse))
	s.mux.HandleFunc("GET /reverse/{task_id}", s.handleStatus)

	s.mux.HandleFunc("POST /screenshot", s.submitURL(workflow.KindScreenshot))
	s.mux.HandleFunc("GET /screenshot/{task_id}", s.handleStatus)

	s.mux.HandleFunc("POST /analyze", s.submitURL(workflow.KindAnalyze))
	s.mux.HandleFunc("GET /analyze/{task_id}", s.handleStatus)

	s.mux.HandleFunc("POST /tech-spec", s.submitURL(workflow.KindTechSpec))
	s.mux.HandleFunc("GET /tech-spec/{task_id}", s.handleStatus)

	s.mux.HandleFunc("POST /generate-website", s.submitURL(workflow.KindWebsite))
	s.mux.HandleFunc("GET /generate-website/{task_id}", s.handleStatus)
	s.mux.HandleFunc("GET /download-code/{task_id}", s.handleDownloadCode)

	s.mux.HandleFunc("POST /summarize", s.handleSummarize)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.instrument(s.mux))
}

// instrument records request counts by route pattern and status class.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(route, statusClass(rec.status))
	})
}

// corsMiddleware allows browser frontends on any origin to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
