// Package web serves the dashboard: list, detail and form views for every
// entity, the form action endpoint, JSON helpers for dropdowns and points
// quotes, and a websocket feed of cache revalidations.
package web

import (
	"bufio"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mesh-intelligence/rewards/internal/action"
	"github.com/mesh-intelligence/rewards/internal/cache"
	"github.com/mesh-intelligence/rewards/internal/points"
	"github.com/mesh-intelligence/rewards/internal/repo"
)

//go:embed templates/*.html
var templateFS embed.FS

// shutdownTimeout bounds graceful shutdown once the serve context ends.
const shutdownTimeout = 10 * time.Second

// maxFormBytes caps submitted form bodies.
const maxFormBytes = 1 << 20

// Deps are the collaborators a Server dispatches to.
type Deps struct {
	Registry *repo.Registry
	Pipeline *action.Pipeline
	Cache    *cache.Cache
	Quotes   *points.Engine
	// Health reports store reachability for /healthz. Nil means healthy.
	Health func(ctx context.Context) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.log = logger
	}
}

// WithOriginPatterns sets the origins allowed to open the event socket.
func WithOriginPatterns(patterns ...string) Option {
	return func(s *Server) {
		s.origins = patterns
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	deps    Deps
	tmpl    *template.Template
	hub     *Hub
	origins []string
	log     *slog.Logger
}

// New parses the embedded templates and returns a server over deps.
func New(deps Deps, opts ...Option) (*Server, error) {
	if deps.Registry == nil || deps.Pipeline == nil || deps.Cache == nil {
		return nil, errors.New("web: registry, pipeline and cache are required")
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	s := &Server{
		deps: deps,
		tmpl: tmpl,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(deps.Cache, s.origins, s.log)
	return s, nil
}

// Hub returns the revalidation event hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})
	mux.HandleFunc("GET /healthz", s.handleHealth())
	mux.HandleFunc("GET /dashboard", s.handleIndex())
	mux.Handle("GET /dashboard/events", s.hub)
	mux.HandleFunc("GET /dashboard/{entity}", s.handleList())
	mux.HandleFunc("GET /dashboard/{entity}/new", s.handleNew())
	mux.HandleFunc("GET /dashboard/{entity}/{id}", s.handleShow())
	mux.HandleFunc("GET /dashboard/{entity}/{id}/edit", s.handleEdit())
	mux.HandleFunc("POST /dashboard/{entity}", s.handleSubmit())
	mux.HandleFunc("POST /dashboard/{entity}/validate", s.handleValidate())
	mux.HandleFunc("POST /dashboard/{entity}/{id}/delete", s.handleDelete())
	mux.HandleFunc("GET /api/options/{entity}", s.handleOptions())
	mux.HandleFunc("POST /api/points/quote", s.handleQuote())
	return s.logRequests(mux)
}

// Serve accepts connections on ln until ctx ends, then shuts down
// gracefully. The event hub runs for the same lifetime.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info("dashboard listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.log.Info("dashboard stopped")
	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes the websocket upgrade through to the underlying writer.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
