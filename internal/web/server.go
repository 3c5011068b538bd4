// Package web serves the desk to a browser: the dashboard, the search
// screen, the create and edit forms, attachment downloads and exports.
// Pages are rendered on the server; every browser session gets its own
// controllers.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arthur-debert/congvan/dashboard"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/transition"
	"github.com/arthur-debert/congvan/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend is the REST API the front end drives
type Backend interface {
	dashboard.Fetcher
	search.Backend
	transition.Patcher
	CreateDocument(ctx context.Context, t types.DocumentType, draft types.Draft) (*types.Document, error)
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithPageSize sets the initial page size of the dashboard tables
func WithPageSize(n int) Option {
	return func(s *Server) { s.pageSize = n }
}

// WithSearchPageSize sets the initial page size of the search results
func WithSearchPageSize(n int) Option {
	return func(s *Server) { s.searchPageSize = n }
}

// WithLoadSize sets how many documents a dashboard load fetches
func WithLoadSize(n int) Option {
	return func(s *Server) { s.loadSize = n }
}

// WithHighlight sets how long a moved document stays flagged
func WithHighlight(d time.Duration) Option {
	return func(s *Server) { s.highlight = d }
}

// WithSessionTTL sets how long an idle session is kept
func WithSessionTTL(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithClock replaces time.Now, for export dates and session expiry
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// Server is the browser front end
type Server struct {
	backend        Backend
	logger         *slog.Logger
	pageSize       int
	searchPageSize int
	loadSize       int
	highlight      time.Duration
	sessionTTL     time.Duration
	now            func() time.Time

	sessions  *Sessions
	templates *template.Template
}

// New creates a server over backend
func New(backend Backend, opts ...Option) (*Server, error) {
	s := &Server{
		backend:    backend,
		logger:     slog.Default(),
		highlight:  transition.DefaultHighlight,
		sessionTTL: 30 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	s.templates = tmpl
	s.sessions = NewSessions(s.sessionTTL, s.newWorkspace, s.logger)
	s.sessions.now = s.now
	return s, nil
}

func (s *Server) newWorkspace(id string) *Workspace {
	logger := s.logger.With("session", id)
	notes := &notify.Queue{}
	board := dashboard.New(s.backend,
		dashboard.WithNotifier(notes),
		dashboard.WithLogger(logger),
		dashboard.WithPageSize(s.pageSize),
		dashboard.WithLoadSize(s.loadSize),
	)
	return &Workspace{
		Dashboard: board,
		Search: search.New(s.backend,
			search.WithNotifier(notes),
			search.WithLogger(logger),
			search.WithPageSize(s.searchPageSize),
		),
		Transitions: transition.New(s.backend, board,
			transition.WithNotifier(notes),
			transition.WithLogger(logger),
			transition.WithHighlight(s.highlight),
		),
		Notes: notes,
	}
}

// Sessions exposes the session table
func (s *Server) Sessions() *Sessions { return s.sessions }

// Routes returns the HTTP handler of the front end
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logging(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(noStore)

	r.Get("/", s.handleDashboard)
	r.Get("/documents/new", s.handleNewForm)
	r.Post("/documents", s.handleCreate)
	r.Get("/documents/{type}/{id}/edit", s.handleEditForm)
	r.Post("/documents/{type}/{id}/return", s.handleReturn)
	r.Post("/documents/{type}/{id}/{action}", s.handleAction)
	r.Get("/search", s.handleSearchPage)
	r.Post("/search", s.handleSearch)
	r.Post("/search/reset", s.handleSearchReset)
	r.Get("/attachments/{type}/{filename}", s.handleAttachment)
	r.Get("/export/{scope}/{format}", s.handleExport)
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully and
// closes every session
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx)

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	s.logger.Info("server started", "addr", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.sessions.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// render executes a page template into a buffer first, so a template
// error never produces half a page
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Lỗi máy chủ", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.Copy(w, &buf)
}

// redirect sends the browser to target after a form post
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// documentType reads the {type} path parameter
func documentType(r *http.Request) (types.DocumentType, error) {
	return types.ParseDocumentType(chi.URLParam(r, "type"))
}

// ensureType makes sure the dashboard shows register t, loading it when
// it shows the other one. A load overtaken by another request only counts
// when that request left the same register on screen.
func (s *Server) ensureType(ctx context.Context, ws *Workspace, t types.DocumentType) error {
	if ws.Dashboard.Type() == t && ws.Dashboard.Version() > 0 {
		return nil
	}
	err := ws.Dashboard.Load(ctx, t)
	if errors.Is(err, types.ErrStale) {
		if ws.Dashboard.Type() == t {
			return nil
		}
		return fmt.Errorf("register changed to %s while loading %s: %w", ws.Dashboard.Type(), t, err)
	}
	return err
}
