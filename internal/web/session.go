package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/congvan/dashboard"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/transition"
)

// SessionCookie names the cookie carrying the session id
const SessionCookie = "congvan_session"

// Workspace is the screen state of one browser session
type Workspace struct {
	ID          string
	Dashboard   *dashboard.Controller
	Search      *search.Controller
	Transitions *transition.Helper
	Notes       *notify.Queue

	lastSeen time.Time
}

// Close aborts the in-flight requests of the workspace controllers
func (ws *Workspace) Close() {
	ws.Dashboard.Close()
	ws.Search.Close()
}

// Sessions keeps one Workspace per session cookie and drops workspaces
// idle for longer than the TTL
type Sessions struct {
	ttl    time.Duration
	now    func() time.Time
	create func(id string) *Workspace
	logger *slog.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewSessions creates an empty session table
func NewSessions(ttl time.Duration, create func(id string) *Workspace, logger *slog.Logger) *Sessions {
	return &Sessions{
		ttl:    ttl,
		now:    time.Now,
		create: create,
		logger: logger,
		items:  make(map[string]*Workspace),
	}
}

// Acquire returns the workspace of the request's session, starting a new
// session (and setting its cookie) when the request has none or an
// expired one
func (s *Sessions) Acquire(w http.ResponseWriter, r *http.Request) *Workspace {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(SessionCookie); err == nil {
		if ws, ok := s.items[c.Value]; ok && now.Sub(ws.lastSeen) <= s.ttl {
			ws.lastSeen = now
			return ws
		}
	}

	id := uuid.New().String()
	ws := s.create(id)
	ws.ID = id
	ws.lastSeen = now
	s.items[id] = ws
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Debug("session started", "session", id)
	return ws
}

// Sweep closes and forgets workspaces idle past the TTL and returns how
// many it removed
func (s *Sessions) Sweep() int {
	now := s.now()
	var expired []*Workspace

	s.mu.Lock()
	for id, ws := range s.items {
		if now.Sub(ws.lastSeen) > s.ttl {
			expired = append(expired, ws)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, ws := range expired {
		ws.Close()
		s.logger.Debug("session expired", "session", ws.ID)
	}
	return len(expired)
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Run sweeps periodically until ctx is done
func (s *Sessions) Run(ctx context.Context) {
	interval := max(s.ttl/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

// CloseAll closes every workspace
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	items := s.items
	s.items = make(map[string]*Workspace)
	s.mu.Unlock()
	for _, ws := range items {
		ws.Close()
	}
}
