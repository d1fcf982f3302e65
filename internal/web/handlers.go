package web

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

// handleIndex renders the full catalog page for the browser's workspace.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	snap, err := sess.Snapshot()
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(pageTitle, snap).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleHealth reports liveness and the number of open workspaces.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"products": len(s.sessions.Dataset()),
	})
}

// handleView returns the current workspace without changing it.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.respondView(w, r, sess)
}

// handleStats returns the catalog summary.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var stats core.Stats
	if err := sess.Do(func(ws *core.Workspace) error {
		stats = ws.Stats()
		return nil
	}); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// handleEvents is the long-lived SSE endpoint for a workspace. The page is
// already rendered by handleIndex, so nothing is sent until the workspace
// changes: a debounced search firing, or another tab of the same session
// mutating it.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sse := datastar.NewSSE(w, r)

	updates := sess.Subscribe()
	defer sess.Unsubscribe(updates)

	logger := logging.FromContext(r.Context())
	logger.Debug("event stream opened")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("event stream closed")
			return
		case _, ok := <-updates:
			if !ok {
				// Workspace expired or server shutting down.
				return
			}
			snap, err := sess.Snapshot()
			if err != nil {
				_ = sse.ConsoleError(err)
				return
			}
			if err := sse.PatchElementTempl(templates.App(snap)); err != nil {
				return
			}
		}
	}
}
