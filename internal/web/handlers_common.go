package web

// This file contains shared utilities used across the catalog handlers.

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/session"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

var (
	errInvalidRequest = errors.New("invalid request")
	errNotInCart      = errors.New("not in cart")
)

// pageTitle is the document title of the catalog page.
const pageTitle = "Product Catalog"

// Signal payloads. Datastar posts the whole signal object; plain JSON clients
// may send only the fields a route reads.
type (
	querySignals struct {
		Query     string `json:"query"`
		Immediate bool   `json:"immediate"`
	}
	moveSignals struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	fieldSignals struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	deltaSignals struct {
		Delta int `json:"delta"`
	}
)

// readSignals decodes the request signals into v. It must run before a
// response stream is opened.
func readSignals(r *http.Request, v any) error {
	if err := datastar.ReadSignals(r, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// intParam parses a positive integer URL parameter.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s %q", errInvalidRequest, name, raw)
	}
	return n, nil
}

// mustSession returns the session attached by withSession.
func mustSession(r *http.Request) (*session.Session, error) {
	sess, ok := sessionFrom(r.Context())
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

// mutate runs fn against the request's workspace, pings the session's other
// streams and responds with the updated view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(ws *core.Workspace) error) {
	sess, err := mustSession(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := sess.Do(fn); err != nil {
		respondError(w, r, err)
		return
	}
	sess.Changed()
	s.respondView(w, r, sess)
}

// respondView sends the current workspace: a morph of the app region for
// Datastar, the snapshot as JSON for everyone else.
func (s *Server) respondView(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	snap, err := sess.Snapshot()
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !isDatastar(r) {
		writeJSON(w, snap)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(templates.App(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
}
