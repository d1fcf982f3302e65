package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/session"
)

// sessionValueKey is the cookie value holding the workspace id.
const sessionValueKey = "workspace_id"

type sessionCtxKey struct{}

// withSession resolves the browser's workspace from the signed cookie,
// creating one when the cookie is missing, invalid or points at a workspace
// that expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A cookie that fails verification (rotated secret) yields a fresh
		// session instead of an error.
		cookie, _ := s.cookies.Get(r, s.cfg.Session.CookieName)

		id, _ := cookie.Values[sessionValueKey].(string)
		sess, created := s.sessions.Resolve(id)
		if created {
			cookie.Values[sessionValueKey] = sess.ID()
			if err := cookie.Save(r, w); err != nil {
				writeError(w, http.StatusInternalServerError, "session cookie could not be saved")
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionCtxKey{}, sess)
		ctx = logging.WithSession(ctx, sess.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the workspace attached by withSession.
func sessionFrom(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionCtxKey{}).(*session.Session)
	return sess, ok
}

// clientIP returns the connection address without its port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
