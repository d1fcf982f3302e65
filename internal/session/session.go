// Package session keeps one core.Workspace per browser and serializes access
// to it.
//
// The core engine is single-owner and unlocked. A Session owns the mutex that
// makes it safe to drive from concurrent HTTP handlers, and wraps the debounce
// timer so the delayed filter evaluation runs under the same lock and then
// pings the session's event streams.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/JonMunkholm/catalog/internal/core"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session not found: workspace closed")
)

// Session is one browser's workspace.
type Session struct {
	id       string
	notifier *Notifier
	now      func() time.Time

	mu       sync.Mutex
	ws       *core.Workspace
	lastSeen time.Time
	closed   bool
}

// ID returns the session id carried in the cookie.
func (s *Session) ID() string {
	return s.id
}

// Do runs fn with exclusive access to the workspace and marks the session as
// active.
func (s *Session) Do(fn func(ws *core.Workspace) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.lastSeen = s.now()
	return fn(s.ws)
}

// Snapshot copies the render state of the workspace.
func (s *Session) Snapshot() (core.Snapshot, error) {
	var snap core.Snapshot
	err := s.Do(func(ws *core.Workspace) error {
		snap = ws.Snapshot()
		return nil
	})
	return snap, err
}

// Subscribe registers an event stream for change pings.
func (s *Session) Subscribe() chan struct{} {
	return s.notifier.Subscribe()
}

// Unsubscribe releases a channel from Subscribe.
func (s *Session) Unsubscribe(ch chan struct{}) {
	s.notifier.Unsubscribe(ch)
}

// Changed pings the session's event streams.
func (s *Session) Changed() {
	s.notifier.Broadcast()
}

// LastSeen is the time of the last Do call.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.ws.Close()
	s.mu.Unlock()

	s.notifier.closeAll()
}

// lockedScheduler runs debounced callbacks under the session lock and then
// notifies listeners, so timer goroutines never touch the workspace
// concurrently with a handler.
type lockedScheduler struct {
	s    *Session
	base core.Scheduler
}

func (l lockedScheduler) Schedule(d time.Duration, fn func()) func() {
	return l.base.Schedule(d, func() {
		l.s.mu.Lock()
		closed := l.s.closed
		if !closed {
			fn()
		}
		l.s.mu.Unlock()

		if !closed {
			l.s.Changed()
		}
	})
}
