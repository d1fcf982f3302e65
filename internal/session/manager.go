package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/metrics"
)

// DefaultIdleTimeout drops workspaces that have not been used for this long.
const DefaultIdleTimeout = 30 * time.Minute

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	// Workspace is the template for every new workspace. Its Scheduler is the
	// underlying timer; the manager wraps it with the session lock.
	Workspace core.WorkspaceOptions

	IdleTimeout time.Duration
	Logger      *slog.Logger

	// Now is the clock used for idle tracking.
	Now func() time.Time
}

// Manager owns every live session. Each session starts from its own copy of
// the dataset, so edits in one browser never leak into another.
type Manager struct {
	opts   Options
	logger *slog.Logger

	mu       sync.RWMutex
	products []core.Product
	sessions map[string]*Session
}

// NewManager creates a manager that seeds new workspaces with products.
func NewManager(products []core.Product, opts Options) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Workspace.Scheduler == nil {
		opts.Workspace.Scheduler = core.TimerScheduler
	}
	if opts.Workspace.Logger == nil {
		opts.Workspace.Logger = opts.Logger
	}

	return &Manager{
		opts:     opts,
		logger:   opts.Logger,
		products: slices.Clone(products),
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a fresh workspace.
func (m *Manager) Create() *Session {
	s := m.newSession(uuid.NewString())

	m.mu.Lock()
	m.sessions[s.id] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	m.logger.Info("session created", "session_id", s.id, "active", n)
	return s
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Resolve returns the session for id, creating a new one when id is empty or
// unknown (expired, or issued before a restart). The second result reports
// whether a new session was created.
func (m *Manager) Resolve(id string) (*Session, bool) {
	if id != "" {
		if s, ok := m.Get(id); ok {
			return s, false
		}
	}
	return m.Create(), true
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	metrics.SetActiveSessions(n)
	return true
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Dataset returns the snapshot new sessions start from.
func (m *Manager) Dataset() []core.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products
}

// SetDataset replaces the snapshot for sessions created from now on.
func (m *Manager) SetDataset(products []core.Product) {
	m.mu.Lock()
	m.products = slices.Clone(products)
	m.mu.Unlock()
}

// Sweep closes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.opts.Now().Add(-m.opts.IdleTimeout)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.logger.Debug("session expired", "session_id", s.id)
	}
	if len(expired) > 0 {
		metrics.SetActiveSessions(n)
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is cancelled. It always
// returns nil so it can sit in an errgroup next to the HTTP server.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	m.logger.Info("session sweeper started",
		"interval", interval,
		"idle_timeout", m.opts.IdleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session sweeper stopped")
			return nil
		case <-ticker.C:
			start := time.Now()
			if removed := m.Sweep(); removed > 0 {
				m.logger.Info("expired idle sessions",
					"removed", removed,
					"active", m.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}

// CloseAll closes every session, ending their event streams.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	metrics.SetActiveSessions(0)
}

func (m *Manager) newSession(id string) *Session {
	s := &Session{
		id:       id,
		notifier: NewNotifier(),
		now:      m.opts.Now,
	}
	s.lastSeen = s.now()

	wopts := m.opts.Workspace
	wopts.Scheduler = lockedScheduler{s: s, base: m.opts.Workspace.Scheduler}
	wopts.Logger = m.logger.With("session_id", id)
	hook := m.opts.Workspace.OnEvaluate
	wopts.OnEvaluate = func(q string, matches int) {
		metrics.ObserveSearch(matches)
		if hook != nil {
			hook(q, matches)
		}
	}

	s.ws = core.NewWorkspace(m.Dataset(), wopts)
	return s
}
