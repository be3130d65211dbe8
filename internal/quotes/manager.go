package quotes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ceramicarte/preventivi-backend/pkg/errors"
	"github.com/ceramicarte/preventivi-backend/pkg/logger"
)

// defaultSessionTTL bounds how long an abandoned editing session is
// kept before the janitor drops it.
const defaultSessionTTL = 2 * time.Hour

type session struct {
	mu         sync.Mutex
	draft      *Draft
	lastAccess time.Time
}

// Manager owns the in-memory draft editing sessions. Access to each
// draft is serialized through With, and idle sessions are evicted by a
// background janitor.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	ttl      time.Duration
	log      *logger.Logger
}

func NewManager(ttl time.Duration, log *logger.Logger) *Manager {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*session),
		ttl:      ttl,
		log:      log,
	}
}

// Start runs the eviction janitor until the context is cancelled.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := m.evictStale(time.Now()); evicted > 0 && m.log != nil {
				m.log.Info(m.log.WithField(ctx, "evicted", evicted), "dropped idle draft sessions")
			}
		}
	}
}

func (m *Manager) evictStale(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastAccess) > m.ttl
		sess.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Put registers a draft and returns its session id.
func (m *Manager) Put(d *Draft) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[d.ID] = &session{draft: d, lastAccess: time.Now()}
	return d.ID
}

// With runs fn with exclusive access to the draft. The session lock is
// held for the duration of fn, so long work such as translation should
// happen between two With calls, not inside one.
func (m *Manager) With(id uuid.UUID, fn func(d *Draft) error) error {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "draft session not found")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastAccess = time.Now()
	return fn(sess.draft)
}

func (m *Manager) Delete(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
