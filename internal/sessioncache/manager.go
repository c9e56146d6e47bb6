package sessioncache

import (
	"context"
	"sync"
	"time"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
)

// Backend is the server side of the cache: it resolves the authoritative
// session state and accepts saves. service.SessionService satisfies it.
type Backend interface {
	GetSession(ctx context.Context, ownerID, sessionID int64) (*domain.Session, []domain.SessionExercise, error)
	SaveExercises(ctx context.Context, ownerID, sessionID int64, exercises []domain.SessionExercise) ([]domain.SessionExercise, error)
	SaveCompleted(ctx context.Context, ownerID int64, session *domain.Session, exercises []domain.SessionExercise) error
}

// Manager opens sessions through the cache, deciding per open whether the
// cached snapshot is still trustworthy or the server must be consulted.
type Manager struct {
	store         Store
	backend       Backend
	staleness     time.Duration
	autosaveDelay time.Duration
	log           *logger.Logger
	now           func() time.Time
}

func NewManager(store Store, backend Backend, staleness, autosaveDelay time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		store:         store,
		backend:       backend,
		staleness:     staleness,
		autosaveDelay: autosaveDelay,
		log:           log,
		now:           time.Now,
	}
}

// Open returns a working handle on a session. A cache entry younger than
// the staleness window is served without touching the server. A stale entry
// is replaced by the server snapshot. forceRefresh always consults the
// server, but when a cache entry also exists the locally edited sets win
// over the server's via MergeExercises.
func (m *Manager) Open(ctx context.Context, ownerID, sessionID int64, forceRefresh bool) (*OpenSession, error) {
	cached, found, err := m.store.Get(sessionID)
	if err != nil {
		m.log.Warn("Session cache read failed", "sessionId", sessionID, "error", err)
		found = false
	}

	if found && !forceRefresh && m.now().Sub(cached.LastUpdated) <= m.staleness {
		m.log.Debug("Serving session from cache", "sessionId", sessionID)
		if err := m.store.SetLastActive(sessionID); err != nil {
			m.log.Warn("Failed to record last active session", "sessionId", sessionID, "error", err)
		}
		return m.newOpenSession(ownerID, *cached), nil
	}

	session, exercises, err := m.backend.GetSession(ctx, ownerID, sessionID)
	if err != nil {
		return nil, err
	}
	if forceRefresh && found {
		exercises = MergeExercises(exercises, cached.Exercises)
	}

	entry := Entry{
		ID:          EntryID(sessionID),
		Session:     *session,
		Exercises:   exercises,
		LastUpdated: m.now(),
	}
	if err := m.store.Put(&entry); err != nil {
		m.log.Warn("Session cache write failed", "sessionId", sessionID, "error", err)
	}
	if err := m.store.SetLastActive(sessionID); err != nil {
		m.log.Warn("Failed to record last active session", "sessionId", sessionID, "error", err)
	}
	return m.newOpenSession(ownerID, entry), nil
}

// LastActive reports which session the owner was last working in, if the
// pointer record exists.
func (m *Manager) LastActive() (int64, bool) {
	id, ok, err := m.store.LastActive()
	if err != nil {
		m.log.Warn("Failed to read last active session", "error", err)
		return 0, false
	}
	return id, ok
}

func (m *Manager) newOpenSession(ownerID int64, entry Entry) *OpenSession {
	s := &OpenSession{manager: m, ownerID: ownerID, entry: entry}
	s.autosave = NewAutosaver(m.autosaveDelay, s.flushToCache)
	return s
}

// OpenSession is the live working copy of one session. Edits mutate the
// in-memory entry and arm the debounced cache flush; an explicit Save or
// Complete talks to the server.
type OpenSession struct {
	manager  *Manager
	ownerID  int64
	autosave *Autosaver

	mu    sync.Mutex
	entry Entry
}

// Snapshot returns a copy of the current working state.
func (s *OpenSession) Snapshot() Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry
}

// Edit applies mutate under the lock and schedules a debounced cache flush.
// The cache is never written synchronously from the edit path.
func (s *OpenSession) Edit(mutate func(*Entry)) {
	s.mu.Lock()
	mutate(&s.entry)
	s.mu.Unlock()
	s.autosave.Schedule()
}

func (s *OpenSession) flushToCache() {
	s.mu.Lock()
	s.entry.LastUpdated = s.manager.now()
	entry := s.entry
	s.mu.Unlock()
	if err := s.manager.store.Put(&entry); err != nil {
		s.manager.log.Warn("Session cache flush failed", "sessionId", entry.Session.ID, "error", err)
	}
}

// Save persists entries and sets to the server. Pending identities come
// back resolved; the working copy and the cache are refreshed with them.
func (s *OpenSession) Save(ctx context.Context) error {
	s.autosave.Cancel()
	s.mu.Lock()
	sessionID := s.entry.Session.ID
	exercises := s.entry.Exercises
	s.mu.Unlock()

	saved, err := s.manager.backend.SaveExercises(ctx, s.ownerID, sessionID, exercises)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entry.Exercises = saved
	s.mu.Unlock()
	s.flushToCache()
	return nil
}

// Leave is the navigation-away hook: any pending debounce is collapsed into
// an immediate cache flush so no edit is lost, unless the session has
// already been completed (its cache entry is gone and must stay gone).
func (s *OpenSession) Leave() {
	s.mu.Lock()
	completed := s.entry.Session.Status == domain.SessionStatusCompleted
	s.mu.Unlock()
	if completed {
		s.autosave.Cancel()
		return
	}
	s.autosave.FlushNow()
}

// Complete finalizes the workout on the server, then purges the cache entry
// and clears the last-active pointer when it references this session.
func (s *OpenSession) Complete(ctx context.Context) error {
	s.autosave.Cancel()
	s.mu.Lock()
	session := s.entry.Session
	exercises := s.entry.Exercises
	s.mu.Unlock()

	if err := s.manager.backend.SaveCompleted(ctx, s.ownerID, &session, exercises); err != nil {
		return err
	}

	s.mu.Lock()
	s.entry.Session = session
	s.mu.Unlock()

	if err := s.manager.store.Delete(session.ID); err != nil {
		s.manager.log.Warn("Failed to purge completed session from cache", "sessionId", session.ID, "error", err)
	}
	if last, ok, err := s.manager.store.LastActive(); err == nil && ok && last == session.ID {
		if err := s.manager.store.ClearLastActive(); err != nil {
			s.manager.log.Warn("Failed to clear last active session", "sessionId", session.ID, "error", err)
		}
	}
	return nil
}
