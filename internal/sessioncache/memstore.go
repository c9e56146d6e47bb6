package sessioncache

import "sync"

// MemoryStore keeps cache entries in process memory. Entries are copied on
// the way in and out so callers can keep mutating their working state.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[int64]Entry
	lastActive int64
	hasActive  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]Entry)}
}

func (s *MemoryStore) Get(sessionID int64) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *MemoryStore) Put(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Session.ID] = *entry
	return nil
}

func (s *MemoryStore) Delete(sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

func (s *MemoryStore) LastActive() (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive, s.hasActive, nil
}

func (s *MemoryStore) SetLastActive(sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = sessionID
	s.hasActive = true
	return nil
}

func (s *MemoryStore) ClearLastActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = 0
	s.hasActive = false
	return nil
}
