package sessioncache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const lastActiveFile = "last_active_session"

// FileStore persists cache entries as one JSON file per session under a
// directory, surviving process restarts the way browser local storage
// survives page reloads.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) entryPath(sessionID int64) string {
	return filepath.Join(s.dir, EntryID(sessionID)+".json")
}

func (s *FileStore) Get(sessionID int64) (*Entry, bool, error) {
	data, err := os.ReadFile(s.entryPath(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// A corrupt record is treated as absent rather than fatal.
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *FileStore) Put(entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	tmp := s.entryPath(entry.Session.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.entryPath(entry.Session.ID))
}

func (s *FileStore) Delete(sessionID int64) error {
	err := os.Remove(s.entryPath(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *FileStore) LastActive() (int64, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, lastActiveFile))
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *FileStore) SetLastActive(sessionID int64) error {
	return os.WriteFile(filepath.Join(s.dir, lastActiveFile), []byte(strconv.FormatInt(sessionID, 10)), 0o644)
}

func (s *FileStore) ClearLastActive() error {
	err := os.Remove(filepath.Join(s.dir, lastActiveFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
