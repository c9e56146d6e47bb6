// Package sessioncache holds the client-resident durable cache of an
// in-progress session and the merge logic that reconciles locally edited,
// unsaved workout data against server state on resume.
package sessioncache

import (
	"fmt"
	"time"

	"github.com/ml4teachers/helf/internal/domain"
)

const entryIDPrefix = "session_cache"

// Entry is one cached session snapshot. The server never sees these; they
// are opaque client records keyed by session id.
type Entry struct {
	ID          string                   `json:"id"` // "<prefix>_<sessionId>"
	Session     domain.Session           `json:"session"`
	Exercises   []domain.SessionExercise `json:"exercises"`
	LastUpdated time.Time                `json:"lastUpdated"`
}

// EntryID builds the record key for a session.
func EntryID(sessionID int64) string {
	return fmt.Sprintf("%s_%d", entryIDPrefix, sessionID)
}

// Store is the durable key-value home of cache entries plus the single
// "last active session" pointer record.
type Store interface {
	Get(sessionID int64) (*Entry, bool, error)
	Put(entry *Entry) error
	Delete(sessionID int64) error
	LastActive() (int64, bool, error)
	SetLastActive(sessionID int64) error
	ClearLastActive() error
}
