package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RecordID identifies an ExerciseEntry or Set that may not have been
// persisted yet. A record edited on the client before a save round-trip has
// no server id; it carries a local token instead until the save resolves it.
type RecordID struct {
	id    int64
	token string
}

// PersistedID wraps a server-assigned identifier.
func PersistedID(id int64) RecordID {
	return RecordID{id: id}
}

// NewPendingID mints a client-local identity for a record that has not been
// saved yet.
func NewPendingID() RecordID {
	return RecordID{token: uuid.NewString()}
}

// PendingID rebuilds a pending identity from a previously issued token
// (e.g. one read back out of the local session cache).
func PendingID(token string) RecordID {
	return RecordID{token: token}
}

// Persisted returns the server id and true when the record has one.
func (r RecordID) Persisted() (int64, bool) {
	if r.token != "" || r.id == 0 {
		return 0, false
	}
	return r.id, true
}

// Pending reports whether the record only exists client-side.
func (r RecordID) Pending() bool {
	return r.token != ""
}

// Token returns the local token for a pending record ("" if persisted).
func (r RecordID) Token() string {
	return r.token
}

func (r RecordID) String() string {
	if r.token != "" {
		return "pending:" + r.token
	}
	return fmt.Sprintf("%d", r.id)
}

// MarshalJSON writes a persisted id as a number and a pending one as a
// "pending:<token>" string, so identities survive the local cache intact.
func (r RecordID) MarshalJSON() ([]byte, error) {
	if r.token != "" {
		return json.Marshal("pending:" + r.token)
	}
	return json.Marshal(r.id)
}

func (r *RecordID) UnmarshalJSON(data []byte) error {
	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*r = RecordID{id: id}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("record id is neither a number nor a string: %s", data)
	}
	token, ok := strings.CutPrefix(s, "pending:")
	if !ok || token == "" {
		return fmt.Errorf("malformed record id %q", s)
	}
	*r = RecordID{token: token}
	return nil
}
