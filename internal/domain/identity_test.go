package domain

import (
	"encoding/json"
	"testing"
)

func TestRecordIDPersisted(t *testing.T) {
	r := PersistedID(42)
	id, ok := r.Persisted()
	if !ok || id != 42 {
		t.Fatalf("persisted: %d, %v", id, ok)
	}
	if r.Pending() {
		t.Fatalf("persisted id reported pending")
	}
	if r.String() != "42" {
		t.Fatalf("string form: %q", r.String())
	}
}

func TestRecordIDPending(t *testing.T) {
	r := NewPendingID()
	if !r.Pending() {
		t.Fatalf("new pending id not pending")
	}
	if _, ok := r.Persisted(); ok {
		t.Fatalf("pending id reported persisted")
	}
	if r.Token() == "" {
		t.Fatalf("pending id has no token")
	}

	other := NewPendingID()
	if r.Token() == other.Token() {
		t.Fatalf("pending tokens must be unique")
	}
}

func TestRecordIDJSONRoundTrip(t *testing.T) {
	persisted := PersistedID(7)
	data, err := json.Marshal(persisted)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "7" {
		t.Fatalf("persisted id must serialize as a number: %s", data)
	}
	var back RecordID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if id, ok := back.Persisted(); !ok || id != 7 {
		t.Fatalf("round trip lost the id: %v", back)
	}

	pending := PendingID("abc-123")
	data, err = json.Marshal(pending)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"pending:abc-123"` {
		t.Fatalf("pending id wire form: %s", data)
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Pending() || back.Token() != "abc-123" {
		t.Fatalf("round trip lost the token: %v", back)
	}
}

func TestRecordIDUnmarshalRejectsGarbage(t *testing.T) {
	var r RecordID
	if err := json.Unmarshal([]byte(`"nonsense"`), &r); err == nil {
		t.Fatalf("malformed string accepted")
	}
	if err := json.Unmarshal([]byte(`true`), &r); err == nil {
		t.Fatalf("boolean accepted")
	}
}
