package sessioncache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
	"github.com/ml4teachers/helf/internal/service"
)

// The session service is the intended production backend.
var _ Backend = (service.SessionService)(nil)

type fakeBackend struct {
	mu        sync.Mutex
	session   domain.Session
	exercises []domain.SessionExercise

	getCalls      int
	savedComplete bool
}

func (b *fakeBackend) GetSession(ctx context.Context, ownerID, sessionID int64) (*domain.Session, []domain.SessionExercise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getCalls++
	session := b.session
	exercises := make([]domain.SessionExercise, len(b.exercises))
	for i, ex := range b.exercises {
		sets := make([]domain.SessionSet, len(ex.Sets))
		copy(sets, ex.Sets)
		ex.Sets = sets
		exercises[i] = ex
	}
	return &session, exercises, nil
}

func (b *fakeBackend) SaveExercises(ctx context.Context, ownerID, sessionID int64, exercises []domain.SessionExercise) ([]domain.SessionExercise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exercises = exercises
	return exercises, nil
}

func (b *fakeBackend) SaveCompleted(ctx context.Context, ownerID int64, session *domain.Session, exercises []domain.SessionExercise) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.savedComplete = true
	session.Status = domain.SessionStatusCompleted
	b.session = *session
	b.exercises = exercises
	return nil
}

func newTestManager(backend *fakeBackend) (*Manager, *MemoryStore, *time.Time) {
	store := NewMemoryStore()
	m := NewManager(store, backend, 60*time.Second, 3*time.Second, logger.NewNop())
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, store, &now
}

func serverExercises() []domain.SessionExercise {
	return []domain.SessionExercise{
		{
			ExerciseID: 10,
			Name:       "Back Squat",
			Sets: []domain.SessionSet{
				{ID: domain.PersistedID(1), SetNumber: 1, Weight: f64Ptr(80)},
			},
		},
	}
}

func TestOpenFreshCacheSkipsServer(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1, Name: "Lower"}, exercises: serverExercises()}
	m, store, now := newTestManager(backend)
	ctx := context.Background()

	if _, err := m.Open(ctx, 1, 5, false); err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if backend.getCalls != 1 {
		t.Fatalf("first open must hit the server: %d calls", backend.getCalls)
	}

	// 59 seconds later the entry is still inside the window.
	*now = now.Add(59 * time.Second)
	if _, err := m.Open(ctx, 1, 5, false); err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if backend.getCalls != 1 {
		t.Fatalf("fresh cache must not hit the server: %d calls", backend.getCalls)
	}

	if _, found, _ := store.Get(5); !found {
		t.Fatalf("cache entry missing after open")
	}
}

func TestOpenStaleCacheRefetches(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1, Name: "Lower"}, exercises: serverExercises()}
	m, _, now := newTestManager(backend)
	ctx := context.Background()

	if _, err := m.Open(ctx, 1, 5, false); err != nil {
		t.Fatalf("first open failed: %v", err)
	}

	// 61 seconds later the entry has gone stale: the server wins outright.
	*now = now.Add(61 * time.Second)
	opened, err := m.Open(ctx, 1, 5, false)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	if backend.getCalls != 2 {
		t.Fatalf("stale cache must refetch: %d calls", backend.getCalls)
	}
	snap := opened.Snapshot()
	if *snap.Exercises[0].Sets[0].Weight != 80 {
		t.Fatalf("stale open must take the server copy: %v", snap.Exercises[0].Sets[0].Weight)
	}
}

func TestOpenForcedRefreshMergesLocalSets(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1, Name: "Lower"}, exercises: serverExercises()}
	m, _, now := newTestManager(backend)
	ctx := context.Background()

	opened, err := m.Open(ctx, 1, 5, false)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	// An offline edit: 100kg logged locally while the server still says 80.
	opened.Edit(func(e *Entry) {
		e.Exercises[0].Sets[0].Weight = f64Ptr(100)
	})
	opened.autosave.FlushNow()

	// One hour later a forced refresh consults the server but keeps the
	// locally edited sets.
	*now = now.Add(time.Hour)
	reopened, err := m.Open(ctx, 1, 5, true)
	if err != nil {
		t.Fatalf("forced open failed: %v", err)
	}
	if backend.getCalls != 2 {
		t.Fatalf("forced refresh must hit the server: %d calls", backend.getCalls)
	}
	snap := reopened.Snapshot()
	if *snap.Exercises[0].Sets[0].Weight != 100 {
		t.Fatalf("local 100kg must win over server 80kg: %v", *snap.Exercises[0].Sets[0].Weight)
	}
}

func TestOpenRecordsLastActive(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1}, exercises: serverExercises()}
	m, _, _ := newTestManager(backend)

	if _, err := m.Open(context.Background(), 1, 5, false); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	id, ok := m.LastActive()
	if !ok || id != 5 {
		t.Fatalf("last active pointer: %d, %v", id, ok)
	}
}

func TestCompletePurgesCache(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1, Status: domain.SessionStatusInProgress}, exercises: serverExercises()}
	m, store, _ := newTestManager(backend)
	ctx := context.Background()

	opened, err := m.Open(ctx, 1, 5, false)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := opened.Complete(ctx); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if !backend.savedComplete {
		t.Fatalf("completion never reached the server")
	}
	if _, found, _ := store.Get(5); found {
		t.Fatalf("completed session must leave the cache")
	}
	if _, ok := m.LastActive(); ok {
		t.Fatalf("last active pointer must be cleared on completion")
	}
	if opened.Snapshot().Session.Status != domain.SessionStatusCompleted {
		t.Fatalf("working copy status not updated")
	}
}

func TestLeaveFlushesUnlessCompleted(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1}, exercises: serverExercises()}
	m, store, _ := newTestManager(backend)
	ctx := context.Background()

	opened, err := m.Open(ctx, 1, 5, false)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	opened.Edit(func(e *Entry) {
		e.Exercises[0].Sets[0].Weight = f64Ptr(95)
	})
	// Leaving before the debounce fires must not lose the edit.
	opened.Leave()

	entry, found, _ := store.Get(5)
	if !found {
		t.Fatalf("cache entry missing after leave")
	}
	if *entry.Exercises[0].Sets[0].Weight != 95 {
		t.Fatalf("edit lost on leave: %v", entry.Exercises[0].Sets[0].Weight)
	}

	// After completion, leaving must not resurrect the purged entry.
	if err := opened.Complete(ctx); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	opened.Leave()
	if _, found, _ := store.Get(5); found {
		t.Fatalf("leave after completion must not rewrite the cache")
	}
}

func TestSaveResolvesAndRecaches(t *testing.T) {
	backend := &fakeBackend{session: domain.Session{ID: 5, OwnerID: 1}, exercises: serverExercises()}
	m, store, _ := newTestManager(backend)
	ctx := context.Background()

	opened, err := m.Open(ctx, 1, 5, false)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	opened.Edit(func(e *Entry) {
		e.Exercises[0].Sets = append(e.Exercises[0].Sets, domain.SessionSet{
			ID: domain.NewPendingID(), SetNumber: 2, Weight: f64Ptr(85),
		})
	})
	if err := opened.Save(ctx); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	entry, found, _ := store.Get(5)
	if !found {
		t.Fatalf("cache entry missing after save")
	}
	if len(entry.Exercises[0].Sets) != 2 {
		t.Fatalf("saved sets not recached: %d", len(entry.Exercises[0].Sets))
	}
}
