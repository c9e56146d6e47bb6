package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
	"github.com/ml4teachers/helf/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionAccessDenied = errors.New("session does not belong to this owner")
)

// Overview feeds the next-session suggestion: the owner's active plan, the
// recently completed sessions, and the next planned one.
type Overview struct {
	ActivePlan     *domain.Plan
	RecentSessions []domain.Session
	NextSession    *domain.Session
}

// SessionService reads and writes sessions together with their exercise
// entries and sets, in the client-facing SessionExercise shape.
type SessionService interface {
	GetSessions(ctx context.Context, ownerID int64) ([]domain.Session, error)
	GetSession(ctx context.Context, ownerID, sessionID int64) (*domain.Session, []domain.SessionExercise, error)
	UpdateSession(ctx context.Context, ownerID int64, session *domain.Session) error
	// CreateSession materializes a standalone sessionPlan payload as an
	// ad-hoc session outside any plan.
	CreateSession(ctx context.Context, ownerID int64, plan *assistant.SessionPlan) (*domain.Session, BatchResult, error)
	// SaveExercises upserts entries and sets, resolving pending identities
	// to persisted ids. The returned slice carries the resolved ids.
	SaveExercises(ctx context.Context, ownerID, sessionID int64, exercises []domain.SessionExercise) ([]domain.SessionExercise, error)
	// SaveCompleted finalizes a workout: sets with both a weight and reps
	// are marked completed, everything is saved, and the session flips to
	// completed.
	SaveCompleted(ctx context.Context, ownerID int64, session *domain.Session, exercises []domain.SessionExercise) error
	TrainingOverview(ctx context.Context, ownerID int64) (*Overview, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	planRepo    repository.PlanRepository
	entryRepo   repository.ExerciseEntryRepository
	setRepo     repository.SetRepository
	exercises   ExerciseService
	log         *logger.Logger
	now         func() time.Time
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	planRepo repository.PlanRepository,
	entryRepo repository.ExerciseEntryRepository,
	setRepo repository.SetRepository,
	exercises ExerciseService,
	log *logger.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		planRepo:    planRepo,
		entryRepo:   entryRepo,
		setRepo:     setRepo,
		exercises:   exercises,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) GetSessions(ctx context.Context, ownerID int64) ([]domain.Session, error) {
	return s.sessionRepo.GetByOwnerID(ctx, ownerID)
}

// GetSession loads the session row and its exercise view. The row and the
// entry list have no data dependency, so they are fetched concurrently.
func (s *sessionService) GetSession(ctx context.Context, ownerID, sessionID int64) (*domain.Session, []domain.SessionExercise, error) {
	var (
		session *domain.Session
		entries []domain.ExerciseEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		session, err = s.sessionRepo.GetByID(gctx, sessionID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.entryRepo.GetBySessionID(gctx, sessionID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if session.OwnerID != ownerID {
		return nil, nil, ErrSessionAccessDenied
	}

	exercises := make([]domain.SessionExercise, 0, len(entries))
	for _, entry := range entries {
		view, err := s.entryView(ctx, entry)
		if err != nil {
			return nil, nil, err
		}
		exercises = append(exercises, view)
	}
	return session, exercises, nil
}

func (s *sessionService) entryView(ctx context.Context, entry domain.ExerciseEntry) (domain.SessionExercise, error) {
	exercise, err := s.exercises.GetExerciseByID(ctx, entry.ExerciseID)
	if err != nil {
		return domain.SessionExercise{}, fmt.Errorf("loading exercise %d: %w", entry.ExerciseID, err)
	}
	sets, err := s.setRepo.GetByEntryID(ctx, entry.ID)
	if err != nil {
		return domain.SessionExercise{}, fmt.Errorf("loading sets for entry %d: %w", entry.ID, err)
	}

	view := domain.SessionExercise{
		EntryID:       domain.PersistedID(entry.ID),
		ExerciseID:    entry.ExerciseID,
		Name:          exercise.Name,
		Variation:     exercise.Variation,
		Type:          exercise.Type,
		ExerciseOrder: entry.ExerciseOrder,
		TargetSets:    entry.TargetSets,
		TargetReps:    entry.TargetReps,
		TargetRPE:     entry.TargetRPE,
		TargetWeight:  entry.TargetWeight,
		Instructions:  entry.Instructions,
		Notes:         entry.Notes,
		Sets:          make([]domain.SessionSet, 0, len(sets)),
	}
	for _, set := range sets {
		view.Sets = append(view.Sets, domain.SessionSet{
			ID:        domain.PersistedID(set.ID),
			SetNumber: set.SetNumber,
			Weight:    set.Weight,
			Reps:      set.Reps,
			RPE:       set.RPE,
			Completed: set.Completed,
			Notes:     set.Notes,
		})
	}
	return view, nil
}

func (s *sessionService) UpdateSession(ctx context.Context, ownerID int64, session *domain.Session) error {
	if session == nil || session.ID == 0 {
		return errors.New("session with ID is required")
	}
	existing, err := s.ownedSession(ctx, ownerID, session.ID)
	if err != nil {
		return err
	}
	// Owner and plan links stay what they were.
	session.OwnerID = existing.OwnerID
	session.PlanID = existing.PlanID
	session.PlanWeekID = existing.PlanWeekID
	return s.sessionRepo.Update(ctx, session)
}

func (s *sessionService) CreateSession(ctx context.Context, ownerID int64, plan *assistant.SessionPlan) (*domain.Session, BatchResult, error) {
	if ownerID == 0 || plan == nil {
		return nil, nil, errors.New("owner ID and session plan are required")
	}

	scheduled := s.now()
	session := &domain.Session{
		OwnerID:       ownerID,
		Name:          plan.Name,
		Type:          plan.Type,
		ScheduledDate: &scheduled,
		Status:        domain.SessionStatusPlanned,
		Notes:         plan.Notes,
		Instructions:  plan.Instructions,
	}
	sessionID, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session row: %w", err)
	}

	var batch BatchResult
	for i, ex := range plan.Exercises {
		exerciseID, err := s.exercises.Resolve(ctx, ExerciseRef{
			Name:         ex.Name,
			Variation:    ex.Variation,
			Type:         domain.ExerciseType(ex.Type),
			Instructions: ex.Instructions,
		})
		if err != nil {
			s.log.Error("failed to resolve exercise", "name", ex.Name, "error", err)
			batch = append(batch, StepResult{Step: fmt.Sprintf("resolve exercise %q", ex.Name), Err: err})
			continue
		}

		order := ex.ExerciseOrder
		if order == 0 {
			order = i + 1
		}
		entry := &domain.ExerciseEntry{
			SessionID:     sessionID,
			ExerciseID:    exerciseID,
			ExerciseOrder: order,
			TargetSets:    ex.TargetSets,
			TargetReps:    ex.TargetReps,
			TargetRPE:     ex.TargetRPE,
			TargetWeight:  ex.TargetWeight,
			Instructions:  ex.Instructions,
			Notes:         ex.Notes,
		}
		entryID, err := s.entryRepo.Create(ctx, entry)
		batch = append(batch, StepResult{Step: fmt.Sprintf("create entry %q", ex.Name), ID: entryID, Err: err})
		if err != nil {
			s.log.Error("failed to create exercise entry", "sessionId", sessionID, "name", ex.Name, "error", err)
			continue
		}

		targetSets := 0
		if ex.TargetSets != nil {
			targetSets = *ex.TargetSets
		}
		for n := 1; n <= targetSets; n++ {
			setID, err := s.setRepo.Create(ctx, &domain.Set{
				ExerciseEntryID: entryID,
				SetNumber:       n,
			})
			if err != nil {
				s.log.Error("failed to create set slot", "entryId", entryID, "setNumber", n, "error", err)
			}
			batch = append(batch, StepResult{Step: fmt.Sprintf("create set %d", n), ID: setID, Err: err})
		}
	}

	return session, batch, nil
}

func (s *sessionService) SaveExercises(ctx context.Context, ownerID, sessionID int64, exercises []domain.SessionExercise) ([]domain.SessionExercise, error) {
	if _, err := s.ownedSession(ctx, ownerID, sessionID); err != nil {
		return nil, err
	}

	saved := make([]domain.SessionExercise, 0, len(exercises))
	for _, ex := range exercises {
		resolved, err := s.saveExercise(ctx, sessionID, ex)
		if err != nil {
			return saved, err
		}
		saved = append(saved, resolved)
	}
	return saved, nil
}

func (s *sessionService) saveExercise(ctx context.Context, sessionID int64, ex domain.SessionExercise) (domain.SessionExercise, error) {
	exerciseID := ex.ExerciseID
	if exerciseID == 0 {
		var err error
		exerciseID, err = s.exercises.Resolve(ctx, ExerciseRef{
			Name:         ex.Name,
			Variation:    ex.Variation,
			Type:         ex.Type,
			Instructions: ex.Instructions,
		})
		if err != nil {
			return ex, fmt.Errorf("resolving exercise %q: %w", ex.Name, err)
		}
		ex.ExerciseID = exerciseID
	}

	entry := &domain.ExerciseEntry{
		SessionID:     sessionID,
		ExerciseID:    exerciseID,
		ExerciseOrder: ex.ExerciseOrder,
		TargetSets:    ex.TargetSets,
		TargetReps:    ex.TargetReps,
		TargetRPE:     ex.TargetRPE,
		TargetWeight:  ex.TargetWeight,
		Instructions:  ex.Instructions,
		Notes:         ex.Notes,
	}

	if entryID, ok := ex.EntryID.Persisted(); ok {
		entry.ID = entryID
		if err := s.entryRepo.Update(ctx, entry); err != nil {
			return ex, fmt.Errorf("updating entry %d: %w", entryID, err)
		}
	} else {
		entryID, err := s.entryRepo.Create(ctx, entry)
		if err != nil {
			return ex, fmt.Errorf("creating entry for %q: %w", ex.Name, err)
		}
		ex.EntryID = domain.PersistedID(entryID)
	}
	persistedEntryID, _ := ex.EntryID.Persisted()

	for i, set := range ex.Sets {
		row := &domain.Set{
			ExerciseEntryID: persistedEntryID,
			SetNumber:       set.SetNumber,
			Weight:          set.Weight,
			Reps:            set.Reps,
			RPE:             set.RPE,
			Completed:       set.Completed,
			Notes:           set.Notes,
		}
		if setID, ok := set.ID.Persisted(); ok {
			row.ID = setID
			if err := s.setRepo.Update(ctx, row); err != nil {
				return ex, fmt.Errorf("updating set %d: %w", setID, err)
			}
		} else {
			setID, err := s.setRepo.Create(ctx, row)
			if err != nil {
				return ex, fmt.Errorf("creating set %d: %w", set.SetNumber, err)
			}
			ex.Sets[i].ID = domain.PersistedID(setID)
		}
	}

	return ex, nil
}

func (s *sessionService) SaveCompleted(ctx context.Context, ownerID int64, session *domain.Session, exercises []domain.SessionExercise) error {
	if session == nil || session.ID == 0 {
		return errors.New("session with ID is required")
	}

	// A set that has both a weight and a rep count was evidently performed.
	for i := range exercises {
		for j := range exercises[i].Sets {
			set := &exercises[i].Sets[j]
			if set.Weight != nil && set.Reps != nil {
				set.Completed = true
			}
		}
	}

	if _, err := s.SaveExercises(ctx, ownerID, session.ID, exercises); err != nil {
		return err
	}

	completedAt := s.now()
	session.Status = domain.SessionStatusCompleted
	session.CompletedDate = &completedAt
	if err := s.UpdateSession(ctx, ownerID, session); err != nil {
		return err
	}

	s.log.Info("session completed", "sessionId", session.ID, "ownerId", ownerID)
	return nil
}

// TrainingOverview issues the two independent reads concurrently: the
// owner's plans (for the active one) and their sessions (for history and the
// next planned workout).
func (s *sessionService) TrainingOverview(ctx context.Context, ownerID int64) (*Overview, error) {
	var (
		sessions []domain.Session
		plans    []domain.Plan
		overview Overview
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.sessionRepo.GetByOwnerID(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = s.planRepo.GetByOwnerID(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range plans {
		if plans[i].Status == domain.PlanStatusActive {
			overview.ActivePlan = &plans[i]
			break
		}
	}

	var completed []domain.Session
	for _, session := range sessions {
		switch session.Status {
		case domain.SessionStatusCompleted:
			completed = append(completed, session)
		case domain.SessionStatusPlanned, domain.SessionStatusUpcoming:
			if overview.NextSession == nil {
				next := session
				overview.NextSession = &next
			}
		}
	}
	sort.Slice(completed, func(i, j int) bool {
		ti, tj := completed[i].CompletedDate, completed[j].CompletedDate
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	if len(completed) > 10 {
		completed = completed[:10]
	}
	overview.RecentSessions = completed

	return &overview, nil
}

// ownedSession loads the session and verifies it belongs to ownerID.
func (s *sessionService) ownedSession(ctx context.Context, ownerID, sessionID int64) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.OwnerID != ownerID {
		return nil, ErrSessionAccessDenied
	}
	return session, nil
}
