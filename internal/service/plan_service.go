package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ml4teachers/helf/internal/assistant"
	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
	"github.com/ml4teachers/helf/internal/repository"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanAccessDenied = errors.New("plan does not belong to this owner")
	ErrWeekNotFound     = errors.New("plan week not found")
)

// PlanService materializes validated assistant plans into persisted rows and
// tears whole plans down again. Both directions are best-effort: a failing
// step is logged and recorded, the remaining steps still run.
type PlanService interface {
	// CreatePlan inserts the plan shell (status active, archiving every
	// other active plan of the owner) and one PlanWeek row per week. No
	// sessions or exercises are created here even when the payload carries
	// them; a macro plan only ever holds placeholder session metadata.
	CreatePlan(ctx context.Context, ownerID int64, plan *assistant.Plan) (*domain.Plan, BatchResult, error)
	// CreateWeekSessions attaches the exercise-level detail of one week:
	// session rows, resolved exercise entries, and empty editable set slots.
	CreateWeekSessions(ctx context.Context, ownerID, planID int64, week *assistant.WeekPlan) (BatchResult, error)
	GetPlans(ctx context.Context, ownerID int64) ([]domain.Plan, error)
	GetPlan(ctx context.Context, ownerID, planID int64) (*domain.Plan, []domain.PlanWeek, error)
	// DeletePlan walks the hierarchy bottom-up: sets, entries, sessions,
	// weeks, then the plan row.
	DeletePlan(ctx context.Context, ownerID, planID int64) (BatchResult, error)
}

// planService implements the PlanService interface.
type planService struct {
	planRepo    repository.PlanRepository
	weekRepo    repository.PlanWeekRepository
	sessionRepo repository.SessionRepository
	entryRepo   repository.ExerciseEntryRepository
	setRepo     repository.SetRepository
	exercises   ExerciseService
	log         *logger.Logger
	now         func() time.Time
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.PlanRepository,
	weekRepo repository.PlanWeekRepository,
	sessionRepo repository.SessionRepository,
	entryRepo repository.ExerciseEntryRepository,
	setRepo repository.SetRepository,
	exercises ExerciseService,
	log *logger.Logger,
) PlanService {
	return &planService{
		planRepo:    planRepo,
		weekRepo:    weekRepo,
		sessionRepo: sessionRepo,
		entryRepo:   entryRepo,
		setRepo:     setRepo,
		exercises:   exercises,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *planService) CreatePlan(ctx context.Context, ownerID int64, plan *assistant.Plan) (*domain.Plan, BatchResult, error) {
	if ownerID == 0 || plan == nil {
		return nil, nil, errors.New("owner ID and plan are required")
	}

	// Creating a new active plan unconditionally archives every other
	// active plan of this owner. Done before the insert so the archive
	// cannot catch the new row.
	archived, err := s.planRepo.ArchiveActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("archiving previous active plans: %w", err)
	}
	if archived > 0 {
		s.log.Info("archived previously active plans", "ownerId", ownerID, "count", archived)
	}

	metadata := plan.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["start_date"]; !ok {
		metadata["start_date"] = s.now().Format(time.RFC3339)
	}

	row := &domain.Plan{
		OwnerID:     ownerID,
		Name:        plan.Name,
		Description: plan.Description,
		Goal:        plan.Goal,
		Status:      domain.PlanStatusActive,
		Source:      "assistant",
		Metadata:    metadata,
	}
	planID, err := s.planRepo.Create(ctx, row)
	if err != nil {
		return nil, nil, fmt.Errorf("creating plan row: %w", err)
	}

	var batch BatchResult
	for _, week := range plan.Weeks {
		weekRow := &domain.PlanWeek{
			PlanID:       planID,
			WeekNumber:   week.WeekNumber,
			Focus:        week.Focus,
			Instructions: week.Instructions,
		}
		weekID, err := s.weekRepo.Create(ctx, weekRow)
		if err != nil {
			// Best effort: log, record, keep going with the other weeks.
			s.log.Error("failed to create plan week",
				"planId", planID, "weekNumber", week.WeekNumber, "error", err)
		}
		batch = append(batch, StepResult{Step: fmt.Sprintf("create week %d", week.WeekNumber), ID: weekID, Err: err})
	}

	s.log.Info("plan materialized", "planId", planID, "weeks", len(plan.Weeks), "failedSteps", len(batch.Failed()))
	return row, batch, nil
}

func (s *planService) CreateWeekSessions(ctx context.Context, ownerID, planID int64, week *assistant.WeekPlan) (BatchResult, error) {
	if week == nil {
		return nil, errors.New("week payload is required")
	}
	plan, err := s.ownedPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	// Sessions land (week_number - 1) * 7 days after creation; there is no
	// day-of-week targeting.
	base := s.now()
	if start, ok := plan.StartDate(); ok {
		base = start
	}
	scheduled := base.AddDate(0, 0, (week.WeekNumber-1)*7)

	weekID := s.lookupWeekID(ctx, planID, week.WeekNumber)

	var batch BatchResult
	for i, payload := range week.Sessions {
		order := payload.SessionOrder
		if order == 0 {
			order = i + 1
		}
		session := &domain.Session{
			OwnerID:       ownerID,
			PlanID:        &planID,
			PlanWeekID:    weekID,
			Name:          payload.Name,
			Type:          payload.Type,
			ScheduledDate: &scheduled,
			Status:        domain.SessionStatusPlanned,
			SessionOrder:  order,
			Notes:         payload.Notes,
			Instructions:  payload.Instructions,
		}
		sessionID, err := s.sessionRepo.Create(ctx, session)
		batch = append(batch, StepResult{Step: fmt.Sprintf("create session %q", payload.Name), ID: sessionID, Err: err})
		if err != nil {
			s.log.Error("failed to create session", "planId", planID, "name", payload.Name, "error", err)
			continue
		}

		for j, ex := range payload.Exercises {
			batch = append(batch, s.materializeExercise(ctx, sessionID, ex, j)...)
		}
	}

	s.log.Info("week sessions materialized",
		"planId", planID, "weekNumber", week.WeekNumber,
		"sessions", len(week.Sessions), "failedSteps", len(batch.Failed()))
	return batch, nil
}

// materializeExercise resolves the catalog reference, inserts the entry, and
// creates target_sets empty set rows so the session page has editable slots.
func (s *planService) materializeExercise(ctx context.Context, sessionID int64, ex assistant.Exercise, index int) BatchResult {
	var batch BatchResult

	exerciseID, err := s.exercises.Resolve(ctx, ExerciseRef{
		Name:         ex.Name,
		Variation:    ex.Variation,
		Type:         domain.ExerciseType(ex.Type),
		Instructions: ex.Instructions,
	})
	if err != nil {
		s.log.Error("failed to resolve exercise", "name", ex.Name, "error", err)
		return BatchResult{{Step: fmt.Sprintf("resolve exercise %q", ex.Name), Err: err}}
	}

	order := ex.ExerciseOrder
	if order == 0 {
		order = index + 1
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
		return batch
	}

	targetSets := 0
	if ex.TargetSets != nil {
		targetSets = *ex.TargetSets
	}
	for n := 1; n <= targetSets; n++ {
		set := &domain.Set{
			ExerciseEntryID: entryID,
			SetNumber:       n,
			Completed:       false,
		}
		setID, err := s.setRepo.Create(ctx, set)
		if err != nil {
			s.log.Error("failed to create set slot", "entryId", entryID, "setNumber", n, "error", err)
		}
		batch = append(batch, StepResult{Step: fmt.Sprintf("create set %d", n), ID: setID, Err: err})
	}

	return batch
}

func (s *planService) GetPlans(ctx context.Context, ownerID int64) ([]domain.Plan, error) {
	return s.planRepo.GetByOwnerID(ctx, ownerID)
}

func (s *planService) GetPlan(ctx context.Context, ownerID, planID int64) (*domain.Plan, []domain.PlanWeek, error) {
	plan, err := s.ownedPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, nil, err
	}
	weeks, err := s.weekRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, nil, err
	}
	return plan, weeks, nil
}

func (s *planService) DeletePlan(ctx context.Context, ownerID, planID int64) (BatchResult, error) {
	if _, err := s.ownedPlan(ctx, ownerID, planID); err != nil {
		return nil, err
	}

	weeks, err := s.weekRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("collecting plan weeks: %w", err)
	}
	sessions, err := s.sessionRepo.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("collecting plan sessions: %w", err)
	}

	var batch BatchResult

	// Bottom-up: sets, then entries, then the sessions themselves.
	for _, session := range sessions {
		entries, err := s.entryRepo.GetBySessionID(ctx, session.ID)
		if err != nil {
			s.log.Error("failed to collect entries for deletion", "sessionId", session.ID, "error", err)
			batch = append(batch, StepResult{Step: "collect entries", ID: session.ID, Err: err})
			continue
		}
		for _, entry := range entries {
			deleted, err := s.setRepo.DeleteByEntryID(ctx, entry.ID)
			if err != nil {
				s.log.Error("failed to delete sets", "entryId", entry.ID, "error", err)
			}
			batch = append(batch, StepResult{Step: fmt.Sprintf("delete %d sets", deleted), ID: entry.ID, Err: err})

			err = s.entryRepo.Delete(ctx, entry.ID)
			if err != nil {
				s.log.Error("failed to delete entry", "entryId", entry.ID, "error", err)
			}
			batch = append(batch, StepResult{Step: "delete entry", ID: entry.ID, Err: err})
		}
	}
	for _, session := range sessions {
		err := s.sessionRepo.Delete(ctx, session.ID)
		if err != nil {
			s.log.Error("failed to delete session", "sessionId", session.ID, "error", err)
		}
		batch = append(batch, StepResult{Step: "delete session", ID: session.ID, Err: err})
	}
	for _, week := range weeks {
		err := s.weekRepo.Delete(ctx, week.ID)
		if err != nil {
			s.log.Error("failed to delete week", "weekId", week.ID, "error", err)
		}
		batch = append(batch, StepResult{Step: "delete week", ID: week.ID, Err: err})
	}

	err = s.planRepo.Delete(ctx, planID)
	if err != nil {
		s.log.Error("failed to delete plan row", "planId", planID, "error", err)
	}
	batch = append(batch, StepResult{Step: "delete plan", ID: planID, Err: err})

	s.log.Info("plan deletion cascade finished",
		"planId", planID, "steps", len(batch), "failedSteps", len(batch.Failed()))
	return batch, nil
}

// ownedPlan loads the plan and verifies it belongs to ownerID.
func (s *planService) ownedPlan(ctx context.Context, ownerID, planID int64) (*domain.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// lookupWeekID finds the PlanWeek row matching weekNumber, nil when the
// macro plan never created one (the sessions still attach to the plan).
func (s *planService) lookupWeekID(ctx context.Context, planID int64, weekNumber int) *int64 {
	weeks, err := s.weekRepo.GetByPlanID(ctx, planID)
	if err != nil {
		s.log.Warn("could not look up plan weeks", "planId", planID, "error", err)
		return nil
	}
	for _, w := range weeks {
		if w.WeekNumber == weekNumber {
			id := w.ID
			return &id
		}
	}
	return nil
}
