package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/repository"
)

// In-memory repository fakes shared by the service tests. They reproduce
// the contract of the mongo implementations: ErrNotFound on misses,
// case-insensitive catalog lookups, counts from the bulk operations.

type memPlanRepo struct {
	mu    sync.Mutex
	seq   int64
	plans map[int64]domain.Plan
}

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[int64]domain.Plan)}
}

func (r *memPlanRepo) Create(ctx context.Context, plan *domain.Plan) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	plan.ID = r.seq
	r.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &plan, nil
}

func (r *memPlanRepo) GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Plan
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID {
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memPlanRepo) ArchiveActiveByOwner(ctx context.Context, ownerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, plan := range r.plans {
		if plan.OwnerID == ownerID && plan.Status == domain.PlanStatusActive {
			plan.Status = domain.PlanStatusArchived
			r.plans[id] = plan
			count++
		}
	}
	return count, nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *domain.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[plan.ID]; !ok {
		return repository.ErrNotFound
	}
	r.plans[plan.ID] = *plan
	return nil
}

func (r *memPlanRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memWeekRepo struct {
	mu    sync.Mutex
	seq   int64
	weeks map[int64]domain.PlanWeek
}

func newMemWeekRepo() *memWeekRepo {
	return &memWeekRepo{weeks: make(map[int64]domain.PlanWeek)}
}

func (r *memWeekRepo) Create(ctx context.Context, week *domain.PlanWeek) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	week.ID = r.seq
	r.weeks[week.ID] = *week
	return week.ID, nil
}

func (r *memWeekRepo) GetByID(ctx context.Context, id int64) (*domain.PlanWeek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	week, ok := r.weeks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &week, nil
}

func (r *memWeekRepo) GetByPlanID(ctx context.Context, planID int64) ([]domain.PlanWeek, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.PlanWeek
	for _, week := range r.weeks {
		if week.PlanID == planID {
			out = append(out, week)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (r *memWeekRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.weeks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.weeks, id)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	seq      int64
	sessions map[int64]domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[int64]domain.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *domain.Session) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	session.ID = r.seq
	r.sessions[session.ID] = *session
	return session.ID, nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *memSessionRepo) GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, session := range r.sessions {
		if session.OwnerID == ownerID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memSessionRepo) GetByPlanID(ctx context.Context, planID int64) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, session := range r.sessions {
		if session.PlanID != nil && *session.PlanID == planID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

type memEntryRepo struct {
	mu      sync.Mutex
	seq     int64
	entries map[int64]domain.ExerciseEntry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[int64]domain.ExerciseEntry)}
}

func (r *memEntryRepo) Create(ctx context.Context, entry *domain.ExerciseEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = r.seq
	r.entries[entry.ID] = *entry
	return entry.ID, nil
}

func (r *memEntryRepo) GetByID(ctx context.Context, id int64) (*domain.ExerciseEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *memEntryRepo) GetBySessionID(ctx context.Context, sessionID int64) ([]domain.ExerciseEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExerciseEntry
	for _, entry := range r.entries {
		if entry.SessionID == sessionID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExerciseOrder < out[j].ExerciseOrder })
	return out, nil
}

func (r *memEntryRepo) Update(ctx context.Context, entry *domain.ExerciseEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	r.entries[entry.ID] = *entry
	return nil
}

func (r *memEntryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

type memSetRepo struct {
	mu   sync.Mutex
	seq  int64
	sets map[int64]domain.Set
}

func newMemSetRepo() *memSetRepo {
	return &memSetRepo{sets: make(map[int64]domain.Set)}
}

func (r *memSetRepo) Create(ctx context.Context, set *domain.Set) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	set.ID = r.seq
	r.sets[set.ID] = *set
	return set.ID, nil
}

func (r *memSetRepo) GetByID(ctx context.Context, id int64) (*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &set, nil
}

func (r *memSetRepo) GetByEntryID(ctx context.Context, entryID int64) ([]domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Set
	for _, set := range r.sets {
		if set.ExerciseEntryID == entryID {
			out = append(out, set)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *memSetRepo) Update(ctx context.Context, set *domain.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[set.ID]; !ok {
		return repository.ErrNotFound
	}
	r.sets[set.ID] = *set
	return nil
}

func (r *memSetRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sets, id)
	return nil
}

func (r *memSetRepo) DeleteByEntryID(ctx context.Context, entryID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, set := range r.sets {
		if set.ExerciseEntryID == entryID {
			delete(r.sets, id)
			count++
		}
	}
	return count, nil
}

type memExerciseRepo struct {
	mu        sync.Mutex
	exercises map[int64]domain.Exercise
}

func newMemExerciseRepo() *memExerciseRepo {
	return &memExerciseRepo{exercises: make(map[int64]domain.Exercise)}
}

func (r *memExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *memExerciseRepo) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &exercise, nil
}

func (r *memExerciseRepo) GetAll(ctx context.Context) ([]domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Exercise
	for _, exercise := range r.exercises {
		out = append(out, exercise)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memExerciseRepo) FindByNameAndVariation(ctx context.Context, name, variation string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, exercise := range r.exercises {
		if strings.EqualFold(exercise.Name, name) && strings.EqualFold(exercise.Variation, variation) {
			match := exercise
			return &match, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memExerciseRepo) FindByName(ctx context.Context, name string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, exercise := range r.exercises {
		if strings.EqualFold(exercise.Name, name) {
			match := exercise
			return &match, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memExerciseRepo) MaxID(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for id := range r.exercises {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (r *memExerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[exercise.ID]; !ok {
		return repository.ErrNotFound
	}
	r.exercises[exercise.ID] = *exercise
	return nil
}
