package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
	"github.com/ml4teachers/helf/internal/repository"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidExercise  = errors.New("exercise validation failed")
)

// ExerciseRef is a loose reference to a catalog exercise, the way assistant
// payloads and client edits carry them.
type ExerciseRef struct {
	ID           int64 // trusted when positive
	Name         string
	Variation    string
	Type         domain.ExerciseType // optional hint
	Instructions string              // free text, participates in classification
}

// ExerciseService resolves loose references against the shared catalog and
// exposes the catalog read/update surface. There is no delete path.
type ExerciseService interface {
	// Resolve finds or creates the catalog row for ref and returns its id.
	Resolve(ctx context.Context, ref ExerciseRef) (int64, error)
	GetExercises(ctx context.Context) ([]domain.Exercise, error)
	GetExerciseByID(ctx context.Context, id int64) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, id int64, update domain.ExerciseUpdate) (*domain.Exercise, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	log          *logger.Logger
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository, log *logger.Logger) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo, log: log}
}

// Resolve implements the catalog lookup chain:
//  1. a positive id is trusted and returned unchanged;
//  2. exact case-insensitive (name, variation) match;
//  3. name-only case-insensitive match as a looser fallback;
//  4. create a new row with a classified type and id = max existing id + 1.
//
// Steps 2 and 3 update the stored type in place when the ref disagrees with
// it; the newer signal wins.
func (s *exerciseService) Resolve(ctx context.Context, ref ExerciseRef) (int64, error) {
	if ref.ID > 0 {
		return ref.ID, nil
	}
	if strings.TrimSpace(ref.Name) == "" {
		return 0, ErrInvalidExercise
	}

	match, err := s.exerciseRepo.FindByNameAndVariation(ctx, ref.Name, ref.Variation)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}
	if match == nil {
		match, err = s.exerciseRepo.FindByName(ctx, ref.Name)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return 0, err
		}
	}

	if match != nil {
		if ref.Type != "" && domain.ValidExerciseType(ref.Type) && match.Type != ref.Type {
			match.Type = ref.Type
			if err := s.exerciseRepo.Update(ctx, match); err != nil {
				s.log.Warn("could not update exercise type in place",
					"exerciseId", match.ID, "type", ref.Type, "error", err)
			}
		}
		return match.ID, nil
	}

	// No match anywhere: create a new catalog row. The id is max+1, which
	// can collide when two resolvers create simultaneously; that race is a
	// known property of the catalog (no sequence exists for it).
	exerciseType := ref.Type
	if exerciseType == "" || !domain.ValidExerciseType(exerciseType) {
		exerciseType = ClassifyExerciseType(ref.Name, ref.Instructions)
	}

	maxID, err := s.exerciseRepo.MaxID(ctx)
	if err != nil {
		return 0, err
	}

	exercise := &domain.Exercise{
		ID:        maxID + 1,
		Name:      strings.TrimSpace(ref.Name),
		Variation: strings.TrimSpace(ref.Variation),
		Type:      exerciseType,
	}
	id, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return 0, err
	}
	s.log.Info("created catalog exercise", "exerciseId", id, "name", exercise.Name, "type", exercise.Type)
	return id, nil
}

// GetExercises returns the whole shared catalog.
func (s *exerciseService) GetExercises(ctx context.Context) ([]domain.Exercise, error) {
	return s.exerciseRepo.GetAll(ctx)
}

// GetExerciseByID retrieves a single catalog exercise.
func (s *exerciseService) GetExerciseByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// UpdateExercise applies a partial edit to a catalog row.
func (s *exerciseService) UpdateExercise(ctx context.Context, id int64, update domain.ExerciseUpdate) (*domain.Exercise, error) {
	exercise, err := s.GetExerciseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		exercise.Name = *update.Name
	}
	if update.Variation != nil {
		exercise.Variation = *update.Variation
	}
	if update.Type != nil {
		if !domain.ValidExerciseType(*update.Type) {
			return nil, ErrInvalidExercise
		}
		exercise.Type = *update.Type
	}
	if update.Description != nil {
		exercise.Description = *update.Description
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// Keyword groups for type classification. Matching is case-insensitive
// substring matching over the exercise name and instructions.
var (
	timeKeywords = []string{
		"plank", "hold", "carry", "rowing", "bike", "ski erg", "sprint",
		"jog", "walk", "cardio", "sled", "timer", "interval",
	}
	repsKeywords = []string{
		"push-up", "push up", "pushup", "pull-up", "pull up", "pullup",
		"chin-up", "chin up", "dip", "sit-up", "sit up", "burpee",
		"bodyweight", "air squat",
	}
	calKeywords = []string{"calorie", "assault bike", "echo bike"}
)

// ClassifyExerciseType guesses a catalog type from free text. Instructions
// mentioning timing or calories override the name-based guess.
func ClassifyExerciseType(name, instructions string) domain.ExerciseType {
	guess := classifyText(strings.ToLower(name))

	instr := strings.ToLower(instructions)
	if instr != "" {
		switch {
		case strings.Contains(instr, "for time") ||
			strings.Contains(instr, "seconds") ||
			strings.Contains(instr, "minute") ||
			strings.Contains(instr, "timer"):
			return domain.ExerciseTypeTime
		case strings.Contains(instr, "calorie") || containsCalWord(instr):
			return domain.ExerciseTypeCal
		}
	}

	return guess
}

func containsCalWord(text string) bool {
	for _, word := range strings.Fields(text) {
		if word == "cal" || word == "cals" {
			return true
		}
	}
	return false
}

func classifyText(text string) domain.ExerciseType {
	for _, kw := range calKeywords {
		if strings.Contains(text, kw) {
			return domain.ExerciseTypeCal
		}
	}
	// "cal" alone needs a word-boundary check ("calf raise" is not cardio).
	if containsCalWord(text) {
		return domain.ExerciseTypeCal
	}
	for _, kw := range timeKeywords {
		if strings.Contains(text, kw) {
			return domain.ExerciseTypeTime
		}
	}
	for _, kw := range repsKeywords {
		if strings.Contains(text, kw) {
			return domain.ExerciseTypeReps
		}
	}
	return domain.ExerciseTypeWeight
}
