package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/logger"
)

type fakeCatalog struct {
	lastID     int64
	lastUpdate domain.ExerciseUpdate
	err        error
}

func (f *fakeCatalog) UpdateExercise(ctx context.Context, id int64, update domain.ExerciseUpdate) (*domain.Exercise, error) {
	f.lastID = id
	f.lastUpdate = update
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Exercise{ID: id, Name: "Bench Press", Type: domain.ExerciseTypeWeight}, nil
}

func newTestProcessor() (*Processor, *fakeCatalog) {
	catalog := &fakeCatalog{}
	return NewProcessor(catalog, logger.NewNop()), catalog
}

func TestProcessPassThroughWithoutBlock(t *testing.T) {
	p, _ := newTestProcessor()
	raw := "Sounds good, let's increase the weight next week."
	result := p.Process(context.Background(), raw)
	if !result.Success || result.Content != raw || result.Payload != nil {
		t.Fatalf("plain text must pass through untouched: %+v", result)
	}
}

func TestProcessPassThroughUntypedObject(t *testing.T) {
	p, _ := newTestProcessor()
	result := p.Process(context.Background(), "```json\n{\"weeks\": 4}\n```")
	if !result.Success || result.Payload != nil {
		t.Fatalf("object without a type discriminator must pass through: %+v", result)
	}
}

func TestProcessUnknownTypePassThrough(t *testing.T) {
	p, _ := newTestProcessor()
	result := p.Process(context.Background(), "```json\n{\"type\": \"mealPlan\", \"data\": {}}\n```")
	if !result.Success {
		t.Fatalf("unknown discriminator is not an error: %+v", result)
	}
	if result.Type != "mealPlan" || result.Payload != nil {
		t.Fatalf("unexpected result for unknown type: %+v", result)
	}
}

func TestProcessParseErrorQuotesFragment(t *testing.T) {
	p, _ := newTestProcessor()
	result := p.Process(context.Background(), "```json\n{\"type\": \"trainingPlan\" \"oops\": 1}\n```")
	if result.Success {
		t.Fatalf("broken JSON must fail")
	}
	if !strings.Contains(result.Message, "not valid JSON") {
		t.Fatalf("message does not name the parse failure: %q", result.Message)
	}
	if !strings.Contains(result.Message, "near") {
		t.Fatalf("message does not quote the fragment: %q", result.Message)
	}
}

func TestProcessTrainingPlanCanonical(t *testing.T) {
	p, _ := newTestProcessor()
	raw := "Here you go:\n```json\n" + `{
		"type": "trainingPlan",
		"data": {
			"name": "8 Week Strength",
			"goal": "strength",
			"weeks": [
				{
					"week_number": 1,
					"sessions": [
						{"name": "Day 1", "exercises": [{"name": "Back Squat", "target_sets": 5, "target_rpe": 8}]}
					]
				}
			]
		}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if !result.Success {
		t.Fatalf("canonical plan rejected: %s", result.Message)
	}
	if result.Type != TypeTrainingPlan {
		t.Fatalf("type: %q", result.Type)
	}
	payload, ok := result.Payload.(TrainingPlanPayload)
	if !ok {
		t.Fatalf("payload type: %T", result.Payload)
	}
	if payload.Plan.Name != "8 Week Strength" || len(payload.Plan.Weeks) != 1 {
		t.Fatalf("plan content: %+v", payload.Plan)
	}
}

func TestProcessTrainingPlanValidationMessages(t *testing.T) {
	p, _ := newTestProcessor()
	// Canonical shape, but weeks[0].sessions is empty. Neither schema
	// accepts it, so both failure sets surface with field paths.
	raw := "```json\n" + `{
		"type": "trainingPlan",
		"data": {"name": "Broken", "weeks": [{"week_number": 1, "sessions": []}]}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if result.Success {
		t.Fatalf("invalid plan accepted")
	}
	if !strings.Contains(result.Message, "weeks[0].sessions") {
		t.Fatalf("message lacks the field path: %q", result.Message)
	}
}

func TestProcessTrainingPlanLegacyFallback(t *testing.T) {
	p, _ := newTestProcessor()
	raw := "```json\n" + `{
		"type": "trainingPlan",
		"data": {
			"name": "Old Shape",
			"weeklyStructure": [
				{
					"week": 1,
					"focus": "Strength block",
					"sessions": [
						{"focus": "Squat Day", "exercises": [{"name": "Back Squat", "sets": 5, "repsRange": "5"}]}
					]
				}
			]
		}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if !result.Success {
		t.Fatalf("legacy plan rejected: %s", result.Message)
	}
	payload, ok := result.Payload.(TrainingPlanPayload)
	if !ok {
		t.Fatalf("payload type: %T", result.Payload)
	}
	if payload.Plan.Metadata["converted_from"] != "legacy" {
		t.Fatalf("conversion metadata missing: %v", payload.Plan.Metadata)
	}
	if payload.Plan.Weeks[0].Sessions[0].Type != "strength" {
		t.Fatalf("session type: %q", payload.Plan.Weeks[0].Sessions[0].Type)
	}
}

func TestProcessWeekPlan(t *testing.T) {
	p, _ := newTestProcessor()
	raw := "```json\n" + `{
		"type": "weekPlan",
		"data": {
			"week_number": 2,
			"sessions": [
				{"name": "Upper", "exercises": [{"name": "Bench Press", "target_sets": 4}]}
			]
		}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if !result.Success {
		t.Fatalf("week plan rejected: %s", result.Message)
	}
	payload, ok := result.Payload.(WeekPlanPayload)
	if !ok {
		t.Fatalf("payload type: %T", result.Payload)
	}
	if payload.Week.WeekNumber != 2 {
		t.Fatalf("week number: %d", payload.Week.WeekNumber)
	}
}

func TestProcessWeekPlanRequiresExercises(t *testing.T) {
	p, _ := newTestProcessor()
	// Week-plan sessions must carry exercises, unlike macro-plan sessions.
	raw := "```json\n" + `{
		"type": "weekPlan",
		"data": {"week_number": 1, "sessions": [{"name": "Upper"}]}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if result.Success {
		t.Fatalf("week plan without exercises accepted")
	}
	if !strings.Contains(result.Message, "sessions[0].exercises") {
		t.Fatalf("message lacks the field path: %q", result.Message)
	}
}

func TestProcessExerciseUpdateApplied(t *testing.T) {
	p, catalog := newTestProcessor()
	raw := "```json\n" + `{
		"type": "exerciseUpdate",
		"data": {"exerciseId": 12, "update": {"type": "reps", "description": "strict form"}}
	}` + "\n```"

	result := p.Process(context.Background(), raw)
	if !result.Success {
		t.Fatalf("exercise update rejected: %s", result.Message)
	}
	if catalog.lastID != 12 {
		t.Fatalf("update applied to wrong exercise: %d", catalog.lastID)
	}
	if catalog.lastUpdate.Type == nil || *catalog.lastUpdate.Type != domain.ExerciseTypeReps {
		t.Fatalf("type not forwarded: %v", catalog.lastUpdate.Type)
	}
	if catalog.lastUpdate.Description == nil || *catalog.lastUpdate.Description != "strict form" {
		t.Fatalf("description not forwarded: %v", catalog.lastUpdate.Description)
	}
}

func TestProcessExerciseUpdateFailure(t *testing.T) {
	p, catalog := newTestProcessor()
	catalog.err = errors.New("boom")
	raw := "```json\n" + `{"type": "exerciseUpdate", "data": {"exerciseId": 5, "update": {"name": "x"}}}` + "\n```"

	result := p.Process(context.Background(), raw)
	if result.Success {
		t.Fatalf("failed catalog update reported as success")
	}
	if !strings.Contains(result.Message, "exercise 5") {
		t.Fatalf("message does not name the exercise: %q", result.Message)
	}
	if result.Content == "" {
		t.Fatalf("original content must survive failures")
	}
}
