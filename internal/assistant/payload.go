// Package assistant turns loosely formatted model output into validated,
// typed plan payloads and talks to the text-generation backend.
package assistant

// Discriminator values carried in the "type" field of structured blocks.
const (
	TypeTrainingPlan   = "trainingPlan"
	TypeSessionPlan    = "sessionPlan"
	TypeWeekPlan       = "weekPlan"
	TypeExerciseUpdate = "exerciseUpdate"
)

// Payload is the closed set of structured payloads the assistant can emit.
type Payload interface {
	isPayload()
}

func (TrainingPlanPayload) isPayload()   {}
func (WeekPlanPayload) isPayload()       {}
func (SessionPlanPayload) isPayload()    {}
func (ExerciseUpdatePayload) isPayload() {}

// TrainingPlanPayload carries a validated macro plan.
type TrainingPlanPayload struct {
	Plan Plan
}

// WeekPlanPayload carries the exercise-level detail for one plan week.
type WeekPlanPayload struct {
	Week WeekPlan
}

// SessionPlanPayload carries a single standalone session.
type SessionPlanPayload struct {
	Session SessionPlan
}

// ExerciseUpdatePayload carries a catalog edit that has already been applied.
type ExerciseUpdatePayload struct {
	Request ExerciseUpdateRequest
}

// Exercise is an exercise reference as it appears inside assistant JSON.
type Exercise struct {
	Name          string   `json:"name" validate:"required"`
	Variation     string   `json:"variation,omitempty"`
	Type          string   `json:"type,omitempty" validate:"omitempty,oneof=weight reps time cal"`
	ExerciseOrder int      `json:"exercise_order,omitempty"`
	TargetSets    *int     `json:"target_sets,omitempty" validate:"omitempty,gt=0"`
	TargetReps    *string  `json:"target_reps,omitempty"`
	TargetRPE     *float64 `json:"target_rpe,omitempty" validate:"omitempty,gte=0,lte=10"`
	TargetWeight  *float64 `json:"target_weight,omitempty"`
	Instructions  string   `json:"instructions,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Session is a session inside a macro plan. Exercises are optional here: a
// macro plan only carries placeholder session metadata, the exercises arrive
// later through a weekPlan.
type Session struct {
	Name         string     `json:"name" validate:"required"`
	Type         string     `json:"type,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	SessionOrder int        `json:"session_order,omitempty"`
	Exercises    []Exercise `json:"exercises,omitempty" validate:"omitempty,dive"`
}

// Week is one week of a macro plan.
type Week struct {
	WeekNumber   int       `json:"week_number" validate:"required,gt=0"`
	Focus        string    `json:"focus,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	Sessions     []Session `json:"sessions" validate:"required,min=1,dive"`
}

// Plan is the canonical macro plan shape.
type Plan struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description,omitempty"`
	Goal        string         `json:"goal,omitempty"`
	Weeks       []Week         `json:"weeks" validate:"required,min=1,dive"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// WeekSession is a session inside a week plan. Unlike the macro-plan shape,
// exercises are mandatory per session here.
type WeekSession struct {
	Name         string     `json:"name" validate:"required"`
	Type         string     `json:"type,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	SessionOrder int        `json:"session_order,omitempty"`
	Exercises    []Exercise `json:"exercises" validate:"required,min=1,dive"`
}

// WeekPlan fills in one specific week of an existing plan.
type WeekPlan struct {
	WeekNumber   int           `json:"week_number" validate:"required,gt=0"`
	Focus        string        `json:"focus,omitempty"`
	Instructions string        `json:"instructions,omitempty"`
	Notes        string        `json:"notes,omitempty"`
	Sessions     []WeekSession `json:"sessions" validate:"required,min=1,dive"`
}

// SessionPlan is a single workout on its own.
type SessionPlan struct {
	Name         string     `json:"name" validate:"required"`
	Type         string     `json:"type,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Exercises    []Exercise `json:"exercises" validate:"required,min=1,dive"`
}

// ExerciseUpdateRequest edits one catalog exercise in place.
type ExerciseUpdateRequest struct {
	ExerciseID int64                `json:"exerciseId" validate:"required,gt=0"`
	Update     ExerciseUpdateFields `json:"update" validate:"required"`
}

// ExerciseUpdateFields lists the editable catalog fields; nil means unchanged.
type ExerciseUpdateFields struct {
	Name        *string `json:"name,omitempty"`
	Variation   *string `json:"variation,omitempty"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=weight reps time cal"`
	Description *string `json:"description,omitempty"`
}
