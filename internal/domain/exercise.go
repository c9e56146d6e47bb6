package domain

import (
	"time"
)

// ExerciseType classifies how an exercise is measured.
type ExerciseType string

const (
	ExerciseTypeWeight ExerciseType = "weight" // load x reps
	ExerciseTypeReps   ExerciseType = "reps"   // bodyweight reps only
	ExerciseTypeTime   ExerciseType = "time"   // duration based (carries, planks, cardio)
	ExerciseTypeCal    ExerciseType = "cal"    // calorie targets on ergs/bikes
)

// ValidExerciseType reports whether t is one of the known catalog types.
func ValidExerciseType(t ExerciseType) bool {
	switch t {
	case ExerciseTypeWeight, ExerciseTypeReps, ExerciseTypeTime, ExerciseTypeCal:
		return true
	}
	return false
}

// Exercise is a row in the shared exercise catalog. The catalog is global
// (not per owner) and deduplicated case-insensitively on (name, variation).
type Exercise struct {
	ID          int64        `bson:"_id" json:"id"`
	Name        string       `bson:"name" json:"name"`
	Variation   string       `bson:"variation,omitempty" json:"variation,omitempty"` // e.g. "Close Grip"
	Type        ExerciseType `bson:"type" json:"type"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseUpdate carries a partial catalog edit; nil fields are left alone.
type ExerciseUpdate struct {
	Name        *string       `json:"name,omitempty"`
	Variation   *string       `json:"variation,omitempty"`
	Type        *ExerciseType `json:"type,omitempty"`
	Description *string       `json:"description,omitempty"`
}
