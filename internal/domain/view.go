package domain

// SessionExercise is the client-facing view of one exercise within a
// session: the entry, its catalog identity, and its sets. This is the shape
// the session page edits and the local cache persists. Entries and sets
// created client-side carry pending identities until a save resolves them.
type SessionExercise struct {
	EntryID       RecordID     `json:"entryId"`
	ExerciseID    int64        `json:"exerciseId"` // catalog id; merge key
	Name          string       `json:"name"`
	Variation     string       `json:"variation,omitempty"`
	Type          ExerciseType `json:"type,omitempty"`
	ExerciseOrder int          `json:"exercise_order"`
	TargetSets    *int         `json:"target_sets,omitempty"`
	TargetReps    *string      `json:"target_reps,omitempty"`
	TargetRPE     *float64     `json:"target_rpe,omitempty"`
	TargetWeight  *float64     `json:"target_weight,omitempty"`
	Instructions  string       `json:"instructions,omitempty"`
	Notes         string       `json:"notes,omitempty"`
	Sets          []SessionSet `json:"sets"`
}

// SessionSet is the editable view of one set.
type SessionSet struct {
	ID        RecordID `json:"id"`
	SetNumber int      `json:"set_number"`
	Weight    *float64 `json:"weight,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed bool     `json:"completed"`
	Notes     string   `json:"notes,omitempty"`
}
