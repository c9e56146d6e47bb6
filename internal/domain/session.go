package domain

import (
	"time"
)

// SessionStatus type for session lifecycle
type SessionStatus string

const (
	SessionStatusPlanned    SessionStatus = "planned"
	SessionStatusUpcoming   SessionStatus = "upcoming"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusSkipped    SessionStatus = "skipped"
)

// Session represents a single workout. It usually belongs to a PlanWeek but
// may also exist ad-hoc, outside any plan (PlanID/PlanWeekID nil).
type Session struct {
	ID             int64         `bson:"_id" json:"id"`
	OwnerID        int64         `bson:"ownerId" json:"ownerId"`
	PlanID         *int64        `bson:"planId,omitempty" json:"planId,omitempty"`
	PlanWeekID     *int64        `bson:"planWeekId,omitempty" json:"planWeekId,omitempty"`
	Name           string        `bson:"name" json:"name"`
	Type           string        `bson:"type,omitempty" json:"type,omitempty"` // e.g. "strength", "hypertrophy", "general"
	ScheduledDate  *time.Time    `bson:"scheduledDate,omitempty" json:"scheduledDate,omitempty"`
	CompletedDate  *time.Time    `bson:"completedDate,omitempty" json:"completedDate,omitempty"`
	Status         SessionStatus `bson:"status" json:"status"`
	ReadinessScore *int          `bson:"readinessScore,omitempty" json:"readinessScore,omitempty"` // 1-10, user reported
	SessionOrder   int           `bson:"sessionOrder" json:"session_order"`
	Notes          string        `bson:"notes,omitempty" json:"notes,omitempty"`
	Instructions   string        `bson:"instructions,omitempty" json:"instructions,omitempty"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseEntry links one catalog exercise into a session, with the targets
// the plan prescribes for it.
type ExerciseEntry struct {
	ID            int64     `bson:"_id" json:"id"`
	SessionID     int64     `bson:"sessionId" json:"sessionId"`
	ExerciseID    int64     `bson:"exerciseId" json:"exerciseId"` // references the shared catalog
	ExerciseOrder int       `bson:"exerciseOrder" json:"exercise_order"`
	TargetSets    *int      `bson:"targetSets,omitempty" json:"target_sets,omitempty"`
	TargetReps    *string   `bson:"targetReps,omitempty" json:"target_reps,omitempty"` // free-form, e.g. "8-10"
	TargetRPE     *float64  `bson:"targetRpe,omitempty" json:"target_rpe,omitempty"`   // bounded 0-10
	TargetWeight  *float64  `bson:"targetWeight,omitempty" json:"target_weight,omitempty"`
	Instructions  string    `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Set is one performed (or to-be-performed) set of an ExerciseEntry.
// SetNumber starts at 1 and ascends within the entry.
type Set struct {
	ID              int64     `bson:"_id" json:"id"`
	ExerciseEntryID int64     `bson:"exerciseEntryId" json:"exerciseEntryId"`
	SetNumber       int       `bson:"setNumber" json:"set_number"`
	Weight          *float64  `bson:"weight,omitempty" json:"weight,omitempty"`
	Reps            *int      `bson:"reps,omitempty" json:"reps,omitempty"`
	RPE             *float64  `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Completed       bool      `bson:"completed" json:"completed"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
