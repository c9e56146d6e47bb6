package domain

import (
	"time"
)

// PlanStatus tracks the lifecycle of a training plan.
type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "active"
	PlanStatusArchived PlanStatus = "archived"
)

// Plan is the top-level multi-week program shell for one owner.
// Invariant: an owner has at most one active plan; activating a new plan
// archives every other active plan of that owner.
type Plan struct {
	ID          int64          `bson:"_id" json:"id"`
	OwnerID     int64          `bson:"ownerId" json:"ownerId"`
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Goal        string         `bson:"goal,omitempty" json:"goal,omitempty"`
	Status      PlanStatus     `bson:"status" json:"status"`
	Source      string         `bson:"source,omitempty" json:"source,omitempty"` // e.g. "assistant", "legacy_conversion"
	Metadata    map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// StartDate reads the plan start date out of the free-form metadata, if set.
func (p *Plan) StartDate() (time.Time, bool) {
	if p.Metadata == nil {
		return time.Time{}, false
	}
	switch v := p.Metadata["start_date"].(type) {
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PlanWeek is one week of a plan. WeekNumber is positive and unique within
// the owning plan.
type PlanWeek struct {
	ID           int64     `bson:"_id" json:"id"`
	PlanID       int64     `bson:"planId" json:"planId"`
	WeekNumber   int       `bson:"weekNumber" json:"week_number"`
	Focus        string    `bson:"focus,omitempty" json:"focus,omitempty"`
	Instructions string    `bson:"instructions,omitempty" json:"instructions,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
