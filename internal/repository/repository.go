package repository

import (
	"context"

	"github.com/ml4teachers/helf/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository defines the interface for interacting with plan rows.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Plan, error)
	GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Plan, error)
	// ArchiveActiveByOwner flips every active plan of the owner to archived
	// and returns how many rows changed.
	ArchiveActiveByOwner(ctx context.Context, ownerID int64) (int64, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id int64) error
}

// PlanWeekRepository defines the interface for interacting with plan weeks.
type PlanWeekRepository interface {
	Create(ctx context.Context, week *domain.PlanWeek) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.PlanWeek, error)
	GetByPlanID(ctx context.Context, planID int64) ([]domain.PlanWeek, error)
	Delete(ctx context.Context, id int64) error
}

// SessionRepository defines the interface for interacting with sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Session, error)
	GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Session, error)
	GetByPlanID(ctx context.Context, planID int64) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id int64) error
}

// ExerciseEntryRepository defines the interface for session exercise entries.
type ExerciseEntryRepository interface {
	Create(ctx context.Context, entry *domain.ExerciseEntry) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ExerciseEntry, error)
	GetBySessionID(ctx context.Context, sessionID int64) ([]domain.ExerciseEntry, error)
	Update(ctx context.Context, entry *domain.ExerciseEntry) error
	Delete(ctx context.Context, id int64) error
}

// SetRepository defines the interface for performed/planned sets.
type SetRepository interface {
	Create(ctx context.Context, set *domain.Set) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Set, error)
	GetByEntryID(ctx context.Context, entryID int64) ([]domain.Set, error)
	Update(ctx context.Context, set *domain.Set) error
	Delete(ctx context.Context, id int64) error
	DeleteByEntryID(ctx context.Context, entryID int64) (int64, error)
}

// ExerciseRepository defines the interface for the shared exercise catalog.
// The catalog has no owner scoping and exposes no delete path.
type ExerciseRepository interface {
	// Create inserts a catalog row with the caller-chosen id. The id is
	// picked by the resolver as max existing id + 1 (see MaxID), which is
	// racy under concurrent creation; the race is a documented property of
	// the catalog, not something this layer hides.
	Create(ctx context.Context, exercise *domain.Exercise) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
	// FindByNameAndVariation matches case-insensitively on both fields.
	FindByNameAndVariation(ctx context.Context, name, variation string) (*domain.Exercise, error)
	// FindByName matches case-insensitively on name alone, ignoring variation.
	FindByName(ctx context.Context, name string) (*domain.Exercise, error)
	MaxID(ctx context.Context) (int64, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
}
