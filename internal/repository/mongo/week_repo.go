package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/ml4teachers/helf/internal/domain"
	"github.com/ml4teachers/helf/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weekCollectionName = "plan_weeks"

// mongoPlanWeekRepository implements repository.PlanWeekRepository
type mongoPlanWeekRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoPlanWeekRepository creates a new PlanWeek repository backed by MongoDB.
func NewMongoPlanWeekRepository(db *mongo.Database) repository.PlanWeekRepository {
	return &mongoPlanWeekRepository{
		db:         db,
		collection: db.Collection(weekCollectionName),
	}
}

// Create inserts a new plan week.
func (r *mongoPlanWeekRepository) Create(ctx context.Context, week *domain.PlanWeek) (int64, error) {
	if week.PlanID == 0 {
		return 0, errors.New("plan ID is required")
	}
	if week.WeekNumber <= 0 {
		return 0, errors.New("week number must be positive")
	}

	id, err := nextID(ctx, r.db, weekCollectionName)
	if err != nil {
		return 0, err
	}
	week.ID = id
	now := time.Now().UTC()
	week.CreatedAt = now
	week.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, week); err != nil {
		return 0, err
	}
	return week.ID, nil
}

// GetByID retrieves a plan week by its ID.
func (r *mongoPlanWeekRepository) GetByID(ctx context.Context, id int64) (*domain.PlanWeek, error) {
	var week domain.PlanWeek
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&week)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &week, nil
}

// GetByPlanID retrieves all weeks of a plan in week order.
func (r *mongoPlanWeekRepository) GetByPlanID(ctx context.Context, planID int64) ([]domain.PlanWeek, error) {
	var weeks []domain.PlanWeek
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &weeks); err != nil {
		return nil, err
	}
	return weeks, nil
}

// Delete removes a plan week.
func (r *mongoPlanWeekRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanWeekIndexes creates necessary indexes for the plan_weeks collection.
func EnsurePlanWeekIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Week numbers are unique within one plan
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
