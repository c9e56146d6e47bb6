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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository backed by MongoDB.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		db:         db,
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan and assigns it the next sequence id.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (int64, error) {
	if plan.Name == "" || plan.OwnerID == 0 {
		return 0, errors.New("plan name and owner ID are required")
	}

	id, err := nextID(ctx, r.db, planCollectionName)
	if err != nil {
		return 0, err
	}
	plan.ID = id
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return 0, err
	}
	return plan.ID, nil
}

// GetByID retrieves a plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id int64) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByOwnerID retrieves all plans of an owner, newest first.
func (r *mongoPlanRepository) GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Plan, error) {
	var plans []domain.Plan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// ArchiveActiveByOwner flips every active plan of the owner to archived.
func (r *mongoPlanRepository) ArchiveActiveByOwner(ctx context.Context, ownerID int64) (int64, error) {
	filter := bson.M{"ownerId": ownerID, "status": domain.PlanStatusActive}
	update := bson.M{"$set": bson.M{
		"status":    domain.PlanStatusArchived,
		"updatedAt": time.Now().UTC(),
	}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Update modifies an existing plan. The owner is never changed here.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == 0 {
		return errors.New("plan ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"name":        plan.Name,
		"description": plan.Description,
		"goal":        plan.Goal,
		"status":      plan.Status,
		"source":      plan.Source,
		"metadata":    plan.Metadata,
		"updatedAt":   time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the plan row itself. Descendants are the cascade's problem.
func (r *mongoPlanRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Supports the "archive all active plans" update
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
