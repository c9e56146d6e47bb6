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

const setCollectionName = "sets"

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoSetRepository creates a new Set repository backed by MongoDB.
func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		db:         db,
		collection: db.Collection(setCollectionName),
	}
}

// Create inserts a new set.
func (r *mongoSetRepository) Create(ctx context.Context, set *domain.Set) (int64, error) {
	if set.ExerciseEntryID == 0 {
		return 0, errors.New("exercise entry ID is required")
	}
	if set.SetNumber <= 0 {
		return 0, errors.New("set number must be positive")
	}

	id, err := nextID(ctx, r.db, setCollectionName)
	if err != nil {
		return 0, err
	}
	set.ID = id
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, set); err != nil {
		return 0, err
	}
	return set.ID, nil
}

// GetByID retrieves a set by its ID.
func (r *mongoSetRepository) GetByID(ctx context.Context, id int64) (*domain.Set, error) {
	var set domain.Set
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &set, nil
}

// GetByEntryID retrieves all sets of an entry in set-number order.
func (r *mongoSetRepository) GetByEntryID(ctx context.Context, entryID int64) ([]domain.Set, error) {
	var sets []domain.Set
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"exerciseEntryId": entryID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// Update modifies an existing set.
func (r *mongoSetRepository) Update(ctx context.Context, set *domain.Set) error {
	if set.ID == 0 {
		return errors.New("set ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"setNumber": set.SetNumber,
		"weight":    set.Weight,
		"reps":      set.Reps,
		"rpe":       set.RPE,
		"completed": set.Completed,
		"notes":     set.Notes,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": set.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a single set.
func (r *mongoSetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByEntryID removes every set of one exercise entry and reports how
// many rows went away. Zero is not an error; an entry may have no sets yet.
func (r *mongoSetRepository) DeleteByEntryID(ctx context.Context, entryID int64) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"exerciseEntryId": entryID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureSetIndexes creates necessary indexes for the sets collection.
func EnsureSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "exerciseEntryId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
