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

const entryCollectionName = "exercise_entries"

// mongoExerciseEntryRepository implements repository.ExerciseEntryRepository
type mongoExerciseEntryRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoExerciseEntryRepository creates a new ExerciseEntry repository backed by MongoDB.
func NewMongoExerciseEntryRepository(db *mongo.Database) repository.ExerciseEntryRepository {
	return &mongoExerciseEntryRepository{
		db:         db,
		collection: db.Collection(entryCollectionName),
	}
}

// Create inserts a new exercise entry.
func (r *mongoExerciseEntryRepository) Create(ctx context.Context, entry *domain.ExerciseEntry) (int64, error) {
	if entry.SessionID == 0 || entry.ExerciseID == 0 {
		return 0, errors.New("session ID and exercise ID are required")
	}
	if entry.TargetRPE != nil && (*entry.TargetRPE < 0 || *entry.TargetRPE > 10) {
		return 0, errors.New("target RPE must be between 0 and 10")
	}

	id, err := nextID(ctx, r.db, entryCollectionName)
	if err != nil {
		return 0, err
	}
	entry.ID = id
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// GetByID retrieves an exercise entry by its ID.
func (r *mongoExerciseEntryRepository) GetByID(ctx context.Context, id int64) (*domain.ExerciseEntry, error) {
	var entry domain.ExerciseEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// GetBySessionID retrieves all entries of a session in exercise order.
func (r *mongoExerciseEntryRepository) GetBySessionID(ctx context.Context, sessionID int64) ([]domain.ExerciseEntry, error) {
	var entries []domain.ExerciseEntry
	findOptions := options.Find().SetSort(bson.D{{Key: "exerciseOrder", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Update modifies an existing entry. Session and exercise links stay fixed.
func (r *mongoExerciseEntryRepository) Update(ctx context.Context, entry *domain.ExerciseEntry) error {
	if entry.ID == 0 {
		return errors.New("entry ID is required for update")
	}
	if entry.TargetRPE != nil && (*entry.TargetRPE < 0 || *entry.TargetRPE > 10) {
		return errors.New("target RPE must be between 0 and 10")
	}

	update := bson.M{"$set": bson.M{
		"exerciseOrder": entry.ExerciseOrder,
		"targetSets":    entry.TargetSets,
		"targetReps":    entry.TargetReps,
		"targetRpe":     entry.TargetRPE,
		"targetWeight":  entry.TargetWeight,
		"instructions":  entry.Instructions,
		"notes":         entry.Notes,
		"updatedAt":     time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes an exercise entry.
func (r *mongoExerciseEntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseEntryIndexes creates necessary indexes for the exercise_entries collection.
func EnsureExerciseEntryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "exerciseOrder", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
