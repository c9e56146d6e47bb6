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

const exerciseCollectionName = "exercises"

// caseInsensitive makes name/variation lookups ignore letter case, which is
// how the catalog is deduplicated.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise catalog repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a catalog row with the id the resolver picked. Unlike the
// other collections there is no sequence here; the resolver assigns
// MaxID()+1, and two concurrent creates can collide. That race predates this
// implementation and is deliberately left in place.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (int64, error) {
	if exercise.Name == "" {
		return 0, errors.New("exercise name is required")
	}
	if exercise.ID == 0 {
		return 0, errors.New("exercise ID must be assigned by the caller")
	}
	if !domain.ValidExerciseType(exercise.Type) {
		return 0, errors.New("invalid exercise type")
	}

	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, exercise); err != nil {
		return 0, err
	}
	return exercise.ID, nil
}

// GetByID retrieves a catalog exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, error) {
	var exercise domain.Exercise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetAll retrieves the whole catalog sorted by name.
func (r *mongoExerciseRepository) GetAll(ctx context.Context) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	findOptions := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(caseInsensitive)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// FindByNameAndVariation matches case-insensitively on both fields.
func (r *mongoExerciseRepository) FindByNameAndVariation(ctx context.Context, name, variation string) (*domain.Exercise, error) {
	filter := bson.M{"name": name}
	if variation == "" {
		// Rows written without a variation omit the field entirely.
		filter["variation"] = bson.M{"$in": bson.A{"", nil}}
	} else {
		filter["variation"] = variation
	}
	return r.findOne(ctx, filter)
}

// FindByName matches case-insensitively on name alone, ignoring variation.
func (r *mongoExerciseRepository) FindByName(ctx context.Context, name string) (*domain.Exercise, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoExerciseRepository) findOne(ctx context.Context, filter bson.M) (*domain.Exercise, error) {
	var exercise domain.Exercise
	findOptions := options.FindOne().SetCollation(caseInsensitive)
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// MaxID returns the highest exercise id currently in the catalog, 0 when the
// catalog is empty.
func (r *mongoExerciseRepository) MaxID(ctx context.Context) (int64, error) {
	var exercise domain.Exercise
	findOptions := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{}, findOptions).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return exercise.ID, nil
}

// Update modifies an existing catalog exercise.
func (r *mongoExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == 0 {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}
	if !domain.ValidExerciseType(exercise.Type) {
		return errors.New("invalid exercise type")
	}

	update := bson.M{"$set": bson.M{
		"name":        exercise.Name,
		"variation":   exercise.Variation,
		"type":        exercise.Type,
		"description": exercise.Description,
		"updatedAt":   time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": exercise.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: 1}, {Key: "variation", Value: 1}},
			Options: options.Index().
				SetCollation(caseInsensitive),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
