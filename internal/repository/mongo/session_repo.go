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

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		db:         db,
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (int64, error) {
	if session.Name == "" || session.OwnerID == 0 {
		return 0, errors.New("session name and owner ID are required")
	}
	if session.Status == "" {
		session.Status = domain.SessionStatusPlanned
	}

	id, err := nextID(ctx, r.db, sessionCollectionName)
	if err != nil {
		return 0, err
	}
	session.ID = id
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return 0, err
	}
	return session.ID, nil
}

// GetByID retrieves a session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByOwnerID retrieves all sessions of an owner, scheduled order first.
func (r *mongoSessionRepository) GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

// GetByPlanID retrieves all sessions belonging to a plan.
func (r *mongoSessionRepository) GetByPlanID(ctx context.Context, planID int64) ([]domain.Session, error) {
	return r.find(ctx, bson.M{"planId": planID})
}

func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M) ([]domain.Session, error) {
	var sessions []domain.Session
	findOptions := options.Find().SetSort(bson.D{
		{Key: "scheduledDate", Value: 1},
		{Key: "sessionOrder", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Update modifies an existing session. Owner and plan links are not changed.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if session.ID == 0 {
		return errors.New("session ID is required for update")
	}

	update := bson.M{"$set": bson.M{
		"name":           session.Name,
		"type":           session.Type,
		"scheduledDate":  session.ScheduledDate,
		"completedDate":  session.CompletedDate,
		"status":         session.Status,
		"readinessScore": session.ReadinessScore,
		"sessionOrder":   session.SessionOrder,
		"notes":          session.Notes,
		"instructions":   session.Instructions,
		"updatedAt":      time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session.
func (r *mongoSessionRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "scheduledDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
