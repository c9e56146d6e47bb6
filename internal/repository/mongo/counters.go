package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterCollectionName = "counters"

// nextID atomically increments and returns the named id sequence. Every
// collection draws from here except the exercise catalog, which keeps its
// historical max-id+1 assignment (see ExerciseRepository.MaxID).
func nextID(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	res := db.Collection(counterCollectionName).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	if err := res.Decode(&doc); err != nil {
		return 0, err
	}
	return doc.Seq, nil
}
