package repository

import (
	"context"

	"accidentsev/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PredictionRepo persists the trace of every prediction request
type PredictionRepo interface {
	Save(ctx context.Context, rec *model.PredictionRecord) error
	Get(ctx context.Context, id string) (*model.PredictionRecord, error)
	// ListBySession returns the newest records first
	ListBySession(ctx context.Context, sessionID string, limit int) ([]model.PredictionRecord, error)
}

type predictionRepo struct {
	collection *mongo.Collection
}

// NewPredictionRepo creates the MongoDB prediction repository
func NewPredictionRepo(db *mongo.Database) PredictionRepo {
	return &predictionRepo{
		collection: db.Collection("predictions"),
	}
}

// EnsurePredictionIndexes creates the session lookup index
func EnsurePredictionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("predictions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}

func (r *predictionRepo) Save(ctx context.Context, rec *model.PredictionRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts)
	return err
}

func (r *predictionRepo) Get(ctx context.Context, id string) (*model.PredictionRecord, error) {
	var rec model.PredictionRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *predictionRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.PredictionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []model.PredictionRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
