package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clauseguard/models"
)

type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

func (r *AILogRepository) Insert(ctx context.Context, doc models.AILog) (*mongo.InsertOneResult, error) {
	return r.col.InsertOne(ctx, doc)
}

// ListRecent returns the most recent LLM usage logs, newest first.
func (r *AILogRepository) ListRecent(ctx context.Context, limit int64) ([]models.AILog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AILog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
