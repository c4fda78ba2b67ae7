package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clauseguard/analysis"
	"clauseguard/models"
)

// ErrAuthRequired is returned when a write is attempted without an owner
// identity. Anonymous analyses are never persisted.
var ErrAuthRequired = errors.New("owner identity is required")

type AnalysisRepository struct {
	col *mongo.Collection
}

func NewAnalysisRepository(db *mongo.Database) *AnalysisRepository {
	return &AnalysisRepository{col: db.Collection("analyses")}
}

// Insert persists a normalized analysis scoped to its owner and returns the
// record re-normalized from the stored row. Reading back through the same
// normalizer guarantees identical invariants for fresh and re-fetched
// records, including the record-id-derived sub-item ids.
func (r *AnalysisRepository) Insert(ctx context.Context, doc models.Analysis, ownerID string) (*models.Analysis, error) {
	if ownerID == "" {
		return nil, ErrAuthRequired
	}

	now := time.Now()
	doc.ID = primitive.NilObjectID // assigned by the store
	doc.UserID = ownerID
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return r.FindByID(ctx, oid)
}

// FindByID loads one stored row and normalizes it.
func (r *AnalysisRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Analysis, error) {
	var row bson.M
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&row); err != nil {
		return nil, err
	}
	rec := analysis.Normalize(map[string]any(row))
	return &rec, nil
}

// ListByUser returns the owner's analyses ordered by created_at descending.
// Row-level isolation: the filter always carries the owner id.
func (r *AnalysisRepository) ListByUser(ctx context.Context, userID string) ([]models.Analysis, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Analysis, 0)
	for cur.Next(ctx) {
		var row bson.M
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out = append(out, analysis.Normalize(map[string]any(row)))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
