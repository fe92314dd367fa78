package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newsdesk/models"
)

// ErrDuplicatePost is returned when an insert hits the unique source_url index.
var ErrDuplicatePost = errors.New("post with this source_url already exists")

// ErrDuplicateSource is returned when a source with the same URL already exists.
var ErrDuplicateSource = errors.New("source with this url already exists")

type SourceRepository struct {
	col *mongo.Collection
}

func NewSourceRepository(db *mongo.Database) *SourceRepository {
	return &SourceRepository{col: db.Collection("sources")}
}

// List returns all configured sources in insertion order.
func (r *SourceRepository) List(ctx context.Context) ([]models.NewsSource, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.NewsSource
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Insert stores a new source; URL uniqueness is enforced by index.
func (r *SourceRepository) Insert(ctx context.Context, s *models.NewsSource) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSource
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

// Delete removes a source by its ObjectID hex string.
func (r *SourceRepository) Delete(ctx context.Context, idStr string) error {
	oid, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
