package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newsdesk/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// ExistsBySourceURL reports whether a post with the exact source URL was
// already ingested in some earlier run.
func (r *PostRepository) ExistsBySourceURL(ctx context.Context, sourceURL string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"source_url": sourceURL},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert stores a new post. A duplicate-key error from the unique
// source_url index is surfaced as ErrDuplicatePost so a concurrent run
// inserting the same URL is treated as an idempotent skip, not a failure.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePost
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// GetByID returns a single post by its ObjectID hex string.
func (r *PostRepository) GetByID(ctx context.Context, idStr string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		return nil, err
	}
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns posts ordered by published_at desc with simple pagination.
func (r *PostRepository) List(ctx context.Context, page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Post
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
