package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a persisted article record produced by the ingestion pipeline.
// Collection: posts. SourceURL carries a unique index and is the cross-run
// duplicate guard: the pipeline creates a post at most once per URL and
// never updates it afterwards.
type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Summary       string             `bson:"summary" json:"summary"`
	Description   string             `bson:"description" json:"description"`
	ImageURL      string             `bson:"image_url" json:"image_url"`
	SourceName    string             `bson:"source_name" json:"source_name"`
	SourceURL     string             `bson:"source_url" json:"source_url"`
	PublishedAt   time.Time          `bson:"published_at" json:"published_at"`
	AuthorID      string             `bson:"author_id" json:"author_id"`
	IsAIGenerated bool               `bson:"is_ai_generated" json:"is_ai_generated"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
