package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewsSource is a configured publication endpoint polled by the pipeline.
// Collection: sources. URL is unique across all sources. Sources are
// created and deleted through the admin API and read-only to the pipeline.
type NewsSource struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	URL       string             `bson:"url" json:"url"`
	CreatedBy string             `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
