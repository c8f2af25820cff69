package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note represents an owned text document. Every read and write is scoped by
// (id, user_id) so a note is never visible outside its owner's requests.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"user_id"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
