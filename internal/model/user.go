package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents an account in the notes service. An account is either fully
// verified or has never completed OTP/OAuth verification; there is no state in between.
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	DOB       time.Time     `bson:"dob"`
	Verified  bool          `bson:"verified"`
	GoogleID  string        `bson:"google_id,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}
