package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document in MongoDB. The messaging core only reads
// users: identity, display name and the follow graph used by invite checks.
// Credential fields belong to the excluded account layer and are never
// decoded here.
type User struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Username  string               `json:"username" bson:"username"`
	Email     string               `json:"email" bson:"email"`
	Avatar    string               `json:"avatar" bson:"avatar"`
	Followers []primitive.ObjectID `json:"followers" bson:"followers"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
}

// FollowedBy reports whether the given user follows this user.
func (u *User) FollowedBy(userID primitive.ObjectID) bool {
	for _, f := range u.Followers {
		if f == userID {
			return true
		}
	}
	return false
}
