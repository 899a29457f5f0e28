package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation types
const (
	ConversationGroup = "group"
)

// MaxGroupNameLength is the upper bound on a group name.
const MaxGroupNameLength = 60

// Conversation represents a group chat target in MongoDB. Direct messages are
// not materialized as conversations; they reference the peer pair directly.
type Conversation struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Type      string               `json:"type" bson:"type"`
	Name      string               `json:"name" bson:"name"`
	Owner     primitive.ObjectID   `json:"owner" bson:"owner"`
	Members   []primitive.ObjectID `json:"members" bson:"members"`
	CreatedAt time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updated_at"`
}

// HasMember reports whether the given user belongs to the conversation.
func (c *Conversation) HasMember(userID primitive.ObjectID) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether the given user owns the conversation.
func (c *Conversation) IsOwner(userID primitive.ObjectID) bool {
	return c.Owner == userID
}
