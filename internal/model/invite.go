package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invite statuses. An invite transitions once, terminally, from pending to
// accepted or declined.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
)

// GroupInvite represents a pending grant of group membership from a group
// owner to one of their followers.
type GroupInvite struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Group     primitive.ObjectID `json:"groupId" bson:"group"`
	From      primitive.ObjectID `json:"fromUserId" bson:"from"`
	To        primitive.ObjectID `json:"toUserId" bson:"to"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}
