package model

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message kinds
const (
	KindText  = "text"
	KindImage = "image"
)

// MaxTextLength is the upper bound on a message body.
const MaxTextLength = 2000

var (
	ErrAmbiguousTarget = errors.New("message must target exactly one of: receiver (direct) or conversation (group)")
	ErrEmptyText       = errors.New("text message cannot be empty")
	ErrMissingImageURL = errors.New("image message must have an image url")
)

// Message represents a delivered chat message in MongoDB. A direct message
// carries Receiver and no Conversation; a group message carries Conversation
// and no Receiver.
type Message struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Conversation *primitive.ObjectID `json:"conversationId,omitempty" bson:"conversation,omitempty"`
	Receiver     *primitive.ObjectID `json:"receiverId,omitempty" bson:"receiver,omitempty"`
	Sender       primitive.ObjectID  `json:"senderId" bson:"sender"`
	Kind         string              `json:"kind" bson:"kind"`
	Text         string              `json:"text" bson:"text"`
	ImageURL     string              `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	ReadAt       *time.Time          `json:"readAt,omitempty" bson:"read_at,omitempty"`
	CreatedAt    time.Time           `json:"createdAt" bson:"created_at"`
}

// IsDirect reports whether the message targets a single peer.
func (m *Message) IsDirect() bool {
	return m.Receiver != nil && m.Conversation == nil
}

// IsGroup reports whether the message targets a group conversation.
func (m *Message) IsGroup() bool {
	return m.Conversation != nil && m.Receiver == nil
}

// Validate enforces the target and body invariants before any store write.
func (m *Message) Validate() error {
	hasReceiver := m.Receiver != nil
	hasConversation := m.Conversation != nil
	if hasReceiver == hasConversation {
		return ErrAmbiguousTarget
	}

	switch m.Kind {
	case KindText:
		if strings.TrimSpace(m.Text) == "" {
			return ErrEmptyText
		}
	case KindImage:
		if m.ImageURL == "" {
			return ErrMissingImageURL
		}
	}

	return nil
}
