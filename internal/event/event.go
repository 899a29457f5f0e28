// Package event defines the live-channel wire protocol: one envelope type
// and a closed set of tagged payloads, one per event name. Unknown tags are
// rejected as validation errors rather than ignored.
package event

import (
	"encoding/json"
	"time"
)

// Client-to-server events
const (
	EventIdentify       = "identify"
	EventDirectSend     = "dm.send"
	EventGroupJoin      = "group.join"
	EventGroupSend      = "group.send"
	EventGroupSendImage = "group.sendImage"
)

// Server-to-client events
const (
	EventDirectNew = "dm.new"
	EventGroupNew  = "group.new"
	EventInviteNew = "invite.new"
	EventError     = "error"
)

// WsEvent is the envelope for every frame on the live channel.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Outbound builds a server-to-client envelope from a payload struct.
func Outbound(name string, payload any) (WsEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: name, Payload: raw}, nil
}

// IdentifyPayload announces the connection's user identity.
type IdentifyPayload struct {
	UserID string `json:"userId"`
}

// DirectSendPayload asks the server to deliver a direct message.
type DirectSendPayload struct {
	ToUserID   string `json:"toUserId"`
	FromUserID string `json:"fromUserId"`
	Text       string `json:"text"`
}

// GroupJoinPayload subscribes the connection to a group's broadcast scope.
type GroupJoinPayload struct {
	GroupID string `json:"groupId"`
}

// GroupSendPayload asks the server to deliver a group text message.
type GroupSendPayload struct {
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	Text       string `json:"text"`
}

// GroupSendImagePayload asks the server to deliver a group image message.
// ImageData is a base64 data URI; the router validates kind and size before
// the asset upload.
type GroupSendImagePayload struct {
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	ImageData  string `json:"imageData"`
}

// DirectNewPayload is the live delivery of a direct message.
type DirectNewPayload struct {
	FromUserID string    `json:"fromUserId"`
	Text       string    `json:"text"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SenderInfo identifies the author of a group message.
type SenderInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GroupNewPayload is the live delivery of a group message.
type GroupNewPayload struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	Sender         SenderInfo `json:"sender"`
	Kind           string     `json:"kind"`
	Text           string     `json:"text,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// InviteNewPayload is the live notice of a new group invite.
type InviteNewPayload struct {
	GroupID    string `json:"groupId"`
	GroupName  string `json:"groupName"`
	FromUserID string `json:"fromUserId"`
}

// ErrorPayload reports an authorization or validation failure back on the
// originating connection. Errors never terminate the connection.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
