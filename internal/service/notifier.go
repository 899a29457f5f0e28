package service

import (
	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/model"
)

// Notifier is the live-delivery side of the router. The websocket hub
// implements it; the synchronous path shares the same fan-out.
type Notifier interface {
	// PushToUser delivers an event to the user's live connection. Absence
	// of a connection is not an error; the recipient observes the message
	// on next pull.
	PushToUser(userID string, ev event.WsEvent) bool

	// PushGroup delivers an event to every member of the group except
	// exceptUserID. The sender receives the persisted record as the call
	// result, never a push echo.
	PushGroup(group *model.Conversation, exceptUserID string, ev event.WsEvent)
}
