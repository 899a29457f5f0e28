package hub

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/service"
)

// ChatHandler dispatches live-channel events to the message router. Every
// failure is answered with a structured error event on the same connection;
// nothing is silently dropped once a session is identified.
type ChatHandler struct {
	hub      *Hub
	messages *service.MessageService
	groups   *service.GroupService
}

// NewChatHandler creates the dispatcher.
// Note: call SetHub() after creating the Hub to complete the wiring.
func NewChatHandler(messages *service.MessageService, groups *service.GroupService) *ChatHandler {
	return &ChatHandler{
		messages: messages,
		groups:   groups,
	}
}

// SetHub sets the hub reference. Must be called after the Hub is created.
func (ch *ChatHandler) SetHub(h *Hub) {
	ch.hub = h
}

// Handle processes one inbound event according to the session state:
// unidentified sessions accept only identify, everything else is discarded
// without an error frame since early frames are expected during handshake.
func (ch *ChatHandler) Handle(ev event.WsEvent, c *Client) {
	if ev.Event == event.EventIdentify {
		ch.handleIdentify(ev, c)
		return
	}

	if !c.Identified() {
		log.Printf("discarding %q from unidentified client %s", ev.Event, c.ID)
		return
	}

	switch ev.Event {
	case event.EventDirectSend:
		ch.handleDirectSend(ev, c)
	case event.EventGroupJoin:
		ch.handleGroupJoin(ev, c)
	case event.EventGroupSend:
		ch.handleGroupSend(ev, c)
	case event.EventGroupSendImage:
		ch.handleGroupSendImage(ev, c)
	default:
		ch.sendError(c, apperr.Invalid(apperr.CodeInvalidEvent, "unknown event: "+ev.Event))
	}
}

func (ch *ChatHandler) handleIdentify(ev event.WsEvent, c *Client) {
	var payload event.IdentifyPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.UserID == "" {
		// handshake races produce malformed identify frames; drop them
		return
	}

	c.identify(payload.UserID)
	ch.hub.presence.Announce(payload.UserID, c)
	log.Printf("client %s identified as user %s", c.ID, payload.UserID)
}

func (ch *ChatHandler) handleDirectSend(ev event.WsEvent, c *Client) {
	var payload event.DirectSendPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		ch.sendError(c, apperr.Invalid(apperr.CodeInvalidPayload, "malformed dm.send payload"))
		return
	}

	// The announced identity is the sender; the payload's fromUserId is
	// client-supplied display data only.
	if _, err := ch.messages.SendDirectMessage(ch.sendContext(), c.UserID(), payload.ToUserID, payload.Text); err != nil {
		ch.sendError(c, err)
	}
}

func (ch *ChatHandler) handleGroupJoin(ev event.WsEvent, c *Client) {
	var payload event.GroupJoinPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.GroupID == "" {
		ch.sendError(c, apperr.Invalid(apperr.CodeInvalidPayload, "malformed group.join payload"))
		return
	}

	ch.hub.joinRoom(c, payload.GroupID)
}

func (ch *ChatHandler) handleGroupSend(ev event.WsEvent, c *Client) {
	var payload event.GroupSendPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		ch.sendError(c, apperr.Invalid(apperr.CodeInvalidPayload, "malformed group.send payload"))
		return
	}

	if _, err := ch.messages.SendGroupMessage(ch.sendContext(), c.UserID(), payload.GroupID, payload.Text); err != nil {
		ch.sendError(c, err)
	}
}

func (ch *ChatHandler) handleGroupSendImage(ev event.WsEvent, c *Client) {
	var payload event.GroupSendImagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		ch.sendError(c, apperr.Invalid(apperr.CodeInvalidPayload, "malformed group.sendImage payload"))
		return
	}

	if _, err := ch.messages.SendGroupImage(ch.sendContext(), c.UserID(), payload.GroupID, payload.ImageData); err != nil {
		ch.sendError(c, err)
	}
}

// sendContext backs an accepted send. Deliberately not tied to the client's
// context: a send accepted before disconnect still completes and delivers.
func (ch *ChatHandler) sendContext() context.Context {
	return context.Background()
}

func (ch *ChatHandler) sendError(c *Client, err error) {
	payload := event.ErrorPayload{Code: "internal", Message: "something went wrong"}

	if ve, ok := apperr.AsValidation(err); ok {
		payload = event.ErrorPayload{Code: ve.Code, Message: ve.Message}
	} else if ae, ok := apperr.AsAuthorization(err); ok {
		payload = event.ErrorPayload{Code: string(ae.Reason), Message: ae.Message}
	} else if errors.Is(err, apperr.ErrNotFound) {
		payload = event.ErrorPayload{Code: "not_found", Message: "resource not found"}
	} else {
		log.Printf("internal error for client %s: %v", c.ID, err)
	}

	ev, encErr := event.Outbound(event.EventError, payload)
	if encErr != nil {
		log.Printf("failed to encode error event: %v", encErr)
		return
	}

	c.SafeSend(ev, sendTimeout)
}
