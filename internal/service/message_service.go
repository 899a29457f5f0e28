package service

import (
	"context"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/assets"
	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/guard"
	"github.com/OmerBirol/lenslight-tr/internal/model"
	"github.com/OmerBirol/lenslight-tr/internal/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MessageService is the message router. The live channel and the
// synchronous fallback path both enter here and run the identical sequence:
// normalize, authorize, persist, resolve delivery targets, push.
type MessageService struct {
	messages repo.MessageRepository
	groups   repo.ConversationRepository
	users    repo.UserRepository
	uploader assets.Uploader
	notifier Notifier

	maxImageBytes int64
	logger        *zap.Logger
}

func NewMessageService(
	messages repo.MessageRepository,
	groups repo.ConversationRepository,
	users repo.UserRepository,
	uploader assets.Uploader,
	maxImageBytes int64,
	logger *zap.Logger,
) *MessageService {
	return &MessageService{
		messages:      messages,
		groups:        groups,
		users:         users,
		uploader:      uploader,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// SetNotifier wires the live-delivery side. Must be called after the hub is
// created; until then sends persist without pushing.
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// SendDirectMessage persists a direct text message and pushes dm.new to the
// receiver's live connection, if any.
func (s *MessageService) SendDirectMessage(ctx context.Context, senderID, receiverID, text string) (*model.Message, error) {
	sender, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := parseID(receiverID)
	if err != nil {
		return nil, err
	}

	clean, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, receiver)
	if err != nil {
		return nil, apperr.Store("check receiver", err)
	}
	if !exists {
		return nil, apperr.NotFound("user")
	}

	if err := guard.CanSendDirect(sender, receiver); err != nil {
		return nil, err
	}

	msg := &model.Message{
		Receiver: &receiver,
		Sender:   sender,
		Kind:     model.KindText,
		Text:     clean,
	}
	if _, err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Store("insert direct message", err)
	}

	s.pushDirectNew(receiver, msg)
	return msg, nil
}

// SendGroupMessage persists a group text message and broadcasts group.new
// to every present member except the sender.
func (s *MessageService) SendGroupMessage(ctx context.Context, senderID, groupID, text string) (*model.Message, error) {
	sender, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	gid, err := parseID(groupID)
	if err != nil {
		return nil, err
	}

	clean, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, gid)
	if err != nil {
		return nil, err
	}
	if err := guard.CanSendToGroup(sender, group); err != nil {
		return nil, err
	}

	msg := &model.Message{
		Conversation: &gid,
		Sender:       sender,
		Kind:         model.KindText,
		Text:         clean,
	}
	if _, err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Store("insert group message", err)
	}

	s.pushGroupNew(ctx, group, msg)
	return msg, nil
}

// SendGroupImage validates the image payload, hands it to the asset-storage
// collaborator, persists the resulting image message and broadcasts it.
func (s *MessageService) SendGroupImage(ctx context.Context, senderID, groupID, imageData string) (*model.Message, error) {
	sender, err := parseID(senderID)
	if err != nil {
		return nil, err
	}
	gid, err := parseID(groupID)
	if err != nil {
		return nil, err
	}

	if err := validateImageData(imageData, s.maxImageBytes); err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, gid)
	if err != nil {
		return nil, err
	}
	if err := guard.CanSendToGroup(sender, group); err != nil {
		return nil, err
	}

	imageURL, err := s.uploader.Upload(ctx, imageData)
	if err != nil {
		return nil, apperr.Store("upload image", err)
	}

	msg := &model.Message{
		Conversation: &gid,
		Sender:       sender,
		Kind:         model.KindImage,
		ImageURL:     imageURL,
	}
	if _, err := s.messages.InsertMessage(ctx, msg); err != nil {
		return nil, apperr.Store("insert group image", err)
	}

	s.pushGroupNew(ctx, group, msg)
	return msg, nil
}

// InboxEntry is one conversation row on the inbox: the peer and the latest
// message exchanged with them.
type InboxEntry struct {
	PeerID      string        `json:"peerId"`
	PeerName    string        `json:"peerName"`
	LastMessage model.Message `json:"lastMessage"`
}

// GetInbox folds the user's newest direct messages into one entry per peer,
// newest conversation first.
func (s *MessageService) GetInbox(ctx context.Context, userID string) ([]InboxEntry, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	latest, err := s.messages.LatestDirect(ctx, me)
	if err != nil {
		return nil, apperr.Store("load inbox", err)
	}

	entries := make([]InboxEntry, 0)
	seen := make(map[primitive.ObjectID]bool)
	for _, m := range latest {
		other := m.Sender
		if other == me && m.Receiver != nil {
			other = *m.Receiver
		}
		if seen[other] {
			continue
		}
		seen[other] = true

		name := ""
		if peer, err := s.users.GetUser(ctx, other); err == nil && peer != nil {
			name = peer.Username
		}

		entries = append(entries, InboxEntry{
			PeerID:      other.Hex(),
			PeerName:    name,
			LastMessage: m,
		})
	}

	return entries, nil
}

// ChatView is a direct conversation as seen by one participant.
type ChatView struct {
	Peer     *model.User     `json:"peer"`
	Messages []model.Message `json:"messages"`
}

// GetChat returns the direct history with a peer in ascending order and
// marks the peer's unread messages read.
func (s *MessageService) GetChat(ctx context.Context, userID, peerID string) (*ChatView, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	other, err := parseID(peerID)
	if err != nil {
		return nil, err
	}

	if err := guard.CanSendDirect(me, other); err != nil {
		return nil, err
	}

	peer, err := s.users.GetUser(ctx, other)
	if err != nil {
		return nil, apperr.Store("load peer", err)
	}
	if peer == nil {
		return nil, apperr.NotFound("user")
	}

	history, err := s.messages.DirectHistory(ctx, me, other)
	if err != nil {
		return nil, apperr.Store("load chat", err)
	}

	// Viewing the conversation reads it; readAt transitions once.
	if _, err := s.messages.MarkDirectRead(ctx, other, me); err != nil {
		s.logger.Warn("failed to mark messages read",
			zap.Error(err),
			zap.String("peer", peerID),
		)
	}

	return &ChatView{Peer: peer, Messages: history}, nil
}

// -----------------------------------------------------------------------------
// Delivery
// -----------------------------------------------------------------------------

func (s *MessageService) pushDirectNew(receiver primitive.ObjectID, msg *model.Message) {
	if s.notifier == nil {
		return
	}

	ev, err := event.Outbound(event.EventDirectNew, event.DirectNewPayload{
		FromUserID: msg.Sender.Hex(),
		Text:       msg.Text,
		Kind:       msg.Kind,
		CreatedAt:  msg.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to encode dm.new event", zap.Error(err))
		return
	}

	s.notifier.PushToUser(receiver.Hex(), ev)
}

func (s *MessageService) pushGroupNew(ctx context.Context, group *model.Conversation, msg *model.Message) {
	if s.notifier == nil {
		return
	}

	displayName := ""
	if sender, err := s.users.GetUser(ctx, msg.Sender); err == nil && sender != nil {
		displayName = sender.Username
	}

	ev, err := event.Outbound(event.EventGroupNew, event.GroupNewPayload{
		ID:             msg.ID.Hex(),
		ConversationID: group.ID.Hex(),
		Sender: event.SenderInfo{
			ID:          msg.Sender.Hex(),
			DisplayName: displayName,
		},
		Kind:      msg.Kind,
		Text:      msg.Text,
		ImageURL:  msg.ImageURL,
		CreatedAt: msg.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to encode group.new event", zap.Error(err))
		return
	}

	s.notifier.PushGroup(group, msg.Sender.Hex(), ev)
}

func (s *MessageService) loadGroup(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	group, err := s.groups.GetGroup(ctx, id)
	if err != nil {
		return nil, apperr.Store("load group", err)
	}
	return group, nil
}
