package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type messageFixture struct {
	svc      *MessageService
	messages *fakeMessageRepo
	groups   *fakeConversationRepo
	users    *fakeUserRepo
	uploader *fakeUploader
	notifier *fakeNotifier
}

func newMessageFixture(users *fakeUserRepo, groups *fakeConversationRepo) *messageFixture {
	f := &messageFixture{
		messages: &fakeMessageRepo{},
		groups:   groups,
		users:    users,
		uploader: &fakeUploader{url: "https://cdn.example.com/img.png"},
		notifier: &fakeNotifier{},
	}
	f.svc = NewMessageService(f.messages, f.groups, f.users, f.uploader, 1024, zap.NewNop())
	f.svc.SetNotifier(f.notifier)
	return f
}

func TestSendDirectMessage(t *testing.T) {
	alice := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
	bob := &model.User{ID: primitive.NewObjectID(), Username: "bob"}
	f := newMessageFixture(newFakeUserRepo(alice, bob), newFakeConversationRepo())

	msg, err := f.svc.SendDirectMessage(context.Background(), alice.ID.Hex(), bob.ID.Hex(), "  hello  ")
	require.NoError(t, err)

	// body is normalized before persistence
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, model.KindText, msg.Kind)
	require.NotNil(t, msg.Receiver)
	assert.Equal(t, bob.ID, *msg.Receiver)
	assert.Nil(t, msg.Conversation)
	require.Len(t, f.messages.inserted, 1)

	// receiver gets dm.new with the stored content
	require.Len(t, f.notifier.userPushes, 1)
	push := f.notifier.userPushes[0]
	assert.Equal(t, bob.ID.Hex(), push.userID)
	assert.Equal(t, event.EventDirectNew, push.ev.Event)

	var payload event.DirectNewPayload
	require.NoError(t, json.Unmarshal(push.ev.Payload, &payload))
	assert.Equal(t, alice.ID.Hex(), payload.FromUserID)
	assert.Equal(t, "hello", payload.Text)
}

func TestSendDirectMessageToSelf(t *testing.T) {
	alice := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
	f := newMessageFixture(newFakeUserRepo(alice), newFakeConversationRepo())

	_, err := f.svc.SendDirectMessage(context.Background(), alice.ID.Hex(), alice.ID.Hex(), "hi")

	ae, ok := apperr.AsAuthorization(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonSelfTarget, ae.Reason)

	// a denied send leaves no trace and pushes nothing
	assert.Empty(t, f.messages.inserted)
	assert.Empty(t, f.notifier.userPushes)
}

func TestSendDirectMessageValidation(t *testing.T) {
	alice := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
	bob := &model.User{ID: primitive.NewObjectID(), Username: "bob"}
	f := newMessageFixture(newFakeUserRepo(alice, bob), newFakeConversationRepo())
	ctx := context.Background()

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.svc.SendDirectMessage(ctx, "not-an-id", bob.ID.Hex(), "hi")
		ve, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeInvalidID, ve.Code)
	})

	t.Run("blank text", func(t *testing.T) {
		_, err := f.svc.SendDirectMessage(ctx, alice.ID.Hex(), bob.ID.Hex(), "   ")
		ve, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeEmptyText, ve.Code)
	})

	t.Run("text too long", func(t *testing.T) {
		long := strings.Repeat("x", model.MaxTextLength+1)
		_, err := f.svc.SendDirectMessage(ctx, alice.ID.Hex(), bob.ID.Hex(), long)
		ve, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeTextTooLong, ve.Code)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		_, err := f.svc.SendDirectMessage(ctx, alice.ID.Hex(), primitive.NewObjectID().Hex(), "hi")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	assert.Empty(t, f.messages.inserted)
}

func TestSendGroupMessage(t *testing.T) {
	owner := &model.User{ID: primitive.NewObjectID(), Username: "owner"}
	member := &model.User{ID: primitive.NewObjectID(), Username: "member"}
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Name:    "hikers",
		Owner:   owner.ID,
		Members: []primitive.ObjectID{owner.ID, member.ID},
	}
	f := newMessageFixture(newFakeUserRepo(owner, member), newFakeConversationRepo(group))

	msg, err := f.svc.SendGroupMessage(context.Background(), member.ID.Hex(), group.ID.Hex(), "trail?")
	require.NoError(t, err)

	require.NotNil(t, msg.Conversation)
	assert.Equal(t, group.ID, *msg.Conversation)
	assert.Nil(t, msg.Receiver)
	require.Len(t, f.messages.inserted, 1)

	// broadcast excludes the sender
	require.Len(t, f.notifier.groupPushes, 1)
	push := f.notifier.groupPushes[0]
	assert.Equal(t, group.ID.Hex(), push.groupID)
	assert.Equal(t, member.ID.Hex(), push.except)
	assert.Equal(t, event.EventGroupNew, push.ev.Event)

	var payload event.GroupNewPayload
	require.NoError(t, json.Unmarshal(push.ev.Payload, &payload))
	assert.Equal(t, "member", payload.Sender.DisplayName)
	assert.Equal(t, "trail?", payload.Text)
}

func TestSendGroupMessageDenied(t *testing.T) {
	owner := &model.User{ID: primitive.NewObjectID(), Username: "owner"}
	outsider := &model.User{ID: primitive.NewObjectID(), Username: "outsider"}
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Owner:   owner.ID,
		Members: []primitive.ObjectID{owner.ID},
	}
	f := newMessageFixture(newFakeUserRepo(owner, outsider), newFakeConversationRepo(group))
	ctx := context.Background()

	t.Run("non-member", func(t *testing.T) {
		_, err := f.svc.SendGroupMessage(ctx, outsider.ID.Hex(), group.ID.Hex(), "hi")
		ae, ok := apperr.AsAuthorization(err)
		require.True(t, ok)
		assert.Equal(t, apperr.ReasonNotAMember, ae.Reason)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := f.svc.SendGroupMessage(ctx, owner.ID.Hex(), primitive.NewObjectID().Hex(), "hi")
		ae, ok := apperr.AsAuthorization(err)
		require.True(t, ok)
		assert.Equal(t, apperr.ReasonGroupNotFound, ae.Reason)
	})

	assert.Empty(t, f.messages.inserted)
	assert.Empty(t, f.notifier.groupPushes)
}

func TestSendGroupImage(t *testing.T) {
	owner := &model.User{ID: primitive.NewObjectID(), Username: "owner"}
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Owner:   owner.ID,
		Members: []primitive.ObjectID{owner.ID},
	}
	f := newMessageFixture(newFakeUserRepo(owner), newFakeConversationRepo(group))

	data := "data:image/png;base64," + strings.Repeat("A", 100)
	msg, err := f.svc.SendGroupImage(context.Background(), owner.ID.Hex(), group.ID.Hex(), data)
	require.NoError(t, err)

	require.Len(t, f.uploader.calls, 1)
	assert.Equal(t, data, f.uploader.calls[0])
	assert.Equal(t, model.KindImage, msg.Kind)
	assert.Equal(t, "https://cdn.example.com/img.png", msg.ImageURL)
	assert.Empty(t, msg.Text)
	require.Len(t, f.notifier.groupPushes, 1)
}

func TestSendGroupImageRejected(t *testing.T) {
	owner := &model.User{ID: primitive.NewObjectID(), Username: "owner"}
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Owner:   owner.ID,
		Members: []primitive.ObjectID{owner.ID},
	}
	f := newMessageFixture(newFakeUserRepo(owner), newFakeConversationRepo(group))
	ctx := context.Background()

	t.Run("unsupported type", func(t *testing.T) {
		_, err := f.svc.SendGroupImage(ctx, owner.ID.Hex(), group.ID.Hex(), "data:image/gif;base64,AAAA")
		ve, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeUnsupportedImage, ve.Code)
	})

	t.Run("too large", func(t *testing.T) {
		// fixture caps images at 1024 decoded bytes
		big := "data:image/png;base64," + strings.Repeat("A", 4096)
		_, err := f.svc.SendGroupImage(ctx, owner.ID.Hex(), group.ID.Hex(), big)
		ve, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, apperr.CodeImageTooLarge, ve.Code)
	})

	// rejected payloads never reach the asset store
	assert.Empty(t, f.uploader.calls)
	assert.Empty(t, f.messages.inserted)
}

func TestGetInbox(t *testing.T) {
	me := &model.User{ID: primitive.NewObjectID(), Username: "me"}
	peer := &model.User{ID: primitive.NewObjectID(), Username: "peer"}
	other := &model.User{ID: primitive.NewObjectID(), Username: "other"}
	f := newMessageFixture(newFakeUserRepo(me, peer, other), newFakeConversationRepo())

	// newest first, several messages per peer
	f.messages.latest = []model.Message{
		{Sender: peer.ID, Receiver: &me.ID, Kind: model.KindText, Text: "newest from peer"},
		{Sender: me.ID, Receiver: &other.ID, Kind: model.KindText, Text: "to other"},
		{Sender: me.ID, Receiver: &peer.ID, Kind: model.KindText, Text: "older to peer"},
	}

	entries, err := f.svc.GetInbox(context.Background(), me.ID.Hex())
	require.NoError(t, err)

	// one entry per peer, keeping the newest message
	require.Len(t, entries, 2)
	assert.Equal(t, peer.ID.Hex(), entries[0].PeerID)
	assert.Equal(t, "peer", entries[0].PeerName)
	assert.Equal(t, "newest from peer", entries[0].LastMessage.Text)
	assert.Equal(t, other.ID.Hex(), entries[1].PeerID)
}

func TestGetChat(t *testing.T) {
	me := &model.User{ID: primitive.NewObjectID(), Username: "me"}
	peer := &model.User{ID: primitive.NewObjectID(), Username: "peer"}
	f := newMessageFixture(newFakeUserRepo(me, peer), newFakeConversationRepo())
	f.messages.history = []model.Message{
		{Sender: peer.ID, Receiver: &me.ID, Kind: model.KindText, Text: "hey"},
	}

	view, err := f.svc.GetChat(context.Background(), me.ID.Hex(), peer.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, "peer", view.Peer.Username)
	require.Len(t, view.Messages, 1)

	// opening the chat marks the peer's messages read
	assert.Equal(t, 1, f.messages.markCalls)
}

func TestGetChatWithSelf(t *testing.T) {
	me := &model.User{ID: primitive.NewObjectID(), Username: "me"}
	f := newMessageFixture(newFakeUserRepo(me), newFakeConversationRepo())

	_, err := f.svc.GetChat(context.Background(), me.ID.Hex(), me.ID.Hex())
	ae, ok := apperr.AsAuthorization(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonSelfTarget, ae.Reason)
}
