package service

import (
	"context"
	"errors"
	"time"

	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hand-rolled fakes; the repo interfaces are small enough that a mocking
// framework would cost more than it saves.

type fakeMessageRepo struct {
	inserted  []*model.Message
	insertErr error

	history []model.Message
	latest  []model.Message

	markCalls int
	markErr   error
}

func (f *fakeMessageRepo) InsertMessage(_ context.Context, msg *model.Message) (*model.Message, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	f.inserted = append(f.inserted, msg)
	return msg, nil
}

func (f *fakeMessageRepo) DirectHistory(context.Context, primitive.ObjectID, primitive.ObjectID) ([]model.Message, error) {
	return f.history, nil
}

func (f *fakeMessageRepo) LatestDirect(context.Context, primitive.ObjectID) ([]model.Message, error) {
	return f.latest, nil
}

func (f *fakeMessageRepo) GroupHistory(context.Context, primitive.ObjectID) ([]model.Message, error) {
	return f.history, nil
}

func (f *fakeMessageRepo) MarkDirectRead(context.Context, primitive.ObjectID, primitive.ObjectID) (int64, error) {
	f.markCalls++
	if f.markErr != nil {
		return 0, f.markErr
	}
	return 1, nil
}

type fakeConversationRepo struct {
	groups map[primitive.ObjectID]*model.Conversation

	addedMembers []primitive.ObjectID
	addMemberErr error
}

func newFakeConversationRepo(groups ...*model.Conversation) *fakeConversationRepo {
	f := &fakeConversationRepo{groups: make(map[primitive.ObjectID]*model.Conversation)}
	for _, g := range groups {
		f.groups[g.ID] = g
	}
	return f
}

func (f *fakeConversationRepo) CreateGroup(_ context.Context, name string, owner primitive.ObjectID) (*model.Conversation, error) {
	now := time.Now().UTC()
	g := &model.Conversation{
		ID:        primitive.NewObjectID(),
		Type:      model.ConversationGroup,
		Name:      name,
		Owner:     owner,
		Members:   []primitive.ObjectID{owner},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.groups[g.ID] = g
	return g, nil
}

func (f *fakeConversationRepo) GetGroup(_ context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	return f.groups[id], nil
}

func (f *fakeConversationRepo) ListGroupsFor(_ context.Context, member primitive.ObjectID) ([]model.Conversation, error) {
	out := make([]model.Conversation, 0)
	for _, g := range f.groups {
		if g.HasMember(member) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeConversationRepo) AddMember(_ context.Context, groupID, userID primitive.ObjectID) error {
	if f.addMemberErr != nil {
		return f.addMemberErr
	}
	g, ok := f.groups[groupID]
	if !ok {
		return errors.New("no such group")
	}
	f.addedMembers = append(f.addedMembers, userID)
	if !g.HasMember(userID) {
		g.Members = append(g.Members, userID)
	}
	return nil
}

type fakeInviteRepo struct {
	invites map[primitive.ObjectID]*model.GroupInvite

	pending   bool
	created   []*model.GroupInvite
	createErr error

	resolveOK  bool
	resolveErr error
	resolved   []string
}

func newFakeInviteRepo(invites ...*model.GroupInvite) *fakeInviteRepo {
	f := &fakeInviteRepo{
		invites:   make(map[primitive.ObjectID]*model.GroupInvite),
		resolveOK: true,
	}
	for _, inv := range invites {
		f.invites[inv.ID] = inv
	}
	return f
}

func (f *fakeInviteRepo) Create(_ context.Context, invite *model.GroupInvite) (*model.GroupInvite, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	invite.ID = primitive.NewObjectID()
	invite.Status = model.InvitePending
	invite.CreatedAt = time.Now().UTC()
	f.created = append(f.created, invite)
	f.invites[invite.ID] = invite
	return invite, nil
}

func (f *fakeInviteRepo) GetByID(_ context.Context, id primitive.ObjectID) (*model.GroupInvite, error) {
	return f.invites[id], nil
}

func (f *fakeInviteRepo) ExistsPending(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return f.pending, nil
}

func (f *fakeInviteRepo) ListPendingFor(_ context.Context, to primitive.ObjectID) ([]model.GroupInvite, error) {
	out := make([]model.GroupInvite, 0)
	for _, inv := range f.invites {
		if inv.To == to && inv.Status == model.InvitePending {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInviteRepo) Resolve(_ context.Context, id primitive.ObjectID, status string) (bool, error) {
	if f.resolveErr != nil {
		return false, f.resolveErr
	}
	if !f.resolveOK {
		return false, nil
	}
	f.resolved = append(f.resolved, status)
	if inv, ok := f.invites[id]; ok {
		inv.Status = status
	}
	return true, nil
}

func (f *fakeInviteRepo) EnsureIndexes(context.Context) error { return nil }

type fakeUserRepo struct {
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetUser(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

type fakeUploader struct {
	url   string
	err   error
	calls []string
}

func (f *fakeUploader) Upload(_ context.Context, dataURI string) (string, error) {
	f.calls = append(f.calls, dataURI)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type pushedEvent struct {
	userID string
	ev     event.WsEvent
}

type groupPush struct {
	groupID string
	except  string
	ev      event.WsEvent
}

type fakeNotifier struct {
	userPushes  []pushedEvent
	groupPushes []groupPush
}

func (f *fakeNotifier) PushToUser(userID string, ev event.WsEvent) bool {
	f.userPushes = append(f.userPushes, pushedEvent{userID: userID, ev: ev})
	return true
}

func (f *fakeNotifier) PushGroup(group *model.Conversation, exceptUserID string, ev event.WsEvent) {
	f.groupPushes = append(f.groupPushes, groupPush{
		groupID: group.ID.Hex(),
		except:  exceptUserID,
		ev:      ev,
	})
}
