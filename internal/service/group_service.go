package service

import (
	"context"
	"strings"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/event"
	"github.com/OmerBirol/lenslight-tr/internal/guard"
	"github.com/OmerBirol/lenslight-tr/internal/model"
	"github.com/OmerBirol/lenslight-tr/internal/repo"

	"go.uber.org/zap"
)

// GroupService owns group creation, membership reads and the invite
// lifecycle. Membership only grows through invite acceptance here; leaving
// and removal belong to the excluded CRUD layer.
type GroupService struct {
	groups   repo.ConversationRepository
	invites  repo.InviteRepository
	users    repo.UserRepository
	messages repo.MessageRepository
	notifier Notifier

	logger *zap.Logger
}

func NewGroupService(
	groups repo.ConversationRepository,
	invites repo.InviteRepository,
	users repo.UserRepository,
	messages repo.MessageRepository,
	logger *zap.Logger,
) *GroupService {
	return &GroupService{
		groups:   groups,
		invites:  invites,
		users:    users,
		messages: messages,
		logger:   logger,
	}
}

// SetNotifier wires the live-delivery side, used for invite notices.
func (s *GroupService) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateGroup creates a group owned by, and containing only, the creator.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name string) (*model.Conversation, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid(apperr.CodeEmptyName, "group name is required")
	}
	if len(name) > model.MaxGroupNameLength {
		return nil, apperr.Invalid(apperr.CodeNameTooLong, "group name exceeds maximum length")
	}

	group, err := s.groups.CreateGroup(ctx, name, owner)
	if err != nil {
		return nil, apperr.Store("create group", err)
	}
	return group, nil
}

// ListGroups returns the groups the user belongs to.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]model.Conversation, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groups.ListGroupsFor(ctx, me)
	if err != nil {
		return nil, apperr.Store("list groups", err)
	}
	return groups, nil
}

// GroupChatView is a group conversation as seen by one member.
type GroupChatView struct {
	Group    *model.Conversation `json:"group"`
	Messages []model.Message     `json:"messages"`
	Senders  map[string]string   `json:"senders"` // sender id -> display name
	IsOwner  bool                `json:"isOwner"`
}

// GetGroupChat returns a group's history for a member, with sender display
// names resolved. Non-members are denied the same way sends are.
func (s *GroupService) GetGroupChat(ctx context.Context, userID, groupID string) (*GroupChatView, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	gid, err := parseID(groupID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.GetGroup(ctx, gid)
	if err != nil {
		return nil, apperr.Store("load group", err)
	}
	if err := guard.CanSendToGroup(me, group); err != nil {
		return nil, err
	}

	history, err := s.messages.GroupHistory(ctx, gid)
	if err != nil {
		return nil, apperr.Store("load group chat", err)
	}

	senders := make(map[string]string)
	for _, m := range history {
		id := m.Sender.Hex()
		if _, ok := senders[id]; ok {
			continue
		}
		name := ""
		if u, err := s.users.GetUser(ctx, m.Sender); err == nil && u != nil {
			name = u.Username
		}
		senders[id] = name
	}

	return &GroupChatView{
		Group:    group,
		Messages: history,
		Senders:  senders,
		IsOwner:  group.IsOwner(me),
	}, nil
}

// SendInvite creates a pending invite after the full rule set passes and
// notifies the invitee live when they are connected.
func (s *GroupService) SendInvite(ctx context.Context, ownerID, groupID, inviteeID string) (*model.GroupInvite, error) {
	owner, err := parseID(ownerID)
	if err != nil {
		return nil, err
	}
	gid, err := parseID(groupID)
	if err != nil {
		return nil, err
	}
	invitee, err := parseID(inviteeID)
	if err != nil {
		return nil, err
	}

	group, err := s.groups.GetGroup(ctx, gid)
	if err != nil {
		return nil, apperr.Store("load group", err)
	}

	ownerUser, err := s.users.GetUser(ctx, owner)
	if err != nil {
		return nil, apperr.Store("load owner", err)
	}

	hasPending := false
	if group != nil {
		hasPending, err = s.invites.ExistsPending(ctx, gid, invitee)
		if err != nil {
			return nil, apperr.Store("check pending invite", err)
		}
	}

	if err := guard.CanInvite(ownerUser, group, invitee, hasPending); err != nil {
		return nil, err
	}

	invite, err := s.invites.Create(ctx, &model.GroupInvite{
		Group: gid,
		From:  owner,
		To:    invitee,
	})
	if err != nil {
		return nil, apperr.Store("create invite", err)
	}

	s.pushInviteNew(group, invite)
	return invite, nil
}

// AcceptInvite adds the invitee to the group and resolves the invite.
// Ordered so a retry after a partial failure is safe: the membership add is
// an idempotent set-insertion and runs first.
func (s *GroupService) AcceptInvite(ctx context.Context, userID, inviteID string) (*model.GroupInvite, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(inviteID)
	if err != nil {
		return nil, err
	}

	invite, err := s.invites.GetByID(ctx, iid)
	if err != nil {
		return nil, apperr.Store("load invite", err)
	}
	if err := guard.CanResolveInvite(me, invite); err != nil {
		return nil, err
	}

	if err := s.groups.AddMember(ctx, invite.Group, me); err != nil {
		return nil, apperr.Store("add member", err)
	}

	ok, err := s.invites.Resolve(ctx, iid, model.InviteAccepted)
	if err != nil {
		return nil, apperr.Store("resolve invite", err)
	}
	if !ok {
		// Lost a race with a concurrent resolve; status never regresses.
		return nil, apperr.Deny(apperr.ReasonInviteResolved, "invite has already been resolved")
	}

	s.logger.Info("invite accepted",
		zap.String("invite_id", inviteID),
		zap.String("group_id", invite.Group.Hex()),
		zap.String("user_id", userID),
	)

	invite.Status = model.InviteAccepted
	return invite, nil
}

// DeclineInvite resolves the invite without touching membership.
func (s *GroupService) DeclineInvite(ctx context.Context, userID, inviteID string) (*model.GroupInvite, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(inviteID)
	if err != nil {
		return nil, err
	}

	invite, err := s.invites.GetByID(ctx, iid)
	if err != nil {
		return nil, apperr.Store("load invite", err)
	}
	if err := guard.CanResolveInvite(me, invite); err != nil {
		return nil, err
	}

	ok, err := s.invites.Resolve(ctx, iid, model.InviteDeclined)
	if err != nil {
		return nil, apperr.Store("resolve invite", err)
	}
	if !ok {
		return nil, apperr.Deny(apperr.ReasonInviteResolved, "invite has already been resolved")
	}

	invite.Status = model.InviteDeclined
	return invite, nil
}

// InviteView is a pending invite enriched with display data.
type InviteView struct {
	Invite    model.GroupInvite `json:"invite"`
	GroupName string            `json:"groupName"`
	FromName  string            `json:"fromName"`
}

// ListInvites returns the user's pending invites, newest first.
func (s *GroupService) ListInvites(ctx context.Context, userID string) ([]InviteView, error) {
	me, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	pending, err := s.invites.ListPendingFor(ctx, me)
	if err != nil {
		return nil, apperr.Store("list invites", err)
	}

	views := make([]InviteView, 0, len(pending))
	for _, inv := range pending {
		view := InviteView{Invite: inv}
		if g, err := s.groups.GetGroup(ctx, inv.Group); err == nil && g != nil {
			view.GroupName = g.Name
		}
		if u, err := s.users.GetUser(ctx, inv.From); err == nil && u != nil {
			view.FromName = u.Username
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *GroupService) pushInviteNew(group *model.Conversation, invite *model.GroupInvite) {
	if s.notifier == nil {
		return
	}

	ev, err := event.Outbound(event.EventInviteNew, event.InviteNewPayload{
		GroupID:    invite.Group.Hex(),
		GroupName:  group.Name,
		FromUserID: invite.From.Hex(),
	})
	if err != nil {
		s.logger.Error("failed to encode invite.new event", zap.Error(err))
		return
	}

	s.notifier.PushToUser(invite.To.Hex(), ev)
}
