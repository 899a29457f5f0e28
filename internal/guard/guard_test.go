package guard

import (
	"testing"

	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requireDenied(t *testing.T, err error, reason apperr.Reason) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.AsAuthorization(err)
	require.True(t, ok, "expected an authorization error, got %v", err)
	assert.Equal(t, reason, ae.Reason)
}

func TestCanSendDirect(t *testing.T) {
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	assert.NoError(t, CanSendDirect(alice, bob))
	requireDenied(t, CanSendDirect(alice, alice), apperr.ReasonSelfTarget)
}

func TestCanSendToGroup(t *testing.T) {
	member := primitive.NewObjectID()
	outsider := primitive.NewObjectID()
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Owner:   member,
		Members: []primitive.ObjectID{member},
	}

	assert.NoError(t, CanSendToGroup(member, group))
	requireDenied(t, CanSendToGroup(outsider, group), apperr.ReasonNotAMember)
	requireDenied(t, CanSendToGroup(member, nil), apperr.ReasonGroupNotFound)
}

func TestCanInvite(t *testing.T) {
	ownerID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	followerID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()

	owner := &model.User{
		ID:        ownerID,
		Username:  "owner",
		Followers: []primitive.ObjectID{followerID, memberID},
	}
	group := &model.Conversation{
		ID:      primitive.NewObjectID(),
		Type:    model.ConversationGroup,
		Owner:   ownerID,
		Members: []primitive.ObjectID{ownerID, memberID},
	}

	t.Run("follower can be invited", func(t *testing.T) {
		assert.NoError(t, CanInvite(owner, group, followerID, false))
	})

	t.Run("missing group", func(t *testing.T) {
		requireDenied(t, CanInvite(owner, nil, followerID, false), apperr.ReasonGroupNotFound)
	})

	t.Run("missing owner", func(t *testing.T) {
		err := CanInvite(nil, group, followerID, false)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("self invite", func(t *testing.T) {
		requireDenied(t, CanInvite(owner, group, ownerID, false), apperr.ReasonSelfInvite)
	})

	t.Run("only the owner invites", func(t *testing.T) {
		member := &model.User{ID: memberID, Followers: []primitive.ObjectID{followerID}}
		requireDenied(t, CanInvite(member, group, followerID, false), apperr.ReasonNotOwner)
	})

	t.Run("already a member", func(t *testing.T) {
		requireDenied(t, CanInvite(owner, group, memberID, false), apperr.ReasonAlreadyMember)
	})

	t.Run("invitee must follow the owner", func(t *testing.T) {
		requireDenied(t, CanInvite(owner, group, strangerID, false), apperr.ReasonNotAFollower)
	})

	t.Run("one pending invite per pair", func(t *testing.T) {
		requireDenied(t, CanInvite(owner, group, followerID, true), apperr.ReasonDuplicateInvite)
	})
}

func TestCanResolveInvite(t *testing.T) {
	invitee := primitive.NewObjectID()
	other := primitive.NewObjectID()

	pending := &model.GroupInvite{
		ID:     primitive.NewObjectID(),
		Group:  primitive.NewObjectID(),
		To:     invitee,
		Status: model.InvitePending,
	}

	assert.NoError(t, CanResolveInvite(invitee, pending))

	t.Run("missing invite", func(t *testing.T) {
		err := CanResolveInvite(invitee, nil)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("only the invitee resolves", func(t *testing.T) {
		requireDenied(t, CanResolveInvite(other, pending), apperr.ReasonNotInvitee)
	})

	t.Run("resolved invites never re-open", func(t *testing.T) {
		accepted := *pending
		accepted.Status = model.InviteAccepted
		requireDenied(t, CanResolveInvite(invitee, &accepted), apperr.ReasonInviteResolved)

		declined := *pending
		declined.Status = model.InviteDeclined
		requireDenied(t, CanResolveInvite(invitee, &declined), apperr.ReasonInviteResolved)
	})
}
