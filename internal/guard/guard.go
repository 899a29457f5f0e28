// Package guard holds the authorization decisions evaluated on every
// message and invite. The functions are pure: they take current store
// snapshots as arguments and never cache, since membership and ownership
// can change between connections.
package guard

import (
	"github.com/OmerBirol/lenslight-tr/internal/apperr"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanSendDirect denies only self-targeted messages. Receiver existence is
// validated by the user directory before this check runs.
func CanSendDirect(sender, receiver primitive.ObjectID) error {
	if sender == receiver {
		return apperr.Deny(apperr.ReasonSelfTarget, "cannot message yourself")
	}
	return nil
}

// CanSendToGroup checks that the group exists and the sender is a member.
// A nil group means the conversation was not found.
func CanSendToGroup(sender primitive.ObjectID, group *model.Conversation) error {
	if group == nil {
		return apperr.Deny(apperr.ReasonGroupNotFound, "group does not exist")
	}
	if !group.HasMember(sender) {
		return apperr.Deny(apperr.ReasonNotAMember, "you are not a member of this group")
	}
	return nil
}

// CanInvite checks every invite rule: no self-invites, only the owner may
// invite, the invitee must not already belong, the invitee must follow the
// owner, and only one pending invite may exist per (group, invitee).
func CanInvite(owner *model.User, group *model.Conversation, invitee primitive.ObjectID, hasPending bool) error {
	if group == nil {
		return apperr.Deny(apperr.ReasonGroupNotFound, "group does not exist")
	}
	if owner == nil {
		return apperr.NotFound("owner")
	}
	if invitee == owner.ID {
		return apperr.Deny(apperr.ReasonSelfInvite, "cannot invite yourself")
	}
	if !group.IsOwner(owner.ID) {
		return apperr.Deny(apperr.ReasonNotOwner, "only the group owner can invite")
	}
	if group.HasMember(invitee) {
		return apperr.Deny(apperr.ReasonAlreadyMember, "user is already a member")
	}
	if !owner.FollowedBy(invitee) {
		return apperr.Deny(apperr.ReasonNotAFollower, "user does not follow you")
	}
	if hasPending {
		return apperr.Deny(apperr.ReasonDuplicateInvite, "an invite for this user is already pending")
	}
	return nil
}

// CanResolveInvite checks that the invite exists, targets the actor, and is
// still pending. Resolved invites never re-open.
func CanResolveInvite(actor primitive.ObjectID, invite *model.GroupInvite) error {
	if invite == nil {
		return apperr.NotFound("invite")
	}
	if invite.To != actor {
		return apperr.Deny(apperr.ReasonNotInvitee, "this invite is not addressed to you")
	}
	if invite.Status != model.InvitePending {
		return apperr.Deny(apperr.ReasonInviteResolved, "invite has already been resolved")
	}
	return nil
}
