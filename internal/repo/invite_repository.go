package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OmerBirol/lenslight-tr/internal/db"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type inviteRepository struct {
	mongoRepo *db.Repository[model.GroupInvite]
	logger    *zap.Logger
}

type InviteRepository interface {
	// Create persists a new pending invite.
	Create(ctx context.Context, invite *model.GroupInvite) (*model.GroupInvite, error)
	// GetByID loads an invite; (nil, nil) when absent.
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.GroupInvite, error)
	// ExistsPending reports whether a pending invite already exists for the
	// (group, invitee) pair.
	ExistsPending(ctx context.Context, group, to primitive.ObjectID) (bool, error)
	// ListPendingFor returns the user's pending invites, newest first.
	ListPendingFor(ctx context.Context, to primitive.ObjectID) ([]model.GroupInvite, error)
	// Resolve transitions a pending invite to the given terminal status.
	// Returns false when the invite was no longer pending, so a status
	// never regresses under re-delivery.
	Resolve(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
	// EnsureIndexes installs the uniqueness constraint guarding against
	// duplicate pending invites.
	EnsureIndexes(ctx context.Context) error
}

func NewInviteRepository(repo *db.Repository[model.GroupInvite], logger *zap.Logger) InviteRepository {
	return &inviteRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *inviteRepository) Create(ctx context.Context, invite *model.GroupInvite) (*model.GroupInvite, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	invite.ID = primitive.NewObjectID()
	invite.Status = model.InvitePending
	invite.CreatedAt = time.Now().UTC()

	if _, err := r.mongoRepo.Create(ctx, *invite); err != nil {
		r.logger.Error("failed to create invite",
			zap.Error(err),
			zap.String("group_id", invite.Group.Hex()),
			zap.String("to", invite.To.Hex()),
		)
		return nil, fmt.Errorf("create invite failed: %w", err)
	}

	r.logger.Info("invite created",
		zap.String("invite_id", invite.ID.Hex()),
		zap.String("group_id", invite.Group.Hex()),
		zap.String("to", invite.To.Hex()),
	)
	return invite, nil
}

func (r *inviteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.GroupInvite, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	invite, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("_id", id).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch invite failed: %w", err)
	}
	return invite, nil
}

func (r *inviteRepository) ExistsPending(ctx context.Context, group, to primitive.ObjectID) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("group", group).
		Eq("to", to).
		Eq("status", model.InvitePending).
		Build()

	return r.mongoRepo.Exists(ctx, filter)
}

func (r *inviteRepository) ListPendingFor(ctx context.Context, to primitive.ObjectID) ([]model.GroupInvite, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("to", to).
		Eq("status", model.InvitePending).
		Build()

	invites, err := r.mongoRepo.Find(ctx, filter, "created_at", true, 0)
	if err != nil {
		return nil, fmt.Errorf("list invites failed: %w", err)
	}
	return invites, nil
}

func (r *inviteRepository) Resolve(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	// The pending filter makes the transition one-way: a second resolve
	// matches nothing.
	result, err := r.mongoRepo.UpdateOne(ctx,
		db.NewFilter().Eq("_id", id).Eq("status", model.InvitePending).Build(),
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		r.logger.Error("failed to resolve invite",
			zap.Error(err),
			zap.String("invite_id", id.Hex()),
			zap.String("status", status),
		)
		return false, fmt.Errorf("resolve invite failed: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *inviteRepository) EnsureIndexes(ctx context.Context) error {
	return r.mongoRepo.EnsureIndexes(ctx, pendingInviteIndex())
}

// pendingInviteIndex enforces at most one pending invite per (group, invitee).
// Partial on pending so resolved invites never collide with a later re-invite
// of the same pair.
func pendingInviteIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{
			{Key: "group", Value: 1},
			{Key: "to", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": model.InvitePending}),
	}
}
