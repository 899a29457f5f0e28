package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OmerBirol/lenslight-tr/internal/db"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrInvalidGroupName = errors.New("invalid group name")

type conversationRepository struct {
	mongoRepo *db.Repository[model.Conversation]
	logger    *zap.Logger
}

type ConversationRepository interface {
	// CreateGroup creates a group conversation whose only member is its
	// owner.
	CreateGroup(ctx context.Context, name string, owner primitive.ObjectID) (*model.Conversation, error)
	// GetGroup loads a group conversation by id; (nil, nil) when absent.
	GetGroup(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error)
	// ListGroupsFor returns the groups the user belongs to, most recently
	// updated first.
	ListGroupsFor(ctx context.Context, member primitive.ObjectID) ([]model.Conversation, error)
	// AddMember adds a user to a group's member set. Safe to retry: the
	// insertion is an idempotent $addToSet.
	AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error
}

func NewConversationRepository(repo *db.Repository[model.Conversation], logger *zap.Logger) ConversationRepository {
	return &conversationRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (r *conversationRepository) CreateGroup(ctx context.Context, name string, owner primitive.ObjectID) (*model.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > model.MaxGroupNameLength {
		return nil, ErrInvalidGroupName
	}

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	group := &model.Conversation{
		ID:        primitive.NewObjectID(),
		Type:      model.ConversationGroup,
		Name:      name,
		Owner:     owner,
		Members:   []primitive.ObjectID{owner},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.mongoRepo.Create(ctx, *group); err != nil {
		r.logger.Error("failed to create group",
			zap.Error(err),
			zap.String("owner", owner.Hex()),
		)
		return nil, fmt.Errorf("create group failed: %w", err)
	}

	r.logger.Info("group created",
		zap.String("group_id", group.ID.Hex()),
		zap.String("owner", owner.Hex()),
	)
	return group, nil
}

func (r *conversationRepository) GetGroup(ctx context.Context, id primitive.ObjectID) (*model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("_id", id).
		Eq("type", model.ConversationGroup).
		Build()

	group, err := r.mongoRepo.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("failed to fetch group",
			zap.String("group_id", id.Hex()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("fetch group failed: %w", err)
	}

	return group, nil
}

func (r *conversationRepository) ListGroupsFor(ctx context.Context, member primitive.ObjectID) ([]model.Conversation, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("type", model.ConversationGroup).
		Eq("members", member).
		Build()

	groups, err := r.mongoRepo.Find(ctx, filter, "updated_at", true, 0)
	if err != nil {
		return nil, fmt.Errorf("list groups failed: %w", err)
	}
	return groups, nil
}

func (r *conversationRepository) AddMember(ctx context.Context, groupID, userID primitive.ObjectID) error {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.UpdateOne(ctx,
		db.NewFilter().Eq("_id", groupID).Build(),
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		r.logger.Error("failed to add member",
			zap.Error(err),
			zap.String("group_id", groupID.Hex()),
			zap.String("user_id", userID.Hex()),
		)
		return fmt.Errorf("add member failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	r.logger.Debug("member added",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()),
	)
	return nil
}
