package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/OmerBirol/lenslight-tr/internal/db"
	"github.com/OmerBirol/lenslight-tr/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository is the read-only view of the user directory the messaging
// core needs: identity, display names and the follow graph. Account
// mutation lives in the excluded CRUD layer.
type UserRepository interface {
	// GetUser loads a user by id; (nil, nil) when absent.
	GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	// Exists reports whether the user account exists.
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type userRepository struct {
	mongoRepo *db.Repository[model.User]
}

func NewUserRepository(repo *db.Repository[model.User]) UserRepository {
	return &userRepository{
		mongoRepo: repo,
	}
}

func (r *userRepository) GetUser(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("_id", id).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user failed: %w", err)
	}
	return user, nil
}

func (r *userRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	return r.mongoRepo.Exists(ctx, db.NewFilter().Eq("_id", id).Build())
}
