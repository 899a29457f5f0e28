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
	"go.uber.org/zap"
)

var (
	ErrInvalidMessage   = errors.New("invalid message: message cannot be nil")
	ErrOperationTimeout = errors.New("operation timeout exceeded")
)

const (
	// Timeouts
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	// Retry configuration
	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second

	// Query caps, matching the pull surface
	historyLimit   = 300
	inboxScanLimit = 200
)

type messageRepository struct {
	mongoRepo *db.Repository[model.Message]
	logger    *zap.Logger
}

type MessageRepository interface {
	// InsertMessage persists a message, assigning its id and server
	// timestamp. The stored record is returned.
	InsertMessage(ctx context.Context, msg *model.Message) (*model.Message, error)
	// DirectHistory returns the direct messages between two peers in
	// ascending creation order.
	DirectHistory(ctx context.Context, a, b primitive.ObjectID) ([]model.Message, error)
	// LatestDirect returns the newest direct messages involving the user,
	// newest first, for inbox aggregation.
	LatestDirect(ctx context.Context, me primitive.ObjectID) ([]model.Message, error)
	// GroupHistory returns a conversation's messages in ascending creation
	// order.
	GroupHistory(ctx context.Context, groupID primitive.ObjectID) ([]model.Message, error)
	// MarkDirectRead stamps read_at on every unread message from sender to
	// receiver and reports how many were updated. read_at transitions once.
	MarkDirectRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error)
}

func NewMessageRepository(repo *db.Repository[model.Message], logger *zap.Logger) MessageRepository {
	return &messageRepository{
		mongoRepo: repo,
		logger:    logger,
	}
}

func (m *messageRepository) InsertMessage(ctx context.Context, msg *model.Message) (*model.Message, error) {
	if msg == nil {
		return nil, ErrInvalidMessage
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = time.Now().UTC()

	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := waitForRetry(ctx, attempt); err != nil {
				return nil, err
			}
		}

		_, err := m.mongoRepo.Create(ctx, *msg)
		if err == nil {
			m.logger.Info("message inserted",
				zap.String("message_id", msg.ID.Hex()),
				zap.String("kind", msg.Kind),
				zap.Int("attempt", attempt+1),
			)
			return msg, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}

		m.logger.Warn("insert attempt failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxRetries),
		)
	}

	m.logger.Error("failed to insert message after all retries",
		zap.Error(lastErr),
		zap.String("message_id", msg.ID.Hex()),
	)

	return nil, fmt.Errorf("insert message failed: %w", lastErr)
}

func (m *messageRepository) DirectHistory(ctx context.Context, a, b primitive.ObjectID) ([]model.Message, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	).Build()

	msgs, err := m.mongoRepo.Find(ctx, filter, "created_at", false, historyLimit)
	if err != nil {
		return nil, m.handleReadError(err, "direct history")
	}
	return msgs, nil
}

func (m *messageRepository) LatestDirect(ctx context.Context, me primitive.ObjectID) ([]model.Message, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	// receiver != null keeps group messages out of the inbox scan
	filter := db.NewFilter().
		Ne("receiver", nil).
		Or(bson.M{"sender": me}, bson.M{"receiver": me}).
		Build()

	msgs, err := m.mongoRepo.Find(ctx, filter, "created_at", true, inboxScanLimit)
	if err != nil {
		return nil, m.handleReadError(err, "latest direct")
	}
	return msgs, nil
}

func (m *messageRepository) GroupHistory(ctx context.Context, groupID primitive.ObjectID) ([]model.Message, error) {
	ctx, cancel := ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("conversation", groupID).Build()

	msgs, err := m.mongoRepo.Find(ctx, filter, "created_at", false, historyLimit)
	if err != nil {
		return nil, m.handleReadError(err, "group history")
	}
	return msgs, nil
}

func (m *messageRepository) MarkDirectRead(ctx context.Context, sender, receiver primitive.ObjectID) (int64, error) {
	ctx, cancel := ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("sender", sender).
		Eq("receiver", receiver).
		Null("read_at").
		Build()

	result, err := m.mongoRepo.UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"read_at": time.Now().UTC()},
	})
	if err != nil {
		m.logger.Error("failed to mark messages read",
			zap.Error(err),
			zap.String("sender", sender.Hex()),
			zap.String("receiver", receiver.Hex()),
		)
		return 0, fmt.Errorf("mark read failed: %w", err)
	}

	return result.ModifiedCount, nil
}

func (m *messageRepository) handleReadError(err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.String("op", op))
		return ErrOperationTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	m.logger.Error("read failed", zap.Error(err), zap.String("op", op))
	return fmt.Errorf("%s failed: %w", op, err)
}

// -----------------------------------------------------------------------------
// Shared helpers
// -----------------------------------------------------------------------------

func ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func waitForRetry(ctx context.Context, attempt int) error {
	delay := time.Duration(1<<uint(attempt)) * baseRetryDelay
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
