package configuration

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/OmerBirol/lenslight-tr/internal/assets"
	"github.com/OmerBirol/lenslight-tr/internal/db"
	"github.com/OmerBirol/lenslight-tr/internal/handler"
	"github.com/OmerBirol/lenslight-tr/internal/hub"
	"github.com/OmerBirol/lenslight-tr/internal/model"
	"github.com/OmerBirol/lenslight-tr/internal/repo"
	"github.com/OmerBirol/lenslight-tr/internal/service"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Container struct {
	MessageHandler handler.MessageHandler
	GroupHandler   handler.GroupHandler
	InviteHandler  handler.InviteHandler
	Hub            *hub.Hub
	Config         Config
	Logger         *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer() (*Container, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, err
	}

	logger, _ := zap.NewProduction()

	messageRepo := repo.NewMessageRepository(
		db.NewRepository[model.Message](con, config.ChatDatabase.MessagesCollection), logger)
	conversationRepo := repo.NewConversationRepository(
		db.NewRepository[model.Conversation](con, config.ChatDatabase.ConversationsCollection), logger)
	inviteRepo := repo.NewInviteRepository(
		db.NewRepository[model.GroupInvite](con, config.ChatDatabase.InvitesCollection), logger)
	userRepo := repo.NewUserRepository(
		db.NewRepository[model.User](con, config.ChatDatabase.UsersCollection))

	// duplicate-pending-invite protection lives in the collection index
	indexCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := inviteRepo.EnsureIndexes(indexCtx); err != nil {
		logger.Warn("failed to ensure invite indexes", zap.Error(err))
	}

	uploader, err := assets.NewCloudinaryUploader(
		config.Cloudinary.CloudName,
		config.Cloudinary.ApiKey,
		config.Cloudinary.ApiSecret,
		config.Cloudinary.Folder,
	)
	if err != nil {
		return nil, err
	}

	messageService := service.NewMessageService(
		messageRepo, conversationRepo, userRepo, uploader,
		config.Limits.MaxImageBytes, logger)
	groupService := service.NewGroupService(
		conversationRepo, inviteRepo, userRepo, messageRepo, logger)

	// the chat dispatcher and hub reference each other; wire in two steps
	chatHandler := hub.NewChatHandler(messageService, groupService)
	liveHub := hub.NewHub(chatHandler)
	chatHandler.SetHub(liveHub)
	messageService.SetNotifier(liveHub)
	groupService.SetNotifier(liveHub)

	return &Container{
		MessageHandler: handler.NewMessageHandler(messageService),
		GroupHandler:   handler.NewGroupHandler(groupService, messageService),
		InviteHandler:  handler.NewInviteHandler(groupService),
		Hub:            liveHub,
		Config:         *config,
		Logger:         logger,
		mongoClient:    con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
