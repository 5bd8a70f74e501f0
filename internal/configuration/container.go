package configuration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/handler"
	"github.com/Rojan-K/ChatAPP/internal/hub"
	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/repo"
	"github.com/Rojan-K/ChatAPP/internal/service"
)

type Container struct {
	AuthHandler         handler.AuthHandler
	UserHandler         handler.UserHandler
	FriendHandler       handler.FriendHandler
	GroupHandler        handler.GroupHandler
	MessageHandler      handler.MessageHandler
	NotificationHandler handler.NotificationHandler
	MonitorHandler      handler.MonitorHandler
	TokenManager        *auth.Manager
	Hub                 *hub.Hub
	Config              Config
	Logger              *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	con, err := db.OpenConnection(config.ChatDatabase.Uri, config.ChatDatabase.Database)
	if err != nil {
		return nil, fmt.Errorf("open mongo: %w", err)
	}

	counters := db.NewCounters(con)

	userRepo := repo.NewUserRepository(con, db.NewRepository[model.User](con, "users"), counters, logger)
	messageRepo := repo.NewMessageRepository(con, db.NewRepository[model.Message](con, "messages"), counters, logger)
	friendRepo := repo.NewFriendRepository(con, db.NewRepository[model.FriendRequest](con, "friend_requests"), counters, logger)
	groupRepo := repo.NewGroupRepository(con, db.NewRepository[model.GroupChat](con, "groups"), counters, logger)
	notificationRepo := repo.NewNotificationRepository(con, db.NewRepository[model.Notification](con, "notifications"), counters, logger)
	tokenRepo := repo.NewTokenRepository(db.NewRepository[model.Token](con, "tokens"))

	tokenManager := auth.NewManager(config.Auth.JwtSecret, config.TokenTTL(), tokenRepo)
	authService := service.NewAuthService(userRepo, tokenRepo, tokenManager, logger)

	store := repo.NewChatStore(messageRepo, userRepo, friendRepo, groupRepo, notificationRepo)
	chatHub := hub.NewHub(store, tokenManager, config.Server.AllowedOrigins, logger)
	monitorService := hub.NewMonitorService(chatHub)

	return &Container{
		AuthHandler:         handler.NewAuthHandler(authService),
		UserHandler:         handler.NewUserHandler(userRepo, friendRepo),
		FriendHandler:       handler.NewFriendHandler(friendRepo, notificationRepo, chatHub),
		GroupHandler:        handler.NewGroupHandler(groupRepo, messageRepo, chatHub),
		MessageHandler:      handler.NewMessageHandler(messageRepo, friendRepo),
		NotificationHandler: handler.NewNotificationHandler(notificationRepo),
		MonitorHandler:      handler.NewMonitorHandler(monitorService),
		TokenManager:        tokenManager,
		Hub:                 chatHub,
		Config:              *config,
		Logger:              logger,
		mongoClient:         con,
	}, nil
}

// Close gracefully shuts down all connections.
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

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
