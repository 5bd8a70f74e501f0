package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

const notificationPageSize = 20

type notificationRepository struct {
	con           *mongo.Database
	notifications *db.Repository[model.Notification]
	counters      *db.Counters
	logger        *zap.Logger
}

type NotificationRepository interface {
	Create(ctx context.Context, recipientID, senderID int64, kind, text string) (int64, error)
	ListForUser(ctx context.Context, userID int64, page int64) (*db.PaginatedResult[model.Notification], error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) error
}

func NewNotificationRepository(con *mongo.Database, notifications *db.Repository[model.Notification], counters *db.Counters, logger *zap.Logger) NotificationRepository {
	return &notificationRepository{
		con:           con,
		notifications: notifications,
		counters:      counters,
		logger:        logger,
	}
}

func (n *notificationRepository) Create(ctx context.Context, recipientID, senderID int64, kind, text string) (int64, error) {
	notificationID, err := n.counters.Next(ctx, db.SeqNotifications)
	if err != nil {
		return 0, fmt.Errorf("allocate notification id: %w", err)
	}

	notification := model.Notification{
		NotificationID: notificationID,
		RecipientID:    recipientID,
		SenderID:       senderID,
		Type:           kind,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := n.notifications.Create(ctx, notification); err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	n.logger.Debug("notification created",
		zap.Int64("notification", notificationID),
		zap.Int64("recipient", recipientID),
		zap.String("type", kind),
	)
	return notificationID, nil
}

func (n *notificationRepository) ListForUser(ctx context.Context, userID int64, page int64) (*db.PaginatedResult[model.Notification], error) {
	return n.notifications.FindWithPagination(ctx,
		bson.M{"recipient_id": userID},
		db.PaginationParams{
			Page:     page,
			PageSize: notificationPageSize,
			SortBy:   "created_at",
			SortDesc: true,
		})
}

func (n *notificationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return n.notifications.Count(ctx, bson.M{"recipient_id": userID, "read": false})
}

func (n *notificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) error {
	result, err := n.notifications.Update(ctx,
		bson.M{"notification_id": notificationID, "recipient_id": userID},
		bson.M{"read": true},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (n *notificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := n.notifications.UpdateMany(ctx,
		bson.M{"recipient_id": userID, "read": false},
		bson.M{"read": true},
	)
	return err
}
