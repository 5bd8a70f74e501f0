package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/hub"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

var (
	ErrInvalidMessage   = errors.New("invalid message: body cannot be empty")
	ErrInvalidUser      = errors.New("invalid user id")
	ErrOperationTimeout = errors.New("operation timeout exceeded")
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultReadTimeout  = 30 * time.Second

	maxRetries     = 3
	baseRetryDelay = 100 * time.Millisecond
	maxRetryDelay  = 2 * time.Second

	messagePreviewLimit = 50
	historyPageSize     = 15
)

type messageRepository struct {
	con      *mongo.Database
	messages *db.Repository[model.Message]
	counters *db.Counters
	logger   *zap.Logger
}

type MessageRepository interface {
	// SaveDirectMessage persists a direct message and upserts the owning
	// conversation's last-message summary, returning both durable ids.
	SaveDirectMessage(ctx context.Context, senderID, receiverID int64, body string) (hub.SavedMessage, error)

	// SaveGroupMessage persists a group message and refreshes the
	// group's last-message summary.
	SaveGroupMessage(ctx context.Context, groupID, senderID int64, body string) (int64, error)

	GetConversationMessages(ctx context.Context, conversationID int64, page int64) (*db.PaginatedResult[model.Message], error)
	GetGroupMessages(ctx context.Context, groupID int64, limit int64) ([]model.Message, error)
	GetUserConversations(ctx context.Context, userID int64) ([]model.Conversation, error)
	MarkConversationRead(ctx context.Context, conversationID, readerID int64) error
}

func NewMessageRepository(con *mongo.Database, messages *db.Repository[model.Message], counters *db.Counters, logger *zap.Logger) MessageRepository {
	return &messageRepository{
		con:      con,
		messages: messages,
		counters: counters,
		logger:   logger,
	}
}

func (m *messageRepository) SaveDirectMessage(ctx context.Context, senderID, receiverID int64, body string) (hub.SavedMessage, error) {
	if body == "" {
		return hub.SavedMessage{}, ErrInvalidMessage
	}
	if senderID <= 0 || receiverID <= 0 {
		return hub.SavedMessage{}, ErrInvalidUser
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	conversationID, err := m.upsertConversation(ctx, senderID, receiverID, body)
	if err != nil {
		return hub.SavedMessage{}, fmt.Errorf("upsert conversation: %w", err)
	}

	messageID, err := m.counters.Next(ctx, db.SeqMessages)
	if err != nil {
		return hub.SavedMessage{}, fmt.Errorf("allocate message id: %w", err)
	}

	msg := model.Message{
		MessageID:      messageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     m.lookupName(ctx, senderID),
		Body:           body,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}

	if err := m.insertWithRetry(ctx, &msg); err != nil {
		return hub.SavedMessage{}, err
	}

	m.logger.Info("direct message saved",
		zap.Int64("message_id", messageID),
		zap.Int64("conversation_id", conversationID),
		zap.Int64("sender", senderID),
	)
	return hub.SavedMessage{MessageID: messageID, ConversationID: conversationID}, nil
}

func (m *messageRepository) SaveGroupMessage(ctx context.Context, groupID, senderID int64, body string) (int64, error) {
	if body == "" {
		return 0, ErrInvalidMessage
	}
	if groupID <= 0 || senderID <= 0 {
		return 0, ErrInvalidUser
	}

	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	messageID, err := m.counters.Next(ctx, db.SeqMessages)
	if err != nil {
		return 0, fmt.Errorf("allocate message id: %w", err)
	}

	msg := model.Message{
		MessageID:  messageID,
		GroupID:    groupID,
		SenderID:   senderID,
		SenderName: m.lookupName(ctx, senderID),
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	if err := m.insertWithRetry(ctx, &msg); err != nil {
		return 0, err
	}

	_, err = m.con.Collection("groups").UpdateOne(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$set": bson.M{
			"last_message":    preview(body),
			"last_message_at": msg.CreatedAt,
		}},
	)
	if err != nil {
		m.logger.Warn("group last-message update failed",
			zap.Int64("group", groupID), zap.Error(err))
	}

	m.logger.Info("group message saved",
		zap.Int64("message_id", messageID),
		zap.Int64("group", groupID),
		zap.Int64("sender", senderID),
	)
	return messageID, nil
}

func (m *messageRepository) GetConversationMessages(ctx context.Context, conversationID int64, page int64) (*db.PaginatedResult[model.Message], error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Eq("conversation_id", conversationID).Build()

	result, err := m.messages.FindWithPagination(ctx, filter, db.PaginationParams{
		Page:     page,
		PageSize: historyPageSize,
		SortBy:   "created_at",
		SortDesc: true,
	})
	if err != nil {
		return nil, m.handleReadError(err, conversationID)
	}
	return result, nil
}

func (m *messageRepository) GetGroupMessages(ctx context.Context, groupID int64, limit int64) ([]model.Message, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	result, err := m.messages.FindWithPagination(ctx,
		db.NewFilter().Eq("group_id", groupID).Build(),
		db.PaginationParams{
			Page:     1,
			PageSize: limit,
			SortBy:   "created_at",
			SortDesc: true,
		})
	if err != nil {
		return nil, m.handleReadError(err, groupID)
	}
	return result.Data, nil
}

func (m *messageRepository) GetUserConversations(ctx context.Context, userID int64) ([]model.Conversation, error) {
	ctx, cancel := m.ensureTimeout(ctx, defaultReadTimeout)
	defer cancel()

	filter := db.NewFilter().Or(
		bson.M{"participant_low": userID},
		bson.M{"participant_high": userID},
	).Build()

	cursor, err := m.con.Collection("conversations").Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []model.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return conversations, nil
}

func (m *messageRepository) MarkConversationRead(ctx context.Context, conversationID, readerID int64) error {
	ctx, cancel := m.ensureTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	filter := db.NewFilter().
		Eq("conversation_id", conversationID).
		Ne("sender_id", readerID).
		Eq("read", false).
		Build()

	_, err := m.messages.UpdateMany(ctx, filter, bson.M{"read": true})
	return err
}

// -----------------------------------------------------------------
// Private helpers
// -----------------------------------------------------------------

// upsertConversation finds or creates the pair conversation and
// refreshes its last-message summary.
func (m *messageRepository) upsertConversation(ctx context.Context, senderID, receiverID int64, body string) (int64, error) {
	low, high := senderID, receiverID
	if low > high {
		low, high = high, low
	}

	collection := m.con.Collection("conversations")
	pairFilter := bson.M{"participant_low": low, "participant_high": high}
	now := time.Now().UTC()

	var existing model.Conversation
	err := collection.FindOne(ctx, pairFilter).Decode(&existing)
	if err == nil {
		_, err = collection.UpdateOne(ctx, pairFilter, bson.M{"$set": bson.M{
			"last_message":    preview(body),
			"last_message_at": now,
		}})
		return existing.ConversationID, err
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}

	conversationID, err := m.counters.Next(ctx, db.SeqConversations)
	if err != nil {
		return 0, err
	}

	_, err = collection.InsertOne(ctx, model.Conversation{
		ConversationID:  conversationID,
		ParticipantLow:  low,
		ParticipantHigh: high,
		LastMessage:     preview(body),
		LastMessageAt:   now,
		CreatedAt:       now,
	})
	if err != nil {
		return 0, err
	}
	return conversationID, nil
}

func (m *messageRepository) insertWithRetry(ctx context.Context, msg *model.Message) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if err := m.waitForRetry(ctx, attempt); err != nil {
				return err
			}
			m.logger.Warn("retrying message insert",
				zap.Int64("message_id", msg.MessageID),
				zap.Int("attempt", attempt+1),
			)
		}

		if _, err := m.messages.Create(ctx, *msg); err != nil {
			lastErr = err
			if !m.isRetryableError(err) {
				break
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("insert message failed: %w", lastErr)
}

func (m *messageRepository) lookupName(ctx context.Context, userID int64) string {
	var user model.User
	err := m.con.Collection("users").FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		return ""
	}
	return user.FullName
}

func (m *messageRepository) ensureTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hadDeadline := ctx.Deadline(); hadDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (m *messageRepository) waitForRetry(ctx context.Context, attempt int) error {
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

func (m *messageRepository) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}

func (m *messageRepository) handleReadError(err error, id int64) error {
	if errors.Is(err, context.DeadlineExceeded) {
		m.logger.Error("read timeout", zap.Int64("id", id))
		return ErrOperationTimeout
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	m.logger.Error("read failed", zap.Error(err), zap.Int64("id", id))
	return fmt.Errorf("read messages failed: %w", err)
}

func preview(body string) string {
	if len(body) > messagePreviewLimit {
		return body[:messagePreviewLimit] + "..."
	}
	return body
}
