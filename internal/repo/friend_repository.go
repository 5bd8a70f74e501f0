package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

var (
	ErrRequestNotFound = errors.New("friend request not found")
	ErrRequestSettled  = errors.New("friend request already settled")
	ErrNotTheReceiver  = errors.New("only the receiver can settle a request")
	ErrAlreadyFriends  = errors.New("users are already friends")
	ErrSelfFriendship  = errors.New("cannot friend yourself")
)

// AcceptResult carries everything the HTTP layer needs to emit the
// friend_request_accepted events to both sides.
type AcceptResult struct {
	SenderID      int64
	SenderName    string
	SenderEmail   string
	ReceiverID    int64
	ReceiverName  string
	ReceiverEmail string
	RoomName      string
}

type friendRepository struct {
	con      *mongo.Database
	requests *db.Repository[model.FriendRequest]
	counters *db.Counters
	logger   *zap.Logger
}

type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error)
	PendingForUser(ctx context.Context, userID int64) ([]model.FriendRequest, error)
	AcceptRequest(ctx context.Context, requestID, userID int64) (*AcceptResult, error)
	RejectRequest(ctx context.Context, requestID, userID int64) error
	FriendIDs(ctx context.Context, userID int64) ([]int64, error)
	AreFriends(ctx context.Context, a, b int64) (bool, error)
	GetFriends(ctx context.Context, userID int64) ([]model.Friend, error)
}

func NewFriendRepository(con *mongo.Database, requests *db.Repository[model.FriendRequest], counters *db.Counters, logger *zap.Logger) FriendRepository {
	return &friendRepository{con: con, requests: requests, counters: counters, logger: logger}
}

func (r *friendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*model.FriendRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfFriendship
	}

	friends, err := r.AreFriends(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	// An identical pending request is returned as-is rather than
	// duplicated.
	existing, err := r.requests.FindOne(ctx, bson.M{
		"sender_id":   senderID,
		"receiver_id": receiverID,
		"status":      model.FriendRequestPending,
	})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	requestID, err := r.counters.Next(ctx, db.SeqFriendRequests)
	if err != nil {
		return nil, fmt.Errorf("allocate request id: %w", err)
	}

	request := model.FriendRequest{
		RequestID:  requestID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     model.FriendRequestPending,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("insert friend request: %w", err)
	}

	r.logger.Info("friend request created",
		zap.Int64("request", requestID),
		zap.Int64("sender", senderID),
		zap.Int64("receiver", receiverID),
	)
	return &request, nil
}

func (r *friendRepository) PendingForUser(ctx context.Context, userID int64) ([]model.FriendRequest, error) {
	return r.requests.FindAll(ctx, bson.M{
		"receiver_id": userID,
		"status":      model.FriendRequestPending,
	})
}

// AcceptRequest settles the request, records the friendship and returns
// both sides' details for the paired accepted events.
func (r *friendRepository) AcceptRequest(ctx context.Context, requestID, userID int64) (*AcceptResult, error) {
	request, err := r.requests.FindOne(ctx, bson.M{"request_id": requestID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if request.ReceiverID != userID {
		return nil, ErrNotTheReceiver
	}
	if request.Status != model.FriendRequestPending {
		return nil, ErrRequestSettled
	}

	if _, err := r.requests.Update(ctx,
		bson.M{"request_id": requestID},
		bson.M{"status": model.FriendRequestAccepted},
	); err != nil {
		return nil, fmt.Errorf("settle request: %w", err)
	}

	low, high := request.SenderID, request.ReceiverID
	if low > high {
		low, high = high, low
	}
	_, err = r.con.Collection("friendships").UpdateOne(ctx,
		bson.M{"user_low": low, "user_high": high},
		bson.M{"$setOnInsert": model.Friendship{
			UserLow:   low,
			UserHigh:  high,
			CreatedAt: time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("record friendship: %w", err)
	}

	sender, err := r.lookupUser(ctx, request.SenderID)
	if err != nil {
		return nil, err
	}
	receiver, err := r.lookupUser(ctx, request.ReceiverID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("friend request accepted",
		zap.Int64("request", requestID),
		zap.Int64("sender", request.SenderID),
		zap.Int64("receiver", request.ReceiverID),
	)

	return &AcceptResult{
		SenderID:      sender.UserID,
		SenderName:    sender.FullName,
		SenderEmail:   sender.Email,
		ReceiverID:    receiver.UserID,
		ReceiverName:  receiver.FullName,
		ReceiverEmail: receiver.Email,
		RoomName:      room.Direct(sender.UserID, receiver.UserID).ID(),
	}, nil
}

func (r *friendRepository) RejectRequest(ctx context.Context, requestID, userID int64) error {
	request, err := r.requests.FindOne(ctx, bson.M{"request_id": requestID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if request.ReceiverID != userID {
		return ErrNotTheReceiver
	}
	if request.Status != model.FriendRequestPending {
		return ErrRequestSettled
	}

	_, err = r.requests.Update(ctx,
		bson.M{"request_id": requestID},
		bson.M{"status": model.FriendRequestRejected},
	)
	return err
}

func (r *friendRepository) FriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	cursor, err := r.con.Collection("friendships").Find(ctx,
		db.NewFilter().Or(
			bson.M{"user_low": userID},
			bson.M{"user_high": userID},
		).Build(),
	)
	if err != nil {
		return nil, fmt.Errorf("find friendships: %w", err)
	}
	defer cursor.Close(ctx)

	var friendships []model.Friendship
	if err := cursor.All(ctx, &friendships); err != nil {
		return nil, fmt.Errorf("decode friendships: %w", err)
	}

	return lo.Map(friendships, func(f model.Friendship, _ int) int64 {
		if f.UserLow == userID {
			return f.UserHigh
		}
		return f.UserLow
	}), nil
}

func (r *friendRepository) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	low, high := a, b
	if low > high {
		low, high = high, low
	}
	count, err := r.con.Collection("friendships").CountDocuments(ctx,
		bson.M{"user_low": low, "user_high": high})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFriends projects the friends list with the persisted online flag,
// the shape the presence tracker broadcasts against.
func (r *friendRepository) GetFriends(ctx context.Context, userID int64) ([]model.Friend, error) {
	ids, err := r.FriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []model.Friend{}, nil
	}

	cursor, err := r.con.Collection("users").Find(ctx,
		db.NewFilter().In("user_id", ids).Build())
	if err != nil {
		return nil, fmt.Errorf("find friends: %w", err)
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode friends: %w", err)
	}

	return lo.Map(users, func(u model.User, _ int) model.Friend {
		return model.Friend{
			ID:     u.UserID,
			Name:   u.FullName,
			Email:  u.Email,
			PicURL: u.PicURL,
			Online: u.Status == event.StatusOnline,
		}
	}), nil
}

func (r *friendRepository) lookupUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := r.con.Collection("users").FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
