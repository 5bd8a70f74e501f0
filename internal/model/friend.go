package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Friend request lifecycle states.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest is a pending/settled friend request document.
type FriendRequest struct {
	ID         primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	RequestID  int64              `json:"requestId" bson:"request_id"`
	SenderID   int64              `json:"senderId" bson:"sender_id"`
	ReceiverID int64              `json:"receiverId" bson:"receiver_id"`
	Status     string             `json:"status" bson:"status"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}

// Friendship links two users; the pair is stored in ascending order so
// one document covers both directions.
type Friendship struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserLow   int64              `json:"userLow" bson:"user_low"`
	UserHigh  int64              `json:"userHigh" bson:"user_high"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// Friend is the projection returned to the friends list and consumed by
// the presence tracker when broadcasting status changes.
type Friend struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	PicURL string `json:"profilePic"`
	Online bool   `json:"online"`
}
