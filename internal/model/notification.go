package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds.
const (
	NotificationMessage       = "message"
	NotificationFriendRequest = "friend_request"
	NotificationGroupAdded    = "group_added"
)

// Notification is a persisted notification for a user; the socket layer
// additionally emits a lightweight new_notification event when the
// recipient is connected.
type Notification struct {
	ID             primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	NotificationID int64              `json:"id" bson:"notification_id"`
	RecipientID    int64              `json:"recipientId" bson:"recipient_id"`
	SenderID       int64              `json:"senderId" bson:"sender_id"`
	Type           string             `json:"type" bson:"type"`
	Text           string             `json:"text" bson:"text"`
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"createdAt" bson:"created_at"`
}
