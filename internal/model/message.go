package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a chat message document. Exactly one of ConversationID
// (direct chats) or GroupID (group chats) is set.
type Message struct {
	ID             primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	MessageID      int64              `json:"id" bson:"message_id"`
	ConversationID int64              `json:"conversationId,omitempty" bson:"conversation_id,omitempty"`
	GroupID        int64              `json:"groupId,omitempty" bson:"group_id,omitempty"`
	SenderID       int64              `json:"senderId" bson:"sender_id"`
	SenderName     string             `json:"senderName" bson:"sender_name"`
	Body           string             `json:"message" bson:"body"`
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"timestamp" bson:"created_at"`
}

// Conversation is the direct-chat summary document, one per user pair.
// ParticipantLow/High hold the pair in ascending order so the pair key
// is stable regardless of who messaged first.
type Conversation struct {
	ID              primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ConversationID  int64              `json:"conversationId" bson:"conversation_id"`
	ParticipantLow  int64              `json:"participant1" bson:"participant_low"`
	ParticipantHigh int64              `json:"participant2" bson:"participant_high"`
	LastMessage     string             `json:"lastMessage" bson:"last_message"`
	LastMessageAt   time.Time          `json:"lastMessageTime" bson:"last_message_at"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
}
