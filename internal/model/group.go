package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupChat is a group chat document with embedded participants.
type GroupChat struct {
	ID            primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	GroupID       int64              `json:"groupId" bson:"group_id"`
	Name          string             `json:"groupName" bson:"name"`
	CreatedBy     int64              `json:"createdBy" bson:"created_by"`
	Participants  []GroupParticipant `json:"participants" bson:"participants"`
	LastMessage   string             `json:"lastMessage" bson:"last_message"`
	LastMessageAt time.Time          `json:"lastMessageTime" bson:"last_message_at"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
}

// GroupParticipant is one member of a group chat.
type GroupParticipant struct {
	UserID   int64     `json:"userId" bson:"user_id"`
	FullName string    `json:"fullName" bson:"full_name"`
	Role     string    `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joinedAt" bson:"joined_at"`
}

// Group participant roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)
