package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user document. UserID is the durable numeric id
// allocated from the counters collection; it is the id the wire
// protocol speaks, independent of Mongo's ObjectID.
type User struct {
	ID           primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID       int64              `json:"userId" bson:"user_id"`
	FullName     string             `json:"fullName" bson:"full_name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	PicURL       string             `json:"profilePic" bson:"pic_url"`
	Status       string             `json:"status" bson:"status"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt    *time.Time         `json:"updatedAt" bson:"updated_at"`
}

// Token is a persisted access token record; socket and HTTP auth both
// require the presented JWT to still exist here (logout revokes it).
type Token struct {
	ID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Token     string             `json:"-" bson:"token"`
	UserID    int64              `json:"userId" bson:"user_id"`
	Email     string             `json:"email" bson:"email"`
	FullName  string             `json:"fullName" bson:"full_name"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expires_at"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}
