package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sequence names for the counters collection.
const (
	SeqUsers          = "users"
	SeqMessages       = "messages"
	SeqConversations  = "conversations"
	SeqGroups         = "groups"
	SeqNotifications  = "notifications"
	SeqFriendRequests = "friend_requests"
)

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// Counters allocates durable numeric ids. The wire protocol exposes
// numeric ids, so every entity gets one from here on creation.
type Counters struct {
	collection *mongo.Collection
}

func NewCounters(db *mongo.Database) *Counters {
	return &Counters{collection: db.Collection("counters")}
}

// Next atomically increments and returns the sequence value for name.
func (c *Counters) Next(ctx context.Context, name string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counterDoc
	err := c.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}
