package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterBuilderComposes(t *testing.T) {
	filter := NewFilter().
		Eq("user_id", int64(7)).
		Ne("status", "offline").
		Gt("created_at", 100).
		Build()

	require.Equal(t, bson.M{
		"user_id":    int64(7),
		"status":     bson.M{"$ne": "offline"},
		"created_at": bson.M{"$gt": 100},
	}, filter)
}

func TestFilterBuilderOr(t *testing.T) {
	filter := NewFilter().Or(
		bson.M{"user_low": int64(1)},
		bson.M{"user_high": int64(1)},
	).Build()

	require.Equal(t, bson.M{
		"$or": []bson.M{
			{"user_low": int64(1)},
			{"user_high": int64(1)},
		},
	}, filter)
}

func TestFilterBuilderIgnoresEmptyOr(t *testing.T) {
	require.Equal(t, bson.M{}, NewFilter().Or().Build())
	require.Equal(t, bson.M{}, NewFilter().And().Build())
}

func TestFilterBuilderContains(t *testing.T) {
	filter := NewFilter().Contains("full_name", "ali").Build()
	require.Equal(t, bson.M{
		"full_name": bson.M{"$regex": "ali", "$options": "i"},
	}, filter)
}

func TestEmptyMatchesAll(t *testing.T) {
	require.Equal(t, bson.M{}, Empty())
}
