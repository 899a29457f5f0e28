package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFilterBuilder(t *testing.T) {
	id := primitive.NewObjectID()

	filter := NewFilter().
		Eq("type", "group").
		Ne("receiver", nil).
		Null("read_at").
		In("members", []primitive.ObjectID{id}).
		Build()

	assert.Equal(t, "group", filter["type"])
	assert.Equal(t, bson.M{"$ne": nil}, filter["receiver"])
	assert.Nil(t, filter["read_at"])
	assert.Equal(t, bson.M{"$in": []primitive.ObjectID{id}}, filter["members"])
}

func TestFilterBuilderOr(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	filter := NewFilter().Or(
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	).Build()

	clauses, ok := filter["$or"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, clauses, 2)

	// empty Or leaves the filter untouched
	assert.Empty(t, NewFilter().Or().Build())
}

func TestFilterObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	filter := NewFilter().ObjectID("_id", id.Hex()).Build()
	assert.Equal(t, id, filter["_id"])

	// malformed hex is skipped rather than matching anything
	assert.Empty(t, NewFilter().ObjectID("_id", "nope").Build())
}

func TestByID(t *testing.T) {
	id := primitive.NewObjectID()

	filter, err := ByID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, filter["_id"])

	_, err = ByID("not-an-id")
	assert.Error(t, err)
}
