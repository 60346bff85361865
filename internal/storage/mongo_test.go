package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoEngine_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get found", func(mt *mtest.T) {
		e := NewMongoEngine(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "demo:user"},
			{Key: "value", Value: `{"id":1,"username":"demoUser"}`},
		}))
		v, found, err := e.Get(ctx, "demo:user")
		require.NoError(mt, err)
		require.True(mt, found)
		require.Equal(mt, `{"id":1,"username":"demoUser"}`, v)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		e := NewMongoEngine(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, found, err := e.Get(ctx, "nope")
		require.NoError(mt, err)
		require.False(mt, found)
	})

	mt.Run("set upserts", func(mt *mtest.T) {
		e := NewMongoEngine(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "k"}}}},
		))
		require.NoError(mt, e.Set(ctx, "k", "[]"))
	})

	mt.Run("remove", func(mt *mtest.T) {
		e := NewMongoEngine(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, e.Remove(ctx, "k"))
	})

	mt.Run("server error", func(mt *mtest.T) {
		e := NewMongoEngine(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom", Name: "BadValue"}))
		_, _, err := e.Get(ctx, "k")
		require.Error(mt, err)
	})
}
