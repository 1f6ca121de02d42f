package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citybureau/zba-events/internal/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert inserts new event", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)
		evt := testEvent(time.January, 5)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: evt.ID}}}},
		))

		created, err := store.Upsert(context.Background(), evt)
		require.NoError(mt, err)
		assert.True(mt, created)
	})

	mt.Run("upsert replaces existing event", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		created, err := store.Upsert(context.Background(), testEvent(time.January, 5))
		require.NoError(mt, err)
		assert.False(mt, created)
	})

	mt.Run("upsert surfaces write errors", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := store.Upsert(context.Background(), testEvent(time.January, 5))
		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to upsert event")
	})

	mt.Run("get decodes stored event", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)
		evt := testEvent(time.February, 2)

		raw, err := bson.Marshal(mongoEvent{ID: evt.ID, StartDate: "2022-02-02", Status: string(evt.Status), Event: evt})
		require.NoError(mt, err)
		var doc bson.D
		require.NoError(mt, bson.Unmarshal(raw, &doc))

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, doc))

		got, err := store.Get(context.Background(), evt.ID)
		require.NoError(mt, err)
		assert.Equal(mt, evt.ID, got.ID)
		assert.Equal(mt, evt.Start.Date, got.Start.Date)
		assert.Equal(mt, evt.Location, got.Location)
	})

	mt.Run("get missing event", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.Get(context.Background(), "missing")
		assert.True(mt, errors.Is(err, ErrNotFound), "error = %v", err)
	})

	mt.Run("upcoming decodes events in order", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)
		jan := testEvent(time.January, 5)
		feb := testEvent(time.February, 2)

		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		var docs []bson.D
		for _, evt := range []*mongoEvent{
			{ID: jan.ID, StartDate: "2022-01-05", Status: string(jan.Status), Event: jan},
			{ID: feb.ID, StartDate: "2022-02-02", Status: string(feb.Status), Event: feb},
		} {
			raw, err := bson.Marshal(evt)
			require.NoError(mt, err)
			var doc bson.D
			require.NoError(mt, bson.Unmarshal(raw, &doc))
			docs = append(docs, doc)
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...))

		got, err := store.Upcoming(context.Background(), jan.Start.Date)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, jan.ID, got[0].ID)
		assert.Equal(mt, feb.Start.Date, got[1].Start.Date)
	})

	mt.Run("upcoming surfaces query errors", func(mt *mtest.T) {
		store := newMongoStore(mt.Coll)

		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))

		_, err := store.Upcoming(context.Background(), event.Date{Year: 2022, Month: time.January, Day: 1})
		assert.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to query events")
	})
}
