package mongo

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/usermgmt/admin-console/internal/core/ports"
)

func TestStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get existing key", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "token"},
			{Key: "value", Value: "abc.def.ghi"},
		}))

		got, err := store.Get(context.Background(), "token")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != "abc.def.ghi" {
			t.Fatalf("Get = %q", got)
		}
	})

	mt.Run("get missing key", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		ns := mt.DB.Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := store.Get(context.Background(), "token"); !errors.Is(err, ports.ErrKeyNotFound) {
			t.Fatalf("expected ErrKeyNotFound, got %v", err)
		}
	})

	mt.Run("set upserts", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "token"}}}},
		))

		if err := store.Set(context.Background(), "token", "abc.def.ghi"); err != nil {
			t.Fatalf("Set: %v", err)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "update" {
			t.Fatalf("expected an update command, got %+v", started)
		}
	})

	mt.Run("set failure", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 121, Message: "document failed validation",
		}))

		if err := store.Set(context.Background(), "token", "abc"); err == nil {
			t.Fatalf("expected error")
		}
	})

	mt.Run("remove", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := store.Remove(context.Background(), "token"); err != nil {
			t.Fatalf("Remove: %v", err)
		}
	})

	mt.Run("ping", func(mt *mtest.T) {
		store := NewStore(mt.DB, mt.Coll.Name())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		if err := store.Ping(context.Background()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})
}
