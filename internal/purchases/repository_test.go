package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoListRestoresLineItems(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("mixed line items decode to plain values", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		oid := primitive.NewObjectID()
		date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		ns := mt.DB.Name() + "." + purchaseCollectionName
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "customer", Value: bson.D{{Key: "name", Value: "Budi"}}},
			{Key: "products", Value: bson.A{
				"sku-1",
				3.0,
				nil,
				bson.D{{Key: "qty", Value: 2.0}, {Key: "tags", Value: bson.A{"promo"}}},
			}},
			{Key: "total", Value: 100.0},
			{Key: "date", Value: primitive.NewDateTimeFromTime(date)},
		}))

		list, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		got := list[0]
		require.Equal(mt, oid.Hex(), got.ID)
		require.Equal(mt, "Budi", got.Customer.Name)
		require.True(mt, date.Equal(got.Date))
		require.Equal(mt, []any{
			"sku-1",
			3.0,
			nil,
			map[string]any{"qty": 2.0, "tags": []any{"promo"}},
		}, got.Products)
	})

	mt.Run("insert accepts non-object items", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &Purchase{Products: []any{"sku-1", 3.0}, Total: 5, Date: time.Now().UTC()}
		require.NoError(mt, repo.Create(context.Background(), p))
		require.NotEmpty(mt, p.ID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		require.Equal(mt, "insert", started.CommandName)
	})
}
