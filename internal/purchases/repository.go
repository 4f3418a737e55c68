package purchases

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for the purchases collection.
type Repository interface {
	Create(ctx context.Context, purchase *Purchase) error
	List(ctx context.Context) ([]Purchase, error)
}

const purchaseCollectionName = "purchases"

type purchaseDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Customer Customer           `bson:"customer"`
	Products bson.A             `bson:"products"`
	Total    float64            `bson:"total"`
	Date     time.Time          `bson:"date"`
}

func (d purchaseDocument) toPurchase() Purchase {
	items := make([]any, len(d.Products))
	for i, item := range d.Products {
		items[i] = normalize(item)
	}
	return Purchase{
		ID:       d.ID.Hex(),
		Customer: d.Customer,
		Products: items,
		Total:    d.Total,
		Date:     d.Date.UTC(),
	}
}

// normalize turns nested driver types back into plain maps and slices so the
// snapshot encodes to JSON the way it was received.
func normalize(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	default:
		return v
	}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB backed repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(purchaseCollectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, purchase *Purchase) error {
	doc := purchaseDocument{
		Customer: purchase.Customer,
		Products: bson.A(purchase.Products),
		Total:    purchase.Total,
		Date:     purchase.Date,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("purchases: insert: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		purchase.ID = oid.Hex()
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Purchase, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("purchases: list: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []purchaseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("purchases: decode: %w", err)
	}
	purchases := make([]Purchase, len(docs))
	for i, doc := range docs {
		purchases[i] = doc.toPurchase()
	}
	return purchases, nil
}

var _ Repository = (*MongoRepository)(nil)
