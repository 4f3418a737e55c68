package products

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Repository defines persistence operations for the products collection.
type Repository interface {
	Create(ctx context.Context, product *Product) error
	ExistsByProductID(ctx context.Context, productID string) (bool, error)
	List(ctx context.Context) ([]Product, error)
	Replace(ctx context.Context, id string, in ReplaceInput) (*Product, error)
	// DecrementQuantity subtracts qty only when stock covers it, in a single
	// conditional write.
	DecrementQuantity(ctx context.Context, productID string, qty int64) (*Product, error)
	Delete(ctx context.Context, id string) error
	DeleteByProductID(ctx context.Context, productID string) error
}

const productCollectionName = "products"

type productDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ProductID     string             `bson:"product_id"`
	Name          string             `bson:"name"`
	Type          string             `bson:"type,omitempty"`
	Price         float64            `bson:"price"`
	PurchasePrice float64            `bson:"purchasePrice"`
	Quantity      int64              `bson:"quantity"`
	Rack          string             `bson:"rack,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d productDocument) toProduct() Product {
	return Product{
		ID:            d.ID.Hex(),
		ProductID:     d.ProductID,
		Name:          d.Name,
		Type:          d.Type,
		Price:         d.Price,
		PurchasePrice: d.PurchasePrice,
		Quantity:      d.Quantity,
		Rack:          d.Rack,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB backed repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(productCollectionName)}
}

// EnsureIndexes installs the unique index on product_id.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("products: ensure indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, product *Product) error {
	now := time.Now().UTC()
	doc := productDocument{
		ProductID:     product.ProductID,
		Name:          product.Name,
		Type:          product.Type,
		Price:         product.Price,
		PurchasePrice: product.PurchasePrice,
		Quantity:      product.Quantity,
		Rack:          product.Rack,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateProductID(product.ProductID)
		}
		return fmt.Errorf("products: insert: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid.Hex()
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (r *MongoRepository) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"product_id": productID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("products: count: %w", err)
	}
	return count > 0, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	products := make([]Product, len(docs))
	for i, doc := range docs {
		products[i] = doc.toProduct()
	}
	return products, nil
}

func (r *MongoRepository) Replace(ctx context.Context, id string, in ReplaceInput) (*Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	set := bson.M{
		"name":      in.Name,
		"type":      in.Type,
		"price":     in.Price,
		"quantity":  in.Quantity,
		"rack":      in.Rack,
		"updatedAt": time.Now().UTC(),
	}
	if in.PurchasePrice != nil {
		set["purchasePrice"] = *in.PurchasePrice
	}

	var doc productDocument
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("products: replace: %w", err)
	}
	product := doc.toProduct()
	return &product, nil
}

func (r *MongoRepository) DecrementQuantity(ctx context.Context, productID string, qty int64) (*Product, error) {
	filter := bson.M{
		"product_id": productID,
		"quantity":   bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc productDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		product := doc.toProduct()
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("products: decrement: %w", err)
	}

	exists, err := r.ExistsByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	return nil, ErrInsufficientQuantity
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return shared.ErrNotFound
	}
	return r.deleteOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) DeleteByProductID(ctx context.Context, productID string) error {
	return r.deleteOne(ctx, bson.M{"product_id": productID})
}

func (r *MongoRepository) deleteOne(ctx context.Context, filter bson.M) error {
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("products: delete: %w", err)
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func duplicateProductID(productID string) error {
	return shared.Errorf(shared.ErrDuplicate, "product with product_id %q already exists", productID)
}

var _ Repository = (*MongoRepository)(nil)
