package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Repository defines persistence operations for the users collection.
type Repository interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

const userCollectionName = "users"

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Password string             `bson:"password,omitempty"`
	Phone    string             `bson:"phone"`
}

func (d userDocument) toUser() User {
	return User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Phone:        d.Phone,
	}
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs a MongoDB backed repository.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(userCollectionName)}
}

// EnsureIndexes installs the unique indexes on username and email.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("users: ensure indexes: %w", err)
	}
	return nil
}

// ExistsByUsernameOrEmail reports whether any user holds username or email.
func (r *MongoRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("users: count: %w", err)
	}
	return count > 0, nil
}

// Create inserts the user and fills in its identifier.
func (r *MongoRepository) Create(ctx context.Context, user *User) error {
	doc := userDocument{
		Username: user.Username,
		Email:    user.Email,
		Password: user.PasswordHash,
		Phone:    user.Phone,
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserExists
		}
		return fmt.Errorf("users: insert: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

// FindByUsername fetches a user including its password hash.
func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("users: find: %w", err)
	}
	user := doc.toUser()
	return &user, nil
}

// List returns every user with the password field projected out.
func (r *MongoRepository) List(ctx context.Context) ([]User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("users: decode: %w", err)
	}
	users := make([]User, len(docs))
	for i, doc := range docs {
		users[i] = doc.toUser()
	}
	return users, nil
}

var _ Repository = (*MongoRepository)(nil)
