package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("setting not found")

const collectionName = "settings"

type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Upsert(ctx context.Context, key string, value interface{}) (*Setting, error)
	All(ctx context.Context) ([]Setting, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes enforces one record per key.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create settings indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Get(ctx context.Context, key string) (*Setting, error) {
	var s Setting
	err := r.coll.FindOne(ctx, bson.M{"key": key}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoRepository) Upsert(ctx context.Context, key string, value interface{}) (*Setting, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var s Setting
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now()}},
		opts,
	).Decode(&s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoRepository) All(ctx context.Context) ([]Setting, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []Setting
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
