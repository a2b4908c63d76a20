package blotter

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("blotter not found")

const collectionName = "blotter"

type Repository interface {
	Create(ctx context.Context, b *Blotter) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Blotter, error)
	List(ctx context.Context, status Status) ([]Blotter, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Blotter, error)
	IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Blotter, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the public-token lookup index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "publicToken", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create blotter indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, b *Blotter) error {
	res, err := r.coll.InsertOne(ctx, b)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		b.ID = oid
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Blotter, error) {
	var b Blotter
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns reports newest first, optionally filtered by status.
func (r *mongoRepository) List(ctx context.Context, status Status) ([]Blotter, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(1000)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []Blotter
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Blotter, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b Blotter
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoRepository) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Blotter, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b Blotter
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"certificationCount": 1}},
		opts,
	).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
