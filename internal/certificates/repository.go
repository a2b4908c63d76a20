package certificates

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("certificate not found")

const collectionName = "certificates"

type Repository interface {
	Create(ctx context.Context, cert *Certificate) error
	LatestByTrackingNumber(ctx context.Context, trackingNumber string) (*Certificate, error)
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes backs the latest-by-tracking-number lookup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "trackingNumber", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create certificate indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, cert *Certificate) error {
	res, err := r.coll.InsertOne(ctx, cert)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		cert.ID = oid
	}
	return nil
}

// LatestByTrackingNumber returns the newest upload for the tracking number.
func (r *mongoRepository) LatestByTrackingNumber(ctx context.Context, trackingNumber string) (*Certificate, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var cert Certificate
	err := r.coll.FindOne(ctx, bson.M{"trackingNumber": trackingNumber}, opts).Decode(&cert)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}
