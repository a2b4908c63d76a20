package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the identifier.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateTracking surfaces the store's uniqueness constraint on
	// tracking numbers; a duplicate create must never silently overwrite.
	ErrDuplicateTracking = errors.New("tracking number already exists")
)

const collectionName = "documents"

type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*Document, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Document, error)
	IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Document, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	DueForReminder(ctx context.Context, from, to time.Time) ([]Document, error)
	MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique tracking-number index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "trackingNumber", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create documents indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, doc *Document) error {
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTracking
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	var doc Document
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *mongoRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Document, error) {
	var doc Document
	err := r.coll.FindOne(ctx, bson.M{"trackingNumber": trackingNumber}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(1000)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *mongoRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc Document
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// IncrementCertification bumps the counter with a store-level $inc so
// concurrent verification events never lose updates.
func (r *mongoRepository) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc Document
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"certificationCount": 1}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
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

func (r *mongoRepository) DueForReminder(ctx context.Context, from, to time.Time) ([]Document, error) {
	filter := bson.M{
		"appointmentDatetime": bson.M{"$gte": from, "$lt": to},
		"reminderSentAt":      bson.M{"$exists": false},
		"status":              bson.M{"$ne": StatusRejected},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *mongoRepository) MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"reminderSentAt": at}})
	return err
}
