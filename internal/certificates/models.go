package certificates

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Certificate is one uploaded certificate file for a tracking number. Repeat
// uploads for the same tracking number are kept; lookups resolve the newest
// one and older records remain as history.
type Certificate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingNumber string             `bson:"trackingNumber" json:"trackingNumber"`
	OriginalName   string             `bson:"originalname" json:"originalname"`
	FileURL        string             `bson:"fileUrl" json:"fileUrl"`
	FileKey        string             `bson:"fileKey" json:"-"`
	UploadedBy     string             `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// Metadata is the public lookup shape; it omits storage details.
type Metadata struct {
	TrackingNumber string    `json:"trackingNumber"`
	OriginalName   string    `json:"originalname"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (c *Certificate) AsMetadata() Metadata {
	return Metadata{
		TrackingNumber: c.TrackingNumber,
		OriginalName:   c.OriginalName,
		CreatedAt:      c.CreatedAt,
	}
}
