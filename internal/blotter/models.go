package blotter

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

// status flow: pending -> published -> investigating -> closed. As with
// document requests the flow is advisory; any declared status may be set.
const (
	StatusPending       Status = "pending"
	StatusPublished     Status = "published"
	StatusInvestigating Status = "investigating"
	StatusClosed        Status = "closed"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPublished, StatusInvestigating, StatusClosed:
		return true
	}
	return false
}

// AnonymousReporter is recorded when the reporter withholds their name.
const AnonymousReporter = "Anonymous"

// Attachment keeps only what the attachment store returned; the original
// binary is not retained server-side. Filename is set on legacy records whose
// files were stored on local disk before the store migration.
type Attachment struct {
	Filename     string `bson:"filename,omitempty" json:"filename,omitempty"`
	OriginalName string `bson:"originalname,omitempty" json:"originalname,omitempty"`
	MimeType     string `bson:"mimetype,omitempty" json:"mimetype,omitempty"`
	URL          string `bson:"url,omitempty" json:"url,omitempty"`
	PublicID     string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	Width        int    `bson:"width,omitempty" json:"width,omitempty"`
	Height       int    `bson:"height,omitempty" json:"height,omitempty"`
	Format       string `bson:"format,omitempty" json:"format,omitempty"`
}

// Blotter is an incident report.
type Blotter struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title               string             `bson:"title" json:"title"`
	Description         string             `bson:"description,omitempty" json:"description,omitempty"`
	ReporterName        string             `bson:"reporterName,omitempty" json:"reporterName,omitempty"`
	ReporterContact     string             `bson:"reporterContact,omitempty" json:"reporterContact,omitempty"`
	IncidentDate        time.Time          `bson:"incidentDate" json:"incidentDate"`
	Status              Status             `bson:"status" json:"status"`
	Attachments         []Attachment       `bson:"attachments,omitempty" json:"attachments,omitempty"`
	PublicToken         string             `bson:"publicToken,omitempty" json:"publicToken,omitempty"`
	ShowReporter        bool               `bson:"showReporter" json:"showReporter"`
	PaymentMethod       string             `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	PaymentStatus       string             `bson:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`
	PaymentProofURL     string             `bson:"paymentProofUrl,omitempty" json:"paymentProofUrl,omitempty"`
	CertificateURL      string             `bson:"certificateUrl,omitempty" json:"certificateUrl,omitempty"`
	CertificateFileName string             `bson:"certificateFileName,omitempty" json:"certificateFileName,omitempty"`
	CrimeRecordStatus   string             `bson:"crimeRecordStatus,omitempty" json:"crimeRecordStatus,omitempty"`
	CertificationCount  int                `bson:"certificationCount" json:"certificationCount"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
}
