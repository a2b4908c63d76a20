package documents

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusAccepted       Status = "accepted"
	StatusRejected       Status = "rejected"
	StatusIssued         Status = "issued"
	StatusReadyForPickup Status = "ready_for_pickup"
)

// ValidStatus reports whether s is one of the declared request statuses.
// Transitions themselves are deliberately open: admins may move a request to
// any declared status at any time.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusIssued, StatusReadyForPickup:
		return true
	}
	return false
}

// IsTerminalReady reports whether a status stamps the issuance time.
func IsTerminalReady(s Status) bool {
	return s == StatusIssued || s == StatusReadyForPickup
}

type PaymentMethod string

const (
	PaymentGCash PaymentMethod = "gcash"
	PaymentCash  PaymentMethod = "cash"
	PaymentNone  PaymentMethod = "none"
)

type PaymentStatus string

const (
	PaymentUnpaid              PaymentStatus = "unpaid"
	PaymentPendingVerification PaymentStatus = "pending_verification"
	PaymentPaid                PaymentStatus = "paid"
)

type CrimeRecordStatus string

const (
	CrimeRecordUnknown CrimeRecordStatus = "unknown"
	CrimeRecordYes     CrimeRecordStatus = "yes"
	CrimeRecordNo      CrimeRecordStatus = "no"
)

// Document is a resident's request for an official barangay paper.
type Document struct {
	ID                  primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	TrackingNumber      string                 `bson:"trackingNumber" json:"trackingNumber"`
	DocType             string                 `bson:"docType" json:"docType"`
	ResidentName        string                 `bson:"residentName,omitempty" json:"residentName,omitempty"`
	FormData            map[string]interface{} `bson:"formData,omitempty" json:"formData,omitempty"`
	Status              Status                 `bson:"status" json:"status"`
	PickupCode          string                 `bson:"pickupCode,omitempty" json:"pickupCode,omitempty"`
	Remarks             string                 `bson:"remarks,omitempty" json:"remarks,omitempty"`
	AppointmentDatetime *time.Time             `bson:"appointmentDatetime,omitempty" json:"appointmentDatetime,omitempty"`
	IssuedAt            *time.Time             `bson:"issuedAt,omitempty" json:"issuedAt,omitempty"`
	PaymentMethod       PaymentMethod          `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus       PaymentStatus          `bson:"paymentStatus" json:"paymentStatus"`
	PaymentProofURL     string                 `bson:"paymentProofUrl,omitempty" json:"paymentProofUrl,omitempty"`
	CertificateURL      string                 `bson:"certificateUrl,omitempty" json:"certificateUrl,omitempty"`
	CertificateFileName string                 `bson:"certificateFileName,omitempty" json:"certificateFileName,omitempty"`
	CertificationCount  int                    `bson:"certificationCount" json:"certificationCount"`
	CrimeRecordStatus   CrimeRecordStatus      `bson:"crimeRecordStatus" json:"crimeRecordStatus"`
	ReminderSentAt      *time.Time             `bson:"reminderSentAt,omitempty" json:"reminderSentAt,omitempty"`
	CreatedAt           time.Time              `bson:"createdAt" json:"createdAt"`
}

// View is the API shape the frontend expects; field names are kept
// backwards-compatible with the original deployment.
type View struct {
	ID                  string                 `json:"id"`
	TrackingNumber      string                 `json:"trackingNumber"`
	RequestDate         time.Time              `json:"requestDate"`
	ResidentName        string                 `json:"residentName"`
	DocumentType        string                 `json:"documentType"`
	Status              Status                 `json:"status"`
	PickupCode          string                 `json:"pickupCode,omitempty"`
	AppointmentDatetime *time.Time             `json:"appointmentDatetime"`
	Remarks             string                 `json:"remarks,omitempty"`
	FormFields          map[string]interface{} `json:"formFields,omitempty"`
	IssuedAt            *time.Time             `json:"issuedAt,omitempty"`
	PaymentMethod       PaymentMethod          `json:"paymentMethod"`
	PaymentStatus       PaymentStatus          `json:"paymentStatus"`
	PaymentProofURL     string                 `json:"paymentProofUrl,omitempty"`
	CertificateURL      string                 `json:"certificateUrl,omitempty"`
	CertificateFileName string                 `json:"certificateFileName,omitempty"`
	CertificationCount  int                    `json:"certificationCount"`
	CrimeRecordStatus   CrimeRecordStatus      `json:"crimeRecordStatus"`
}

// AsView maps a stored document to its API shape, resolving legacy records
// that carry the resident name or appointment only inside the form fields.
func (d *Document) AsView() View {
	return View{
		ID:                  d.ID.Hex(),
		TrackingNumber:      d.TrackingNumber,
		RequestDate:         d.CreatedAt,
		ResidentName:        ResolveResidentName(d),
		DocumentType:        d.DocType,
		Status:              d.Status,
		PickupCode:          d.PickupCode,
		AppointmentDatetime: ResolveAppointment(d),
		Remarks:             d.Remarks,
		FormFields:          d.FormData,
		IssuedAt:            d.IssuedAt,
		PaymentMethod:       d.PaymentMethod,
		PaymentStatus:       d.PaymentStatus,
		PaymentProofURL:     d.PaymentProofURL,
		CertificateURL:      d.CertificateURL,
		CertificateFileName: d.CertificateFileName,
		CertificationCount:  d.CertificationCount,
		CrimeRecordStatus:   d.CrimeRecordStatus,
	}
}

func Views(docs []Document) []View {
	out := make([]View, len(docs))
	for i := range docs {
		out[i] = docs[i].AsView()
	}
	return out
}
