package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"barangay-abis/backend/pkg/storage"
	"barangay-abis/backend/pkg/tokens"
)

// ErrInvalid marks validation failures so handlers can answer 400.
var ErrInvalid = errors.New("invalid input")

const maxCertificateSize = 10 << 20

var certificateExts = []string{".pdf", ".jpg", ".jpeg", ".png"}

// Notifier is the slice of the notification service the lifecycle engine
// needs. Dispatch is best-effort and returns nothing.
type Notifier interface {
	StatusChanged(ctx context.Context, trackingNumber, status, email, phone string)
	CertificateReady(ctx context.Context, trackingNumber, email, phone string)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Document, error)
	Patch(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*Document, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Document, error)
	AttachCertificate(ctx context.Context, id primitive.ObjectID, file FileUpload) (*Document, error)
	SetCrimeRecord(ctx context.Context, id primitive.ObjectID, status CrimeRecordStatus) (*Document, error)
	IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Document, error)
	UpdatePayment(ctx context.Context, id primitive.ObjectID, req PaymentUpdate) (*Document, error)
	TrackByNumber(ctx context.Context, trackingNumber string) (*Document, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ResolveDownload(ctx context.Context, trackingNumber string) (*DownloadResult, error)
}

type CreateRequest struct {
	TrackingNumber      string                 `json:"trackingNumber"`
	PickupCode          string                 `json:"pickupCode"`
	DocumentType        string                 `json:"documentType"`
	DocType             string                 `json:"docType"`
	ResidentName        string                 `json:"residentName"`
	Name                string                 `json:"name"`
	Status              Status                 `json:"status"`
	Remarks             string                 `json:"remarks"`
	AppointmentDatetime *time.Time             `json:"appointmentDatetime"`
	Purpose             string                 `json:"purpose"`
	Pickup              bool                   `json:"pickup"`
	ContactEmail        string                 `json:"contactEmail"`
	ContactPhone        string                 `json:"contactPhone"`
	FormFields          map[string]interface{} `json:"formFields"`
}

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// PaymentUpdate is a partial update; nil fields are left untouched.
type PaymentUpdate struct {
	Method   *PaymentMethod `json:"paymentMethod"`
	Status   *PaymentStatus `json:"paymentStatus"`
	ProofURL *string        `json:"paymentProofUrl"`
}

// DownloadResult is either a redirect to the stored certificate or a
// synthesized clearance PDF.
type DownloadResult struct {
	RedirectURL string
	PDF         []byte
	Filename    string
}

type documentService struct {
	repo     Repository
	store    storage.Client
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, store storage.Client, notifier Notifier, logger *zap.Logger) Service {
	return &documentService{repo: repo, store: store, notifier: notifier, logger: logger}
}

func (s *documentService) Create(ctx context.Context, req CreateRequest) (*Document, error) {
	trackingNumber := req.TrackingNumber
	if trackingNumber == "" {
		trackingNumber = tokens.TrackingNumber()
	}
	pickupCode := strings.ToUpper(req.PickupCode)
	if pickupCode == "" {
		pickupCode = tokens.PickupCode()
	}

	docType := req.DocumentType
	if docType == "" {
		docType = req.DocType
	}
	if docType == "" {
		docType = "general"
	}

	residentName := req.ResidentName
	if residentName == "" {
		residentName = req.Name
	}

	formData := map[string]interface{}{}
	for k, v := range req.FormFields {
		formData[k] = v
	}
	formData["purpose"] = req.Purpose
	formData["pickup"] = req.Pickup
	if req.ContactEmail != "" {
		formData["contactEmail"] = req.ContactEmail
	}
	if req.ContactPhone != "" {
		formData["contactPhone"] = req.ContactPhone
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	doc := &Document{
		TrackingNumber:      trackingNumber,
		DocType:             docType,
		ResidentName:        residentName,
		FormData:            formData,
		Status:              status,
		PickupCode:          pickupCode,
		Remarks:             req.Remarks,
		AppointmentDatetime: req.AppointmentDatetime,
		PaymentMethod:       PaymentNone,
		PaymentStatus:       PaymentUnpaid,
		CrimeRecordStatus:   CrimeRecordUnknown,
		CreatedAt:           time.Now(),
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *documentService) Get(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

// immutable fields a partial update may never touch
var protectedFields = map[string]bool{
	"_id":                true,
	"id":                 true,
	"trackingNumber":     true,
	"certificationCount": true,
	"createdAt":          true,
	"issuedAt":           true,
}

func (s *documentService) Patch(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*Document, error) {
	set := bson.M{}
	for k, v := range updates {
		if protectedFields[k] {
			continue
		}
		if k == "status" {
			str, _ := v.(string)
			if !ValidStatus(Status(str)) {
				return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, str)
			}
		}
		if k == "appointmentDatetime" {
			when, err := coerceDate(v)
			if err != nil {
				return nil, err
			}
			set[k] = when
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, set)
}

// SetStatus replaces the request status. Moving into a terminal ready state
// stamps the issuance time; re-stamping on repeat transitions is accepted,
// and a later move back to pending leaves issuedAt in place.
func (s *documentService) SetStatus(ctx context.Context, id primitive.ObjectID, status Status) (*Document, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	set := bson.M{"status": status}
	if IsTerminalReady(status) {
		set["issuedAt"] = time.Now()
	}

	doc, err := s.repo.Update(ctx, id, set)
	if err != nil {
		return nil, err
	}

	// Persisted; anything past this point must not fail the call.
	s.notifier.StatusChanged(ctx, doc.TrackingNumber, string(doc.Status),
		ContactEmail(doc.FormData), ContactPhone(doc.FormData))

	return doc, nil
}

func (s *documentService) AttachCertificate(ctx context.Context, id primitive.ObjectID, file FileUpload) (*Document, error) {
	if err := validateCertificateFile(file); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	res, err := s.store.Upload(ctx, "certificates", file.Name, file.ContentType, file.Content)
	if err != nil {
		return nil, fmt.Errorf("store certificate: %w", err)
	}

	doc, err := s.repo.Update(ctx, id, bson.M{
		"certificateUrl":      res.URL,
		"certificateFileName": file.Name,
		"status":              StatusReadyForPickup,
		"issuedAt":            time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.notifier.CertificateReady(ctx, doc.TrackingNumber,
		ContactEmail(doc.FormData), ContactPhone(doc.FormData))

	return doc, nil
}

func (s *documentService) SetCrimeRecord(ctx context.Context, id primitive.ObjectID, status CrimeRecordStatus) (*Document, error) {
	if status != CrimeRecordYes && status != CrimeRecordNo {
		return nil, fmt.Errorf("%w: crime record status must be 'yes' or 'no'", ErrInvalid)
	}
	return s.repo.Update(ctx, id, bson.M{"crimeRecordStatus": status})
}

func (s *documentService) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	return s.repo.IncrementCertification(ctx, id)
}

func (s *documentService) UpdatePayment(ctx context.Context, id primitive.ObjectID, req PaymentUpdate) (*Document, error) {
	set := bson.M{}
	if req.Method != nil {
		switch *req.Method {
		case PaymentGCash, PaymentCash, PaymentNone:
		default:
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalid, *req.Method)
		}
		set["paymentMethod"] = *req.Method
	}
	if req.Status != nil {
		switch *req.Status {
		case PaymentUnpaid, PaymentPendingVerification, PaymentPaid:
		default:
			return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalid, *req.Status)
		}
		set["paymentStatus"] = *req.Status
	}
	if req.ProofURL != nil {
		set["paymentProofUrl"] = *req.ProofURL
	}
	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, set)
}

func (s *documentService) TrackByNumber(ctx context.Context, trackingNumber string) (*Document, error) {
	return s.repo.GetByTrackingNumber(ctx, trackingNumber)
}

func (s *documentService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// ResolveDownload redirects to the stored certificate when one exists, with a
// download hint for attachment-store URLs. Otherwise it synthesizes a
// clearance PDF from current field values; the fallback tolerates any
// combination of missing optional fields.
func (s *documentService) ResolveDownload(ctx context.Context, trackingNumber string) (*DownloadResult, error) {
	doc, err := s.repo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}

	if doc.CertificateURL != "" {
		filename := doc.CertificateFileName
		if filename == "" {
			filename = trackingNumber + ".pdf"
		}
		return &DownloadResult{
			RedirectURL: storage.AsAttachmentURL(doc.CertificateURL, filename),
		}, nil
	}

	pdf, err := RenderClearancePDF(doc)
	if err != nil {
		return nil, fmt.Errorf("render clearance pdf: %w", err)
	}
	return &DownloadResult{PDF: pdf, Filename: trackingNumber + ".pdf"}, nil
}

// coerceDate normalizes patched date values to time.Time before they are
// stored. Clients send strings; persisting one raw corrupts the typed field
// and every later decode of the record fails.
func coerceDate(v interface{}) (interface{}, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return d, nil
	case string:
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, nil
		}
		if t, err := time.Parse("2006-01-02", d); err == nil {
			return t, nil
		}
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalid, d)
	default:
		return nil, fmt.Errorf("%w: date must be a timestamp string", ErrInvalid)
	}
}

func validateCertificateFile(file FileUpload) error {
	if file.Size > maxCertificateSize {
		return fmt.Errorf("%w: file too large, maximum size is 10MB", ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, allowed := range certificateExts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported certificate type %q, allowed: PDF, JPG, JPEG, PNG", ErrInvalid, ext)
}
