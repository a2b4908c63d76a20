package blotter

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

var (
	// ErrInvalid marks validation failures so handlers can answer 400.
	ErrInvalid = errors.New("invalid input")
	// ErrForbidden marks callers lacking both admin and token credentials.
	ErrForbidden = errors.New("not authorized")
)

const (
	maxAttachments       = 3
	maxAttachmentSize    = 2 << 20
	attachmentFolder     = "blotter"
	localAttachmentRoute = "/uploads/blotter/"
)

var attachmentExts = []string{".jpg", ".jpeg", ".png", ".heic"}

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type CreateRequest struct {
	Title           string
	Description     string
	ReporterName    string
	ReporterContact string
	IncidentDate    *time.Time
	Status          Status
	ShowReporter    bool
	Files           []FileUpload
}

// PaymentUpdate is a partial update; nil fields are left untouched.
type PaymentUpdate struct {
	Method   *string `json:"paymentMethod"`
	Status   *string `json:"paymentStatus"`
	ProofURL *string `json:"paymentProofUrl"`
}

// AttachmentResolution is either a redirect to the attachment store or a
// path under the locally served uploads directory.
type AttachmentResolution struct {
	RedirectURL string
	LocalPath   string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Blotter, error)
	List(ctx context.Context, status Status) ([]Blotter, error)
	Get(ctx context.Context, id primitive.ObjectID) (*Blotter, error)
	Patch(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}, files []FileUpload) (*Blotter, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ResolveAttachment(ctx context.Context, id primitive.ObjectID, filename string, isAdmin bool, token string) (*AttachmentResolution, error)

	AttachCertificate(ctx context.Context, id primitive.ObjectID, file FileUpload) (*Blotter, error)
	SetCrimeRecord(ctx context.Context, id primitive.ObjectID, status string) (*Blotter, error)
	IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Blotter, error)
	UpdatePayment(ctx context.Context, id primitive.ObjectID, req PaymentUpdate) (*Blotter, error)
}

type blotterService struct {
	repo   Repository
	store  storage.Client
	logger *zap.Logger
}

func NewService(repo Repository, store storage.Client, logger *zap.Logger) Service {
	return &blotterService{repo: repo, store: store, logger: logger}
}

func (s *blotterService) Create(ctx context.Context, req CreateRequest) (*Blotter, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalid)
	}

	attachments, err := s.uploadAll(ctx, req.Files)
	if err != nil {
		return nil, err
	}

	reporterName := req.ReporterName
	if reporterName == "" {
		reporterName = AnonymousReporter
	}
	incidentDate := time.Now()
	if req.IncidentDate != nil {
		incidentDate = *req.IncidentDate
	}
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	b := &Blotter{
		Title:           req.Title,
		Description:     req.Description,
		ReporterName:    reporterName,
		ReporterContact: req.ReporterContact,
		IncidentDate:    incidentDate,
		Status:          status,
		Attachments:     attachments,
		PublicToken:     tokens.PublicToken(),
		ShowReporter:    req.ShowReporter,
		PaymentMethod:   "gcash",
		PaymentStatus:   "pending",
		CreatedAt:       time.Now(),
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *blotterService) List(ctx context.Context, status Status) ([]Blotter, error) {
	return s.repo.List(ctx, status)
}

func (s *blotterService) Get(ctx context.Context, id primitive.ObjectID) (*Blotter, error) {
	return s.repo.GetByID(ctx, id)
}

var protectedFields = map[string]bool{
	"_id":                true,
	"id":                 true,
	"publicToken":        true,
	"certificationCount": true,
	"createdAt":          true,
	"attachments":        true,
}

// Patch merges caller-supplied fields; new files are uploaded and appended to
// the existing attachment list, never replacing it.
func (s *blotterService) Patch(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}, files []FileUpload) (*Blotter, error) {
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
		if k == "incidentDate" {
			when, err := coerceDate(v)
			if err != nil {
				return nil, err
			}
			set[k] = when
			continue
		}
		set[k] = v
	}

	if len(files) > 0 {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		added, err := s.uploadAll(ctx, files)
		if err != nil {
			return nil, err
		}
		set["attachments"] = append(existing.Attachments, added...)
	}

	if len(set) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.Update(ctx, id, set)
}

func (s *blotterService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// ResolveAttachment locates a named attachment and decides how to serve it.
// Published reports are open to anyone; otherwise the caller must already
// hold full access (admin or the record's own token).
func (s *blotterService) ResolveAttachment(ctx context.Context, id primitive.ObjectID, filename string, isAdmin bool, token string) (*AttachmentResolution, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status != StatusPublished && !HasFullAccess(b, isAdmin, token) {
		return nil, ErrForbidden
	}

	for _, att := range b.Attachments {
		if att.Filename != filename && att.OriginalName != filename {
			continue
		}
		if att.URL != "" {
			return &AttachmentResolution{RedirectURL: att.URL}, nil
		}
		if att.Filename != "" {
			return &AttachmentResolution{LocalPath: filepath.Join("uploads", "blotter", filepath.Base(att.Filename))}, nil
		}
	}
	return nil, fmt.Errorf("attachment %q: %w", filename, ErrNotFound)
}

func (s *blotterService) AttachCertificate(ctx context.Context, id primitive.ObjectID, file FileUpload) (*Blotter, error) {
	if file.Size > 10<<20 {
		return nil, fmt.Errorf("%w: file too large, maximum size is 10MB", ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext != ".pdf" && ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return nil, fmt.Errorf("%w: unsupported certificate type %q", ErrInvalid, ext)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	res, err := s.store.Upload(ctx, "certificates", file.Name, file.ContentType, file.Content)
	if err != nil {
		return nil, fmt.Errorf("store certificate: %w", err)
	}
	return s.repo.Update(ctx, id, bson.M{
		"certificateUrl":      res.URL,
		"certificateFileName": file.Name,
	})
}

func (s *blotterService) SetCrimeRecord(ctx context.Context, id primitive.ObjectID, status string) (*Blotter, error) {
	if status != "yes" && status != "no" {
		return nil, fmt.Errorf("%w: crime record status must be 'yes' or 'no'", ErrInvalid)
	}
	return s.repo.Update(ctx, id, bson.M{"crimeRecordStatus": status})
}

func (s *blotterService) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Blotter, error) {
	return s.repo.IncrementCertification(ctx, id)
}

func (s *blotterService) UpdatePayment(ctx context.Context, id primitive.ObjectID, req PaymentUpdate) (*Blotter, error) {
	set := bson.M{}
	if req.Method != nil {
		set["paymentMethod"] = *req.Method
	}
	if req.Status != nil {
		if *req.Status != "pending" && *req.Status != "paid" {
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

// coerceDate normalizes patched date values to time.Time before they are
// stored. Multipart patches always carry strings; persisting one raw corrupts
// the typed field and every later decode of the record fails.
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

// uploadAll validates then uploads a batch sequentially. The batch is
// all-or-nothing: the first failed upload aborts the whole operation.
func (s *blotterService) uploadAll(ctx context.Context, files []FileUpload) ([]Attachment, error) {
	if len(files) > maxAttachments {
		return nil, fmt.Errorf("%w: at most %d attachments per report", ErrInvalid, maxAttachments)
	}
	for _, f := range files {
		if err := validateAttachment(f); err != nil {
			return nil, err
		}
	}

	var attachments []Attachment
	for _, f := range files {
		res, err := s.store.Upload(ctx, attachmentFolder, f.Name, f.ContentType, f.Content)
		if err != nil {
			return nil, fmt.Errorf("upload attachment %s: %w", f.Name, err)
		}
		attachments = append(attachments, Attachment{
			OriginalName: f.Name,
			MimeType:     f.ContentType,
			URL:          res.URL,
			PublicID:     res.Key,
			Format:       strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), "."),
		})
	}
	return attachments, nil
}

func validateAttachment(f FileUpload) error {
	if f.Size > maxAttachmentSize {
		return fmt.Errorf("%w: file too large, maximum size is 2MB per file", ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, allowed := range attachmentExts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported file type %q, allowed: JPG, JPEG, PNG, HEIC", ErrInvalid, ext)
}
