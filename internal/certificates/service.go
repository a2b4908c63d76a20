package certificates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"barangay-abis/backend/pkg/storage"
)

// ErrInvalid marks validation failures so handlers can answer 400.
var ErrInvalid = errors.New("invalid input")

const (
	maxFileSize       = 10 << 20
	certificateFolder = "certificates"
)

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type Service interface {
	Upload(ctx context.Context, trackingNumber, uploadedBy string, file FileUpload) (*Certificate, error)
	Lookup(ctx context.Context, trackingNumber string) (*Metadata, error)
	ResolveDownload(ctx context.Context, trackingNumber string) (url, filename string, err error)
}

type certificateService struct {
	repo   Repository
	store  storage.Client
	logger *zap.Logger
}

func NewService(repo Repository, store storage.Client, logger *zap.Logger) Service {
	return &certificateService{repo: repo, store: store, logger: logger}
}

func (s *certificateService) Upload(ctx context.Context, trackingNumber, uploadedBy string, file FileUpload) (*Certificate, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, fmt.Errorf("%w: trackingNumber required", ErrInvalid)
	}
	if file.Size > maxFileSize {
		return nil, fmt.Errorf("%w: file too large, maximum size is 10MB", ErrInvalid)
	}
	if ext := strings.ToLower(filepath.Ext(file.Name)); ext != ".pdf" {
		return nil, fmt.Errorf("%w: only PDF certificates are accepted, got %q", ErrInvalid, ext)
	}

	res, err := s.store.Upload(ctx, certificateFolder, file.Name, file.ContentType, file.Content)
	if err != nil {
		return nil, fmt.Errorf("store certificate: %w", err)
	}

	cert := &Certificate{
		TrackingNumber: trackingNumber,
		OriginalName:   file.Name,
		FileURL:        res.URL,
		FileKey:        res.Key,
		UploadedBy:     uploadedBy,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.Create(ctx, cert); err != nil {
		return nil, err
	}
	s.logger.Info("certificate uploaded",
		zap.String("trackingNumber", trackingNumber),
		zap.String("key", res.Key))
	return cert, nil
}

func (s *certificateService) Lookup(ctx context.Context, trackingNumber string) (*Metadata, error) {
	cert, err := s.repo.LatestByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	meta := cert.AsMetadata()
	return &meta, nil
}

// ResolveDownload points the caller at the newest stored file, with a
// disposition hint so browsers save it under the original name.
func (s *certificateService) ResolveDownload(ctx context.Context, trackingNumber string) (string, string, error) {
	cert, err := s.repo.LatestByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return "", "", err
	}
	filename := cert.OriginalName
	if filename == "" {
		filename = trackingNumber + ".pdf"
	}
	return storage.AsAttachmentURL(cert.FileURL, filename), filename, nil
}
