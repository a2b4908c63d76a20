package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"barangay-abis/backend/pkg/storage"
)

// ErrInvalid marks validation failures so handlers can answer 400.
var ErrInvalid = errors.New("invalid input")

const (
	maxQRSize = 5 << 20
	qrFolder  = "settings"
)

var qrImageExts = []string{".jpg", ".jpeg", ".png", ".webp"}

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

type Service interface {
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, key string, value interface{}) (*Setting, error)
	// All flattens every record into a single key -> value object.
	All(ctx context.Context) (map[string]interface{}, error)
	// UploadQR stores a payment QR image and points the gcash_qr key at it.
	UploadQR(ctx context.Context, file FileUpload) (*Setting, error)
}

type settingService struct {
	repo   Repository
	store  storage.Client
	logger *zap.Logger
}

func NewService(repo Repository, store storage.Client, logger *zap.Logger) Service {
	return &settingService{repo: repo, store: store, logger: logger}
}

func (s *settingService) Get(ctx context.Context, key string) (*Setting, error) {
	return s.repo.Get(ctx, key)
}

func (s *settingService) Set(ctx context.Context, key string, value interface{}) (*Setting, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: key required", ErrInvalid)
	}
	return s.repo.Upsert(ctx, key, value)
}

func (s *settingService) All(ctx context.Context) (map[string]interface{}, error) {
	list, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(list))
	for _, setting := range list {
		out[setting.Key] = setting.Value
	}
	return out, nil
}

func (s *settingService) UploadQR(ctx context.Context, file FileUpload) (*Setting, error) {
	if file.Size > maxQRSize {
		return nil, fmt.Errorf("%w: file too large, maximum size is 5MB", ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	allowed := false
	for _, e := range qrImageExts {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed || !strings.HasPrefix(file.ContentType, "image/") {
		return nil, fmt.Errorf("%w: QR code must be an image (JPG, PNG, WEBP)", ErrInvalid)
	}

	res, err := s.store.Upload(ctx, qrFolder, file.Name, file.ContentType, file.Content)
	if err != nil {
		return nil, fmt.Errorf("store QR image: %w", err)
	}
	s.logger.Info("payment QR updated", zap.String("key", res.Key))
	return s.repo.Upsert(ctx, QRSettingKey, res.URL)
}
