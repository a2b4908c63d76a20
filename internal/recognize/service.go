package recognize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// ErrInvalid marks validation failures so handlers can answer 400.
var ErrInvalid = errors.New("invalid input")

const maxImageSize = 8 << 20

var imageExts = []string{".jpg", ".jpeg", ".png", ".webp", ".tif", ".tiff"}

type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Result carries the recognized text plus the stored temp name, mirroring
// what submitters see when they re-check an upload.
type Result struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

type Service interface {
	Recognize(ctx context.Context, file FileUpload) (*Result, error)
}

type ocrService struct {
	logger *zap.Logger
}

func NewService(logger *zap.Logger) Service {
	return &ocrService{logger: logger}
}

// Recognize writes the upload to a temp file and runs Tesseract over it.
// The engine reads from disk, so the bytes cannot be streamed straight in.
func (s *ocrService) Recognize(ctx context.Context, file FileUpload) (*Result, error) {
	if err := validate(file); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "recognize-*"+strings.ToLower(filepath.Ext(file.Name)))
	if err != nil {
		return nil, fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file.Content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(tmp.Name()); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}

	s.logger.Info("image recognized",
		zap.String("filename", file.Name),
		zap.Int("chars", len(text)))
	return &Result{Text: strings.TrimSpace(text), Filename: filepath.Base(tmp.Name())}, nil
}

func validate(file FileUpload) error {
	if file.Size > maxImageSize {
		return fmt.Errorf("%w: file too large, maximum size is 8MB", ErrInvalid)
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, allowed := range imageExts {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported image type %q", ErrInvalid, ext)
}
