package reports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"barangay-abis/backend/internal/blotter"
	"barangay-abis/backend/internal/documents"
)

// Export is a rendered report plus the headers the handler needs to serve it.
type Export struct {
	Content     []byte
	ContentType string
	Filename    string
}

type Service interface {
	DocumentsExport(ctx context.Context, format Format) (*Export, error)
	BlotterExport(ctx context.Context, format Format) (*Export, error)
	DocumentPDF(ctx context.Context, id primitive.ObjectID) (*Export, error)
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type reportService struct {
	documents documents.Service
	blotter   blotter.Service
	logger    *zap.Logger
}

func NewService(docs documents.Service, blot blotter.Service, logger *zap.Logger) Service {
	return &reportService{documents: docs, blotter: blot, logger: logger}
}

func (s *reportService) DocumentsExport(ctx context.Context, format Format) (*Export, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, err
	}
	return render(DocumentTable(docs), format, "documents-report")
}

func (s *reportService) BlotterExport(ctx context.Context, format Format) (*Export, error) {
	list, err := s.blotter.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return render(BlotterTable(list), format, "blotter-report")
}

// DocumentPDF renders the clearance layout for one request.
func (s *reportService) DocumentPDF(ctx context.Context, id primitive.ObjectID) (*Export, error) {
	doc, err := s.documents.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := documents.RenderClearancePDF(doc)
	if err != nil {
		return nil, err
	}
	name := doc.TrackingNumber
	if name == "" {
		name = "document"
	}
	return &Export{
		Content:     content,
		ContentType: "application/pdf",
		Filename:    name + ".pdf",
	}, nil
}

func render(t *Table, format Format, basename string) (*Export, error) {
	switch format {
	case FormatXLSX:
		content, err := WriteXLSX(t)
		if err != nil {
			return nil, err
		}
		return &Export{
			Content:     content,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    basename + ".xlsx",
		}, nil
	default:
		content, err := WriteCSV(t)
		if err != nil {
			return nil, err
		}
		return &Export{
			Content:     content,
			ContentType: "text/csv",
			Filename:    basename + ".csv",
		}, nil
	}
}
