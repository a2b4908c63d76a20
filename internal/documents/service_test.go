package documents

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"barangay-abis/backend/pkg/storage"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, doc *Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*Document, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Document, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Document), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*Document, error) {
	args := m.Called(ctx, id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Document), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DueForReminder(ctx context.Context, from, to time.Time) ([]Document, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]Document), args.Error(1)
}

func (m *MockRepository) MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type fakeStore struct {
	uploaded []string
	result   *storage.UploadResult
	err      error
}

func (f *fakeStore) Upload(_ context.Context, folder, name, _ string, _ io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, folder+"/"+name)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &storage.UploadResult{URL: "https://b.s3.ap-southeast-1.amazonaws.com/" + folder + "/x", Key: folder + "/x"}, nil
}

func (f *fakeStore) Download(context.Context, string) (io.ReadCloser, error) { return nil, nil }
func (f *fakeStore) Delete(context.Context, string) error                   { return nil }

type fakeNotifier struct {
	statusCalls []string
	certCalls   []string
	emails      []string
	phones      []string
}

func (f *fakeNotifier) StatusChanged(_ context.Context, trackingNumber, status, email, phone string) {
	f.statusCalls = append(f.statusCalls, trackingNumber+":"+status)
	f.emails = append(f.emails, email)
	f.phones = append(f.phones, phone)
}

func (f *fakeNotifier) CertificateReady(_ context.Context, trackingNumber, email, phone string) {
	f.certCalls = append(f.certCalls, trackingNumber)
	f.emails = append(f.emails, email)
	f.phones = append(f.phones, phone)
}

func newTestService(repo Repository) (Service, *fakeStore, *fakeNotifier) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	return NewService(repo, store, notifier, zap.NewNop()), store, notifier
}

func TestCreateGeneratesTrackingNumberAndPickupCode(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*documents.Document")).Return(nil)

	doc, err := service.Create(ctx, CreateRequest{
		DocumentType: "barangay_clearance",
		ResidentName: "Juan Dela Cruz",
		Purpose:      "employment",
		FormFields:   map[string]interface{}{"email": "juan@example.com"},
	})

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.TrackingNumber, "ABIS-"))
	assert.Len(t, doc.PickupCode, 6)
	assert.Equal(t, StatusPending, doc.Status)
	assert.Equal(t, "employment", doc.FormData["purpose"])
	assert.Equal(t, "juan@example.com", doc.FormData["email"])
	assert.Equal(t, CrimeRecordUnknown, doc.CrimeRecordStatus)
	mockRepo.AssertExpectations(t)
}

func TestCreateHonorsCallerTrackingNumber(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*documents.Document")).Return(nil)

	doc, err := service.Create(ctx, CreateRequest{TrackingNumber: "ABIS-CUSTOM-1", PickupCode: "abc123"})
	assert.NoError(t, err)
	assert.Equal(t, "ABIS-CUSTOM-1", doc.TrackingNumber)
	assert.Equal(t, "ABC123", doc.PickupCode)
}

func TestCreateSurfacesDuplicateTracking(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*documents.Document")).Return(ErrDuplicateTracking)

	_, err := service.Create(ctx, CreateRequest{TrackingNumber: "ABIS-DUP"})
	assert.ErrorIs(t, err, ErrDuplicateTracking)
}

func TestSetStatusIssuedStampsIssuanceAndNotifies(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, notifier := newTestService(mockRepo)

	ctx := context.Background()
	id := primitive.NewObjectID()
	updated := &Document{
		ID:             id,
		TrackingNumber: "ABIS-1-ABC123",
		Status:         StatusIssued,
		FormData: map[string]interface{}{
			"contactEmail": "resident@example.com",
			"mobile":       "+639170000000",
		},
	}

	mockRepo.On("Update", ctx, id, mock.MatchedBy(func(set bson.M) bool {
		_, hasIssued := set["issuedAt"]
		return set["status"] == StatusIssued && hasIssued
	})).Return(updated, nil)

	doc, err := service.SetStatus(ctx, id, StatusIssued)
	assert.NoError(t, err)
	assert.Equal(t, StatusIssued, doc.Status)
	assert.Equal(t, []string{"ABIS-1-ABC123:issued"}, notifier.statusCalls)
	assert.Equal(t, "resident@example.com", notifier.emails[0])
	assert.Equal(t, "+639170000000", notifier.phones[0])
	mockRepo.AssertExpectations(t)
}

func TestSetStatusPendingDoesNotTouchIssuedAt(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)

	ctx := context.Background()
	id := primitive.NewObjectID()
	issuedAt := time.Now().Add(-time.Hour)
	updated := &Document{ID: id, TrackingNumber: "ABIS-1", Status: StatusPending, IssuedAt: &issuedAt}

	mockRepo.On("Update", ctx, id, mock.MatchedBy(func(set bson.M) bool {
		_, hasIssued := set["issuedAt"]
		return set["status"] == StatusPending && !hasIssued
	})).Return(updated, nil)

	doc, err := service.SetStatus(ctx, id, StatusPending)
	assert.NoError(t, err)
	assert.NotNil(t, doc.IssuedAt)
	mockRepo.AssertExpectations(t)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)

	_, err := service.SetStatus(context.Background(), primitive.NewObjectID(), Status("archived"))
	assert.ErrorIs(t, err, ErrInvalid)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttachCertificateForcesReadyForPickup(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store, notifier := newTestService(mockRepo)

	ctx := context.Background()
	id := primitive.NewObjectID()
	existing := &Document{ID: id, TrackingNumber: "ABIS-1", Status: StatusPending}
	updated := &Document{ID: id, TrackingNumber: "ABIS-1", Status: StatusReadyForPickup,
		CertificateURL: "https://b.s3.ap-southeast-1.amazonaws.com/certificates/x"}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil)
	mockRepo.On("Update", ctx, id, mock.MatchedBy(func(set bson.M) bool {
		return set["status"] == StatusReadyForPickup && set["certificateUrl"] != ""
	})).Return(updated, nil)

	doc, err := service.AttachCertificate(ctx, id, FileUpload{
		Name:        "clearance.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Content:     strings.NewReader("%PDF-1.4"),
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, doc.Status)
	assert.Equal(t, []string{"certificates/clearance.pdf"}, store.uploaded)
	assert.Equal(t, []string{"ABIS-1"}, notifier.certCalls)
	mockRepo.AssertExpectations(t)
}

func TestAttachCertificateRejectsOversizeAndBadType(t *testing.T) {
	mockRepo := new(MockRepository)
	service, store, _ := newTestService(mockRepo)
	ctx := context.Background()

	_, err := service.AttachCertificate(ctx, primitive.NewObjectID(), FileUpload{
		Name: "big.pdf", Size: 11 << 20, Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = service.AttachCertificate(ctx, primitive.NewObjectID(), FileUpload{
		Name: "cert.docx", Size: 1024, Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, ErrInvalid)

	assert.Empty(t, store.uploaded)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetCrimeRecordValidation(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()
	id := primitive.NewObjectID()

	_, err := service.SetCrimeRecord(ctx, id, CrimeRecordStatus("maybe"))
	assert.ErrorIs(t, err, ErrInvalid)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

	updated := &Document{ID: id, CrimeRecordStatus: CrimeRecordNo}
	mockRepo.On("Update", ctx, id, bson.M{"crimeRecordStatus": CrimeRecordNo}).Return(updated, nil)
	doc, err := service.SetCrimeRecord(ctx, id, CrimeRecordNo)
	assert.NoError(t, err)
	assert.Equal(t, CrimeRecordNo, doc.CrimeRecordStatus)
}

func TestUpdatePaymentLeavesAbsentFieldsUntouched(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()
	id := primitive.NewObjectID()

	status := PaymentPaid
	updated := &Document{ID: id, PaymentStatus: PaymentPaid}
	mockRepo.On("Update", ctx, id, bson.M{"paymentStatus": PaymentPaid}).Return(updated, nil)

	doc, err := service.UpdatePayment(ctx, id, PaymentUpdate{Status: &status})
	assert.NoError(t, err)
	assert.Equal(t, PaymentPaid, doc.PaymentStatus)
	mockRepo.AssertExpectations(t)
}

func TestPatchStripsProtectedFields(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()
	id := primitive.NewObjectID()

	updated := &Document{ID: id, Remarks: "updated"}
	mockRepo.On("Update", ctx, id, bson.M{"remarks": "updated"}).Return(updated, nil)

	doc, err := service.Patch(ctx, id, map[string]interface{}{
		"remarks":            "updated",
		"trackingNumber":     "ABIS-HIJACK",
		"certificationCount": 99,
		"issuedAt":           nil,
	})
	assert.NoError(t, err)
	assert.Equal(t, "updated", doc.Remarks)
	mockRepo.AssertExpectations(t)
}

func TestPatchCoercesAppointmentDate(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()
	id := primitive.NewObjectID()

	updated := &Document{ID: id}
	mockRepo.On("Update", ctx, id, mock.MatchedBy(func(set bson.M) bool {
		when, ok := set["appointmentDatetime"].(time.Time)
		return ok && when.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	})).Return(updated, nil).Once()

	_, err := service.Patch(ctx, id, map[string]interface{}{"appointmentDatetime": "2026-09-01"})
	assert.NoError(t, err)

	mockRepo.On("Update", ctx, id, mock.MatchedBy(func(set bson.M) bool {
		when, ok := set["appointmentDatetime"].(time.Time)
		return ok && when.Equal(time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC))
	})).Return(updated, nil).Once()

	_, err = service.Patch(ctx, id, map[string]interface{}{"appointmentDatetime": "2026-09-01T14:30:00Z"})
	assert.NoError(t, err)

	_, err = service.Patch(ctx, id, map[string]interface{}{"appointmentDatetime": "next tuesday"})
	assert.ErrorIs(t, err, ErrInvalid)
	mockRepo.AssertExpectations(t)
}

func TestResolveDownloadPrefersStoredCertificate(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()

	doc := &Document{
		TrackingNumber:      "ABIS-1",
		CertificateURL:      "https://b.s3.ap-southeast-1.amazonaws.com/certificates/x.pdf",
		CertificateFileName: "clearance.pdf",
	}
	mockRepo.On("GetByTrackingNumber", ctx, "ABIS-1").Return(doc, nil)

	res, err := service.ResolveDownload(ctx, "ABIS-1")
	assert.NoError(t, err)
	assert.Contains(t, res.RedirectURL, "response-content-disposition=")
	assert.Empty(t, res.PDF)
}

func TestResolveDownloadFallsBackToGeneratedPDF(t *testing.T) {
	mockRepo := new(MockRepository)
	service, _, _ := newTestService(mockRepo)
	ctx := context.Background()

	// Minimal record: no purpose, no remarks, nothing optional set.
	doc := &Document{TrackingNumber: "ABIS-2", DocType: "barangay_clearance", Status: StatusPending, CreatedAt: time.Now()}
	mockRepo.On("GetByTrackingNumber", ctx, "ABIS-2").Return(doc, nil)

	res, err := service.ResolveDownload(ctx, "ABIS-2")
	assert.NoError(t, err)
	assert.Empty(t, res.RedirectURL)
	assert.NotEmpty(t, res.PDF)
	assert.Equal(t, "ABIS-2.pdf", res.Filename)
	assert.True(t, strings.HasPrefix(string(res.PDF[:5]), "%PDF-"))
}
