package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"barangay-abis/backend/internal/documents"
)

// MockRepository is a mock implementation of the documents.Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, d *documents.Document) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*documents.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockRepository) GetByTrackingNumber(ctx context.Context, tn string) (*documents.Document, error) {
	args := m.Called(ctx, tn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]documents.Document, error) {
	args := m.Called(ctx)
	return args.Get(0).([]documents.Document), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*documents.Document, error) {
	args := m.Called(ctx, id, set)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockRepository) IncrementCertification(ctx context.Context, id primitive.ObjectID) (*documents.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*documents.Document), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) DueForReminder(ctx context.Context, from, to time.Time) ([]documents.Document, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]documents.Document), args.Error(1)
}

func (m *MockRepository) MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type recordedReminder struct {
	trackingNumber string
	when           time.Time
	email          string
	phone          string
}

type recordingNotifier struct {
	sent []recordedReminder
}

func (r *recordingNotifier) AppointmentReminder(_ context.Context, tn string, when time.Time, email, phone string) {
	r.sent = append(r.sent, recordedReminder{tn, when, email, phone})
}

func dueDocument(tn string, appointment time.Time, form map[string]interface{}) documents.Document {
	return documents.Document{
		ID:                  primitive.NewObjectID(),
		TrackingNumber:      tn,
		Status:              documents.StatusAccepted,
		AppointmentDatetime: &appointment,
		FormData:            form,
	}
}

func TestSweepSendsAndMarks(t *testing.T) {
	mockRepo := new(MockRepository)
	notifier := &recordingNotifier{}
	worker := NewWorker(mockRepo, notifier, zap.NewNop())

	appointment := time.Now().Add(6 * time.Hour)
	doc := dueDocument("ABIS-1-AAAAAA", appointment, map[string]interface{}{
		"contactEmail": "resident@example.com",
		"mobile":       "09171234567",
	})

	mockRepo.On("DueForReminder", mock.Anything, mock.Anything, mock.Anything).
		Return([]documents.Document{doc}, nil)
	mockRepo.On("MarkReminded", mock.Anything, doc.ID, mock.Anything).Return(nil)

	worker.Sweep(context.Background())

	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, "ABIS-1-AAAAAA", notifier.sent[0].trackingNumber)
	assert.Equal(t, "resident@example.com", notifier.sent[0].email)
	assert.Equal(t, "09171234567", notifier.sent[0].phone)
	assert.True(t, notifier.sent[0].when.Equal(appointment))
	mockRepo.AssertExpectations(t)
}

func TestSweepSkipsContactlessButMarksThem(t *testing.T) {
	mockRepo := new(MockRepository)
	notifier := &recordingNotifier{}
	worker := NewWorker(mockRepo, notifier, zap.NewNop())

	doc := dueDocument("ABIS-2-BBBBBB", time.Now().Add(2*time.Hour), map[string]interface{}{})

	mockRepo.On("DueForReminder", mock.Anything, mock.Anything, mock.Anything).
		Return([]documents.Document{doc}, nil)
	mockRepo.On("MarkReminded", mock.Anything, doc.ID, mock.Anything).Return(nil)

	worker.Sweep(context.Background())

	assert.Empty(t, notifier.sent)
	mockRepo.AssertExpectations(t)
}

func TestSweepQueryFailureIsQuiet(t *testing.T) {
	mockRepo := new(MockRepository)
	notifier := &recordingNotifier{}
	worker := NewWorker(mockRepo, notifier, zap.NewNop())

	mockRepo.On("DueForReminder", mock.Anything, mock.Anything, mock.Anything).
		Return([]documents.Document(nil), context.DeadlineExceeded)

	worker.Sweep(context.Background())

	assert.Empty(t, notifier.sent)
	mockRepo.AssertNotCalled(t, "MarkReminded", mock.Anything, mock.Anything, mock.Anything)
}
