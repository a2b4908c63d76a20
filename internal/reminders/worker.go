package reminders

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"barangay-abis/backend/internal/documents"
)

const reminderWindow = 24 * time.Hour

// Notifier is the outbound channel the sweep dispatches through.
type Notifier interface {
	AppointmentReminder(ctx context.Context, trackingNumber string, when time.Time, email, phone string)
}

// Worker reminds requesters of appointments coming up within the next day.
// Each document is reminded at most once; the sweep stamps reminderSentAt
// before moving on so a crash cannot double-send more than the current batch.
type Worker struct {
	cron     *cron.Cron
	repo     documents.Repository
	notifier Notifier
	logger   *zap.Logger
	mu       sync.Mutex
	running  bool
}

func NewWorker(repo documents.Repository, notifier Notifier, logger *zap.Logger) *Worker {
	return &Worker{
		cron:     cron.New(),
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Start schedules the hourly sweep. Safe to call once.
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if _, err := w.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		w.Sweep(ctx)
	}); err != nil {
		return err
	}
	w.cron.Start()
	w.running = true
	w.logger.Info("appointment reminder worker started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	<-w.cron.Stop().Done()
	w.running = false
	w.logger.Info("appointment reminder worker stopped")
}

// Sweep sends one reminder per due document. Failures are logged and the
// sweep carries on; the document stays unmarked so the next run retries it.
func (w *Worker) Sweep(ctx context.Context) {
	now := time.Now()
	due, err := w.repo.DueForReminder(ctx, now, now.Add(reminderWindow))
	if err != nil {
		w.logger.Error("reminder sweep query failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	w.logger.Info("reminder sweep", zap.Int("due", len(due)))

	for i := range due {
		d := &due[i]
		when := documents.ResolveAppointment(d)
		if when == nil {
			continue
		}
		email := documents.ContactEmail(d.FormData)
		phone := documents.ContactPhone(d.FormData)
		if email == "" && phone == "" {
			// Nothing to send to; mark it so the sweep stops re-reading it.
			w.mark(ctx, d, now)
			continue
		}

		w.notifier.AppointmentReminder(ctx, d.TrackingNumber, *when, email, phone)
		w.mark(ctx, d, now)
	}
}

func (w *Worker) mark(ctx context.Context, d *documents.Document, at time.Time) {
	if err := w.repo.MarkReminded(ctx, d.ID, at); err != nil {
		w.logger.Error("mark reminded failed",
			zap.String("trackingNumber", d.TrackingNumber),
			zap.Error(err))
	}
}
