package notifications

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service dispatches status notifications to residents. Every send is
// best-effort: failures are logged and swallowed so they can never fail the
// state change that triggered them.
type Service struct {
	mailer Mailer
	texter Texter
	logger *zap.Logger
}

func NewService(mailer Mailer, texter Texter, logger *zap.Logger) *Service {
	return &Service{mailer: mailer, texter: texter, logger: logger}
}

// StatusChanged tells the requester their document request moved to a new
// status. Either contact may be empty.
func (s *Service) StatusChanged(ctx context.Context, trackingNumber, status, email, phone string) {
	subject := fmt.Sprintf("Your document request %s status: %s", trackingNumber, status)
	body := fmt.Sprintf("Your request (%s) is now '%s'.", trackingNumber, status)
	s.dispatch(ctx, trackingNumber, subject, body, email, phone)
}

// CertificateReady tells the requester their certificate can be picked up or
// downloaded.
func (s *Service) CertificateReady(ctx context.Context, trackingNumber, email, phone string) {
	subject := fmt.Sprintf("Your certificate for %s is ready", trackingNumber)
	body := fmt.Sprintf("The certificate for your request (%s) is ready for pickup or download.", trackingNumber)
	s.dispatch(ctx, trackingNumber, subject, body, email, phone)
}

// AppointmentReminder reminds the requester of an upcoming appointment.
func (s *Service) AppointmentReminder(ctx context.Context, trackingNumber string, when time.Time, email, phone string) {
	subject := fmt.Sprintf("Appointment reminder for %s", trackingNumber)
	body := fmt.Sprintf("Reminder: your appointment for request %s is scheduled at %s.",
		trackingNumber, when.Format("Jan 2, 2006 3:04 PM"))
	s.dispatch(ctx, trackingNumber, subject, body, email, phone)
}

func (s *Service) dispatch(ctx context.Context, trackingNumber, subject, body, email, phone string) {
	if email != "" {
		if err := s.mailer.Send(ctx, email, subject, body); err != nil {
			s.logger.Warn("failed to send notification email",
				zap.String("trackingNumber", trackingNumber), zap.Error(err))
		}
	}
	if phone != "" {
		if err := s.texter.Send(ctx, phone, body); err != nil {
			s.logger.Warn("failed to send notification sms",
				zap.String("trackingNumber", trackingNumber), zap.Error(err))
		}
	}
}
