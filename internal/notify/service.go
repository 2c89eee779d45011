package notify

import (
	"context"
	"fmt"

	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// Service composes ticket lifecycle emails. All sends are best-effort: the
// caller logs failures and moves on.
type Service struct {
	sender EmailSender
	logger *logging.Logger
}

// NewService creates the notification service.
func NewService(sender EmailSender, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	return &Service{sender: sender, logger: logger}
}

// SendBookingConfirmation emails the visitor after a verified payment.
func (s *Service) SendBookingConfirmation(ctx context.Context, email string, t *tickets.Ticket) error {
	msg := EmailMessage{
		To:      email,
		Subject: fmt.Sprintf("Your tickets for %s", t.MuseumName),
		Body: fmt.Sprintf(
			"Your booking is confirmed!\n\nMuseum: %s\nDate: %s\nVisitors: %d\nTotal paid: %d\n\nShow this email at the entrance. Enjoy your visit!",
			t.MuseumName, t.VisitDate, t.Visitors, t.Price,
		),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

// SendCancellationNotice emails the visitor after a cancellation+refund.
func (s *Service) SendCancellationNotice(ctx context.Context, email string, t *tickets.Ticket) error {
	body := fmt.Sprintf(
		"Your booking has been cancelled.\n\nMuseum: %s\nDate: %s\nVisitors: %d\n",
		t.MuseumName, t.VisitDate, t.Visitors,
	)
	if t.RefundStatus == tickets.RefundProcessed {
		body += fmt.Sprintf("\nA refund of %d has been initiated and should reach you within 5-7 business days.", t.Price)
	}
	msg := EmailMessage{
		To:      email,
		Subject: fmt.Sprintf("Cancellation confirmed: %s", t.MuseumName),
		Body:    body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: cancellation notice: %w", err)
	}
	return nil
}
