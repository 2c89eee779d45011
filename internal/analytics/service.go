package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Service maintains per-museum booking/revenue counters. Every call is
// best-effort from the caller's point of view: failures are reported back
// for logging but must never block or roll back the operation that
// triggered them.
type Service struct {
	db     db
	logger *logging.Logger
}

// NewService creates the analytics service.
func NewService(db db, logger *logging.Logger) *Service {
	if db == nil {
		panic("analytics: db required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, logger: logger}
}

// RecordBooking bumps booking and revenue counters for the ticket's museum.
func (s *Service) RecordBooking(ctx context.Context, t *tickets.Ticket) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO museum_analytics (museum_name, bookings, revenue, cancellations)
		VALUES ($1, 1, $2, 0)
		ON CONFLICT (museum_name) DO UPDATE SET
			bookings = museum_analytics.bookings + 1,
			revenue = museum_analytics.revenue + EXCLUDED.revenue
	`, t.MuseumName, t.Price)
	if err != nil {
		return fmt.Errorf("analytics: record booking: %w", err)
	}
	return nil
}

// RecordCancellation reverses a booking's counters, flooring at zero, and
// bumps the cancellation count.
func (s *Service) RecordCancellation(ctx context.Context, t *tickets.Ticket) error {
	_, err := s.db.Exec(ctx, `
		UPDATE museum_analytics SET
			bookings = GREATEST(bookings - 1, 0),
			revenue = GREATEST(revenue - $2, 0),
			cancellations = cancellations + 1
		WHERE museum_name = $1
	`, t.MuseumName, t.Price)
	if err != nil {
		return fmt.Errorf("analytics: record cancellation: %w", err)
	}
	return nil
}
