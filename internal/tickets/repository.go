package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrTicketNotFound signals a lookup miss by id.
var ErrTicketNotFound = errors.New("tickets: ticket not found")

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores ticket records.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("tickets: db required")
	}
	return &PostgresRepository{db: db}
}

const ticketColumns = `
	t.id, t.user_id, COALESCE(u.email, ''), t.museum_name, t.visit_date,
	t.price, COALESCE(t.payment_ref, ''), t.visitors, t.status,
	COALESCE(t.refund_status, ''), t.refund_payload, t.created_at, t.updated_at
`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(
		&t.ID, &t.UserID, &t.UserEmail, &t.MuseumName, &t.VisitDate,
		&t.Price, &t.PaymentRef, &t.Visitors, &t.Status,
		&t.RefundStatus, &t.RefundPayload, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new booked ticket.
func (r *PostgresRepository) Create(ctx context.Context, t *Ticket) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = StatusBooked
	}
	query := `
		INSERT INTO tickets (id, user_id, museum_name, visit_date, price, payment_ref, visitors, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		t.ID, t.UserID, t.MuseumName, t.VisitDate, t.Price, t.PaymentRef, t.Visitors, t.Status,
	).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("tickets: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a ticket, resolving the owner's email when one exists.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.id = $1
	`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("tickets: select by id: %w", err)
	}
	return t, nil
}

// ListByUser returns all of a user's tickets, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
}

// ListActiveByUser returns a user's tickets that are still booked.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string) ([]Ticket, error) {
	return r.list(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets t
		LEFT JOIN users u ON u.id = t.user_id
		WHERE t.user_id = $1 AND t.status = 'booked'
		ORDER BY t.created_at DESC
	`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Ticket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tickets: list: %w", err)
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("tickets: scan: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tickets: list: %w", err)
	}
	return out, nil
}

// MarkCancelled flips the ticket to cancelled and stamps the update time.
func (r *PostgresRepository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tickets SET status = 'cancelled', updated_at = $2
		WHERE id = $1
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("tickets: mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// SetRefundProcessed records a completed refund and its gateway payload.
func (r *PostgresRepository) SetRefundProcessed(ctx context.Context, id uuid.UUID, payload []byte) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tickets SET refund_status = 'processed', refund_payload = $2, updated_at = $3
		WHERE id = $1
	`, id, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("tickets: set refund processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketNotFound
	}
	return nil
}
