package museums

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrMuseumNotFound signals a lookup miss by name or id.
	ErrMuseumNotFound = errors.New("museums: museum not found")
	// ErrInsufficientTickets signals that a reservation asked for more
	// tickets than the date has left.
	ErrInsufficientTickets = errors.New("museums: insufficient tickets for date")
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores museums and their per-date inventory.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("museums: db required")
	}
	return &PostgresRepository{db: db}
}

// ListNames returns every museum name, ordered for stable menus.
func (r *PostgresRepository) ListNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT name FROM museums ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("museums: list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("museums: scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("museums: list names: %w", err)
	}
	return names, nil
}

// ListSummaries returns the listing view (name, location, price).
func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, location, ticket_price
		FROM museums
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("museums: list summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.TicketPrice); err != nil {
			return nil, fmt.Errorf("museums: scan summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("museums: list summaries: %w", err)
	}
	return out, nil
}

// GetByName fetches a museum by exact name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Museum, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, location, ticket_price, base_capacity, created_at
		FROM museums
		WHERE name = $1
	`, name)

	var m Museum
	if err := row.Scan(&m.ID, &m.Name, &m.Location, &m.TicketPrice, &m.BaseCapacity, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMuseumNotFound
		}
		return nil, fmt.Errorf("museums: select by name: %w", err)
	}
	return &m, nil
}

// EnsureDailyStat lazily creates the inventory row for a museum+date, seeded
// from the museum's base capacity, and returns the current counts. Repeated
// calls for the same date never reseed.
func (r *PostgresRepository) EnsureDailyStat(ctx context.Context, museumID uuid.UUID, visitDate string) (*DailyStat, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO daily_stats (museum_id, visit_date, available_tickets, booked_tickets)
		SELECT id, $2, base_capacity, 0 FROM museums WHERE id = $1
		ON CONFLICT (museum_id, visit_date) DO NOTHING
	`, museumID, visitDate)
	if err != nil {
		return nil, fmt.Errorf("museums: ensure daily stat: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT museum_id, visit_date, available_tickets, booked_tickets
		FROM daily_stats
		WHERE museum_id = $1 AND visit_date = $2
	`, museumID, visitDate)

	var stat DailyStat
	if err := row.Scan(&stat.MuseumID, &stat.VisitDate, &stat.AvailableTickets, &stat.BookedTickets); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMuseumNotFound
		}
		return nil, fmt.Errorf("museums: select daily stat: %w", err)
	}
	return &stat, nil
}

// ReserveTickets atomically moves qty tickets from available to booked for
// the museum+date. Returns ErrInsufficientTickets when the date does not
// have qty tickets left; the conditional UPDATE is the only guard, so two
// concurrent reservations can never oversell.
func (r *PostgresRepository) ReserveTickets(ctx context.Context, museumID uuid.UUID, visitDate string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("museums: reserve: quantity must be positive, got %d", qty)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE daily_stats
		SET available_tickets = available_tickets - $3,
		    booked_tickets = booked_tickets + $3
		WHERE museum_id = $1 AND visit_date = $2 AND available_tickets >= $3
	`, museumID, visitDate, qty)
	if err != nil {
		return fmt.Errorf("museums: reserve tickets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTickets
	}
	return nil
}

// ReleaseTickets returns qty tickets to the pool for the museum+date.
// booked_tickets is clamped at zero so a duplicate release can never drive
// it negative.
func (r *PostgresRepository) ReleaseTickets(ctx context.Context, museumID uuid.UUID, visitDate string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("museums: release: quantity must be positive, got %d", qty)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE daily_stats
		SET available_tickets = available_tickets + $3,
		    booked_tickets = GREATEST(booked_tickets - $3, 0)
		WHERE museum_id = $1 AND visit_date = $2
	`, museumID, visitDate, qty)
	if err != nil {
		return fmt.Errorf("museums: release tickets: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMuseumNotFound
	}
	return nil
}
