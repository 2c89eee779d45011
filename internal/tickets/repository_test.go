package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketRowColumns = []string{
	"id", "user_id", "email", "museum_name", "visit_date",
	"price", "payment_ref", "visitors", "status",
	"refund_status", "refund_payload", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestGetByID(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SELECT").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(ticketRowColumns).AddRow(
			id, "user-1", "visitor@example.com", "City Museum", "2099-01-01",
			int64(750), "pay_123", 3, StatusBooked,
			"", []byte(nil), now, now,
		))

	repo := NewPostgresRepository(mock)
	ticket, err := repo.GetByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "visitor@example.com", ticket.UserEmail)
	assert.Equal(t, 3, ticket.Visitors)
	assert.Equal(t, StatusBooked, ticket.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(ticketRowColumns))

	repo := NewPostgresRepository(mock)
	_, err := repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestListActiveByUser(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("SELECT").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(ticketRowColumns).
			AddRow(uuid.New(), "user-1", "", "City Museum", "2099-01-01",
				int64(250), "pay_1", 1, StatusBooked, "", []byte(nil), now, now).
			AddRow(uuid.New(), "user-1", "", "Science Museum", "2099-02-01",
				int64(500), "pay_2", 2, StatusBooked, "", []byte(nil), now, now))

	repo := NewPostgresRepository(mock)
	list, err := repo.ListActiveByUser(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Science Museum", list[1].MuseumName)
}

func TestCreate(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO tickets").
		WithArgs(pgxmock.AnyArg(), "user-1", "City Museum", "2099-01-01", int64(750), "pay_123", 3, StatusBooked).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	repo := NewPostgresRepository(mock)
	ticket := &Ticket{
		UserID:     "user-1",
		MuseumName: "City Museum",
		VisitDate:  "2099-01-01",
		Price:      750,
		PaymentRef: "pay_123",
		Visitors:   3,
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	assert.NotEqual(t, uuid.Nil, ticket.ID)
	assert.Equal(t, StatusBooked, ticket.Status)
}

func TestMarkCancelled_NotFound(t *testing.T) {
	mock := newMock(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE tickets").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewPostgresRepository(mock)
	assert.ErrorIs(t, repo.MarkCancelled(context.Background(), id), ErrTicketNotFound)
}

func TestTicketExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

	past := &Ticket{VisitDate: "2026-08-30"}
	today := &Ticket{VisitDate: "2026-08-31"}
	future := &Ticket{VisitDate: "2026-09-01"}

	assert.True(t, past.Expired(now))
	assert.False(t, today.Expired(now), "same-day tickets are still cancellable")
	assert.False(t, future.Expired(now))
}
