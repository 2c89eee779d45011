package tickets

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Ticket statuses. Cancellation flips the flag; rows are never deleted.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// RefundProcessed marks a refund that has gone through (or that the gateway
// reported as already fully refunded).
const RefundProcessed = "processed"

// Ticket is a purchased booking for a museum visit.
type Ticket struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"userId"`
	UserEmail     string          `json:"userEmail,omitempty"`
	MuseumName    string          `json:"museumName"`
	VisitDate     string          `json:"visitDate"` // YYYY-MM-DD
	Price         int64           `json:"price"`     // total, whole currency units
	PaymentRef    string          `json:"paymentRef,omitempty"`
	Visitors      int             `json:"visitors"`
	Status        string          `json:"status"`
	RefundStatus  string          `json:"refundStatus,omitempty"`
	RefundPayload json.RawMessage `json:"refundPayload,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Expired reports whether the visit date is strictly before today.
// Both sides are normalized to midnight, so a same-day ticket is not
// expired.
func (t *Ticket) Expired(now time.Time) bool {
	visit, err := time.ParseInLocation("2006-01-02", t.VisitDate, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return visit.Before(today)
}
