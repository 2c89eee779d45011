package museums

import (
	"time"

	"github.com/google/uuid"
)

// Museum is a bookable venue with a fixed per-day base capacity.
type Museum struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	TicketPrice  int64     `json:"ticketPrice"` // whole currency units per visitor
	BaseCapacity int       `json:"baseCapacity"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the listing view surfaced to the chat menu and the museums API.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	TicketPrice int64     `json:"ticketPrice"`
}

// DailyStat tracks per-date inventory for a museum. Rows are created lazily
// the first time a visitor picks the date, seeded from the museum's base
// capacity.
type DailyStat struct {
	MuseumID         uuid.UUID `json:"museumId"`
	VisitDate        string    `json:"visitDate"` // YYYY-MM-DD
	AvailableTickets int       `json:"availableTickets"`
	BookedTickets    int       `json:"bookedTickets"`
}
