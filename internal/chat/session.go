package chat

import (
	"time"

	"github.com/museobook/museum-ticketing-platform/internal/tickets"
)

// Step names the conversation state. The zero value is the greeting gate: a
// brand-new session has no step until the visitor says hi.
type Step string

const (
	StepGreeting         Step = ""
	StepMainMenu         Step = "main_menu"
	StepSelectMuseum     Step = "select_museum"
	StepSelectDate       Step = "select_date"
	StepSelectTickets    Step = "select_tickets"
	StepPayment          Step = "payment"
	StepConfirmCancel    Step = "confirm_cancel"
	StepFinalCancel      Step = "final_cancel"
	StepAfterTicketCheck Step = "after_ticket_check"
)

// PaymentDetails is the order reference bundle handed to the client when a
// payment order is opened. The client posts it back on /payments/verify.
type PaymentDetails struct {
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"` // minor currency units
	Currency   string `json:"currency"`
	Quantity   int    `json:"quantity"`
	VisitDate  string `json:"date"`
	MuseumID   string `json:"museumId"`
	MuseumName string `json:"museumName"`
}

// Session is the conversation state machine cursor. It is serialized to the
// client with every response and must be posted back verbatim on the next
// turn; the server keeps nothing between turns. Whatever the client drops
// is gone.
type Session struct {
	ConversationID         string           `json:"conversationId,omitempty"`
	Step                   Step             `json:"step,omitempty"`
	LastInteraction        int64            `json:"lastInteraction,omitempty"` // epoch millis
	SelectedMuseum         string           `json:"selectedMuseum,omitempty"`
	SelectedMuseumID       string           `json:"selectedMuseumId,omitempty"`
	SelectedTicketPrice    int64            `json:"selectedTicketPrice,omitempty"`
	SelectedDate           string           `json:"selectedDate,omitempty"`
	AvailableTickets       int              `json:"availableTickets,omitempty"`
	NumTickets             int              `json:"numTickets,omitempty"`
	TotalPrice             int64            `json:"totalPrice,omitempty"`
	Tickets                []tickets.Ticket `json:"tickets,omitempty"`
	SelectedTicket         *tickets.Ticket  `json:"selectedTicket,omitempty"`
	AwaitingCustomQuestion bool             `json:"awaitingCustomQuestion,omitempty"`
	PaymentDetails         *PaymentDetails  `json:"paymentDetails,omitempty"`
}

// Reply is the assistant's answer for one turn: a message plus suggested
// quick-reply options.
type Reply struct {
	Message string   `json:"message"`
	Options []string `json:"options"`
}

// Touch stamps the last-interaction clock.
func (s *Session) Touch(now time.Time) {
	s.LastInteraction = now.UnixMilli()
}

// resetToMenu drops all in-flight booking/cancellation state and puts the
// conversation back at the main menu. The conversation id and interaction
// clock survive.
func (s *Session) resetToMenu() {
	*s = Session{
		ConversationID:  s.ConversationID,
		Step:            StepMainMenu,
		LastInteraction: s.LastInteraction,
	}
}

// clearBookingSelection drops the museum/date/quantity accumulated by the
// booking flow, keeping the rest of the session intact.
func (s *Session) clearBookingSelection() {
	s.SelectedMuseum = ""
	s.SelectedMuseumID = ""
	s.SelectedTicketPrice = 0
	s.SelectedDate = ""
	s.AvailableTickets = 0
	s.NumTickets = 0
	s.TotalPrice = 0
}
