package payments

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/museobook/museum-ticketing-platform/internal/http/middleware"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// SignatureVerifier checks a checkout callback signature.
type SignatureVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

// TicketStore is the write-side the verify handler needs.
type TicketStore interface {
	Create(ctx context.Context, t *tickets.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*tickets.Ticket, error)
}

// BookingRecorder records booking analytics, best-effort.
type BookingRecorder interface {
	RecordBooking(ctx context.Context, t *tickets.Ticket) error
}

// Notifier sends the booking confirmation email, best-effort.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, email string, t *tickets.Ticket) error
}

// VerifyHandler closes the loop on a chat-initiated payment: the client posts
// the gateway callback (order id, payment id, signature) plus the order
// details the chat step handed it, and on a valid signature the booked
// ticket is created.
type VerifyHandler struct {
	verifier  SignatureVerifier
	store     TicketStore
	analytics BookingRecorder
	notifier  Notifier
	logger    *logging.Logger
}

// NewVerifyHandler creates the payment verification handler.
func NewVerifyHandler(verifier SignatureVerifier, store TicketStore, analytics BookingRecorder, notifier Notifier, logger *logging.Logger) *VerifyHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &VerifyHandler{
		verifier:  verifier,
		store:     store,
		analytics: analytics,
		notifier:  notifier,
		logger:    logger,
	}
}

type verifyRequest struct {
	OrderID    string `json:"orderId"`
	PaymentID  string `json:"paymentId"`
	Signature  string `json:"signature"`
	MuseumName string `json:"museumName"`
	VisitDate  string `json:"visitDate"`
	Visitors   int    `json:"visitors"`
	Amount     int64  `json:"amount"` // minor currency units
}

// Verify validates the signature and persists the booked ticket.
func (h *VerifyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpmiddleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		http.Error(w, "orderId, paymentId and signature are required", http.StatusBadRequest)
		return
	}
	if req.MuseumName == "" || req.VisitDate == "" || req.Visitors <= 0 {
		http.Error(w, "museumName, visitDate and visitors are required", http.StatusBadRequest)
		return
	}

	if !h.verifier.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		h.logger.Warn("payment signature mismatch", "order_id", req.OrderID, "user_id", userID)
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	ticket := &tickets.Ticket{
		UserID:     userID,
		MuseumName: req.MuseumName,
		VisitDate:  req.VisitDate,
		Price:      req.Amount / 100,
		PaymentRef: req.PaymentID,
		Visitors:   req.Visitors,
		Status:     tickets.StatusBooked,
	}
	if err := h.store.Create(r.Context(), ticket); err != nil {
		h.logger.Error("ticket create failed after verified payment",
			"order_id", req.OrderID,
			"payment_id", req.PaymentID,
			"error", err,
		)
		http.Error(w, "failed to record ticket", http.StatusInternalServerError)
		return
	}

	// Side effects after the ticket is committed; neither may block or
	// undo the booking.
	if h.analytics != nil {
		if err := h.analytics.RecordBooking(r.Context(), ticket); err != nil {
			h.logger.Warn("booking analytics failed", "ticket_id", ticket.ID, "error", err)
		}
	}
	if h.notifier != nil {
		if full, err := h.store.GetByID(r.Context(), ticket.ID); err == nil && full.UserEmail != "" {
			if err := h.notifier.SendBookingConfirmation(r.Context(), full.UserEmail, full); err != nil {
				h.logger.Warn("booking confirmation email failed", "ticket_id", ticket.ID, "error", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "confirmed",
		"ticketId": ticket.ID,
	})
}
