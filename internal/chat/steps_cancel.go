package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/museobook/museum-ticketing-platform/internal/museums"
	"github.com/museobook/museum-ticketing-platform/internal/payments"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
)

func (e *Engine) handleConfirmCancel(sess *Session, message string) Reply {
	idx, err := strconv.Atoi(strings.TrimSpace(message))
	if err != nil || idx < 1 || idx > len(sess.Tickets) {
		if len(sess.Tickets) == 0 {
			sess.resetToMenu()
			return menuReply("I don't have a booking list to pick from anymore. Let's start again.")
		}
		return Reply{
			Message: fmt.Sprintf("Please pick a booking by its number, 1 to %d.", len(sess.Tickets)),
			Options: nil,
		}
	}

	t := sess.Tickets[idx-1]
	sess.SelectedTicket = &t
	sess.Step = StepFinalCancel
	return Reply{
		Message: fmt.Sprintf("You want to cancel %s on %s for %d visitor(s). This will refund %d. Are you sure?",
			t.MuseumName, t.VisitDate, t.Visitors, t.Price),
		Options: []string{"Yes", "No"},
	}
}

func (e *Engine) handleFinalCancel(ctx context.Context, sess *Session, ident Identity, message string) Reply {
	n := normalize(message)
	switch {
	case strings.Contains(n, "yes"):
		if sess.SelectedTicket == nil {
			sess.resetToMenu()
			return menuReply("I lost track of which booking to cancel. Let's start again.")
		}
		reply := e.cancelTicket(ctx, sess, ident)
		sess.SelectedTicket = nil
		sess.Tickets = nil
		sess.Step = StepMainMenu
		return reply
	case strings.Contains(n, "no"):
		sess.SelectedTicket = nil
		sess.Tickets = nil
		sess.resetToMenu()
		return menuReply("No problem, your booking is safe. What else can I do for you?")
	default:
		return Reply{Message: "Please answer Yes to cancel or No to keep the booking.", Options: []string{"Yes", "No"}}
	}
}

// cancelTicket runs the cancellation procedure against the current database
// state: the session's copy of the ticket is only a pointer to which one.
func (e *Engine) cancelTicket(ctx context.Context, sess *Session, ident Identity) Reply {
	t, err := e.tickets.GetByID(ctx, sess.SelectedTicket.ID)
	if err != nil {
		if errors.Is(err, tickets.ErrTicketNotFound) {
			return menuReply("I couldn't find that booking anymore. It may have already been removed.")
		}
		e.logger.Error("ticket fetch failed", "ticket_id", sess.SelectedTicket.ID, "error", err)
		return menuReply("Sorry, something went wrong. Your booking was not changed; please try again.")
	}
	if t.UserID != ident.UserID {
		e.logger.Warn("cancellation attempted on another user's ticket", "ticket_id", t.ID, "user_id", ident.UserID)
		return menuReply("I couldn't find that booking among yours.")
	}
	if t.Status == tickets.StatusCancelled {
		return menuReply("That booking is already cancelled.")
	}
	if t.Expired(e.now()) {
		return menuReply(fmt.Sprintf("The visit date %s has already passed, so that booking can't be cancelled.", t.VisitDate))
	}

	if t.PaymentRef != "" {
		result, err := e.payments.Refund(ctx, t.PaymentRef)
		switch {
		case err == nil:
			if err := e.tickets.SetRefundProcessed(ctx, t.ID, result.Raw); err != nil {
				e.logger.Error("refund status update failed", "ticket_id", t.ID, "error", err)
			}
			t.RefundStatus = tickets.RefundProcessed
		case errors.Is(err, payments.ErrAlreadyRefunded):
			// A retried cancellation lands here; the money already moved.
			if err := e.tickets.SetRefundProcessed(ctx, t.ID, nil); err != nil {
				e.logger.Error("refund status update failed", "ticket_id", t.ID, "error", err)
			}
			t.RefundStatus = tickets.RefundProcessed
		default:
			e.logger.Error("refund failed", "ticket_id", t.ID, "payment_ref", t.PaymentRef, "error", err)
			return menuReply("The refund could not be processed, so I haven't cancelled the booking. Please try again or contact support.")
		}
	}

	if err := e.tickets.MarkCancelled(ctx, t.ID); err != nil {
		e.logger.Error("mark cancelled failed", "ticket_id", t.ID, "error", err)
		return menuReply("The refund went through but I couldn't update the booking. Please contact support.")
	}
	t.Status = tickets.StatusCancelled
	e.metrics.ObserveCancellation()

	if e.analytics != nil {
		if err := e.analytics.RecordCancellation(ctx, t); err != nil {
			e.logger.Warn("cancellation analytics failed", "ticket_id", t.ID, "error", err)
		}
	}
	if e.notifier != nil && t.UserEmail != "" {
		if err := e.notifier.SendCancellationNotice(ctx, t.UserEmail, t); err != nil {
			e.logger.Warn("cancellation email failed", "ticket_id", t.ID, "error", err)
		}
	}
	e.returnInventory(ctx, t)

	msg := fmt.Sprintf("Done! Your booking for %s on %s is cancelled.", t.MuseumName, t.VisitDate)
	if t.RefundStatus == tickets.RefundProcessed {
		msg += " Your refund is on its way."
	}
	return menuReply(msg)
}

// returnInventory puts the cancelled seats back on the date. A missing
// museum row (renamed or removed since booking) is logged and skipped.
func (e *Engine) returnInventory(ctx context.Context, t *tickets.Ticket) {
	m, err := e.museums.GetByName(ctx, t.MuseumName)
	if err != nil {
		if errors.Is(err, museums.ErrMuseumNotFound) {
			e.logger.Warn("museum gone, skipping inventory return", "museum", t.MuseumName, "ticket_id", t.ID)
			return
		}
		e.logger.Error("museum lookup failed during inventory return", "museum", t.MuseumName, "error", err)
		return
	}
	if err := e.museums.ReleaseTickets(ctx, m.ID, t.VisitDate, t.Visitors); err != nil {
		e.logger.Error("inventory return failed", "museum_id", m.ID, "date", t.VisitDate, "error", err)
	}
}
