package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/museobook/museum-ticketing-platform/internal/museums"
)

const visitDateLayout = "2006-01-02"

func (e *Engine) handleMainMenu(ctx context.Context, sess *Session, ident Identity, message string) Reply {
	switch detectIntent(message) {
	case IntentBook:
		names, err := e.museums.ListNames(ctx)
		if err != nil {
			e.logger.Error("list museums failed", "error", err)
			return menuReply("Sorry, I couldn't load the museum list right now. Please try again in a moment.")
		}
		if len(names) == 0 {
			return menuReply("There are no museums available for booking at the moment. Please check back later.")
		}
		sess.clearBookingSelection()
		sess.Step = StepSelectMuseum
		return Reply{Message: "Great! Which museum would you like to visit?", Options: names}

	case IntentCheckTickets:
		if !ident.Authenticated {
			return menuReply("You need to be signed in to see your tickets. Please log in and come back!")
		}
		list, err := e.tickets.ListByUser(ctx, ident.UserID)
		if err != nil {
			e.logger.Error("list tickets failed", "user_id", ident.UserID, "error", err)
			return menuReply("Sorry, I couldn't fetch your tickets right now. Please try again in a moment.")
		}
		if len(list) == 0 {
			return menuReply("You don't have any tickets yet. Would you like to book some?")
		}
		var b strings.Builder
		b.WriteString("Here are your tickets:\n")
		for i, t := range list {
			fmt.Fprintf(&b, "%d. %s on %s, %d visitor(s), %s\n", i+1, t.MuseumName, t.VisitDate, t.Visitors, t.Status)
		}
		sess.Step = StepAfterTicketCheck
		return Reply{Message: strings.TrimRight(b.String(), "\n"), Options: mainMenuOptions}

	case IntentCancel:
		if !ident.Authenticated {
			return menuReply("You need to be signed in to cancel a booking. Please log in and come back!")
		}
		active, err := e.tickets.ListActiveByUser(ctx, ident.UserID)
		if err != nil {
			e.logger.Error("list active tickets failed", "user_id", ident.UserID, "error", err)
			return menuReply("Sorry, I couldn't fetch your bookings right now. Please try again in a moment.")
		}
		if len(active) == 0 {
			return menuReply("You have no active bookings to cancel.")
		}
		sess.Tickets = active
		sess.Step = StepConfirmCancel
		options := make([]string, 0, len(active))
		var b strings.Builder
		b.WriteString("Which booking would you like to cancel?\n")
		for i, t := range active {
			fmt.Fprintf(&b, "%d. %s on %s, %d visitor(s)\n", i+1, t.MuseumName, t.VisitDate, t.Visitors)
			options = append(options, strconv.Itoa(i+1))
		}
		return Reply{Message: strings.TrimRight(b.String(), "\n"), Options: options}

	default:
		return menuReply("I didn't quite catch that. Here's what I can help you with:")
	}
}

func (e *Engine) handleSelectMuseum(ctx context.Context, sess *Session, message string) Reply {
	m, err := e.museums.GetByName(ctx, strings.TrimSpace(message))
	if err != nil {
		if errors.Is(err, museums.ErrMuseumNotFound) {
			summaries, listErr := e.museums.ListSummaries(ctx)
			if listErr != nil {
				e.logger.Error("list summaries failed", "error", listErr)
				return menuReply("Sorry, something went wrong. Let's go back to the main menu.")
			}
			options := make([]string, 0, len(summaries))
			var b strings.Builder
			b.WriteString("I don't know that one. Here are the museums I can book:\n")
			for _, s := range summaries {
				fmt.Fprintf(&b, "- %s (%s), tickets from %d\n", s.Name, s.Location, s.TicketPrice)
				options = append(options, s.Name)
			}
			return Reply{Message: strings.TrimRight(b.String(), "\n"), Options: options}
		}
		e.logger.Error("museum lookup failed", "error", err)
		return menuReply("Sorry, something went wrong looking that museum up. Please try again.")
	}

	sess.SelectedMuseum = m.Name
	sess.SelectedMuseumID = m.ID.String()
	sess.SelectedTicketPrice = m.TicketPrice
	sess.Step = StepSelectDate
	return Reply{
		Message: fmt.Sprintf("%s, great choice! What date would you like to visit? (YYYY-MM-DD)", m.Name),
		Options: nil,
	}
}

func (e *Engine) handleSelectDate(ctx context.Context, sess *Session, message string, now time.Time) Reply {
	raw := strings.TrimSpace(message)
	date, err := time.Parse(visitDateLayout, raw)
	if err != nil || len(raw) != len(visitDateLayout) {
		return Reply{Message: "Please give me the date as YYYY-MM-DD, for example 2026-09-15.", Options: nil}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return Reply{Message: "That date has already passed. Please pick today or a future date (YYYY-MM-DD).", Options: nil}
	}

	museumID, err := uuid.Parse(sess.SelectedMuseumID)
	if err != nil {
		e.logger.Warn("session carried bad museum id", "museum_id", sess.SelectedMuseumID)
		sess.resetToMenu()
		return menuReply("Sorry, I lost track of your museum selection. Let's start again.")
	}
	stat, err := e.museums.EnsureDailyStat(ctx, museumID, raw)
	if err != nil {
		e.logger.Error("availability check failed", "museum_id", sess.SelectedMuseumID, "date", raw, "error", err)
		sess.resetToMenu()
		return menuReply("Sorry, I couldn't check availability for that date. Let's go back to the main menu.")
	}
	if stat.AvailableTickets <= 0 {
		return Reply{Message: fmt.Sprintf("%s is sold out on %s. Would you like to try another date?", sess.SelectedMuseum, raw), Options: nil}
	}

	sess.SelectedDate = raw
	sess.AvailableTickets = stat.AvailableTickets
	sess.Step = StepSelectTickets
	return Reply{
		Message: fmt.Sprintf("There are %d tickets available on %s. How many would you like? (up to %d)",
			stat.AvailableTickets, raw, e.maxTickets),
		Options: nil,
	}
}

func (e *Engine) handleSelectTickets(sess *Session, message string) Reply {
	n, err := strconv.Atoi(strings.TrimSpace(message))
	if err != nil || n <= 0 {
		return Reply{Message: "Please enter the number of tickets as a whole number, for example 2.", Options: nil}
	}
	if n > e.maxTickets {
		return Reply{Message: fmt.Sprintf("I can book at most %d tickets per booking. How many would you like?", e.maxTickets), Options: nil}
	}
	if n > sess.AvailableTickets {
		return Reply{Message: fmt.Sprintf("Only %d tickets are left for that date. How many would you like?", sess.AvailableTickets), Options: nil}
	}

	sess.NumTickets = n
	sess.TotalPrice = int64(n) * sess.SelectedTicketPrice
	sess.Step = StepPayment
	return Reply{
		Message: fmt.Sprintf("%d ticket(s) for %s on %s comes to %d. Shall we proceed to payment?",
			n, sess.SelectedMuseum, sess.SelectedDate, sess.TotalPrice),
		Options: []string{"Proceed to payment", "Restart"},
	}
}

func (e *Engine) handlePayment(ctx context.Context, sess *Session, message string) Reply {
	if !strings.EqualFold(strings.TrimSpace(message), "proceed to payment") {
		return Reply{
			Message: "When you're ready, say \"Proceed to payment\", or say \"restart\" to begin again.",
			Options: []string{"Proceed to payment", "Restart"},
		}
	}

	// Re-fetch the museum so a stale session price can't be charged.
	m, err := e.museums.GetByName(ctx, sess.SelectedMuseum)
	if err != nil {
		e.logger.Error("museum refetch failed", "museum", sess.SelectedMuseum, "error", err)
		sess.resetToMenu()
		return menuReply("Sorry, I couldn't find that museum anymore. Let's start again.")
	}
	stat, err := e.museums.EnsureDailyStat(ctx, m.ID, sess.SelectedDate)
	if err != nil {
		e.logger.Error("daily stat ensure failed", "museum_id", m.ID, "date", sess.SelectedDate, "error", err)
		sess.resetToMenu()
		return menuReply("Sorry, something went wrong preparing your booking. Let's start again.")
	}

	if err := e.museums.ReserveTickets(ctx, m.ID, sess.SelectedDate, sess.NumTickets); err != nil {
		if errors.Is(err, museums.ErrInsufficientTickets) {
			// A failed reserve leaves inventory untouched, so the count we
			// just read is still the one to re-offer against.
			sess.AvailableTickets = stat.AvailableTickets
			sess.Step = StepSelectTickets
			return Reply{
				Message: fmt.Sprintf("Those tickets were snapped up while we were talking. Only %d are left now; how many would you like?", stat.AvailableTickets),
				Options: nil,
			}
		}
		e.logger.Error("ticket reservation failed", "museum_id", m.ID, "date", sess.SelectedDate, "error", err)
		sess.resetToMenu()
		return menuReply("Sorry, I couldn't reserve your tickets. Please try again.")
	}

	amountMinor := int64(sess.NumTickets) * m.TicketPrice * 100
	receipt := "rcpt_" + uuid.NewString()
	order, err := e.payments.CreateOrder(ctx, amountMinor, e.currency, receipt)
	if err != nil {
		// The reservation must not leak when the order can't be opened.
		if relErr := e.museums.ReleaseTickets(ctx, m.ID, sess.SelectedDate, sess.NumTickets); relErr != nil {
			e.logger.Error("reservation release failed after order error", "museum_id", m.ID, "date", sess.SelectedDate, "error", relErr)
		}
		e.logger.Error("payment order failed", "museum", m.Name, "error", err)
		sess.resetToMenu()
		return menuReply("Sorry, I couldn't set up the payment. Your tickets were not reserved; please try again.")
	}

	e.metrics.ObservePaymentOrder()
	sess.PaymentDetails = &PaymentDetails{
		OrderID:    order.ID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Quantity:   sess.NumTickets,
		VisitDate:  sess.SelectedDate,
		MuseumID:   m.ID.String(),
		MuseumName: m.Name,
	}
	sess.Step = StepMainMenu
	return Reply{
		Message: fmt.Sprintf("Your tickets are reserved! Complete the payment of %d to confirm your booking for %s on %s.",
			order.Amount/100, m.Name, sess.SelectedDate),
		Options: []string{"Pay now"},
	}
}
