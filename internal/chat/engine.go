package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/museobook/museum-ticketing-platform/internal/museums"
	"github.com/museobook/museum-ticketing-platform/internal/observability/metrics"
	"github.com/museobook/museum-ticketing-platform/internal/payments"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

var engineTracer = otel.Tracer("museobook.internal.chat.engine")

// ErrMissingMessage signals a turn with no visitor message.
var ErrMissingMessage = errors.New("chat: user message is required")

// MuseumStore is the museum/inventory surface the engine needs.
type MuseumStore interface {
	ListNames(ctx context.Context) ([]string, error)
	ListSummaries(ctx context.Context) ([]museums.Summary, error)
	GetByName(ctx context.Context, name string) (*museums.Museum, error)
	EnsureDailyStat(ctx context.Context, museumID uuid.UUID, visitDate string) (*museums.DailyStat, error)
	ReserveTickets(ctx context.Context, museumID uuid.UUID, visitDate string, qty int) error
	ReleaseTickets(ctx context.Context, museumID uuid.UUID, visitDate string, qty int) error
}

// TicketStore is the ticket persistence surface the engine needs.
type TicketStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*tickets.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]tickets.Ticket, error)
	ListActiveByUser(ctx context.Context, userID string) ([]tickets.Ticket, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) error
	SetRefundProcessed(ctx context.Context, id uuid.UUID, payload []byte) error
}

// PaymentGateway opens orders and issues refunds.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*payments.Order, error)
	Refund(ctx context.Context, paymentRef string) (*payments.RefundResult, error)
}

// QAClient answers free-form visitor questions.
type QAClient interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Notifier sends lifecycle emails.
type Notifier interface {
	SendCancellationNotice(ctx context.Context, email string, t *tickets.Ticket) error
}

// AnalyticsRecorder maintains per-museum counters.
type AnalyticsRecorder interface {
	RecordCancellation(ctx context.Context, t *tickets.Ticket) error
}

// Identity is the caller's resolved identity for a turn. Anonymous visitors
// can browse and book; ticket lookup and cancellation require auth.
type Identity struct {
	UserID        string
	Authenticated bool
}

// Config wires an Engine.
type Config struct {
	Museums     MuseumStore
	Tickets     TicketStore
	Payments    PaymentGateway
	QA          QAClient          // optional
	Notifier    Notifier          // optional
	Analytics   AnalyticsRecorder // optional
	Transcripts TranscriptStore   // optional
	Metrics     *metrics.ChatMetrics
	Logger      *logging.Logger
	Timeouts    TimeoutPolicy
	MaxTickets  int
	Currency    string
}

// Engine is the conversation state machine. Each Process call takes the
// visitor's message plus the session posted back by the client, mutates the
// session, and returns the assistant's reply.
type Engine struct {
	museums     MuseumStore
	tickets     TicketStore
	payments    PaymentGateway
	qa          QAClient
	notifier    Notifier
	analytics   AnalyticsRecorder
	transcripts TranscriptStore
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
	timeouts    TimeoutPolicy
	maxTickets  int
	currency    string

	now func() time.Time
}

// NewEngine creates the conversation engine.
func NewEngine(cfg Config) *Engine {
	if cfg.Museums == nil {
		panic("chat: museum store required")
	}
	if cfg.Tickets == nil {
		panic("chat: ticket store required")
	}
	if cfg.Payments == nil {
		panic("chat: payment gateway required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Timeouts.Timeout <= 0 {
		cfg.Timeouts = DefaultTimeoutPolicy()
	}
	if cfg.MaxTickets <= 0 {
		cfg.MaxTickets = 10
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Engine{
		museums:     cfg.Museums,
		tickets:     cfg.Tickets,
		payments:    cfg.Payments,
		qa:          cfg.QA,
		notifier:    cfg.Notifier,
		analytics:   cfg.Analytics,
		transcripts: cfg.Transcripts,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		timeouts:    cfg.Timeouts,
		maxTickets:  cfg.MaxTickets,
		currency:    cfg.Currency,
		now:         time.Now,
	}
}

var mainMenuOptions = []string{"Book tickets", "Check my tickets", "Cancel a booking", "Ask something else"}

func menuReply(message string) Reply {
	return Reply{Message: message, Options: mainMenuOptions}
}

// Process runs one conversation turn. The session is mutated in place.
func (e *Engine) Process(ctx context.Context, sess *Session, ident Identity, message string) (Reply, error) {
	ctx, span := engineTracer.Start(ctx, "chat.process")
	defer span.End()

	if message == "" {
		return Reply{}, ErrMissingMessage
	}

	// Courtesy phrases are acknowledged without advancing the state
	// machine or the inactivity clock.
	if isPoliteness(message) {
		return Reply{Message: "You're welcome! Is there anything else I can help you with?", Options: mainMenuOptions}, nil
	}

	now := e.now()
	reply := e.route(ctx, sess, ident, message, now)

	span.SetAttributes(attribute.String("chat.step", string(sess.Step)))
	e.metrics.ObserveTurn(string(sess.Step))
	e.record(ctx, sess, message, reply)
	return reply, nil
}

func (e *Engine) route(ctx context.Context, sess *Session, ident Identity, message string, now time.Time) Reply {
	switch e.timeouts.Evaluate(sess.LastInteraction, now) {
	case TimeoutReset:
		e.metrics.ObserveTimeout("reset")
		*sess = Session{ConversationID: sess.ConversationID}
		sess.Touch(now)
		return Reply{
			Message: "Your session expired due to inactivity, so I've started over. Say \"Hi\" to begin again!",
			Options: []string{"Hi"},
		}
	case TimeoutWarn:
		e.metrics.ObserveTimeout("warning")
		grace := e.timeouts.RemainingGrace(sess.LastInteraction, now)
		sess.Touch(now)
		return Reply{
			Message: fmt.Sprintf("Are you still there? Your session will reset in about %d minute(s) if I don't hear from you.", int(grace.Minutes())+1),
		}
	}
	sess.Touch(now)

	// Greeting gate: a fresh session only opens on "hi". This outranks
	// every keyword, restart included; there is nothing to restart yet.
	if sess.Step == StepGreeting {
		if isGreeting(message) {
			sess.Step = StepMainMenu
			return menuReply("Hello! Welcome to MuseoBook. I can help you book museum tickets, check your bookings, or answer questions. What would you like to do?")
		}
		return Reply{Message: "Say \"Hi\" to get started!", Options: []string{"Hi"}}
	}

	// Restart is honored from any opened step.
	if wantsRestart(message) {
		sess.resetToMenu()
		return menuReply("No problem, let's start over! What would you like to do?")
	}

	// A pending free-form question takes priority over step routing.
	if sess.AwaitingCustomQuestion {
		return e.handleCustomQuestion(ctx, sess, message)
	}
	if detectIntent(message) == IntentAskElse {
		return e.enterCustomQuestion(sess)
	}

	switch sess.Step {
	case StepAfterTicketCheck:
		// Any input after a ticket listing lands back at the menu.
		sess.Step = StepMainMenu
		return e.handleMainMenu(ctx, sess, ident, message)
	case StepMainMenu:
		return e.handleMainMenu(ctx, sess, ident, message)
	case StepSelectMuseum:
		return e.handleSelectMuseum(ctx, sess, message)
	case StepSelectDate:
		return e.handleSelectDate(ctx, sess, message, now)
	case StepSelectTickets:
		return e.handleSelectTickets(sess, message)
	case StepPayment:
		return e.handlePayment(ctx, sess, message)
	case StepConfirmCancel:
		return e.handleConfirmCancel(sess, message)
	case StepFinalCancel:
		return e.handleFinalCancel(ctx, sess, ident, message)
	default:
		// Unrecognized step, most likely a stale or tampered session.
		e.logger.Warn("unrecognized conversation step, resetting", "step", string(sess.Step))
		sess.resetToMenu()
		return menuReply("Sorry, I lost my place in our conversation. Let's start from the top. What would you like to do?")
	}
}

// record appends both sides of the turn to the transcript, best-effort.
func (e *Engine) record(ctx context.Context, sess *Session, message string, reply Reply) {
	if e.transcripts == nil || sess.ConversationID == "" {
		return
	}
	at := e.now()
	if err := e.transcripts.Append(ctx, sess.ConversationID, TurnRecord{Role: "visitor", Text: message, At: at}); err != nil {
		e.logger.Warn("transcript append failed", "error", err)
		return
	}
	if err := e.transcripts.Append(ctx, sess.ConversationID, TurnRecord{Role: "assistant", Text: reply.Message, At: at}); err != nil {
		e.logger.Warn("transcript append failed", "error", err)
	}
}
