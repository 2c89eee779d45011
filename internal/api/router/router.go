package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/museobook/museum-ticketing-platform/internal/chat"
	httpmiddleware "github.com/museobook/museum-ticketing-platform/internal/http/middleware"
	"github.com/museobook/museum-ticketing-platform/internal/museums"
	"github.com/museobook/museum-ticketing-platform/internal/payments"
	"github.com/museobook/museum-ticketing-platform/internal/tickets"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *chat.Handler
	MuseumsHandler     *museums.Handler
	TicketsHandler     *tickets.Handler
	PaymentVerify      *payments.VerifyHandler
	MetricsHandler     http.Handler
	UserJWTSecret      string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(httpmiddleware.UserIdentity(cfg.UserJWTSecret))

	// Public endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.MuseumsHandler != nil {
		r.Get("/museums", cfg.MuseumsHandler.List)
	}
	if cfg.ChatHandler != nil {
		// Anonymous visitors can chat; identity (when present) gates the
		// ticket-check and cancellation branches inside the engine.
		r.Post("/chat", cfg.ChatHandler.Turn)
	}

	// Authenticated endpoints
	r.Group(func(auth chi.Router) {
		auth.Use(httpmiddleware.RequireUser)
		if cfg.TicketsHandler != nil {
			auth.Get("/tickets", cfg.TicketsHandler.ListMine)
		}
		if cfg.PaymentVerify != nil {
			auth.Post("/payments/verify", cfg.PaymentVerify.Verify)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
