package tickets

import (
	"context"
	"encoding/json"
	"net/http"

	httpmiddleware "github.com/museobook/museum-ticketing-platform/internal/http/middleware"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// Lister is the read-side the HTTP handler needs.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]Ticket, error)
}

// Handler serves the authenticated "my tickets" listing.
type Handler struct {
	repo   Lister
	logger *logging.Logger
}

// NewHandler creates a tickets HTTP handler.
func NewHandler(repo Lister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListMine returns the caller's tickets. Requires a bearer identity.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpmiddleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	list, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("tickets: list failed", "user_id", userID, "error", err)
		http.Error(w, "failed to load tickets", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Ticket{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"tickets": list})
}
