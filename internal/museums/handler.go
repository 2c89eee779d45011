package museums

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// Lister is the read-side the HTTP handler needs.
type Lister interface {
	ListSummaries(ctx context.Context) ([]Summary, error)
}

// Handler serves the public museum listing.
type Handler struct {
	repo   Lister
	logger *logging.Logger
}

// NewHandler creates a museums HTTP handler.
func NewHandler(repo Lister, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List returns all museums with location and price.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.ListSummaries(r.Context())
	if err != nil {
		h.logger.Error("museums: list failed", "error", err)
		http.Error(w, "failed to load museums", http.StatusInternalServerError)
		return
	}
	if summaries == nil {
		summaries = []Summary{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"museums": summaries})
}
