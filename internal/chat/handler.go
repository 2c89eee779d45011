package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/museobook/museum-ticketing-platform/internal/http/middleware"
	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

// Handler exposes the conversation engine over HTTP. The session travels
// inside the request and response bodies; the server holds no turn state.
type Handler struct {
	engine *Engine
	logger *logging.Logger
}

// NewHandler creates the chat HTTP handler.
func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("chat: engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

type turnRequest struct {
	UserMessage string   `json:"userMessage"`
	Session     *Session `json:"session"`
}

type turnResponse struct {
	Response Reply    `json:"response"`
	Session  *Session `json:"session"`
}

// Turn handles POST /chat: one visitor message in, one reply plus the
// updated session out.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	sess := req.Session
	if sess == nil {
		sess = &Session{}
	}
	if sess.ConversationID == "" {
		sess.ConversationID = uuid.NewString()
	}

	var ident Identity
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		ident = Identity{UserID: userID, Authenticated: true}
	}

	reply, err := h.engine.Process(r.Context(), sess, ident, req.UserMessage)
	if err != nil {
		if errors.Is(err, ErrMissingMessage) {
			h.writeJSON(w, http.StatusBadRequest, turnResponse{
				Response: Reply{Message: "Please type a message so I can help you."},
				Session:  sess,
			})
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, turnResponse{
			Response: Reply{Message: "Sorry, something went wrong on our side. Please try again."},
			Session:  sess,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, turnResponse{Response: reply, Session: sess})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("chat response encode failed", "error", err)
	}
}
