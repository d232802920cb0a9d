package api

import (
	"net/http"
)

// StateHandler serves the session state.
type StateHandler struct {
	deps Dependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps Dependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

// HandleState handles GET /api/state (snapshot) and DELETE /api/state (reset).
func (h *StateHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	const op = "api.state"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Snapshot())
	case http.MethodDelete:
		h.deps.Reset(r.Context())
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	}
}
