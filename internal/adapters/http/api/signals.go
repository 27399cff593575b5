package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/plnevents/internal/domain/types"
)

// SignalDependencies publishes and streams broadcast signals.
type SignalDependencies interface {
	PublishSignal(ctx context.Context, req types.SignalRequest) error
	Signals() http.Handler
}

// SignalsHandler handles signal requests.
type SignalsHandler struct {
	deps SignalDependencies
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(deps SignalDependencies) *SignalsHandler {
	return &SignalsHandler{deps: deps}
}

// HandleSignals serves GET /api/signals as an SSE stream and accepts
// POST /api/signals to publish one signal.
func (h *SignalsHandler) HandleSignals(w http.ResponseWriter, r *http.Request) {
	const op = "api.signals"
	switch r.Method {
	case http.MethodGet:
		h.deps.Signals().ServeHTTP(w, r)
	case http.MethodPost:
		var req types.SignalRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.PublishSignal(r.Context(), req); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "published"})
	default:
		http.NotFound(w, r)
	}
}
