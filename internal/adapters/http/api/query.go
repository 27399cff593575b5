package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/plnevents/internal/domain/types"
)

const maxQueryBody = 64 << 10

// QueryDependencies applies query mutations.
type QueryDependencies interface {
	ApplyMutations(ctx context.Context, req types.QueryRequest) (types.QueryResponse, error)
}

// QueryHandler handles query mutation requests.
type QueryHandler struct {
	deps QueryDependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps QueryDependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// HandlePostQuery handles POST /api/query requests.
func (h *QueryHandler) HandlePostQuery(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_query"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := h.deps.ApplyMutations(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
