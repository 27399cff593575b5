package api

import (
	"net/http"
	"strings"
)

// EventsHandler handles single-event, facet and refresh requests.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvent handles GET /api/events/{slug} and
// POST /api/events/{slug}/activate requests.
func (h *EventsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.event"
	path := strings.TrimPrefix(r.URL.Path, "/api/events/")
	slug, action, _ := strings.Cut(path, "/")
	if slug == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		ev, err := h.deps.Event(r.Context(), slug)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	case action == "activate" && r.Method == http.MethodPost:
		ev, err := h.deps.ActivateEvent(r.Context(), slug)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, ev)
	default:
		http.NotFound(w, r)
	}
}

// HandleGetFacets handles GET /api/facets requests.
func (h *EventsHandler) HandleGetFacets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	facets, err := h.deps.Facets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facets)
}

// HandlePostRefresh handles POST /api/refresh requests. A refresh where
// some sources failed still swaps the catalog and answers 502.
func (h *EventsHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.Refresh(r.Context()); err != nil {
		if isServiceError(err) {
			writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadGateway, "source_failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "refreshed"})
}
