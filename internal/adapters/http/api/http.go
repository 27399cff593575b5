// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/plnevents/internal/adapters/repository"
	"github.com/okian/plnevents/internal/adapters/signals"
	service "github.com/okian/plnevents/internal/app"
	"github.com/okian/plnevents/internal/domain/model"
	"github.com/okian/plnevents/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScheduleDependencies
	QueryDependencies
	SignalDependencies
	EventDependencies
	StatsProvider
}

// Server wires HTTP routes for the events API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	scheduleHandler *ScheduleHandler
	queryHandler    *QueryHandler
	signalsHandler  *SignalsHandler
	eventsHandler   *EventsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		scheduleHandler: NewScheduleHandler(deps),
		queryHandler:    NewQueryHandler(deps),
		signalsHandler:  NewSignalsHandler(deps),
		eventsHandler:   NewEventsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/schedule", MetricsMiddleware(s.scheduleHandler.HandleGetSchedule, "schedule"))
	mux.HandleFunc("/api/query", MetricsMiddleware(s.queryHandler.HandlePostQuery, "query"))
	mux.HandleFunc("/api/signals", MetricsMiddleware(s.signalsHandler.HandleSignals, "signals"))
	mux.HandleFunc("/api/facets", MetricsMiddleware(s.eventsHandler.HandleGetFacets, "facets"))
	mux.HandleFunc("/api/refresh", MetricsMiddleware(s.eventsHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/api/events/", MetricsMiddleware(s.eventsHandler.HandleEvent, "events"))
}

type ackResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, types.ErrorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrapKind("api", ErrUnavailable, err))
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, signals.ErrUnknownType):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, signals.ErrStopped):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// EventDependencies reads and activates single events.
type EventDependencies interface {
	Event(ctx context.Context, slug string) (model.AnnotatedEvent, error)
	ActivateEvent(ctx context.Context, slug string) (model.AnnotatedEvent, error)
	Facets(ctx context.Context) (types.Facets, error)
	Refresh(ctx context.Context) error
}

// isServiceError reports whether err carries a sentinel writeServiceError maps.
func isServiceError(err error) bool {
	return errors.Is(err, service.ErrNotStarted) ||
		errors.Is(err, service.ErrInvalidRequest) ||
		errors.Is(err, repository.ErrNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
