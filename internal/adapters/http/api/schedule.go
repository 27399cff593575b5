package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/plnevents/internal/domain/types"
)

// Request parameters of GET /api/schedule that are not filter keys.
const (
	paramBanner = "banner"
	paramMonth  = "month"
	paramExpand = "expand"
	paramNav    = "nav"
)

// ScheduleDependencies renders the schedule.
type ScheduleDependencies interface {
	Schedule(ctx context.Context, req types.ScheduleRequest) (types.ScheduleView, error)
}

// ScheduleHandler handles schedule requests.
type ScheduleHandler struct {
	deps ScheduleDependencies
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(deps ScheduleDependencies) *ScheduleHandler {
	return &ScheduleHandler{deps: deps}
}

// HandleGetSchedule handles GET /api/schedule?<filter query> requests.
// Besides the filter vocabulary it reads banner=<bool>, month=<0-11>,
// expand=<panel id> and nav=<prev|next>.
func (h *ScheduleHandler) HandleGetSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_schedule"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := r.URL.Query()
	req := types.ScheduleRequest{
		RawQuery:    r.URL.RawQuery,
		ExpandPanel: params.Get(paramExpand),
	}
	if v := params.Get(paramBanner); v != "" {
		banner, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
			return
		}
		req.BannerVisible = banner
	}
	if v := params.Get(paramMonth); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 0 || month > 11 {
			writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
			return
		}
		req.MonthHint = &month
	}
	switch v := params.Get(paramNav); v {
	case "", types.NavPrev, types.NavNext:
		req.Nav = v
	default:
		writeError(w, http.StatusBadRequest, "bad_request", newKind(op, ErrBadRequest))
		return
	}

	view, err := h.deps.Schedule(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
