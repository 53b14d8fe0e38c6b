package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	pkgerrors "teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/utils"
)

// CalendarHandler handles calendar window queries across teams
type CalendarHandler struct {
	calendar *services.CalendarService
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendar *services.CalendarService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendar: calendar,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetCalendar handles GET /calendar?start=&end=[&teamId=].
// Without a teamId the window merges every team the caller belongs to.
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	start, err := parseWindowParam(r.URL.Query().Get("start"))
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "start must be a calendar day (YYYY-MM-DD) or an RFC3339 timestamp")
		return
	}
	end, err := parseWindowParam(r.URL.Query().Get("end"))
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "end must be a calendar day (YYYY-MM-DD) or an RFC3339 timestamp")
		return
	}

	events, err := h.calendar.GetCalendar(r.Context(), userCtx.UserID, services.CalendarQuery{
		Start:  start,
		End:    end,
		TeamID: r.URL.Query().Get("teamId"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := toEventResponses(events)
	common.RespondWithMeta(w, http.StatusOK, resp, common.CountMeta(common.ExtractRequestID(r), len(resp)))
}

// parseWindowParam parses a window boundary given as a day key or a full
// timestamp. An absent parameter stays the zero time; the service rejects
// incomplete windows with a field-level error.
func parseWindowParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := utils.ParseDayKey(value); err == nil {
		return t, nil
	}
	return utils.ParseRFC3339(value)
}
