package api

import (
	"net/http"
	"strconv"

	"resume-forge/internal/database"
	"resume-forge/internal/models"
)

// @Summary      List events
// @Description  Returns the user's activity journal, oldest first. Pass ?since=<event id> to fetch only events after a known id.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "Return events with an id greater than this"
// @Success      200    {object}  Envelope{data=[]database.Event}
// @Failure      400    {object}  Envelope
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var sinceID int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			s.respondError(w, r, models.NewValidationError("invalid since parameter"))
			return
		}
		sinceID = parsed
	}

	events, err := s.store.GetEventsSince(r.Context(), claims.UserID, sinceID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if events == nil {
		events = []database.Event{}
	}

	s.respond(w, r, http.StatusOK, "events", events)
}
