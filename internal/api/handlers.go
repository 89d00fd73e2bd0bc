package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
	"github.com/hackgods/meeting-negotiator/internal/scheduler"
	"github.com/hackgods/meeting-negotiator/internal/store"
)

func negotiateHandler(svc *scheduler.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NegotiationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if len(req.Participants) == 0 {
			writeError(w, http.StatusBadRequest, "missing_participants", "participants must contain at least one id")
			return
		}

		var day time.Time
		if req.ScheduleDate != "" {
			parsed, err := time.Parse("2006-01-02", req.ScheduleDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_schedule_date", "schedule_date must be YYYY-MM-DD")
				return
			}
			day = parsed
		}

		summary, err := svc.Schedule(r.Context(), scheduler.Request{
			Participants: req.Participants,
			Day:          day,
			Duration:     req.DurationMinutes,
			MaxRounds:    req.MaxRounds,
		})
		if err != nil {
			handleNegotiateError(w, err)
			return
		}

		resp := NegotiationResponse{
			Outcome:      summary.Outcome,
			SelectedSlot: slotResponse(summary.BestSlot),
			Rounds:       summary.Rounds,
			Participants: summary.Participants,
			Narrative:    summary.Narrative,
		}
		for _, round := range summary.History {
			resp.History = append(resp.History, roundResponse(round))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleNegotiateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduler.ErrNoParticipants):
		writeError(w, http.StatusBadRequest, "missing_participants", err.Error())
	case errors.Is(err, meeting.ErrInvalidDuration),
		errors.Is(err, meeting.ErrInvalidSlotInterval),
		errors.Is(err, meeting.ErrInvalidAltDays):
		writeError(w, http.StatusBadRequest, "invalid_schedule", err.Error())
	case errors.Is(err, scheduler.ErrNegotiationInProgress):
		writeError(w, http.StatusConflict, "negotiation_in_progress", "a negotiation for these participants is already running, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func listParticipantsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := st.ListParticipants(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, ParticipantsResponse{Participants: names})
	}
}

func getCalendarHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		participant := chi.URLParam(r, "id")

		calendar, err := st.GetCalendar(r.Context(), participant)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := CalendarResponse{Participant: participant}
		for _, b := range calendar {
			resp.BusyIntervals = append(resp.BusyIntervals, BusyResponse{StartTime: b.Start, EndTime: b.End})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
