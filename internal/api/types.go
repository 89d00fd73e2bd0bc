package api

import (
	"time"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

type NegotiationRequest struct {
	Participants    []string `json:"participants"`
	ScheduleDate    string   `json:"schedule_date,omitempty"` // YYYY-MM-DD
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	MaxRounds       int      `json:"max_rounds,omitempty"`
}

type SlotResponse struct {
	StartTime        time.Time           `json:"start_time"`
	EndTime          time.Time           `json:"end_time"`
	DurationMinutes  int                 `json:"duration_minutes"`
	Confidence       float64             `json:"confidence"`
	Score            float64             `json:"score"`
	DayOfWeek        string              `json:"day_of_week"`
	Notes            string              `json:"notes,omitempty"`
	ParticipantNotes map[string][]string `json:"participant_notes,omitempty"`
}

type RoundResponse struct {
	Outcome      string         `json:"outcome"`
	Strategy     string         `json:"strategy"`
	Reasoning    string         `json:"reasoning"`
	SelectedSlot *SlotResponse  `json:"selected_slot,omitempty"`
	Alternatives []SlotResponse `json:"alternatives,omitempty"`
}

type NegotiationResponse struct {
	Outcome      string          `json:"outcome"`
	SelectedSlot *SlotResponse   `json:"selected_slot,omitempty"`
	Rounds       int             `json:"rounds"`
	History      []RoundResponse `json:"history"`
	Participants []string        `json:"participants"`
	Narrative    string          `json:"narrative"`
}

type CalendarResponse struct {
	Participant   string         `json:"participant"`
	BusyIntervals []BusyResponse `json:"busy_intervals"`
}

type BusyResponse struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ParticipantsResponse struct {
	Participants []string `json:"participants"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func slotResponse(s *meeting.SlotInfo) *SlotResponse {
	if s == nil {
		return nil
	}
	return &SlotResponse{
		StartTime:        s.Start,
		EndTime:          s.End,
		DurationMinutes:  s.DurationMinutes,
		Confidence:       s.Confidence,
		Score:            s.Score,
		DayOfWeek:        s.DayOfWeek,
		Notes:            s.Notes,
		ParticipantNotes: s.ParticipantNotes,
	}
}

func roundResponse(r meeting.NegotiationResult) RoundResponse {
	out := RoundResponse{
		Outcome:      string(r.Outcome),
		Strategy:     r.Strategy.String(),
		Reasoning:    r.Reasoning,
		SelectedSlot: slotResponse(r.SelectedSlot),
	}
	for i := range r.Alternatives {
		out.Alternatives = append(out.Alternatives, *slotResponse(&r.Alternatives[i]))
	}
	return out
}
