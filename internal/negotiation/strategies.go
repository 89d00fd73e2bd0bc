package negotiation

import (
	"fmt"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/analyst"
	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

const relaxWindowMinutes = 30

// durationAdjust shortens the meeting to the smallest preferred maximum
// duration among participants and rebuilds the candidate slots at that
// length. Skipped when nobody wants a shorter meeting or no slot is long
// enough.
func (e *Engine) durationAdjust(
	slots []meeting.SlotInfo,
	participants map[string]meeting.ParticipantData,
	schedule meeting.MeetingSchedule,
) *meeting.NegotiationResult {
	smallest := 0
	for _, data := range participants {
		cap := data.Preferences.PreferredMaxDuration
		if cap > 0 && (smallest == 0 || cap < smallest) {
			smallest = cap
		}
	}

	if smallest == 0 || smallest >= schedule.DefaultDuration {
		return nil
	}

	var compatible []meeting.SlotInfo
	for _, s := range slots {
		if s.DurationMinutes < smallest {
			continue
		}
		shortened := s
		shortened.DurationMinutes = smallest
		shortened.End = s.Start.Add(time.Duration(smallest) * time.Minute)
		compatible = append(compatible, shortened)
	}

	if len(compatible) == 0 {
		return nil
	}

	sortByConfidence(compatible)
	best := compatible[0]

	proposed := schedule.Clone()
	proposed.DefaultDuration = smallest

	return &meeting.NegotiationResult{
		Outcome:          meeting.OutcomeCompromiseProposed,
		ProposedSchedule: &proposed,
		SelectedSlot:     &best,
		Reasoning:        fmt.Sprintf("Reduced duration to %d min to respect participants' preferred maximum duration.", smallest),
		Alternatives:     runnersUp(compatible),
		Strategy:         meeting.StrategyDurationAdjustment,
	}
}

// timeShift drops only the soft morning/afternoon preference. Hard bounds,
// lunch avoidance and duration caps stay active.
func (e *Engine) timeShift(
	slots []meeting.SlotInfo,
	participants map[string]meeting.ParticipantData,
	schedule meeting.MeetingSchedule,
) *meeting.NegotiationResult {
	viable := slotsPassingHardBounds(slots, participants)
	if len(viable) == 0 {
		return nil
	}

	sortByConfidence(viable)
	best := viable[0]

	proposed := schedule.Clone()
	proposed.Day = meeting.StartOfDay(best.Start)

	return &meeting.NegotiationResult{
		Outcome:          meeting.OutcomeCompromiseProposed,
		ProposedSchedule: &proposed,
		SelectedSlot:     &best,
		Reasoning:        "Relaxed morning/afternoon preference to fit an otherwise compliant slot.",
		Alternatives:     runnersUp(viable),
		Strategy:         meeting.StrategyTODShifting,
	}
}

// alternativeDay searches offsets 1..max around the schedule day,
// alternating forward and backward, skipping weekends, and accepts the first
// day where no participant's daily meeting cap would be exceeded. It moves
// the schedule without selecting a slot; slot selection happens next round
// against the new day.
func (e *Engine) alternativeDay(
	participants map[string]meeting.ParticipantData,
	schedule meeting.MeetingSchedule,
) *meeting.NegotiationResult {
	if schedule.MaxAlternativeDays == 0 {
		return nil
	}

	base := schedule.Day
	for offset := 1; offset <= schedule.MaxAlternativeDays; offset++ {
		for _, sign := range []int{1, -1} {
			day := base.AddDate(0, 0, sign*offset)
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}

			if !dayUnderCaps(day, participants) {
				continue
			}

			proposed := schedule.Clone()
			proposed.Day = day

			return &meeting.NegotiationResult{
				Outcome:          meeting.OutcomeCompromiseProposed,
				ProposedSchedule: &proposed,
				Reasoning:        fmt.Sprintf("Suggest switching to %s to respect daily-meeting caps.", day.Format("2006-01-02")),
				Strategy:         meeting.StrategyAlternativeDay,
			}
		}
	}

	return nil
}

// relaxHours widens the working window by 30 minutes on each side and
// reselects among slots passing the hard checks. Explicit per-participant
// bounds stay enforced; only the corporate window moves.
func (e *Engine) relaxHours(
	slots []meeting.SlotInfo,
	participants map[string]meeting.ParticipantData,
	schedule meeting.MeetingSchedule,
) *meeting.NegotiationResult {
	viable := slotsPassingHardBounds(slots, participants)
	if len(viable) == 0 {
		return nil
	}

	sortByConfidence(viable)
	best := viable[0]

	proposed := schedule.Clone()
	proposed.WorkingHoursStart = schedule.WorkingHoursStart.Add(-relaxWindowMinutes)
	proposed.WorkingHoursEnd = schedule.WorkingHoursEnd.Add(relaxWindowMinutes)

	return &meeting.NegotiationResult{
		Outcome:          meeting.OutcomeCompromiseProposed,
		ProposedSchedule: &proposed,
		SelectedSlot:     &best,
		Reasoning:        fmt.Sprintf("Extended working hours by %d min to accommodate a slot respecting all hard preferences.", relaxWindowMinutes),
		Alternatives:     runnersUp(viable),
		Strategy:         meeting.StrategyRelaxConstraints,
	}
}

func slotsPassingHardBounds(slots []meeting.SlotInfo, participants map[string]meeting.ParticipantData) []meeting.SlotInfo {
	var viable []meeting.SlotInfo
	for _, s := range slots {
		ok := true
		for _, data := range participants {
			if !respectsHardBounds(s, data.Preferences) {
				ok = false
				break
			}
		}
		if ok {
			viable = append(viable, s)
		}
	}
	return viable
}

func dayUnderCaps(day time.Time, participants map[string]meeting.ParticipantData) bool {
	for _, data := range participants {
		cap := data.Preferences.MaxMeetingsPerDay
		if cap == 0 || len(data.Calendar) == 0 {
			continue
		}
		if analyst.MeetingsOnDay(data.Calendar, day) >= cap {
			return false
		}
	}
	return true
}
