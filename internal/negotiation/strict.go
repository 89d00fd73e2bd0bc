package negotiation

import (
	"github.com/hackgods/meeting-negotiator/internal/analyst"
	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

// SlotRespectsAll is the hard accept/reject gate. Unlike soft scoring it
// short-circuits: the first violated preference of any participant rejects
// the slot.
func SlotRespectsAll(slot meeting.SlotInfo, participants map[string]meeting.ParticipantData) bool {
	for _, data := range participants {
		prefs := data.Preferences

		if !respectsHardBounds(slot, prefs) {
			return false
		}

		if prefs.PreferMorning && !isMorning(slot.Start.Hour()) {
			return false
		}
		if prefs.PreferAfternoon && !isAfternoon(slot.Start.Hour()) {
			return false
		}

		if prefs.MaxMeetingsPerDay > 0 {
			if analyst.MeetingsOnDay(data.Calendar, slot.Start) >= prefs.MaxMeetingsPerDay {
				return false
			}
		}
	}
	return true
}

// respectsHardBounds checks only the non-negotiable preferences: explicit
// before/after bounds, lunch avoidance and the duration cap. It is the
// relaxed gate reused by the time-shift and relax-hours strategies.
func respectsHardBounds(slot meeting.SlotInfo, prefs meeting.ParticipantPreferences) bool {
	start := meeting.ClockOf(slot.Start)
	end := meeting.ClockOf(slot.End)

	if prefs.NoMeetingsBefore != nil && start.Before(*prefs.NoMeetingsBefore) {
		return false
	}
	if prefs.NoMeetingsAfter != nil && end.After(*prefs.NoMeetingsAfter) {
		return false
	}
	if prefs.AvoidLunchTime && overlapsLunch(start, end) {
		return false
	}
	if prefs.PreferredMaxDuration > 0 && slot.DurationMinutes > prefs.PreferredMaxDuration {
		return false
	}
	return true
}

func overlapsLunch(start, end meeting.ClockTime) bool {
	return start.Minutes() < meeting.LunchEnd.Minutes() && end.Minutes() > meeting.LunchStart.Minutes()
}

func isMorning(hour int) bool {
	return hour >= 6 && hour < 12
}

func isAfternoon(hour int) bool {
	return hour >= 13 && hour < 18
}
