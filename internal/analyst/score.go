package analyst

import (
	"fmt"
	"strings"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

const (
	baseScore     = 0.5
	bufferMinutes = 15
)

// scoreSlot rates a slot for one participant. The score starts at 0.5 and is
// adjusted per preference rule, then clamped to [0, 1]. Every rule leaves a
// note whether or not it fired, so downstream explanations can cite each
// preference.
func scoreSlot(start, end time.Time, duration int, name string, data meeting.ParticipantData) (float64, []string) {
	score := baseScore
	var notes []string

	prefs := data.Preferences
	calendar := data.Calendar

	if prefs.NoMeetingsBefore != nil {
		if start.Hour() < prefs.NoMeetingsBefore.Hour {
			score -= 0.3
			notes = append(notes, fmt.Sprintf("[%s] Slot starts at %d:00, but prefers no meetings before %s", name, start.Hour(), prefs.NoMeetingsBefore))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Slot respects no-meetings-before preference of %s", name, prefs.NoMeetingsBefore))
		}
	}

	if prefs.NoMeetingsAfter != nil {
		if end.Hour() > prefs.NoMeetingsAfter.Hour {
			score -= 0.3
			notes = append(notes, fmt.Sprintf("[%s] Slot ends at %d:00, but prefers no meetings after %s", name, end.Hour(), prefs.NoMeetingsAfter))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Slot respects no-meetings-after preference of %s", name, prefs.NoMeetingsAfter))
		}
	}

	if prefs.PreferMorning {
		if isMorning(start) {
			score += 0.2
			notes = append(notes, fmt.Sprintf("[%s] Slot aligns with morning preference", name))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Slot does not align with morning preference", name))
		}
	}

	if prefs.PreferAfternoon {
		if isAfternoon(start) {
			score += 0.2
			notes = append(notes, fmt.Sprintf("[%s] Slot aligns with afternoon preference", name))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Slot does not align with afternoon preference", name))
		}
	}

	if prefs.AvoidLunchTime {
		if overlapsLunch(start, end) {
			score -= 0.2
			notes = append(notes, fmt.Sprintf("[%s] Slot conflicts with lunch time avoidance preference", name))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Slot respects lunch time avoidance preference", name))
		}
	}

	if prefs.PreferredMaxDuration > 0 {
		if duration <= prefs.PreferredMaxDuration {
			score += 0.1
			notes = append(notes, fmt.Sprintf("[%s] Meeting duration %d minutes is within preferred maximum of %d minutes", name, duration, prefs.PreferredMaxDuration))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Meeting duration %d minutes exceeds preferred maximum of %d minutes", name, duration, prefs.PreferredMaxDuration))
		}
	}

	if len(calendar) > 0 {
		count := MeetingsOnDay(calendar, start)

		switch {
		case prefs.MaxMeetingsPerDay > 0 && count >= prefs.MaxMeetingsPerDay:
			score -= 0.3
			notes = append(notes, fmt.Sprintf("[%s] Already has %d meetings on this day, reaching maximum limit of %d", name, count, prefs.MaxMeetingsPerDay))
		case count >= 4:
			score -= 0.2
			notes = append(notes, fmt.Sprintf("[%s] Already has %d meetings on this day, which is quite busy", name, count))
		case count >= 2:
			score -= 0.1
			notes = append(notes, fmt.Sprintf("[%s] Already has %d meetings on this day, moderately busy", name, count))
		case count == 1:
			notes = append(notes, fmt.Sprintf("[%s] Has 1 other meeting on this day, manageable schedule", name))
		default:
			notes = append(notes, fmt.Sprintf("[%s] No other meetings scheduled on this day", name))
		}

		if hasAdjacentMeeting(calendar, start, end) {
			score -= 0.1
			notes = append(notes, fmt.Sprintf("[%s] Has meetings within %d minutes of this slot, creating back-to-back scheduling", name, bufferMinutes))
		} else {
			notes = append(notes, fmt.Sprintf("[%s] Has adequate buffer time around this slot", name))
		}
	}

	notes = append(notes, timeAssessment(start))

	final := clamp(score)

	switch {
	case final > 0.8:
		notes = append(notes, "Overall assessment: Excellent fit for this participant")
	case final > 0.6:
		notes = append(notes, "Overall assessment: Good fit for this participant")
	case final > 0.4:
		notes = append(notes, "Overall assessment: Acceptable fit for this participant")
	default:
		notes = append(notes, "Overall assessment: Poor fit for this participant")
	}

	return final, notes
}

func isMorning(t time.Time) bool {
	return t.Hour() >= 6 && t.Hour() < 12
}

func isAfternoon(t time.Time) bool {
	return t.Hour() >= 13 && t.Hour() < 18
}

func overlapsLunch(start, end time.Time) bool {
	st := meeting.ClockOf(start).Minutes()
	et := meeting.ClockOf(end).Minutes()
	return st < meeting.LunchEnd.Minutes() && et > meeting.LunchStart.Minutes()
}

// MeetingsOnDay counts busy intervals starting on the same calendar day as t.
func MeetingsOnDay(calendar []meeting.BusyInterval, t time.Time) int {
	day := meeting.StartOfDay(t)
	next := day.AddDate(0, 0, 1)

	count := 0
	for _, b := range calendar {
		if !b.Start.Before(day) && b.Start.Before(next) {
			count++
		}
	}
	return count
}

// hasAdjacentMeeting reports a busy interval ending within the buffer before
// the slot start or starting within the buffer after the slot end.
func hasAdjacentMeeting(calendar []meeting.BusyInterval, start, end time.Time) bool {
	buffer := bufferMinutes * time.Minute
	for _, b := range calendar {
		endsJustBefore := b.End.After(start.Add(-buffer)) && !b.End.After(start)
		startsJustAfter := !b.Start.Before(end) && b.Start.Before(end.Add(buffer))
		if endsJustBefore || startsJustAfter {
			return true
		}
	}
	return false
}

func timeAssessment(start time.Time) string {
	hour := start.Hour()
	switch {
	case hour >= 10 && hour <= 11:
		return "Time slot is in optimal mid-morning period"
	case hour >= 14 && hour <= 15:
		return "Time slot is in good early afternoon period"
	case hour == 9:
		return "Time slot is early morning"
	case hour >= 16:
		return "Time slot is in late afternoon"
	case hour < 9:
		return "Time slot is very early morning"
	default:
		return "Time slot is around midday"
	}
}

// slotNotes summarises the slot's general desirability for humans.
func slotNotes(start time.Time, score float64) string {
	var notes []string

	hour := start.Hour()
	switch {
	case hour >= 10 && hour <= 11:
		notes = append(notes, "Optimal mid-morning time")
	case hour >= 14 && hour <= 15:
		notes = append(notes, "Good early afternoon slot")
	case hour == 9:
		notes = append(notes, "Early morning - may suit early risers")
	case hour >= 16:
		notes = append(notes, "Late afternoon slot")
	}

	switch start.Weekday() {
	case time.Tuesday, time.Wednesday, time.Thursday:
		notes = append(notes, "Mid-week scheduling")
	case time.Monday:
		notes = append(notes, "Monday scheduling")
	case time.Friday:
		notes = append(notes, "Friday scheduling")
	}

	switch {
	case score > 0.8:
		notes = append(notes, "High confidence slot")
	case score > 0.6:
		notes = append(notes, "Good availability")
	default:
		notes = append(notes, "Available but suboptimal timing")
	}

	if len(notes) == 0 {
		return "Available time slot"
	}
	return strings.Join(notes, "; ")
}
