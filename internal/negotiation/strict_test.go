package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func slot(start time.Time, duration int) meeting.SlotInfo {
	return meeting.SlotInfo{
		Start:           start,
		End:             start.Add(time.Duration(duration) * time.Minute),
		DurationMinutes: duration,
	}
}

func single(prefs meeting.ParticipantPreferences, calendar ...meeting.BusyInterval) map[string]meeting.ParticipantData {
	return map[string]meeting.ParticipantData{
		"alice": {Preferences: prefs, Calendar: calendar},
	}
}

func TestSlotRespectsAllMinuteLevelBounds(t *testing.T) {
	bound := meeting.MustClock("10:30")
	participants := single(meeting.ParticipantPreferences{NoMeetingsBefore: &bound})

	// 10:00 passes the hourly comparison used in scoring but fails here.
	assert.False(t, SlotRespectsAll(slot(at(monday, 10, 0), 60), participants))
	assert.True(t, SlotRespectsAll(slot(at(monday, 10, 30), 60), participants))
}

func TestSlotRespectsAllAfterBound(t *testing.T) {
	bound := meeting.ClockTime{Hour: 15, Minute: 0}
	participants := single(meeting.ParticipantPreferences{NoMeetingsAfter: &bound})

	assert.True(t, SlotRespectsAll(slot(at(monday, 14, 0), 60), participants))
	assert.False(t, SlotRespectsAll(slot(at(monday, 14, 30), 60), participants))
}

func TestSlotRespectsAllMorningOnly(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{PreferMorning: true})

	assert.True(t, SlotRespectsAll(slot(at(monday, 9, 0), 60), participants))
	assert.False(t, SlotRespectsAll(slot(at(monday, 14, 0), 60), participants))
	// 12:00 is neither morning nor afternoon.
	assert.False(t, SlotRespectsAll(slot(at(monday, 12, 0), 60), participants))
}

func TestSlotRespectsAllAfternoonOnly(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{PreferAfternoon: true})

	assert.False(t, SlotRespectsAll(slot(at(monday, 9, 0), 60), participants))
	assert.True(t, SlotRespectsAll(slot(at(monday, 13, 0), 60), participants))
}

func TestSlotRespectsAllLunch(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{AvoidLunchTime: true})

	assert.False(t, SlotRespectsAll(slot(at(monday, 11, 30), 60), participants))
	assert.True(t, SlotRespectsAll(slot(at(monday, 11, 0), 60), participants))
	assert.True(t, SlotRespectsAll(slot(at(monday, 13, 0), 60), participants))
}

func TestSlotRespectsAllDurationCap(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{PreferredMaxDuration: 30})

	assert.False(t, SlotRespectsAll(slot(at(monday, 9, 0), 60), participants))
	assert.True(t, SlotRespectsAll(slot(at(monday, 9, 0), 30), participants))
}

func TestSlotRespectsAllDailyCap(t *testing.T) {
	calendar := []meeting.BusyInterval{
		{Start: at(monday, 8, 0), End: at(monday, 8, 30)},
		{Start: at(monday, 9, 0), End: at(monday, 9, 30)},
	}
	participants := single(meeting.ParticipantPreferences{MaxMeetingsPerDay: 2}, calendar...)

	assert.False(t, SlotRespectsAll(slot(at(monday, 14, 0), 60), participants))

	// A different day with no entries is unconstrained.
	tuesday := monday.AddDate(0, 0, 1)
	assert.True(t, SlotRespectsAll(slot(at(tuesday, 14, 0), 60), participants))
}

func TestSlotRespectsAllAnyViolationRejects(t *testing.T) {
	nine := meeting.ClockTime{Hour: 9}
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{NoMeetingsBefore: &nine}},
		"bob":   {Preferences: meeting.ParticipantPreferences{AvoidLunchTime: true}},
	}

	assert.True(t, SlotRespectsAll(slot(at(monday, 9, 0), 60), participants))
	assert.False(t, SlotRespectsAll(slot(at(monday, 8, 0), 60), participants))
	assert.False(t, SlotRespectsAll(slot(at(monday, 11, 30), 60), participants))
}

func TestSlotRespectsAllNoPreferences(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{})
	assert.True(t, SlotRespectsAll(slot(at(monday, 12, 0), 60), participants))
}
