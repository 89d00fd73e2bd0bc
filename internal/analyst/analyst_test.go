package analyst

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

// monday is a fixed weekday anchor for deterministic tests.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func TestGenerateCandidates(t *testing.T) {
	schedule := meeting.DefaultSchedule(monday)

	candidates := GenerateCandidates(schedule)

	// 08:00-18:00 window, 60 minute meeting, 30 minute steps: last start 17:00.
	require.Len(t, candidates, 19)
	assert.Equal(t, at(monday, 8, 0), candidates[0].Start)
	assert.Equal(t, at(monday, 17, 0), candidates[len(candidates)-1].Start)

	for _, c := range candidates {
		assert.Equal(t, time.Duration(schedule.DefaultDuration)*time.Minute, c.End.Sub(c.Start))
	}
}

func TestGenerateCandidatesSkipsWeekends(t *testing.T) {
	saturday := monday.AddDate(0, 0, 5)
	sunday := monday.AddDate(0, 0, 6)

	assert.Empty(t, GenerateCandidates(meeting.DefaultSchedule(saturday)))
	assert.Empty(t, GenerateCandidates(meeting.DefaultSchedule(sunday)))
}

func TestGenerateCandidatesDurationTooLong(t *testing.T) {
	schedule := meeting.DefaultSchedule(monday)
	schedule.WorkingHoursStart = meeting.ClockTime{Hour: 9}
	schedule.WorkingHoursEnd = meeting.ClockTime{Hour: 10}
	schedule.DefaultDuration = 120

	assert.Empty(t, GenerateCandidates(schedule))
}

func TestFilterConflicts(t *testing.T) {
	candidates := GenerateCandidates(meeting.DefaultSchedule(monday))

	busy := []meeting.BusyInterval{
		{Start: at(monday, 10, 0), End: at(monday, 11, 0)},
	}

	free := FilterConflicts(candidates, busy)

	for _, c := range free {
		assert.False(t, busy[0].Overlaps(c.Start, c.End), "slot %s overlaps busy interval", c.Start)
	}
	// 09:30, 10:00 and 10:30 starts are blocked.
	assert.Len(t, free, len(candidates)-3)
}

func TestFilterConflictsNoBusyPassesAll(t *testing.T) {
	candidates := GenerateCandidates(meeting.DefaultSchedule(monday))
	assert.Equal(t, candidates, FilterConflicts(candidates, nil))
}

func TestFilterConflictsMonotone(t *testing.T) {
	candidates := GenerateCandidates(meeting.DefaultSchedule(monday))

	one := []meeting.BusyInterval{
		{Start: at(monday, 10, 0), End: at(monday, 11, 0)},
	}
	two := append(one, meeting.BusyInterval{Start: at(monday, 14, 0), End: at(monday, 15, 0)})

	freeOne := FilterConflicts(candidates, one)
	freeTwo := FilterConflicts(candidates, two)

	// Fewer busy intervals never shrink the free set.
	set := make(map[time.Time]bool, len(freeOne))
	for _, c := range freeOne {
		set[c.Start] = true
	}
	for _, c := range freeTwo {
		assert.True(t, set[c.Start])
	}
	assert.LessOrEqual(t, len(freeTwo), len(freeOne))
}

func TestFindSlotsSortedAndBounded(t *testing.T) {
	nine := meeting.ClockTime{Hour: 9}
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{PreferMorning: true, AvoidLunchTime: true}},
		"bob":   {Preferences: meeting.ParticipantPreferences{NoMeetingsBefore: &nine}},
	}

	slots := New().FindSlots(participants, meeting.DefaultSchedule(monday))
	require.NotEmpty(t, slots)

	for i := 1; i < len(slots); i++ {
		assert.GreaterOrEqual(t, slots[i-1].Score, slots[i].Score)
	}
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Confidence, 0.0)
		assert.LessOrEqual(t, s.Confidence, 1.0)
		assert.Equal(t, []string{"alice", "bob"}, s.Participants)
		assert.Len(t, s.ParticipantScores, 2)
	}
}

func TestFindSlotsDeterministic(t *testing.T) {
	ten := meeting.ClockTime{Hour: 10}
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{PreferAfternoon: true}},
		"bob":   {Preferences: meeting.ParticipantPreferences{NoMeetingsBefore: &ten}},
		"carol": {Preferences: meeting.ParticipantPreferences{AvoidLunchTime: true}},
	}

	a := New()
	first := a.FindSlots(participants, meeting.DefaultSchedule(monday))
	second := a.FindSlots(participants, meeting.DefaultSchedule(monday))

	assert.Equal(t, first, second)
}

func TestScoreSlotMorningPreference(t *testing.T) {
	data := meeting.ParticipantData{
		Preferences: meeting.ParticipantPreferences{PreferMorning: true},
	}

	morning, _ := scoreSlot(at(monday, 9, 0), at(monday, 10, 0), 60, "alice", data)
	afternoon, _ := scoreSlot(at(monday, 14, 0), at(monday, 15, 0), 60, "alice", data)

	assert.InDelta(t, 0.7, morning, 1e-9)
	assert.InDelta(t, 0.5, afternoon, 1e-9)
}

func TestScoreSlotHardBoundPenalties(t *testing.T) {
	ten := meeting.ClockTime{Hour: 10}
	fifteen := meeting.ClockTime{Hour: 15}
	data := meeting.ParticipantData{
		Preferences: meeting.ParticipantPreferences{
			NoMeetingsBefore: &ten,
			NoMeetingsAfter:  &fifteen,
		},
	}

	early, notes := scoreSlot(at(monday, 8, 0), at(monday, 9, 0), 60, "bob", data)
	assert.InDelta(t, 0.2, early, 1e-9)
	assert.Contains(t, notes[0], "prefers no meetings before")

	late, _ := scoreSlot(at(monday, 16, 0), at(monday, 17, 0), 60, "bob", data)
	assert.InDelta(t, 0.2, late, 1e-9)

	ok, _ := scoreSlot(at(monday, 11, 0), at(monday, 12, 0), 60, "bob", data)
	assert.InDelta(t, 0.5, ok, 1e-9)
}

func TestScoreSlotLunchOverlap(t *testing.T) {
	data := meeting.ParticipantData{
		Preferences: meeting.ParticipantPreferences{AvoidLunchTime: true},
	}

	overlapping, _ := scoreSlot(at(monday, 11, 30), at(monday, 12, 30), 60, "carol", data)
	assert.InDelta(t, 0.3, overlapping, 1e-9)

	// Ending exactly at 12:00 does not overlap lunch.
	touching, _ := scoreSlot(at(monday, 11, 0), at(monday, 12, 0), 60, "carol", data)
	assert.InDelta(t, 0.5, touching, 1e-9)
}

func TestScoreSlotDailyLoadPenalties(t *testing.T) {
	calendar := []meeting.BusyInterval{
		{Start: at(monday, 8, 0), End: at(monday, 8, 30)},
		{Start: at(monday, 9, 0), End: at(monday, 9, 30)},
	}

	data := meeting.ParticipantData{
		Preferences: meeting.ParticipantPreferences{MaxMeetingsPerDay: 2},
		Calendar:    calendar,
	}

	// At the cap: -0.3.
	capped, notes := scoreSlot(at(monday, 14, 0), at(monday, 15, 0), 60, "dave", data)
	assert.InDelta(t, 0.2, capped, 1e-9)
	assert.Contains(t, notes[0], "reaching maximum limit")

	// No cap but moderately busy: -0.1.
	data.Preferences.MaxMeetingsPerDay = 0
	busy, _ := scoreSlot(at(monday, 14, 0), at(monday, 15, 0), 60, "dave", data)
	assert.InDelta(t, 0.4, busy, 1e-9)
}

func TestScoreSlotAdjacentMeetingPenalty(t *testing.T) {
	data := meeting.ParticipantData{
		Calendar: []meeting.BusyInterval{
			{Start: at(monday, 9, 0), End: at(monday, 9, 50)},
		},
	}

	// Busy interval ends 10 minutes before the slot starts.
	adjacent, _ := scoreSlot(at(monday, 10, 0), at(monday, 11, 0), 60, "erin", data)
	assert.InDelta(t, 0.4, adjacent, 1e-9)

	clear, _ := scoreSlot(at(monday, 14, 0), at(monday, 15, 0), 60, "erin", data)
	assert.InDelta(t, 0.5, clear, 1e-9)
}

func TestScoreSlotClamped(t *testing.T) {
	noon := meeting.ClockTime{Hour: 12}
	data := meeting.ParticipantData{
		Preferences: meeting.ParticipantPreferences{
			NoMeetingsBefore:  &noon,
			NoMeetingsAfter:   &noon,
			AvoidLunchTime:    true,
			MaxMeetingsPerDay: 1,
		},
		Calendar: []meeting.BusyInterval{
			{Start: at(monday, 8, 0), End: at(monday, 8, 30)},
			{Start: at(monday, 11, 45), End: at(monday, 11, 55)},
		},
	}

	score, _ := scoreSlot(at(monday, 11, 0), at(monday, 12, 30), 90, "frank", data)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestMeetingsOnDay(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	calendar := []meeting.BusyInterval{
		{Start: at(monday, 9, 0), End: at(monday, 10, 0)},
		{Start: at(monday, 15, 0), End: at(monday, 16, 0)},
		{Start: at(tuesday, 9, 0), End: at(tuesday, 10, 0)},
	}

	assert.Equal(t, 2, MeetingsOnDay(calendar, at(monday, 12, 0)))
	assert.Equal(t, 1, MeetingsOnDay(calendar, at(tuesday, 12, 0)))
	assert.Equal(t, 0, MeetingsOnDay(calendar, at(monday.AddDate(0, 0, 2), 12, 0)))
}
