package negotiation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/meeting-negotiator/internal/analyst"
	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

func scoredSlots(participants map[string]meeting.ParticipantData, schedule meeting.MeetingSchedule) []meeting.SlotInfo {
	return analyst.New().FindSlots(participants, schedule)
}

func TestNegotiateOptimalWhenCompliantAndConfident(t *testing.T) {
	ten := meeting.ClockTime{Hour: 10}
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{NoMeetingsBefore: &ten}},
		"bob":   {Preferences: meeting.ParticipantPreferences{PreferAfternoon: true}},
	}

	schedule := meeting.DefaultSchedule(monday)
	slots := scoredSlots(participants, schedule)

	result := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyNone)

	assert.Equal(t, meeting.OutcomeOptimalFound, result.Outcome)
	assert.Equal(t, meeting.StrategyNone, result.Strategy)
	require.NotNil(t, result.SelectedSlot)
	require.NotNil(t, result.ProposedSchedule)

	// Afternoon-only plus the lower bound means the pick must start at 13:00
	// or later.
	assert.GreaterOrEqual(t, result.SelectedSlot.Start.Hour(), 13)
	assert.True(t, SlotRespectsAll(*result.SelectedSlot, participants))
	assert.LessOrEqual(t, len(result.Alternatives), 2)
}

func TestNegotiateCompromiseBelowMinScore(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{})
	schedule := meeting.DefaultSchedule(monday)
	slots := scoredSlots(participants, schedule)

	// Base score is 0.5, so a 0.9 threshold cannot be met.
	result := NewEngine().Negotiate(slots, participants, schedule, 0.9, meeting.StrategyNone)

	assert.Equal(t, meeting.OutcomeCompromiseProposed, result.Outcome)
	assert.Equal(t, meeting.StrategyNone, result.Strategy)
	require.NotNil(t, result.SelectedSlot)
}

func TestNegotiateDurationAdjustment(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{PreferredMaxDuration: 30})
	schedule := meeting.DefaultSchedule(monday)
	slots := scoredSlots(participants, schedule)

	// Every 60 minute slot violates the cap, forcing the ladder.
	result := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyNone)

	assert.Equal(t, meeting.OutcomeCompromiseProposed, result.Outcome)
	assert.Equal(t, meeting.StrategyDurationAdjustment, result.Strategy)
	require.NotNil(t, result.ProposedSchedule)
	assert.Equal(t, 30, result.ProposedSchedule.DefaultDuration)
	require.NotNil(t, result.SelectedSlot)
	assert.Equal(t, 30, result.SelectedSlot.DurationMinutes)
	assert.Equal(t, result.SelectedSlot.Start.Add(30*time.Minute), result.SelectedSlot.End)
}

func TestNegotiateSkipsStrategiesAlreadyTried(t *testing.T) {
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{PreferredMaxDuration: 30, PreferMorning: true}},
		"bob":   {Preferences: meeting.ParticipantPreferences{PreferAfternoon: true}},
	}
	schedule := meeting.DefaultSchedule(monday)
	slots := scoredSlots(participants, schedule)

	first := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyNone)
	require.Equal(t, meeting.StrategyDurationAdjustment, first.Strategy)

	// The next round must not retry duration adjustment. Time shifting fails
	// too because the 60 minute slots still violate Alice's cap, so the day
	// moves.
	second := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyDurationAdjustment)
	assert.Equal(t, meeting.StrategyAlternativeDay, second.Strategy)
	require.NotNil(t, second.ProposedSchedule)
	assert.Equal(t, monday.AddDate(0, 0, 1), second.ProposedSchedule.Day)
	assert.Nil(t, second.SelectedSlot)
}

func TestNegotiateTimeShiftDropsSoftPreference(t *testing.T) {
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{PreferMorning: true}},
		"bob":   {Preferences: meeting.ParticipantPreferences{PreferAfternoon: true}},
	}
	schedule := meeting.DefaultSchedule(monday)
	slots := scoredSlots(participants, schedule)

	// The morning/afternoon contradiction makes strict compliance impossible,
	// and no duration caps exist, so time shifting is the first viable rung.
	result := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyNone)

	assert.Equal(t, meeting.OutcomeCompromiseProposed, result.Outcome)
	assert.Equal(t, meeting.StrategyTODShifting, result.Strategy)
	require.NotNil(t, result.SelectedSlot)
	require.NotNil(t, result.ProposedSchedule)
	assert.Equal(t, monday, result.ProposedSchedule.Day)
}

func TestNegotiateRelaxConstraintsAfterLadder(t *testing.T) {
	participants := map[string]meeting.ParticipantData{
		"alice": {Preferences: meeting.ParticipantPreferences{PreferMorning: true}},
		"bob":   {Preferences: meeting.ParticipantPreferences{PreferAfternoon: true}},
	}
	schedule := meeting.DefaultSchedule(monday)
	schedule.MaxAlternativeDays = 0
	slots := scoredSlots(participants, schedule)

	result := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyTODShifting)

	assert.Equal(t, meeting.StrategyRelaxConstraints, result.Strategy)
	require.NotNil(t, result.ProposedSchedule)
	assert.Equal(t, meeting.ClockTime{Hour: 7, Minute: 30}, result.ProposedSchedule.WorkingHoursStart)
	assert.Equal(t, meeting.ClockTime{Hour: 18, Minute: 30}, result.ProposedSchedule.WorkingHoursEnd)
}

func TestNegotiateImpossibleWhenExhausted(t *testing.T) {
	participants := single(meeting.ParticipantPreferences{})
	schedule := meeting.DefaultSchedule(monday)
	schedule.MaxAlternativeDays = 0

	// No slots at all and no day to move to.
	result := NewEngine().Negotiate(nil, participants, schedule, 0.6, meeting.StrategyNone)

	assert.Equal(t, meeting.OutcomeImpossible, result.Outcome)
	assert.Equal(t, meeting.StrategyNone, result.Strategy)
	assert.Nil(t, result.ProposedSchedule)
	assert.Nil(t, result.SelectedSlot)
}

func TestNegotiateAlternativeDaySkipsWeekends(t *testing.T) {
	friday := monday.AddDate(0, 0, 4)
	calendar := []meeting.BusyInterval{
		{Start: at(friday, 9, 0), End: at(friday, 10, 0)},
	}
	participants := single(meeting.ParticipantPreferences{MaxMeetingsPerDay: 1, PreferMorning: true, PreferAfternoon: true}, calendar...)

	schedule := meeting.DefaultSchedule(friday)
	slots := scoredSlots(participants, schedule)

	// Contradictory morning+afternoon blocks strict compliance and time
	// shifting still passes hard bounds, so force the ladder past it.
	result := NewEngine().Negotiate(slots, participants, schedule, 0.6, meeting.StrategyTODShifting)

	require.Equal(t, meeting.StrategyAlternativeDay, result.Strategy)
	require.NotNil(t, result.ProposedSchedule)
	// +1 and -1 around Friday land on Saturday and Thursday; Thursday wins.
	assert.Equal(t, friday.AddDate(0, 0, -1), result.ProposedSchedule.Day)
}

func TestStrategyLadderNeverRepeatsPrevious(t *testing.T) {
	for previous, attempts := range strategyAttempts {
		for _, s := range attempts {
			assert.NotEqual(t, previous, s, "ladder for %s retries itself", previous)
			assert.NotEqual(t, meeting.StrategyNone, s)
		}
	}
}

func TestRunnersUpCopies(t *testing.T) {
	slots := []meeting.SlotInfo{
		slot(at(monday, 9, 0), 60),
		slot(at(monday, 10, 0), 60),
		slot(at(monday, 11, 0), 60),
		slot(at(monday, 12, 0), 60),
	}

	alts := runnersUp(slots)
	require.Len(t, alts, 2)
	assert.Equal(t, slots[1], alts[0])
	assert.Equal(t, slots[2], alts[1])

	assert.Nil(t, runnersUp(slots[:1]))
	assert.Nil(t, runnersUp(nil))
}
