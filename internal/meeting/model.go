package meeting

import (
	"errors"
	"fmt"
	"time"
)

// Lunch is the fixed 12:00-13:00 window used by the lunch-avoidance
// preference.
var (
	LunchStart = ClockTime{Hour: 12}
	LunchEnd   = ClockTime{Hour: 13}
)

// ParticipantPreferences holds one participant's scheduling preferences.
// Records are immutable once loaded from the store.
type ParticipantPreferences struct {
	NoMeetingsBefore     *ClockTime // nil means no lower bound
	NoMeetingsAfter      *ClockTime // nil means no upper bound
	PreferMorning        bool       // prefers meetings between 06:00 and 12:00
	PreferAfternoon      bool       // prefers meetings between 13:00 and 18:00
	AvoidLunchTime       bool
	MaxMeetingsPerDay    int // 0 means no cap
	PreferredMaxDuration int // minutes, 0 means no preference
}

// BusyInterval is a single calendar entry. Sourced externally and used only
// for overlap tests and per-day counts.
type BusyInterval struct {
	Participant string
	Start       time.Time
	End         time.Time
}

// Overlaps reports whether the busy interval intersects [start, end) using a
// half-open interval test.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && b.End.After(start)
}

// ParticipantData bundles one participant's preferences with their calendar.
type ParticipantData struct {
	Preferences ParticipantPreferences
	Calendar    []BusyInterval
}

// MeetingSchedule is the mutable negotiation state for a single round.
// Strategies never modify a schedule in place; they propose a Clone with the
// changed fields so the round controller can compare across rounds.
type MeetingSchedule struct {
	Day                  time.Time // midnight of the target day
	DefaultDuration      int       // minutes
	WorkingHoursStart    ClockTime
	WorkingHoursEnd      ClockTime
	SlotInterval         int // minutes between candidate slot starts
	AlternativeDurations []int
	MaxAlternativeDays   int
}

var (
	ErrInvalidDuration     = errors.New("meeting duration must be between 15 and 480 minutes")
	ErrInvalidSlotInterval = errors.New("slot interval must be between 15 and 480 minutes")
	ErrInvalidAltDays      = errors.New("max alternative days must be between 0 and 7")
)

// Validate rejects structurally invalid schedules. Working-hour ordering is
// deliberately not enforced; an inverted window simply yields no candidates.
func (s MeetingSchedule) Validate() error {
	if s.DefaultDuration < 15 || s.DefaultDuration > 480 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, s.DefaultDuration)
	}
	if s.SlotInterval < 15 || s.SlotInterval > 480 {
		return fmt.Errorf("%w: got %d", ErrInvalidSlotInterval, s.SlotInterval)
	}
	if s.MaxAlternativeDays < 0 || s.MaxAlternativeDays > 7 {
		return fmt.Errorf("%w: got %d", ErrInvalidAltDays, s.MaxAlternativeDays)
	}
	return nil
}

// Clone returns an independent copy of the schedule.
func (s MeetingSchedule) Clone() MeetingSchedule {
	out := s
	out.AlternativeDurations = append([]int(nil), s.AlternativeDurations...)
	return out
}

// StartOfDay truncates a timestamp to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultSchedule returns a schedule for the given day with the stock
// working window and durations.
func DefaultSchedule(day time.Time) MeetingSchedule {
	return MeetingSchedule{
		Day:                  StartOfDay(day),
		DefaultDuration:      60,
		WorkingHoursStart:    ClockTime{Hour: 8},
		WorkingHoursEnd:      ClockTime{Hour: 18},
		SlotInterval:         30,
		AlternativeDurations: []int{15, 30, 45},
		MaxAlternativeDays:   3,
	}
}

// SlotInfo is a scored candidate slot. Instances are never mutated after
// creation; strategies that change a slot build a new value.
type SlotInfo struct {
	Start             time.Time
	End               time.Time
	DurationMinutes   int
	Confidence        float64 // 0..1
	Participants      []string
	ParticipantScores []float64
	ParticipantNotes  map[string][]string
	Notes             string
	DayOfWeek         string
	Score             float64 // mean of per-participant scores
}

// Key identifies a slot by its time span, used for frequency counting in
// fallback selection.
func (s SlotInfo) Key() string {
	return fmt.Sprintf("%s|%s|%d", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339), s.DurationMinutes)
}

type NegotiationOutcome string

const (
	OutcomeOptimalFound       NegotiationOutcome = "optimal_found"
	OutcomeCompromiseProposed NegotiationOutcome = "compromise_proposed"
	OutcomeImpossible         NegotiationOutcome = "impossible"
)

// NegotiationStrategy is ordered by magnitude of disruption. The ordering
// decides which strategies remain untried on a later round.
type NegotiationStrategy int

const (
	StrategyNone NegotiationStrategy = iota
	StrategyDurationAdjustment
	StrategyTODShifting
	StrategyAlternativeDay
	StrategyRelaxConstraints
)

func (s NegotiationStrategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyDurationAdjustment:
		return "duration_adjustment"
	case StrategyTODShifting:
		return "tod_shifting"
	case StrategyAlternativeDay:
		return "alternative_day"
	case StrategyRelaxConstraints:
		return "relax_constraints"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// NegotiationResult is the outcome of a single negotiation round. The
// previous round's result is read-only input to the next round.
type NegotiationResult struct {
	Outcome          NegotiationOutcome
	ProposedSchedule *MeetingSchedule
	SelectedSlot     *SlotInfo
	Reasoning        string
	Alternatives     []SlotInfo // at most 2
	Strategy         NegotiationStrategy
}
