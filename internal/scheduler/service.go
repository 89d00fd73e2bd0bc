package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/analyst"
	"github.com/hackgods/meeting-negotiator/internal/meeting"
	"github.com/hackgods/meeting-negotiator/internal/narrative"
	redisclient "github.com/hackgods/meeting-negotiator/internal/redis"
	"github.com/hackgods/meeting-negotiator/internal/store"
)

var (
	ErrNoParticipants        = errors.New("at least one participant is required")
	ErrNegotiationInProgress = errors.New("a negotiation for these participants is already running")
)

// Request describes one scheduling attempt. Zero values fall back to the
// service defaults.
type Request struct {
	Participants []string
	Day          time.Time // zero means today
	Duration     int       // minutes, zero means default
	MaxRounds    int       // zero means default
}

// Summary is the final result of a whole negotiation run.
type Summary struct {
	Outcome      string // OPTIMAL_FOUND, FALLBACK or IMPOSSIBLE
	BestSlot     *meeting.SlotInfo
	Rounds       int
	History      []meeting.NegotiationResult
	Participants []string
	Narrative    string
}

// Options are the negotiation knobs the round controller needs.
type Options struct {
	WorkingHoursStart  meeting.ClockTime
	WorkingHoursEnd    meeting.ClockTime
	DefaultDuration    int
	SlotInterval       int
	MaxAlternativeDays int
	MinScore           float64
	MaxRounds          int
}

// Service is the round controller. It owns the schedule lineage across
// rounds and the append-only negotiation history; the engine itself stays
// stateless.
type Service struct {
	store    store.Store
	analyst  *analyst.Analyst
	engine   negotiationEngine
	narrator narrative.Narrator
	locker   redisclient.Locker
	opts     Options
}

// negotiationEngine matches negotiation.Engine; declared here so tests can
// substitute one.
type negotiationEngine interface {
	Negotiate(
		slots []meeting.SlotInfo,
		participants map[string]meeting.ParticipantData,
		schedule meeting.MeetingSchedule,
		minScore float64,
		previous meeting.NegotiationStrategy,
	) meeting.NegotiationResult
}

func NewService(st store.Store, an *analyst.Analyst, engine negotiationEngine, narrator narrative.Narrator, locker redisclient.Locker, opts Options) *Service {
	return &Service{
		store:    st,
		analyst:  an,
		engine:   engine,
		narrator: narrator,
		locker:   locker,
		opts:     opts,
	}
}

// Schedule runs the full negotiation for a participant set: load data, loop
// generate-negotiate rounds under the dedupe lock, pick a fallback when no
// round was optimal, and attach the narrative summary.
func (s *Service) Schedule(ctx context.Context, req Request) (*Summary, error) {
	if len(req.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	initial, err := s.initialSchedule(req)
	if err != nil {
		return nil, err
	}

	participants, err := s.loadParticipants(ctx, req.Participants)
	if err != nil {
		return nil, err
	}

	var summary *Summary
	err = s.locker.WithNegotiationLock(ctx, req.Participants, func(lockCtx context.Context) error {
		summary = s.runRounds(participants, initial, s.maxRounds(req))
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrNegotiationInProgress
		}
		return nil, err
	}

	summary.Participants = req.Participants
	summary.Narrative = s.narrator.Summarize(ctx, narrative.Input{
		Outcome:      summary.Outcome,
		BestSlot:     summary.BestSlot,
		Participants: req.Participants,
		Rounds:       summary.Rounds,
		History:      summary.History,
	})

	return summary, nil
}

func (s *Service) initialSchedule(req Request) (meeting.MeetingSchedule, error) {
	day := req.Day
	if day.IsZero() {
		day = time.Now()
	}

	schedule := meeting.MeetingSchedule{
		Day:                  meeting.StartOfDay(day),
		DefaultDuration:      s.opts.DefaultDuration,
		WorkingHoursStart:    s.opts.WorkingHoursStart,
		WorkingHoursEnd:      s.opts.WorkingHoursEnd,
		SlotInterval:         s.opts.SlotInterval,
		AlternativeDurations: []int{15, 30, 45},
		MaxAlternativeDays:   s.opts.MaxAlternativeDays,
	}
	if req.Duration > 0 {
		schedule.DefaultDuration = req.Duration
	}

	if err := schedule.Validate(); err != nil {
		return meeting.MeetingSchedule{}, err
	}
	return schedule, nil
}

func (s *Service) maxRounds(req Request) int {
	if req.MaxRounds > 0 {
		return req.MaxRounds
	}
	return s.opts.MaxRounds
}

// loadParticipants builds the per-participant dataset. A missing preference
// record or an empty calendar is not an error: such participants simply
// impose no constraints.
func (s *Service) loadParticipants(ctx context.Context, names []string) (map[string]meeting.ParticipantData, error) {
	out := make(map[string]meeting.ParticipantData, len(names))

	for _, name := range names {
		prefs, err := s.store.GetPreference(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrParticipantNotFound) {
				log.Printf("no preference record for %s, proceeding without constraints", name)
				prefs = meeting.ParticipantPreferences{}
			} else {
				return nil, fmt.Errorf("load preferences for %s: %w", name, err)
			}
		}

		calendar, err := s.store.GetCalendar(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load calendar for %s: %w", name, err)
		}

		out[name] = meeting.ParticipantData{Preferences: prefs, Calendar: calendar}
	}

	return out, nil
}

// runRounds is the core negotiation loop. Each round generates fresh scored
// slots against the current schedule, negotiates with the previous round's
// strategy carried forward, and adopts the proposed schedule when the round
// was not optimal. Rounds are strictly sequential.
func (s *Service) runRounds(participants map[string]meeting.ParticipantData, initial meeting.MeetingSchedule, maxRounds int) *Summary {
	schedule := initial
	previous := meeting.StrategyNone

	var (
		history     []meeting.NegotiationResult
		suggestions []meeting.SlotInfo
		best        *meeting.SlotInfo
		optimal     bool
		rounds      int
	)

	for round := 0; round < maxRounds; round++ {
		rounds = round + 1
		log.Printf("negotiation round %d/%d day=%s duration=%d", rounds, maxRounds,
			schedule.Day.Format("2006-01-02"), schedule.DefaultDuration)

		slots := s.analyst.FindSlots(participants, schedule)
		result := s.engine.Negotiate(slots, participants, schedule, s.opts.MinScore, previous)

		history = append(history, result)

		if result.SelectedSlot != nil {
			suggestions = append(suggestions, *result.SelectedSlot)
		}
		suggestions = append(suggestions, result.Alternatives...)

		if result.Outcome == meeting.OutcomeOptimalFound {
			optimal = true
			best = result.SelectedSlot
			break
		}

		if result.ProposedSchedule != nil {
			schedule = *result.ProposedSchedule
		}
		previous = result.Strategy
	}

	if !optimal {
		best = selectFallback(suggestions)
	}

	outcome := narrative.FinalImpossible
	switch {
	case optimal:
		outcome = narrative.FinalOptimal
	case best != nil:
		outcome = narrative.FinalFallback
	}

	log.Printf("negotiation finished outcome=%s rounds=%d suggestions=%d", outcome, rounds, len(suggestions))

	return &Summary{
		Outcome:  outcome,
		BestSlot: best,
		Rounds:   rounds,
		History:  history,
	}
}

// selectFallback picks a slot from everything suggested across all rounds.
// The most frequently suggested slot wins only when its confidence strictly
// exceeds the single highest-confidence suggestion; otherwise the
// highest-confidence suggestion is used.
func selectFallback(suggestions []meeting.SlotInfo) *meeting.SlotInfo {
	if len(suggestions) == 0 {
		return nil
	}

	counts := make(map[string]int, len(suggestions))
	for _, s := range suggestions {
		counts[s.Key()]++
	}

	modal := suggestions[0]
	top := suggestions[0]
	for _, s := range suggestions[1:] {
		if counts[s.Key()] > counts[modal.Key()] {
			modal = s
		}
		if s.Confidence > top.Confidence {
			top = s
		}
	}

	chosen := top
	if modal.Confidence > top.Confidence {
		chosen = modal
	}
	return &chosen
}
