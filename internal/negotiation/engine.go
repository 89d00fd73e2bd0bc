package negotiation

import (
	"log"
	"sort"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

const maxAlternatives = 2

// strategyAttempts maps the strategy chosen on the previous round to the
// rungs to try this round, in increasing order of disruption. Once the top
// half of the ladder has been used, the ladder restarts from the bottom so
// lesser strategies get retried against the updated schedule.
var strategyAttempts = map[meeting.NegotiationStrategy][]meeting.NegotiationStrategy{
	meeting.StrategyNone: {
		meeting.StrategyDurationAdjustment,
		meeting.StrategyTODShifting,
		meeting.StrategyAlternativeDay,
		meeting.StrategyRelaxConstraints,
	},
	meeting.StrategyDurationAdjustment: {
		meeting.StrategyTODShifting,
		meeting.StrategyAlternativeDay,
		meeting.StrategyRelaxConstraints,
	},
	meeting.StrategyTODShifting: {
		meeting.StrategyAlternativeDay,
		meeting.StrategyRelaxConstraints,
	},
	meeting.StrategyAlternativeDay: {
		meeting.StrategyDurationAdjustment,
		meeting.StrategyTODShifting,
		meeting.StrategyRelaxConstraints,
	},
	meeting.StrategyRelaxConstraints: {
		meeting.StrategyDurationAdjustment,
		meeting.StrategyTODShifting,
	},
}

// Engine resolves scheduling conflicts for a single round. It holds no
// cross-round state; everything it needs arrives as arguments, so one engine
// value can serve concurrent negotiations.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Negotiate either accepts the best strictly-compliant slot or walks the
// strategy ladder. The first strategy to produce a result wins the round;
// an exhausted ladder yields the IMPOSSIBLE outcome with no schedule and no
// slot.
func (e *Engine) Negotiate(
	slots []meeting.SlotInfo,
	participants map[string]meeting.ParticipantData,
	schedule meeting.MeetingSchedule,
	minScore float64,
	previous meeting.NegotiationStrategy,
) meeting.NegotiationResult {
	var compliant []meeting.SlotInfo
	for _, s := range slots {
		if SlotRespectsAll(s, participants) {
			compliant = append(compliant, s)
		}
	}

	if len(compliant) > 0 {
		sortByConfidence(compliant)
		best := compliant[0]

		outcome := meeting.OutcomeCompromiseProposed
		if best.Confidence >= minScore {
			outcome = meeting.OutcomeOptimalFound
		}

		log.Printf("negotiation: %d compliant slots, best confidence=%.2f outcome=%s", len(compliant), best.Confidence, outcome)

		proposed := schedule.Clone()
		return meeting.NegotiationResult{
			Outcome:          outcome,
			ProposedSchedule: &proposed,
			SelectedSlot:     &best,
			Reasoning:        "Found slot complying with every explicit preference.",
			Alternatives:     runnersUp(compliant),
			Strategy:         meeting.StrategyNone,
		}
	}

	for _, strategy := range strategyAttempts[previous] {
		var result *meeting.NegotiationResult

		switch strategy {
		case meeting.StrategyDurationAdjustment:
			result = e.durationAdjust(slots, participants, schedule)
		case meeting.StrategyTODShifting:
			result = e.timeShift(slots, participants, schedule)
		case meeting.StrategyAlternativeDay:
			result = e.alternativeDay(participants, schedule)
		case meeting.StrategyRelaxConstraints:
			result = e.relaxHours(slots, participants, schedule)
		}

		if result != nil {
			log.Printf("negotiation: strategy %s produced a proposal", strategy)
			return *result
		}
	}

	log.Printf("negotiation: all strategies exhausted")

	return meeting.NegotiationResult{
		Outcome:   meeting.OutcomeImpossible,
		Reasoning: "Exhausted negotiation strategies - no viable solution.",
		Strategy:  meeting.StrategyNone,
	}
}

func sortByConfidence(slots []meeting.SlotInfo) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Confidence > slots[j].Confidence
	})
}

// runnersUp returns up to two alternatives after the best slot.
func runnersUp(sorted []meeting.SlotInfo) []meeting.SlotInfo {
	if len(sorted) <= 1 {
		return nil
	}
	rest := sorted[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return append([]meeting.SlotInfo(nil), rest...)
}
