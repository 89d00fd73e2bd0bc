package analyst

import (
	"log"
	"sort"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

// Candidate is a raw (start, end) pair before scoring.
type Candidate struct {
	Start time.Time
	End   time.Time
}

// Analyst enumerates candidate slots for a schedule, removes conflicts
// against participant calendars and scores the survivors.
type Analyst struct{}

func New() *Analyst {
	return &Analyst{}
}

// FindSlots produces the scored candidate list for one negotiation round,
// sorted descending by score. An empty result is a normal signal, not an
// error.
func (a *Analyst) FindSlots(participants map[string]meeting.ParticipantData, schedule meeting.MeetingSchedule) []meeting.SlotInfo {
	candidates := GenerateCandidates(schedule)

	var busy []meeting.BusyInterval
	for _, data := range participants {
		busy = append(busy, data.Calendar...)
	}

	free := FilterConflicts(candidates, busy)

	log.Printf("analyst: day=%s candidates=%d free=%d participants=%d",
		schedule.Day.Format("2006-01-02"), len(candidates), len(free), len(participants))

	return a.scoreCandidates(free, participants, schedule.DefaultDuration)
}

// GenerateCandidates walks from the start to the end of the working window
// in slot-interval steps. The step size is the slot granularity, not the
// meeting duration. Weekend days yield no candidates, and so does a duration
// that cannot fit before the window closes.
func GenerateCandidates(schedule meeting.MeetingSchedule) []Candidate {
	if wd := schedule.Day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return nil
	}

	dayStart := schedule.WorkingHoursStart.On(schedule.Day)
	dayEnd := schedule.WorkingHoursEnd.On(schedule.Day)
	duration := time.Duration(schedule.DefaultDuration) * time.Minute
	step := time.Duration(schedule.SlotInterval) * time.Minute

	var out []Candidate
	for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(step) {
		out = append(out, Candidate{Start: start, End: start.Add(duration)})
	}
	return out
}

// FilterConflicts removes candidates that overlap any busy interval. The
// output is always a subsequence of the input; with no busy data everything
// passes.
func FilterConflicts(candidates []Candidate, busy []meeting.BusyInterval) []Candidate {
	if len(busy) == 0 {
		return candidates
	}

	var out []Candidate
	for _, c := range candidates {
		conflicted := false
		for _, b := range busy {
			if b.Overlaps(c.Start, c.End) {
				conflicted = true
				break
			}
		}
		if !conflicted {
			out = append(out, c)
		}
	}
	return out
}

func (a *Analyst) scoreCandidates(candidates []Candidate, participants map[string]meeting.ParticipantData, duration int) []meeting.SlotInfo {
	names := sortedNames(participants)

	slots := make([]meeting.SlotInfo, 0, len(candidates))
	for _, c := range candidates {
		scores := make([]float64, 0, len(names))
		notes := make(map[string][]string, len(names))

		for _, name := range names {
			score, participantNotes := scoreSlot(c.Start, c.End, duration, name, participants[name])
			scores = append(scores, score)
			notes[name] = participantNotes
		}

		avg := 0.0
		if len(scores) > 0 {
			sum := 0.0
			for _, s := range scores {
				sum += s
			}
			avg = sum / float64(len(scores))
		}

		slots = append(slots, meeting.SlotInfo{
			Start:             c.Start,
			End:               c.End,
			DurationMinutes:   duration,
			Confidence:        clamp(avg),
			Participants:      names,
			ParticipantScores: scores,
			ParticipantNotes:  notes,
			Notes:             slotNotes(c.Start, avg),
			DayOfWeek:         c.Start.Weekday().String(),
			Score:             avg,
		})
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].Score > slots[j].Score
	})

	return slots
}

func sortedNames(participants map[string]meeting.ParticipantData) []string {
	names := make([]string, 0, len(participants))
	for name := range participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
