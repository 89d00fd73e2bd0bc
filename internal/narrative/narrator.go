package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

const systemPrompt = "You are a professional meeting scheduler providing clear, concise updates."

// Final outcomes of a whole negotiation run, as presented to the narrator.
const (
	FinalOptimal    = "OPTIMAL_FOUND"
	FinalFallback   = "FALLBACK"
	FinalImpossible = "IMPOSSIBLE"
)

// Input is the narrative-service boundary payload.
type Input struct {
	Outcome      string
	BestSlot     *meeting.SlotInfo
	Participants []string
	Rounds       int
	History      []meeting.NegotiationResult
}

// Narrator turns a completed negotiation into human-readable text. It must
// never fail the scheduling operation: implementations degrade to the
// templated fallback.
type Narrator interface {
	Summarize(ctx context.Context, in Input) string
}

// LLMNarrator asks a chat model for a tailored summary, falling back to the
// deterministic template on any error.
type LLMNarrator struct {
	client *Client
}

func NewLLMNarrator(client *Client) *LLMNarrator {
	return &LLMNarrator{client: client}
}

func (n *LLMNarrator) Summarize(ctx context.Context, in Input) string {
	text, err := n.client.Chat(ctx, systemPrompt, buildPrompt(in))
	if err != nil {
		log.Printf("narrative generation failed, using fallback: %v", err)
		return FallbackText(in)
	}
	return strings.TrimSpace(text)
}

// TemplateNarrator always returns the deterministic fallback. Used when no
// chat endpoint is configured, and in tests.
type TemplateNarrator struct{}

func (TemplateNarrator) Summarize(_ context.Context, in Input) string {
	return FallbackText(in)
}

// FallbackText is the deterministic template for each outcome.
func FallbackText(in Input) string {
	switch {
	case in.Outcome == FinalOptimal && in.BestSlot != nil:
		return fmt.Sprintf("Meeting scheduled successfully for %s - %s with all participants.",
			formatSlotTime(in.BestSlot.Start), formatSlotTime(in.BestSlot.End))
	case in.BestSlot != nil:
		return fmt.Sprintf("Meeting scheduled with compromises for %s - %s.",
			formatSlotTime(in.BestSlot.Start), formatSlotTime(in.BestSlot.End))
	default:
		return "Unable to schedule a meeting with the current constraints. Please consider extending the timeframe or adjusting preferences."
	}
}

// reducedRound is the compact per-round digest sent to the model. Full
// results are far too verbose for a prompt.
type reducedRound struct {
	Outcome      string  `json:"outcome"`
	SelectedTime string  `json:"selected_time"`
	Confidence   float64 `json:"confidence,omitempty"`
	Duration     int     `json:"duration_minutes,omitempty"`
	Reasoning    string  `json:"reasoning"`
	Alternatives int     `json:"alternatives_count"`
	Strategy     string  `json:"strategy"`
}

func reduceRound(r meeting.NegotiationResult) reducedRound {
	out := reducedRound{
		Outcome:      string(r.Outcome),
		SelectedTime: "N/A",
		Reasoning:    r.Reasoning,
		Alternatives: len(r.Alternatives),
		Strategy:     r.Strategy.String(),
	}
	if r.SelectedSlot != nil {
		out.SelectedTime = fmt.Sprintf("%s - %s", formatSlotTime(r.SelectedSlot.Start), formatSlotTime(r.SelectedSlot.End))
		out.Confidence = r.SelectedSlot.Confidence
		out.Duration = r.SelectedSlot.DurationMinutes
	}
	return out
}

func buildPrompt(in Input) string {
	bestSlot := "none"
	if in.BestSlot != nil {
		bestSlot = fmt.Sprintf("%s - %s", formatSlotTime(in.BestSlot.Start), formatSlotTime(in.BestSlot.End))
	}

	reduced := make([]reducedRound, 0, len(in.History))
	for _, r := range in.History {
		reduced = append(reduced, reduceRound(r))
	}
	historyJSON, err := json.MarshalIndent(reduced, "", "  ")
	if err != nil {
		historyJSON = []byte("[]")
	}

	return fmt.Sprintf(`Based on a meeting scheduling negotiation:
- Participants: %s
- Outcome: %s
- Best slot found: %s
- Negotiation rounds: %d
- History: %s

Generate a professional, concise response that summarizes the scheduling outcome.
Handle these scenarios:
1. If an optimal slot was found, be positive and congratulatory
2. If a fallback was applied, acknowledge the compromise but remain optimistic
3. If no meeting could be scheduled, express regret and suggest alternatives like
   extending the search timeframe, being more flexible with preferences,
   considering virtual meetings, or scheduling multiple shorter sessions

Keep the response professional and helpful in all cases.`,
		strings.Join(in.Participants, ", "), in.Outcome, bestSlot, in.Rounds, historyJSON)
}

func formatSlotTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
