package store

import (
	"context"
	"errors"
	"sort"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

var ErrParticipantNotFound = errors.New("participant not found")

// Store is the read-only preference/calendar source. It is constructed once
// at startup and injected into every component that needs it; negotiation
// code never writes through it.
type Store interface {
	// GetPreference returns ErrParticipantNotFound for unknown participants.
	GetPreference(ctx context.Context, participant string) (meeting.ParticipantPreferences, error)

	// GetCalendar returns the participant's busy intervals ordered by start
	// time. Unknown participants yield an empty slice, not an error.
	GetCalendar(ctx context.Context, participant string) ([]meeting.BusyInterval, error)

	ListParticipants(ctx context.Context) ([]string, error)
}

// MemoryStore is a fixture-backed Store for tests and offline runs.
type MemoryStore struct {
	prefs     map[string]meeting.ParticipantPreferences
	calendars map[string][]meeting.BusyInterval
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prefs:     make(map[string]meeting.ParticipantPreferences),
		calendars: make(map[string][]meeting.BusyInterval),
	}
}

// AddParticipant registers a participant with preferences and busy
// intervals. Not safe for use after the store is handed to negotiations.
func (m *MemoryStore) AddParticipant(name string, prefs meeting.ParticipantPreferences, calendar []meeting.BusyInterval) {
	m.prefs[name] = prefs
	m.calendars[name] = calendar
}

func (m *MemoryStore) GetPreference(_ context.Context, participant string) (meeting.ParticipantPreferences, error) {
	prefs, ok := m.prefs[participant]
	if !ok {
		return meeting.ParticipantPreferences{}, ErrParticipantNotFound
	}
	return prefs, nil
}

func (m *MemoryStore) GetCalendar(_ context.Context, participant string) ([]meeting.BusyInterval, error) {
	calendar := m.calendars[participant]
	out := append([]meeting.BusyInterval(nil), calendar...)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *MemoryStore) ListParticipants(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.prefs))
	for name := range m.prefs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
