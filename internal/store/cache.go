package store

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

// CachedStore is a Redis read-through cache in front of another Store.
// Cache failures are logged and degrade to the inner store; they never fail
// a negotiation.
type CachedStore struct {
	inner Store
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, rdb: rdb, ttl: ttl}
}

type cachedPrefs struct {
	NoMeetingsBefore     *string `json:"no_meetings_before,omitempty"`
	NoMeetingsAfter      *string `json:"no_meetings_after,omitempty"`
	PreferMorning        bool    `json:"prefer_morning"`
	PreferAfternoon      bool    `json:"prefer_afternoon"`
	AvoidLunchTime       bool    `json:"avoid_lunch_time"`
	MaxMeetingsPerDay    int     `json:"max_meetings_per_day"`
	PreferredMaxDuration int     `json:"preferred_max_duration"`
}

type cachedInterval struct {
	Participant string    `json:"participant"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func (c *CachedStore) GetPreference(ctx context.Context, participant string) (meeting.ParticipantPreferences, error) {
	key := "prefs:" + participant

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var dto cachedPrefs
		if err := json.Unmarshal(raw, &dto); err == nil {
			return decodePrefs(dto)
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("prefs cache read failed for %s: %v", participant, err)
	}

	prefs, err := c.inner.GetPreference(ctx, participant)
	if err != nil {
		return meeting.ParticipantPreferences{}, err
	}

	if raw, err := json.Marshal(encodePrefs(prefs)); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("prefs cache write failed for %s: %v", participant, err)
		}
	}

	return prefs, nil
}

func (c *CachedStore) GetCalendar(ctx context.Context, participant string) ([]meeting.BusyInterval, error) {
	key := "calendar:" + participant

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var dtos []cachedInterval
		if err := json.Unmarshal(raw, &dtos); err == nil {
			out := make([]meeting.BusyInterval, 0, len(dtos))
			for _, d := range dtos {
				out = append(out, meeting.BusyInterval{Participant: d.Participant, Start: d.Start, End: d.End})
			}
			return out, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("calendar cache read failed for %s: %v", participant, err)
	}

	calendar, err := c.inner.GetCalendar(ctx, participant)
	if err != nil {
		return nil, err
	}

	dtos := make([]cachedInterval, 0, len(calendar))
	for _, b := range calendar {
		dtos = append(dtos, cachedInterval{Participant: b.Participant, Start: b.Start, End: b.End})
	}
	if raw, err := json.Marshal(dtos); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("calendar cache write failed for %s: %v", participant, err)
		}
	}

	return calendar, nil
}

func (c *CachedStore) ListParticipants(ctx context.Context) ([]string, error) {
	return c.inner.ListParticipants(ctx)
}

func encodePrefs(p meeting.ParticipantPreferences) cachedPrefs {
	dto := cachedPrefs{
		PreferMorning:        p.PreferMorning,
		PreferAfternoon:      p.PreferAfternoon,
		AvoidLunchTime:       p.AvoidLunchTime,
		MaxMeetingsPerDay:    p.MaxMeetingsPerDay,
		PreferredMaxDuration: p.PreferredMaxDuration,
	}
	if p.NoMeetingsBefore != nil {
		s := p.NoMeetingsBefore.String()
		dto.NoMeetingsBefore = &s
	}
	if p.NoMeetingsAfter != nil {
		s := p.NoMeetingsAfter.String()
		dto.NoMeetingsAfter = &s
	}
	return dto
}

func decodePrefs(dto cachedPrefs) (meeting.ParticipantPreferences, error) {
	prefs := meeting.ParticipantPreferences{
		PreferMorning:        dto.PreferMorning,
		PreferAfternoon:      dto.PreferAfternoon,
		AvoidLunchTime:       dto.AvoidLunchTime,
		MaxMeetingsPerDay:    dto.MaxMeetingsPerDay,
		PreferredMaxDuration: dto.PreferredMaxDuration,
	}
	if dto.NoMeetingsBefore != nil {
		c, err := meeting.ParseClock(*dto.NoMeetingsBefore)
		if err != nil {
			return meeting.ParticipantPreferences{}, err
		}
		prefs.NoMeetingsBefore = &c
	}
	if dto.NoMeetingsAfter != nil {
		c, err := meeting.ParseClock(*dto.NoMeetingsAfter)
		if err != nil {
			return meeting.ParticipantPreferences{}, err
		}
		prefs.NoMeetingsAfter = &c
	}
	return prefs, nil
}
