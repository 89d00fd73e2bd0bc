package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/meeting-negotiator/internal/meeting"
)

// PgStore reads preferences and calendars from Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) GetPreference(ctx context.Context, participant string) (meeting.ParticipantPreferences, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT no_meetings_before, no_meetings_after, prefer_morning, prefer_afternoon,
		       avoid_lunch_time, max_meetings_per_day, preferred_max_duration
		FROM preferences
		WHERE participant = $1
	`, participant)

	var (
		before, after *string
		maxPerDay     *int
		maxDuration   *int
		prefs         meeting.ParticipantPreferences
	)

	err := row.Scan(
		&before,
		&after,
		&prefs.PreferMorning,
		&prefs.PreferAfternoon,
		&prefs.AvoidLunchTime,
		&maxPerDay,
		&maxDuration,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meeting.ParticipantPreferences{}, ErrParticipantNotFound
		}
		return meeting.ParticipantPreferences{}, err
	}

	if before != nil {
		c, err := meeting.ParseClock(*before)
		if err != nil {
			return meeting.ParticipantPreferences{}, fmt.Errorf("preferences for %s: %w", participant, err)
		}
		prefs.NoMeetingsBefore = &c
	}
	if after != nil {
		c, err := meeting.ParseClock(*after)
		if err != nil {
			return meeting.ParticipantPreferences{}, fmt.Errorf("preferences for %s: %w", participant, err)
		}
		prefs.NoMeetingsAfter = &c
	}
	if maxPerDay != nil {
		prefs.MaxMeetingsPerDay = *maxPerDay
	}
	if maxDuration != nil {
		prefs.PreferredMaxDuration = *maxDuration
	}

	return prefs, nil
}

func (s *PgStore) GetCalendar(ctx context.Context, participant string) ([]meeting.BusyInterval, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT participant, start_time, end_time
		FROM busy_intervals
		WHERE participant = $1
		ORDER BY start_time
	`, participant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []meeting.BusyInterval
	for rows.Next() {
		var b meeting.BusyInterval
		if err := rows.Scan(&b.Participant, &b.Start, &b.End); err != nil {
			return nil, err
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *PgStore) ListParticipants(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name FROM participants ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}

// PruneBusyBefore deletes busy intervals that ended before the cutoff.
// Used by the retention worker, not part of the read-only Store interface.
func (s *PgStore) PruneBusyBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM busy_intervals WHERE end_time < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune busy intervals: %w", err)
	}
	return tag.RowsAffected(), nil
}
