package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/meeting-negotiator/internal/db"
)

const (
	participantCount = 50
	calendarDays     = 10
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedParticipants(context.Background(), pool, participantCount); err != nil {
		log.Fatalf("seed participants: %v", err)
	}

	log.Println("seed complete")
}

func seedParticipants(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d participants with preferences and calendars", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s_%s", gofakeit.FirstName(), gofakeit.LastName())

		_, err := tx.Exec(ctx, `
			INSERT INTO participants (name, created_at)
			VALUES ($1, now())
			ON CONFLICT (name) DO NOTHING
		`, name)
		if err != nil {
			return err
		}

		if err := seedPreferences(ctx, tx, name); err != nil {
			return err
		}
		if err := seedCalendar(ctx, tx, name); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedPreferences(ctx context.Context, tx pgx.Tx, name string) error {
	var before, after *string
	var maxPerDay, maxDuration *int

	if gofakeit.Bool() {
		v := fmt.Sprintf("%02d:00", gofakeit.Number(8, 11))
		before = &v
	}
	if gofakeit.Bool() {
		v := fmt.Sprintf("%02d:00", gofakeit.Number(15, 18))
		after = &v
	}
	if gofakeit.Number(0, 2) == 0 {
		v := gofakeit.Number(2, 6)
		maxPerDay = &v
	}
	if gofakeit.Number(0, 2) == 0 {
		durations := []int{30, 45, 60, 90}
		v := durations[gofakeit.Number(0, len(durations)-1)]
		maxDuration = &v
	}

	// Morning and afternoon preferences are mutually exclusive
	preferMorning := gofakeit.Number(0, 3) == 0
	preferAfternoon := !preferMorning && gofakeit.Number(0, 3) == 0

	_, err := tx.Exec(ctx, `
		INSERT INTO preferences
			(participant, no_meetings_before, no_meetings_after, prefer_morning,
			 prefer_afternoon, avoid_lunch_time, max_meetings_per_day, preferred_max_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (participant) DO NOTHING
	`, name, before, after, preferMorning, preferAfternoon, gofakeit.Bool(), maxPerDay, maxDuration)

	return err
}

func seedCalendar(ctx context.Context, tx pgx.Tx, name string) error {
	day := time.Now()

	for d := 0; d < calendarDays; d++ {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}

		meetings := gofakeit.Number(0, 5)
		for m := 0; m < meetings; m++ {
			startHour := gofakeit.Number(8, 16)
			durations := []int{30, 60, 90}
			duration := durations[gofakeit.Number(0, len(durations)-1)]

			start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, day.Location())
			end := start.Add(time.Duration(duration) * time.Minute)

			_, err := tx.Exec(ctx, `
				INSERT INTO busy_intervals (id, participant, start_time, end_time)
				VALUES ($1, $2, $3, $4)
			`, uuid.New(), name, start, end)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
