package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/analyst"
	"github.com/hackgods/meeting-negotiator/internal/api"
	"github.com/hackgods/meeting-negotiator/internal/config"
	"github.com/hackgods/meeting-negotiator/internal/db"
	"github.com/hackgods/meeting-negotiator/internal/meeting"
	"github.com/hackgods/meeting-negotiator/internal/narrative"
	"github.com/hackgods/meeting-negotiator/internal/negotiation"
	redisclient "github.com/hackgods/meeting-negotiator/internal/redis"
	"github.com/hackgods/meeting-negotiator/internal/scheduler"
	"github.com/hackgods/meeting-negotiator/internal/store"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	hoursStart, err := meeting.ParseClock(cfg.WorkingHoursStart)
	if err != nil {
		log.Fatalf("invalid WORKING_HOURS_START: %v", err)
	}
	hoursEnd, err := meeting.ParseClock(cfg.WorkingHoursEnd)
	if err != nil {
		log.Fatalf("invalid WORKING_HOURS_END: %v", err)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	pgStore := store.NewPgStore(pgPool)
	cached := store.NewCachedStore(pgStore, rdb, cfg.CacheTTL)
	locker := redisclient.NewRedisNegotiationLocker(rdb, cfg.LockTTL)

	var narrator narrative.Narrator = narrative.TemplateNarrator{}
	if cfg.NarrativeModel != "" {
		client, err := narrative.NewClient(narrative.ClientConfig{
			Model:   cfg.NarrativeModel,
			Timeout: cfg.NarrativeTimeout,
		})
		if err != nil {
			log.Printf("narrative client unavailable, using templated summaries: %v", err)
		} else {
			narrator = narrative.NewLLMNarrator(client)
		}
	}

	svc := scheduler.NewService(
		cached,
		analyst.New(),
		negotiation.NewEngine(),
		narrator,
		locker,
		scheduler.Options{
			WorkingHoursStart:  hoursStart,
			WorkingHoursEnd:    hoursEnd,
			DefaultDuration:    cfg.DefaultDuration,
			SlotInterval:       cfg.SlotInterval,
			MaxAlternativeDays: cfg.MaxAlternativeDays,
			MinScore:           cfg.MinScore,
			MaxRounds:          cfg.MaxRounds,
		},
	)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Store:   cached,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
