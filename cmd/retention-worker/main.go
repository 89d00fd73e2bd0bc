package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/meeting-negotiator/internal/config"
	"github.com/hackgods/meeting-negotiator/internal/db"
	"github.com/hackgods/meeting-negotiator/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("retention-worker starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running retention worker in env=%s interval=%s horizon=%s",
		cfg.Env, cfg.WorkerInterval, cfg.RetentionHorizon)

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

	pgStore := store.NewPgStore(pgPool)

	// Run once at startup
	runOnce(rootCtx, pgStore, cfg.RetentionHorizon)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping retention worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, pgStore, cfg.RetentionHorizon)
		}
	}
}

func runOnce(ctx context.Context, st *store.PgStore, horizon time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-horizon)

	start := time.Now()
	pruned, err := st.PruneBusyBefore(runCtx, cutoff)
	if err != nil {
		log.Printf("retention run error: %v", err)
		return
	}
	log.Printf("retention run complete pruned=%d cutoff=%s in %s", pruned, cutoff.Format(time.RFC3339), time.Since(start))
}
