package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/meeting-negotiator/internal/scheduler"
	"github.com/hackgods/meeting-negotiator/internal/store"
)

type RouterConfig struct {
	Service *scheduler.Service
	Store   store.Store
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/negotiations", negotiateHandler(cfg.Service))
	r.Get("/participants", listParticipantsHandler(cfg.Store))
	r.Get("/participants/{id}/calendar", getCalendarHandler(cfg.Store))

	return r
}
