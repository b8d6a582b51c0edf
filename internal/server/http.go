package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/config"
	"github.com/voyagerhq/gameshow/internal/session"
)

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, redisClient *redis.Client, handlers *session.HTTPHandlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				logger.Error().Err(err).Msg("redis ping failed")
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/identity", handlers.Identity)

	mux.HandleFunc("POST /v1/waitlist/join", handlers.JoinWaitlist)
	mux.HandleFunc("POST /v1/waitlist/leave", handlers.LeaveWaitlist)

	mux.HandleFunc("POST /v1/instances", handlers.CreateInstance)
	mux.HandleFunc("GET /v1/instances", handlers.ListInstances)
	mux.HandleFunc("GET /v1/instances/{id}", handlers.GetInstance)
	mux.HandleFunc("POST /v1/instances/{id}/start", handlers.StartInstance)
	mux.HandleFunc("POST /v1/instances/{id}/rounds", handlers.BeginRound)
	mux.HandleFunc("POST /v1/instances/{id}/elimination", handlers.RequestElimination)
	mux.HandleFunc("POST /v1/instances/{id}/answers", handlers.SubmitAnswer)
	mux.HandleFunc("POST /v1/instances/{id}/evaluate", handlers.EvaluateRound)
	mux.HandleFunc("DELETE /v1/instances/{id}", handlers.Teardown)

	mux.HandleFunc("GET /v1/status", handlers.Status)
	mux.HandleFunc("GET /v1/leaderboards/{window}", handlers.Leaderboard)

	mux.HandleFunc("GET /ws", handlers.WebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}
