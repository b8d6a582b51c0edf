package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/voyagerhq/gameshow/internal/config"
	"github.com/voyagerhq/gameshow/internal/game"
	"github.com/voyagerhq/gameshow/internal/game/answer"
	"github.com/voyagerhq/gameshow/internal/game/challenge"
	"github.com/voyagerhq/gameshow/internal/identity"
	"github.com/voyagerhq/gameshow/internal/leaderboard"
	"github.com/voyagerhq/gameshow/internal/logging"
	"github.com/voyagerhq/gameshow/internal/oracle"
	"github.com/voyagerhq/gameshow/internal/server"
	"github.com/voyagerhq/gameshow/internal/session"
	"github.com/voyagerhq/gameshow/internal/trivia"
	"github.com/voyagerhq/gameshow/pkg/realtime"
)

// Application aggregates shared infrastructure (cache, HTTP server,
// background workers).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	redis *redis.Client
	http  *http.Server

	scheduler    *session.Scheduler
	triviaWorker *trivia.RefillWorker
	bgCancels    []context.CancelFunc
}

// New bootstraps config, logger, Redis and the full service graph.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if cfg.Security.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET must be configured")
	}
	tokens := identity.NewManager(identity.TokenConfig{
		Secret: []byte(cfg.Security.TokenSecret),
		Issuer: cfg.Name,
	})

	// Trivia pool with its background refill.
	triviaPool := trivia.NewPool(nil)
	triviaCache := trivia.NewCache(redisClient, "", cfg.Trivia.CacheTTL)
	opentdbClient := trivia.NewOpenTDBClient("", nil)
	triviaWorker := trivia.NewRefillWorker(triviaPool, opentdbClient, triviaCache, cfg.Trivia.RefillInterval, cfg.Trivia.BatchSize, logger)

	generator := challenge.NewRegistry(challenge.Options{Trivia: triviaPool})

	// Free-text judging falls back to exact matching when no oracle
	// endpoint is configured.
	var judge answer.Judge
	if cfg.Oracle.Endpoint != "" {
		judge = oracle.NewClient(oracle.Config{
			Endpoint: cfg.Oracle.Endpoint,
			APIKey:   cfg.Oracle.APIKey,
			Timeout:  cfg.Oracle.Timeout,
		}, logger)
		logger.Info().Msg("answer oracle configured")
	} else {
		logger.Warn().Msg("no oracle endpoint; free-text answers use exact matching only")
	}
	evaluator := answer.NewEvaluator(judge, cfg.Oracle.Timeout, logger)

	gameCfg := game.Config{
		MinPlayers:        cfg.Game.MinPlayers,
		MaxPlayers:        cfg.Game.MaxPlayers,
		TwoPlayerRounds:   cfg.Game.TwoPlayerRounds,
		PartyRounds:       cfg.Game.PartyRounds,
		EliminationMisses: cfg.Game.EliminationMisses,
		CorrectPoints:     cfg.Game.CorrectPoints,
		SpeedBonusPoints:  cfg.Game.SpeedBonusPoints,
		FirstAnswerPoints: cfg.Game.FirstAnswerPoints,
	}

	registry := game.NewRegistry(gameCfg, generator, evaluator, logger)
	waitlist := game.NewWaitlist(registry, logger)
	leaderboardSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{TopN: cfg.Leaderboard.TopN})
	hub := realtime.NewHub(logger)
	scheduler := session.NewScheduler(logger)

	sessionSvc := session.NewService(registry, waitlist, scheduler, hub, leaderboardSvc, session.Options{
		Game: gameCfg,
	}, logger)

	handlers := session.NewHTTPHandlers(sessionSvc, tokens, hub, cfg.Security.AdminKey, logger)
	apiServer := server.NewHTTPServer(cfg, logger, redisClient, handlers)

	return &Application{
		cfg:          cfg,
		logger:       logger,
		redis:        redisClient,
		http:         apiServer,
		scheduler:    scheduler,
		triviaWorker: triviaWorker,
		bgCancels:    make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.scheduler.Stop()

	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.triviaWorker != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.triviaWorker.Run(bgCtx); err != nil && err != context.Canceled {
				a.logger.Warn().Err(err).Msg("trivia refill worker stopped")
			}
		}()
	}
}
