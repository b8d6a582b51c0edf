package trivia

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RefillWorker keeps the trivia pool stocked from OpenTDB so the
// challenge generator stays non-blocking. A Redis cache bridges process
// restarts and rate limits.
type RefillWorker struct {
	pool     *Pool
	client   *OpenTDBClient
	cache    *Cache
	interval time.Duration
	batch    int
	logger   zerolog.Logger
}

func NewRefillWorker(pool *Pool, client *OpenTDBClient, cache *Cache, interval time.Duration, batch int, logger zerolog.Logger) *RefillWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if batch <= 0 {
		batch = 25
	}
	return &RefillWorker{
		pool:     pool,
		client:   client,
		cache:    cache,
		interval: interval,
		batch:    batch,
		logger:   logger.With().Str("component", "trivia_refill").Logger(),
	}
}

// Run warms the pool from cache, then refreshes it on a ticker until the
// context is cancelled.
func (w *RefillWorker) Run(ctx context.Context) error {
	w.warmFromCache(ctx)
	w.refill(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("trivia refill stopping")
			return ctx.Err()
		case <-ticker.C:
			w.refill(ctx)
		}
	}
}

func (w *RefillWorker) warmFromCache(ctx context.Context) {
	if w.cache == nil {
		return
	}
	qas, err := w.cache.Get(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("trivia cache read failed")
		return
	}
	if len(qas) > 0 {
		w.pool.Replace(qas)
		w.logger.Info().Int("questions", len(qas)).Msg("trivia pool warmed from cache")
	}
}

func (w *RefillWorker) refill(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	qas, err := w.client.Fetch(fetchCtx, w.batch)
	if err != nil {
		// The built-in pool keeps rounds playable, so a failed refill is
		// only worth a warning.
		w.logger.Warn().Err(err).Msg("trivia refill failed")
		return
	}

	w.pool.Replace(qas)
	if w.cache != nil {
		if err := w.cache.Set(ctx, qas); err != nil {
			w.logger.Warn().Err(err).Msg("trivia cache write failed")
		}
	}
	w.logger.Info().Int("questions", len(qas)).Msg("trivia pool refreshed")
}
