package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Supported leaderboard windows.
const (
	WindowDaily   = "daily"
	WindowWeekly  = "weekly"
	WindowAllTime = "all_time"
)

var defaultWindows = []string{WindowDaily, WindowWeekly, WindowAllTime}

// Entry is a leaderboard record shaped for rendering.
type Entry struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Wins        int    `json:"wins"`
	Games       int    `json:"games"`
}

// RecordRequest captures one player's final result for an instance.
type RecordRequest struct {
	PlayerID    string
	DisplayName string
	Score       int
	Won         bool
	InstanceID  string
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN           int
	Windows        []string
	RedisKeyPrefix string
}

// Service keeps cross-instance rankings in Redis sorted sets. Rankings
// are ephemeral aggregates for rendering; losing them is acceptable.
type Service struct {
	redis   *redis.Client
	logger  zerolog.Logger
	topN    int
	windows []string
	prefix  string
}

// NewService constructs a leaderboard service.
func NewService(redisClient *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 25
	}
	windows := opts.Windows
	if len(windows) == 0 {
		windows = defaultWindows
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}
	return &Service{
		redis:   redisClient,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
		topN:    topN,
		windows: windows,
		prefix:  prefix,
	}
}

// RecordResult folds one final score into every window.
func (s *Service) RecordResult(ctx context.Context, req RecordRequest) error {
	for _, window := range s.windows {
		key := s.scoreKey(window)
		pipe := s.redis.TxPipeline()
		pipe.ZIncrBy(ctx, key, float64(req.Score), req.PlayerID)
		pipe.HSet(ctx, s.nameKey(), req.PlayerID, req.DisplayName)
		pipe.HIncrBy(ctx, s.statKey(window, "games"), req.PlayerID, 1)
		if req.Won {
			pipe.HIncrBy(ctx, s.statKey(window, "wins"), req.PlayerID, 1)
		}
		if ttl := windowTTL(window); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
			pipe.Expire(ctx, s.statKey(window, "games"), ttl)
			pipe.Expire(ctx, s.statKey(window, "wins"), ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("record %s result: %w", window, err)
		}
	}

	s.logger.Info().
		Str("player_id", req.PlayerID).
		Str("instance_id", req.InstanceID).
		Int("score", req.Score).
		Bool("won", req.Won).
		Msg("result recorded")
	return nil
}

// Top returns the best n entries for a window, score descending.
func (s *Service) Top(ctx context.Context, window string, n int) ([]Entry, error) {
	if !s.supportsWindow(window) {
		return nil, fmt.Errorf("unknown leaderboard window %q", window)
	}
	if n <= 0 || n > s.topN {
		n = s.topN
	}

	ranked, err := s.redis.ZRevRangeWithScores(ctx, s.scoreKey(window), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("range leaderboard: %w", err)
	}
	if len(ranked) == 0 {
		return []Entry{}, nil
	}

	// One pipelined round-trip for all the per-player detail lookups.
	pipe := s.redis.Pipeline()
	names := make([]*redis.StringCmd, len(ranked))
	wins := make([]*redis.StringCmd, len(ranked))
	games := make([]*redis.StringCmd, len(ranked))
	for i, z := range ranked {
		playerID, _ := z.Member.(string)
		names[i] = pipe.HGet(ctx, s.nameKey(), playerID)
		wins[i] = pipe.HGet(ctx, s.statKey(window, "wins"), playerID)
		games[i] = pipe.HGet(ctx, s.statKey(window, "games"), playerID)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load leaderboard details: %w", err)
	}

	entries := make([]Entry, 0, len(ranked))
	for i, z := range ranked {
		playerID, _ := z.Member.(string)
		entries = append(entries, assembleEntry(playerID, z.Score, names[i], wins[i], games[i]))
	}
	return entries, nil
}

// assembleEntry folds the detail lookups into an Entry; missing hash
// fields leave their zero values.
func assembleEntry(playerID string, score float64, name, wins, games *redis.StringCmd) Entry {
	entry := Entry{PlayerID: playerID, Score: int(score)}
	if v, err := name.Result(); err == nil {
		entry.DisplayName = v
	}
	if v, err := wins.Int(); err == nil {
		entry.Wins = v
	}
	if v, err := games.Int(); err == nil {
		entry.Games = v
	}
	return entry
}

func (s *Service) supportsWindow(window string) bool {
	for _, w := range s.windows {
		if w == window {
			return true
		}
	}
	return false
}

func (s *Service) scoreKey(window string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, window, windowBucket(window))
}

func (s *Service) statKey(window, stat string) string {
	return fmt.Sprintf("%s:%s:%s:%s", s.prefix, window, windowBucket(window), stat)
}

func (s *Service) nameKey() string {
	return s.prefix + ":names"
}

// windowBucket pins rolling windows to calendar buckets so keys rotate
// naturally.
func windowBucket(window string) string {
	now := time.Now().UTC()
	switch window {
	case WindowDaily:
		return now.Format("2006-01-02")
	case WindowWeekly:
		year, week := now.ISOWeek()
		return fmt.Sprintf("%d-w%02d", year, week)
	default:
		return "all"
	}
}

func windowTTL(window string) time.Duration {
	switch window {
	case WindowDaily:
		return 48 * time.Hour
	case WindowWeekly:
		return 14 * 24 * time.Hour
	default:
		return 0
	}
}
