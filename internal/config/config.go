package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"gameshow"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Redis       Redis
	Security    Security
	Game        Game
	Oracle      Oracle
	Trivia      Trivia
	Leaderboard Leaderboard
}

// Redis holds cache + leaderboard configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for token signing and the admin capability.
type Security struct {
	TokenSecret string `env:"TOKEN_SECRET,notEmpty"`
	AdminKey    string `env:"ADMIN_KEY"`
}

// Game groups gameplay defaults for new instances.
type Game struct {
	MinPlayers        int `env:"GAME_MIN_PLAYERS" envDefault:"2"`
	MaxPlayers        int `env:"GAME_MAX_PLAYERS" envDefault:"8"`
	TwoPlayerRounds   int `env:"GAME_TWO_PLAYER_ROUNDS" envDefault:"15"`
	PartyRounds       int `env:"GAME_PARTY_ROUNDS" envDefault:"20"`
	EliminationMisses int `env:"GAME_ELIMINATION_MISSES" envDefault:"1"`

	CorrectPoints     int `env:"SCORE_CORRECT_POINTS" envDefault:"10"`
	SpeedBonusPoints  int `env:"SCORE_SPEED_BONUS" envDefault:"5"`
	FirstAnswerPoints int `env:"SCORE_FIRST_ANSWER_BONUS" envDefault:"3"`
}

// Oracle configures the free-text judgment service.
type Oracle struct {
	Endpoint string        `env:"ORACLE_ENDPOINT"`
	APIKey   string        `env:"ORACLE_API_KEY"`
	Timeout  time.Duration `env:"ORACLE_TIMEOUT" envDefault:"5s"`
}

// Trivia governs the background question refill.
type Trivia struct {
	RefillInterval time.Duration `env:"TRIVIA_REFILL_INTERVAL" envDefault:"10m"`
	BatchSize      int           `env:"TRIVIA_BATCH_SIZE" envDefault:"25"`
	CacheTTL       time.Duration `env:"TRIVIA_CACHE_TTL" envDefault:"30m"`
}

// Leaderboard governs ranking windows.
type Leaderboard struct {
	TopN int `env:"LEADERBOARD_TOP" envDefault:"25"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
