// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting for the server and the historian.
// Values come from the environment; a .env file is loaded by the commands via godotenv/autoload.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	DeckPath string `env:"DECK_PATH"`

	RoundDuration time.Duration `env:"ROUND_DURATION" envDefault:"180s"`
	JudgeDuration time.Duration `env:"JUDGE_DURATION" envDefault:"60s"` // 0 disables the judging timeout
	ResultDelay   time.Duration `env:"RESULT_DELAY" envDefault:"5s"`
	HandSize      int           `env:"HAND_SIZE" envDefault:"5"`
	MinPlayers    int           `env:"MIN_PLAYERS" envDefault:"3"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisDB      int    `env:"REDIS_DB" envDefault:"0"`
	HistoryQueue string `env:"HISTORY_QUEUE" envDefault:"cardparty_rounds"`

	DatabaseURL string `env:"DATABASE_URL"`

	// TokenExpire of 0 means registration tokens never expire.
	TokenExpire time.Duration `env:"TOKEN_EXPIRE_TIME" envDefault:"72h"`
	// Optional ed25519 key files; a fresh pair is generated when unset.
	JWTPrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	JWTPublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`

	WSRatePerSec float64 `env:"WS_RATE_PER_SEC" envDefault:"5"`
	WSRateBurst  int     `env:"WS_RATE_BURST" envDefault:"10"`

	HistorianBatchSize int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	HistorianFlush     time.Duration `env:"HISTORIAN_FLUSH" envDefault:"500ms"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the game engine cannot run with.
func (c Config) Validate() error {
	if c.RoundDuration <= 0 {
		return fmt.Errorf("ROUND_DURATION must be positive, got %s", c.RoundDuration)
	}
	if c.JudgeDuration < 0 {
		return fmt.Errorf("JUDGE_DURATION must not be negative, got %s", c.JudgeDuration)
	}
	if c.ResultDelay < 0 {
		return fmt.Errorf("RESULT_DELAY must not be negative, got %s", c.ResultDelay)
	}
	if c.HandSize < 1 {
		return fmt.Errorf("HAND_SIZE must be at least 1, got %d", c.HandSize)
	}
	if c.MinPlayers < 3 {
		return fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", c.MinPlayers)
	}
	if (c.JWTPrivateKeyPath == "") != (c.JWTPublicKeyPath == "") {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}
	if c.WSRatePerSec <= 0 || c.WSRateBurst < 1 {
		return fmt.Errorf("websocket rate limit must be positive")
	}
	return nil
}

// ValidateHandSize checks HAND_SIZE against the largest pick in the loaded card set.
func (c Config) ValidateHandSize(maxPick int) error {
	if c.HandSize < maxPick {
		return fmt.Errorf("HAND_SIZE %d is smaller than the largest prompt pick %d", c.HandSize, maxPick)
	}
	return nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Warnf("unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
