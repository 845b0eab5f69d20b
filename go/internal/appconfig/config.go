// Package appconfig loads server configuration from defaults, an optional YAML
// file and the environment, in that order of precedence.
package appconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/hangman/go/internal/game"
)

const (
	BroadcastDirect = "direct"
	BroadcastNATS   = "nats"

	WordSourceFile     = "file"
	WordSourcePostgres = "postgres"
)

type Config struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`

	// BroadcastMode is "direct" (in-process fan-out) or "nats" (through JetStream).
	BroadcastMode string `yaml:"broadcast_mode"`
	NATSURL       string `yaml:"nats_url"`

	// WordSource is "file" or "postgres". An empty WordFile uses the built-in list.
	WordSource string `yaml:"word_source"`
	WordFile   string `yaml:"word_file"`

	Game game.Config `yaml:"game"`
}

func Default() Config {
	return Config{
		Port:           "8080",
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
		BroadcastMode:  BroadcastDirect,
		NATSURL:        "nats://localhost:4222",
		WordSource:     WordSourceFile,
		Game:           game.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.BroadcastMode = getEnv("BROADCAST_MODE", c.BroadcastMode)
	c.NATSURL = getEnv("NATS_URL", c.NATSURL)
	c.WordSource = getEnv("WORD_SOURCE", c.WordSource)
	c.WordFile = getEnv("WORD_FILE", c.WordFile)

	c.Game.TurnDuration = getEnvAsDuration("TURN_DURATION", c.Game.TurnDuration)
	c.Game.GuessDelay = getEnvAsDuration("GUESS_DELAY", c.Game.GuessDelay)
	c.Game.SolveDelay = getEnvAsDuration("SOLVE_DELAY", c.Game.SolveDelay)
	c.Game.InitialScore = getEnvAsInt("INITIAL_SCORE", c.Game.InitialScore)
	c.Game.MaxCapacity = getEnvAsInt("MAX_CAPACITY", c.Game.MaxCapacity)
	c.Game.MaxWordCount = getEnvAsInt("MAX_WORD_COUNT", c.Game.MaxWordCount)
}

func (c *Config) Validate() error {
	switch c.BroadcastMode {
	case BroadcastDirect, BroadcastNATS:
	default:
		return fmt.Errorf("invalid broadcast mode %q", c.BroadcastMode)
	}
	switch c.WordSource {
	case WordSourceFile, WordSourcePostgres:
	default:
		return fmt.Errorf("invalid word source %q", c.WordSource)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.Game.TurnDuration <= 0 {
		return fmt.Errorf("turn duration must be positive, got %s", c.Game.TurnDuration)
	}
	return nil
}

// Level returns the zerolog level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
