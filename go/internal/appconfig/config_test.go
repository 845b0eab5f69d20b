package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "ALLOWED_ORIGINS", "LOG_LEVEL", "BROADCAST_MODE", "NATS_URL", "WORD_SOURCE", "WORD_FILE",
	"TURN_DURATION", "GUESS_DELAY", "SOLVE_DELAY", "INITIAL_SCORE", "MAX_CAPACITY", "MAX_WORD_COUNT",
}

func clearEnv(t *testing.T) {
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, BroadcastDirect, cfg.BroadcastMode)
	assert.Equal(t, WordSourceFile, cfg.WordSource)
	assert.Equal(t, 10*time.Second, cfg.Game.TurnDuration)
	assert.Equal(t, 10, cfg.Game.InitialScore)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "hangman.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
log_level: debug
word_source: postgres
game:
  turn_duration: 5s
  solve_delay: 3s
  max_capacity: 8
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://play.example.com ,")
	t.Setenv("GUESS_DELAY", "500ms")
	t.Setenv("INITIAL_SCORE", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000", "https://play.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, WordSourcePostgres, cfg.WordSource)
	assert.Equal(t, 5*time.Second, cfg.Game.TurnDuration)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.GuessDelay)
	assert.Equal(t, 3*time.Second, cfg.Game.SolveDelay)
	assert.Equal(t, 8, cfg.Game.MaxCapacity)
	assert.Equal(t, 10, cfg.Game.InitialScore)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	t.Setenv("BROADCAST_MODE", "carrier-pigeon")
	_, err := Load("")
	assert.ErrorContains(t, err, "broadcast mode")

	t.Setenv("BROADCAST_MODE", "")
	t.Setenv("WORD_SOURCE", "s3")
	_, err = Load("")
	assert.ErrorContains(t, err, "word source")

	t.Setenv("WORD_SOURCE", "")
	t.Setenv("LOG_LEVEL", "loud")
	_, err = Load("")
	assert.ErrorContains(t, err, "log level")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
