package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddress)
	assert.Equal(t, 15*time.Minute, cfg.Server.IdleTimeout)
	assert.Equal(t, 19, cfg.Game.BoardSize)
	assert.Equal(t, "simultaneous", cfg.Game.CaptureRule)
	assert.Equal(t, "terminate", cfg.Game.IllegalMove)
	assert.Equal(t, 361, cfg.Game.MaxMoves)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Hour, cfg.Redis.SnapshotTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  http_address: ":9000"
  idle_timeout: 30s
game:
  board_size: 9
  capture_rule: standard
  illegal_move: reprompt
  seed: 42
database:
  driver: gorm
  postgres:
    host: db
    port: 6543
redis:
  enabled: true
  address: cache:6379
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.HTTPAddress)
	assert.Equal(t, 30*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, 9, cfg.Game.BoardSize)
	assert.Equal(t, "standard", cfg.Game.CaptureRule)
	assert.Equal(t, "reprompt", cfg.Game.IllegalMove)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, "gorm", cfg.Database.Driver)
	assert.Equal(t, "db", cfg.Database.Postgres.Host)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	// untouched keys keep their defaults
	assert.Equal(t, ":8081", cfg.Server.RPCAddress)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("GOMIND_GAME_BOARD_SIZE", "13")
	t.Setenv("GOMIND_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 13, cfg.Game.BoardSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("game: [unclosed"), 0o600))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
