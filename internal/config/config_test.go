package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"TOWER_TURN_TIMEOUT_SEC", "TOWER_MAX_PLAYERS", "TOWER_RECONNECT_TTL_SEC",
	"TOWER_TOKEN_SECRET", "TOWER_REDIS_ADDR", "TOWER_DATABASE_URL",
	"TOWER_LOG_LEVEL", "TOWER_LOG_FORMAT", "TOWER_THEMES_FILE",
}

// clearEnv blanks every TOWER_* variable for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, c.TurnTimeout)
	assert.Equal(t, 4, c.MaxPlayers)
	assert.Equal(t, 2*time.Minute, c.ReconnectTTL)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Empty(t, c.RedisAddr)

	hr := c.HouseRules()
	assert.Equal(t, 15, hr.TurnTimerSec)
	assert.Equal(t, 4, hr.MaxPlayers)
}

func TestOverridesAndValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOWER_TURN_TIMEOUT_SEC", "30")
	t.Setenv("TOWER_MAX_PLAYERS", "6")
	t.Setenv("TOWER_LOG_FORMAT", "JSON")
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, c.TurnTimeout)
	assert.Equal(t, 6, c.MaxPlayers)
	assert.Equal(t, "json", c.LogFormat)

	bad := map[string]string{
		"TOWER_TURN_TIMEOUT_SEC":  "soon",
		"TOWER_MAX_PLAYERS":       "1",
		"TOWER_RECONNECT_TTL_SEC": "0",
		"TOWER_LOG_FORMAT":        "xml",
	}
	for k, v := range bad {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set.
	for _, k := range keys {
		os.Unsetenv(k)
	}
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TOWER_REDIS_ADDR=localhost:6380\nTOWER_MAX_PLAYERS=3\n"), 0o600))

	c, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", c.RedisAddr)
	assert.Equal(t, 3, c.MaxPlayers)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	c := Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, c.ConfigureLogging())
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	c.LogLevel = "loud"
	assert.Error(t, c.ConfigureLogging())
}
