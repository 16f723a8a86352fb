// Package config reads process settings from the environment, after
// loading any .env file present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
	"github.com/jason-s-yu/towerofsins/internal/game"
)

// Config holds every TOWER_* setting.
type Config struct {
	TurnTimeout  time.Duration
	MaxPlayers   int
	ReconnectTTL time.Duration
	TokenSecret  string
	RedisAddr    string // empty disables the action historian
	DatabaseURL  string // empty disables result storage
	LogLevel     string
	LogFormat    string // "text" or "json"
	ThemesFile   string // extra themes on top of the built-ins
}

// Load reads the given .env files (default ".env"; missing files are
// ignored) and then the environment. Variables already set in the
// environment win over the files.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	c := Config{
		TokenSecret: os.Getenv("TOWER_TOKEN_SECRET"),
		RedisAddr:   os.Getenv("TOWER_REDIS_ADDR"),
		DatabaseURL: os.Getenv("TOWER_DATABASE_URL"),
		LogLevel:    getString("TOWER_LOG_LEVEL", "info"),
		LogFormat:   strings.ToLower(getString("TOWER_LOG_FORMAT", "text")),
		ThemesFile:  os.Getenv("TOWER_THEMES_FILE"),
	}

	timeout, err := getInt("TOWER_TURN_TIMEOUT_SEC", 15)
	if err != nil {
		return Config{}, err
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("TOWER_TURN_TIMEOUT_SEC must not be negative, got %d", timeout)
	}
	c.TurnTimeout = time.Duration(timeout) * time.Second

	if c.MaxPlayers, err = getInt("TOWER_MAX_PLAYERS", 4); err != nil {
		return Config{}, err
	}
	if c.MaxPlayers < 2 || c.MaxPlayers > engine.MaxPlayers {
		return Config{}, fmt.Errorf("TOWER_MAX_PLAYERS must be between 2 and %d, got %d", engine.MaxPlayers, c.MaxPlayers)
	}

	ttl, err := getInt("TOWER_RECONNECT_TTL_SEC", 120)
	if err != nil {
		return Config{}, err
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("TOWER_RECONNECT_TTL_SEC must be positive, got %d", ttl)
	}
	c.ReconnectTTL = time.Duration(ttl) * time.Second

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return Config{}, fmt.Errorf("TOWER_LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return c, nil
}

// HouseRules converts the settings into session defaults.
func (c Config) HouseRules() game.HouseRules {
	hr := game.DefaultHouseRules()
	hr.MaxPlayers = c.MaxPlayers
	hr.TurnTimerSec = int(c.TurnTimeout / time.Second)
	return hr
}

// ConfigureLogging applies the log level and format to the standard logger.
func (c Config) ConfigureLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("TOWER_LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
