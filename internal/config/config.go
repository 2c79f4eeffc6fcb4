// Package config holds the server settings and reads them from the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benbeisheim/squarechess-backend/internal/model"
	"github.com/rs/zerolog"
)

var ErrInvalidConfig = errors.New("invalid config")

// Environment variables read by Load.
const (
	EnvAddr          = "CHESS_ADDR"
	EnvAllowOrigins  = "CHESS_ALLOW_ORIGINS"
	EnvArchiveDir    = "CHESS_ARCHIVE_DIR"
	EnvLogLevel      = "CHESS_LOG_LEVEL"
	EnvLogFormat     = "CHESS_LOG_FORMAT"
	EnvPromotionRule = "CHESS_PROMOTION_RULE"
	EnvClockSeconds  = "CHESS_CLOCK_SECONDS"
)

type Config struct {
	Addr         string
	AllowOrigins []string
	// ArchiveDir is where game histories are stored. Empty keeps them in
	// memory.
	ArchiveDir    string
	LogLevel      zerolog.Level
	LogFormat     string // "console" or "json"
	PromotionRule model.PromotionRule
	ClockTime     time.Duration
}

func Default() Config {
	return Config{
		Addr:          ":3000",
		AllowOrigins:  []string{"http://localhost:5173"},
		LogLevel:      zerolog.InfoLevel,
		LogFormat:     "console",
		PromotionRule: model.PromotePawnsOnly,
		ClockTime:     600 * time.Second,
	}
}

// LoadFromEnv is Load over the process environment.
func LoadFromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load starts from Default and applies every variable lookup finds.
func Load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup(EnvAllowOrigins); ok {
		cfg.AllowOrigins = splitList(v)
	}
	if v, ok := lookup(EnvArchiveDir); ok {
		cfg.ArchiveDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return Config{}, invalid(EnvLogLevel, v)
		}
		cfg.LogLevel = level
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		switch strings.ToLower(v) {
		case "console", "json":
			cfg.LogFormat = strings.ToLower(v)
		default:
			return Config{}, invalid(EnvLogFormat, v)
		}
	}
	if v, ok := lookup(EnvPromotionRule); ok && v != "" {
		rule, err := model.ParsePromotionRule(v)
		if err != nil {
			return Config{}, invalid(EnvPromotionRule, v)
		}
		cfg.PromotionRule = rule
	}
	if v, ok := lookup(EnvClockSeconds); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return Config{}, invalid(EnvClockSeconds, v)
		}
		cfg.ClockTime = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

func invalid(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, value)
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
