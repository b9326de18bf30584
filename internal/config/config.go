// Package config loads server configuration from a YAML file layered
// over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	redisstore "github.com/yourusername/gammon/internal/storage/redis"
	"github.com/yourusername/gammon/internal/timecontrol"
)

// Config is the full server configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Redis       RedisConfig       `yaml:"redis"`
	TimeControl TimeControlConfig `yaml:"time_control"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// RedisConfig selects and tunes the Redis backend. When disabled the
// server stores matches in memory.
type RedisConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	PoolSize      int    `yaml:"pool_size"`
	MinIdleConns  int    `yaml:"min_idle_conns"`
	MatchTTLHours int    `yaml:"match_ttl_hours"`
}

// TimeControlConfig enables per-turn clocks on new games.
type TimeControlConfig struct {
	Enabled        bool `yaml:"enabled"`
	DelaySeconds   int  `yaml:"delay_seconds"`
	ReserveSeconds int  `yaml:"reserve_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	rd := redisstore.DefaultConfig()
	return Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   8080,
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 10,
		},
		Redis: RedisConfig{
			URL:           rd.URL,
			PoolSize:      rd.PoolSize,
			MinIdleConns:  rd.MinIdleConns,
			MatchTTLHours: int(rd.MatchTTL / time.Hour),
		},
		TimeControl: TimeControlConfig{
			DelaySeconds:   12,
			ReserveSeconds: 120,
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	return cfg, nil
}

// RedisStorageConfig converts the Redis section to the storage
// backend's own config type.
func (c Config) RedisStorageConfig() redisstore.Config {
	return redisstore.Config{
		URL:          c.Redis.URL,
		PoolSize:     c.Redis.PoolSize,
		MinIdleConns: c.Redis.MinIdleConns,
		MatchTTL:     time.Duration(c.Redis.MatchTTLHours) * time.Hour,
	}
}

// TimeControlSettings converts the time-control section to the clock
// package's config type.
func (c Config) TimeControlSettings() timecontrol.Config {
	t := timecontrol.TypeNone
	if c.TimeControl.Enabled {
		t = timecontrol.TypeDelay
	}
	return timecontrol.Config{
		Type:           t,
		DelaySeconds:   c.TimeControl.DelaySeconds,
		ReserveSeconds: c.TimeControl.ReserveSeconds,
	}
}
