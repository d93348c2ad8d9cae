package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PostgresConfig holds the optional Postgres connection settings. When Host
// is empty the engine falls back to the local SQLite store.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Enabled reports whether Postgres settings are present.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// DSN renders the connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}

// RedisConfig holds the optional Redis cache backend settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// Enabled reports whether a Redis cache backend is configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr renders the host:port address.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Config is the engine's environment-driven configuration.
type Config struct {
	AppEnv     string
	HTTPAddr   string
	SQLitePath string
	Postgres   PostgresConfig
	Redis      RedisConfig

	// LevelThresholds is the ascending XP table; index i is the threshold
	// for level i+1.
	LevelThresholds []int64

	// LevelRoles maps a level number to the role to grant on reaching it.
	LevelRoles map[int]string

	// ClampNegativeXP floors XP at zero when an adjustment would take a
	// profile below it. Off by default.
	ClampNegativeXP bool
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:     envOr("APP_ENV", "development"),
		HTTPAddr:   envOr("HTTP_ADDR", ":8080"),
		SQLitePath: envOr("DB_PATH", "data/questline.db"),
		Postgres: PostgresConfig{
			Host:     os.Getenv("PG_HOST"),
			Port:     envOr("PG_PORT", "5432"),
			User:     os.Getenv("PG_USER"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: os.Getenv("PG_DB"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     envOr("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		ClampNegativeXP: envBool("CLAMP_NEGATIVE_XP"),
	}

	thresholds, err := parseThresholds(os.Getenv("LEVEL_THRESHOLDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEVEL_THRESHOLDS: %w", err)
	}
	cfg.LevelThresholds = thresholds

	roles, err := parseLevelRoles(os.Getenv("LEVEL_ROLES"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEVEL_ROLES: %w", err)
	}
	cfg.LevelRoles = roles

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// parseThresholds parses a comma-separated list of XP thresholds. An empty
// value yields nil, which callers treat as "use the reference table".
func parseThresholds(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	thresholds := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %q is not an integer", p)
		}
		thresholds = append(thresholds, n)
	}
	return thresholds, nil
}

// parseLevelRoles parses "level:roleID" pairs separated by commas, e.g.
// "5:role-bronze,10:role-silver".
func parseLevelRoles(raw string) (map[int]string, error) {
	roles := make(map[int]string)
	if strings.TrimSpace(raw) == "" {
		return roles, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(kv) != 2 || kv[1] == "" {
			return nil, fmt.Errorf("malformed pair %q, want level:roleID", pair)
		}
		level, err := strconv.Atoi(kv[0])
		if err != nil || level < 1 {
			return nil, fmt.Errorf("level %q is not a positive integer", kv[0])
		}
		roles[level] = kv[1]
	}
	return roles, nil
}
