// Package config loads service configuration from .env, the environment and
// an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env  string
	Port string

	DBURL string

	// RedisAddr empty means the plan cache lives in process memory.
	RedisAddr     string
	RedisPassword string
	PlanCacheTTL  time.Duration

	// PlanCacheMemorySize caps the in-memory plan cache.
	PlanCacheMemorySize int

	// AdherenceWeeklyTarget is the weekly logging target in percent.
	AdherenceWeeklyTarget float64

	CORSAllowedOrigins []string
}

// Development reports whether APP_ENV is "development".
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads configuration. Environment variables override config.yaml, which
// overrides defaults. DB_URL is required.
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "3000")
	v.SetDefault("PLAN_CACHE_TTL", 24*time.Hour)
	v.SetDefault("PLAN_CACHE_MEMORY_SIZE", 10000)
	v.SetDefault("ADHERENCE_WEEKLY_TARGET", 80.0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:                   v.GetString("APP_ENV"),
		Port:                  v.GetString("PORT"),
		DBURL:                 v.GetString("DB_URL"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		PlanCacheTTL:          v.GetDuration("PLAN_CACHE_TTL"),
		PlanCacheMemorySize:   v.GetInt("PLAN_CACHE_MEMORY_SIZE"),
		AdherenceWeeklyTarget: v.GetFloat64("ADHERENCE_WEEKLY_TARGET"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is required")
	}
	if cfg.PlanCacheMemorySize <= 0 {
		return nil, fmt.Errorf("PLAN_CACHE_MEMORY_SIZE must be positive, got %d", cfg.PlanCacheMemorySize)
	}
	if cfg.AdherenceWeeklyTarget <= 0 || cfg.AdherenceWeeklyTarget > 100 {
		return nil, fmt.Errorf("ADHERENCE_WEEKLY_TARGET must be in (0, 100], got %v", cfg.AdherenceWeeklyTarget)
	}
	return cfg, nil
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
