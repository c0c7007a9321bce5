package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// HTTP configuration
	ListenAddr string

	// Ledger configuration
	WeeklyAllowance int64 // standard weekly point allowance per user
	LikeCost        int64 // points debited from the actor per like
	SenderCredit    int64 // points credited to the card sender per like
	LifetimeCredit  int64 // lifetime points credited to the lottery beneficiary per like
	MaxLikesPerCard int   // hard cap on likes for a single card

	// Scheduler configuration
	ResetInterval time.Duration  // how often the reset sweep runs
	Timezone      *time.Location // zone used for week-boundary computation

	// Rankings configuration
	RankingLimit int // default top-N for leaderboards

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ListenAddr:  ":8080",

		WeeklyAllowance: 500,
		LikeCost:        2,
		SenderCredit:    1,
		LifetimeCredit:  1,
		MaxLikesPerCard: 50,

		ResetInterval: time.Hour,
		Timezone:      time.UTC,

		RankingLimit: 10,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		config.ListenAddr = addr
	}
	if allowance := os.Getenv("WEEKLY_ALLOWANCE"); allowance != "" {
		if parsed, err := strconv.ParseInt(allowance, 10, 64); err == nil {
			config.WeeklyAllowance = parsed
		}
	}
	if limit := os.Getenv("MAX_LIKES_PER_CARD"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil {
			config.MaxLikesPerCard = parsed
		}
	}
	if limit := os.Getenv("RANKING_LIMIT"); limit != "" {
		if parsed, err := strconv.Atoi(limit); err == nil && parsed > 0 {
			config.RankingLimit = parsed
		}
	}
	if interval := os.Getenv("RESET_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.ResetInterval = parsed
		}
	}
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		config.Timezone = loc
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
