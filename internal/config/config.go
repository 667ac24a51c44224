// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all configurable values for the app.
type Config struct {
	Env                   string
	Addr                  string
	DatabaseURL           string
	Timezone              string
	DailyGoalML           float64
	MaxAmountML           float64
	RolloverCheckInterval time.Duration
}

// Load reads environment variables and populates a Config struct.
func Load() *Config {
	dailyGoal, err := strconv.ParseFloat(getEnv("DAILY_GOAL_ML", "2000"), 64)
	if err != nil || dailyGoal <= 0 {
		log.Panicf("Invalid DAILY_GOAL_ML: %v", err)
	}

	maxAmount, err := strconv.ParseFloat(getEnv("MAX_AMOUNT_ML", "3000"), 64)
	if err != nil || maxAmount <= 0 {
		log.Panicf("Invalid MAX_AMOUNT_ML: %v", err)
	}

	interval, err := time.ParseDuration(getEnv("ROLLOVER_CHECK_INTERVAL", "15m"))
	if err != nil {
		log.Panicf("Invalid ROLLOVER_CHECK_INTERVAL: %v", err)
	}

	return &Config{
		Env:                   getEnv("ENV", "development"),
		Addr:                  getEnv("ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		Timezone:              getEnv("TIMEZONE", "Local"),
		DailyGoalML:           dailyGoal,
		MaxAmountML:           maxAmount,
		RolloverCheckInterval: interval,
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
