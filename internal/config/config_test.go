package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.InDelta(t, 2000, cfg.DailyGoalML, 1e-9)
	assert.InDelta(t, 3000, cfg.MaxAmountML, 1e-9)
	assert.Equal(t, 15*time.Minute, cfg.RolloverCheckInterval)
	assert.Equal(t, "Local", cfg.Timezone)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ADDR", ":9999")
	t.Setenv("DAILY_GOAL_ML", "2500")
	t.Setenv("MAX_AMOUNT_ML", "1500")
	t.Setenv("ROLLOVER_CHECK_INTERVAL", "1m")
	t.Setenv("TIMEZONE", "Europe/Berlin")

	cfg := Load()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.InDelta(t, 2500, cfg.DailyGoalML, 1e-9)
	assert.InDelta(t, 1500, cfg.MaxAmountML, 1e-9)
	assert.Equal(t, time.Minute, cfg.RolloverCheckInterval)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_InvalidGoalPanics(t *testing.T) {
	t.Setenv("DAILY_GOAL_ML", "not-a-number")
	assert.Panics(t, func() { Load() })

	t.Setenv("DAILY_GOAL_ML", "-5")
	assert.Panics(t, func() { Load() })
}

func TestLocation_Invalid(t *testing.T) {
	t.Setenv("TIMEZONE", "Atlantis/Lost")
	cfg := Load()
	_, err := cfg.Location()
	assert.Error(t, err)
}
