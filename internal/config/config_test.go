package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadForTests(map[string]string{
		"DATABASE_URL":    "postgres://localhost:5432/mitra",
		"REDIS_URL":       "redis://localhost:6379/0",
		"PORT":            "",
		"APP_ENV":         "",
		"TAX_BPS":         "",
		"RULE_CACHE_TTL":  "",
		"RATE_LIMIT_MAX":  "",
		"DEFAULT_TIER_ID": "",
	})
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 5*time.Minute, cfg.RuleCacheTTL)
	require.Equal(t, 120, cfg.RateLimitMax)
	require.Zero(t, cfg.TaxBps)
}

func TestLoadRequiresDatabase(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL": "",
		"REDIS_URL":    "redis://localhost:6379/0",
	})
	require.Error(t, err)
}

func TestLoadRejectsBadTierID(t *testing.T) {
	_, err := LoadForTests(map[string]string{
		"DATABASE_URL":    "postgres://localhost:5432/mitra",
		"REDIS_URL":       "redis://localhost:6379/0",
		"DEFAULT_TIER_ID": "not-a-uuid",
	})
	require.Error(t, err)
}
