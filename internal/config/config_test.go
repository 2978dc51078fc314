package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultQuoteMint, cfg.QuoteMint)
	assert.Equal(t, 0.01, cfg.InvestmentAmountSol)
	assert.Equal(t, []float64{100, 200, 300}, cfg.ProfitTiersPercent)
	assert.Equal(t, 5.0, cfg.SlippagePercent)
	assert.Equal(t, 0.0001, cfg.PriorityFeeSol)
	assert.Equal(t, 30, cfg.PoolScanDelay)
	assert.Equal(t, 15, cfg.HoldingsDelay)
	assert.Equal(t, 60, cfg.PriceCacheTTL)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"investment_amount_sol": 0.5,
		"profit_tiers_percent": [50, 150],
		"pool_scan_delay": 10
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.InvestmentAmountSol)
	assert.Equal(t, []float64{50, 150}, cfg.ProfitTiersPercent)
	assert.Equal(t, 10, cfg.PoolScanDelay)
}

func TestLoadConfigSecretsFromEnvironment(t *testing.T) {
	t.Setenv("PUMPPORTAL_API_KEY", "portal-key")
	t.Setenv("PRIVATE_KEY", "wallet-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")

	cfg, err := LoadConfig(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "portal-key", cfg.PumpPortalAPIKey)
	assert.Equal(t, "wallet-key", cfg.PrivateKey)
	assert.Equal(t, "tg-token", cfg.TelegramToken)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative investment", `{"investment_amount_sol": -1}`},
		{"empty tiers", `{"profit_tiers_percent": []}`},
		{"negative tier", `{"profit_tiers_percent": [-50]}`},
		{"slippage too high", `{"slippage_percent": 150}`},
		{"zero scan delay", `{"pool_scan_delay": 0}`},
		{"bad endpoint", `{"rpc_endpoint": "ftp://example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestIntervalAccessors(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "30s", cfg.PoolScanInterval().String())
	assert.Equal(t, "15s", cfg.HoldingsInterval().String())
	assert.Equal(t, "1m0s", cfg.PriceTTL().String())
	assert.Equal(t, "10s", cfg.RequestTimeout().String())
}
