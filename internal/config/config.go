// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config carries every tunable of the bot. It is loaded once at startup,
// validated, and handed to each component at construction; nothing mutates
// it after load.
type Config struct {
	RPCEndpoint      string `mapstructure:"rpc_endpoint"`
	PriceAPIURL      string `mapstructure:"price_api_url"`
	PoolsAPIURL      string `mapstructure:"pools_api_url"`
	TradeAPIURL      string `mapstructure:"trade_api_url"`
	TradeLocalAPIURL string `mapstructure:"trade_local_api_url"`
	JitoBundleURL    string `mapstructure:"jito_bundle_url"`
	SolscanAPIURL    string `mapstructure:"solscan_api_url"`
	IPFSMetadataURL  string `mapstructure:"ipfs_metadata_url"`
	BonkIPFSImageURL string `mapstructure:"bonk_ipfs_image_url"`
	BonkIPFSMetaURL  string `mapstructure:"bonk_ipfs_meta_url"`

	// QuoteMint is the reference currency a new pool must quote against
	// before its base token is considered for a buy.
	QuoteMint string `mapstructure:"quote_mint"`

	InvestmentAmountSol float64   `mapstructure:"investment_amount_sol"`
	ProfitTiersPercent  []float64 `mapstructure:"profit_tiers_percent"`
	SlippagePercent     float64   `mapstructure:"slippage_percent"`
	PriorityFeeSol      float64   `mapstructure:"priority_fee_sol"`

	PoolScanDelay int `mapstructure:"pool_scan_delay"` // seconds
	HoldingsDelay int `mapstructure:"holdings_delay"`  // seconds
	PriceCacheTTL int `mapstructure:"price_cache_ttl"` // seconds
	HTTPTimeout   int `mapstructure:"http_timeout"`    // seconds

	LaunchBundle    bool   `mapstructure:"launch_bundle"` // run the create+buy bundle at startup
	LaunchImagePath string `mapstructure:"launch_image_path"`

	// Secrets. Environment only, never read from the config file.
	PumpPortalAPIKey string `mapstructure:"-"`
	SolscanAPIKey    string `mapstructure:"-"`
	PrivateKey       string `mapstructure:"-"`
	TelegramToken    string `mapstructure:"-"`
	TelegramChatID   string `mapstructure:"-"`
}

const (
	DefaultPoolScanDelay = 30
	DefaultHoldingsDelay = 15
	DefaultPriceCacheTTL = 60
	DefaultHTTPTimeout   = 10

	DefaultRPCEndpoint      = "https://api.mainnet-beta.solana.com"
	DefaultPriceAPIURL      = "https://price.jup.ag/v4/price"
	DefaultPoolsAPIURL      = "https://api.raydium.io/v2/sdk/liquidity/mainnet.json"
	DefaultTradeAPIURL      = "https://pumpportal.io/api/trade"
	DefaultTradeLocalAPIURL = "https://pumpportal.io/api/trade-local"
	DefaultJitoBundleURL    = "https://mainnet.block-engine.jito.wtf/api/v1/bundles"
	DefaultSolscanAPIURL    = "https://pro-api.solscan.io/v1.0"
	DefaultIPFSMetadataURL  = "https://pump.fun/api/ipfs"
	DefaultBonkIPFSImageURL = "https://bonk.fun/api/ipfs/image"
	DefaultBonkIPFSMetaURL  = "https://bonk.fun/api/ipfs/metadata"

	// USDC.
	DefaultQuoteMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"rpc_endpoint":          DefaultRPCEndpoint,
		"price_api_url":         DefaultPriceAPIURL,
		"pools_api_url":         DefaultPoolsAPIURL,
		"trade_api_url":         DefaultTradeAPIURL,
		"trade_local_api_url":   DefaultTradeLocalAPIURL,
		"jito_bundle_url":       DefaultJitoBundleURL,
		"solscan_api_url":       DefaultSolscanAPIURL,
		"ipfs_metadata_url":     DefaultIPFSMetadataURL,
		"bonk_ipfs_image_url":   DefaultBonkIPFSImageURL,
		"bonk_ipfs_meta_url":    DefaultBonkIPFSMetaURL,
		"quote_mint":            DefaultQuoteMint,
		"investment_amount_sol": 0.01,
		"profit_tiers_percent":  []float64{100, 200, 300},
		"slippage_percent":      5.0,
		"priority_fee_sol":      0.0001,
		"pool_scan_delay":       DefaultPoolScanDelay,
		"holdings_delay":        DefaultHoldingsDelay,
		"price_cache_ttl":       DefaultPriceCacheTTL,
		"http_timeout":          DefaultHTTPTimeout,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(&cfg)

	return &cfg, validateConfig(&cfg)
}

func (c *Config) PoolScanInterval() time.Duration {
	return time.Duration(c.PoolScanDelay) * time.Second
}

func (c *Config) HoldingsInterval() time.Duration {
	return time.Duration(c.HoldingsDelay) * time.Second
}

func (c *Config) PriceTTL() time.Duration {
	return time.Duration(c.PriceCacheTTL) * time.Second
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

func validateConfig(cfg *Config) error {
	for _, endpoint := range []string{
		cfg.RPCEndpoint,
		cfg.PriceAPIURL,
		cfg.PoolsAPIURL,
		cfg.TradeAPIURL,
		cfg.TradeLocalAPIURL,
		cfg.JitoBundleURL,
		cfg.SolscanAPIURL,
	} {
		if err := validateURLWithCache(endpoint, "http"); err != nil {
			return errors.New("invalid API endpoint URL: " + endpoint)
		}
	}
	if cfg.QuoteMint == "" {
		return errors.New("quote_mint is empty")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.InvestmentAmountSol <= 0 {
		return errors.New("invalid investment_amount_sol")
	}
	if len(cfg.ProfitTiersPercent) == 0 {
		return errors.New("profit_tiers_percent is empty")
	}
	for _, tier := range cfg.ProfitTiersPercent {
		if tier <= 0 {
			return errors.New("invalid profit tier percentage")
		}
	}
	if cfg.SlippagePercent <= 0 || cfg.SlippagePercent >= 100 {
		return errors.New("invalid slippage_percent")
	}
	if cfg.PriorityFeeSol < 0 {
		return errors.New("invalid priority_fee_sol")
	}
	if cfg.PoolScanDelay <= 0 {
		return errors.New("invalid pool_scan_delay")
	}
	if cfg.HoldingsDelay <= 0 {
		return errors.New("invalid holdings_delay")
	}
	if cfg.PriceCacheTTL <= 0 {
		return errors.New("invalid price_cache_ttl")
	}
	if cfg.HTTPTimeout <= 0 {
		return errors.New("invalid http_timeout")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(cfg *Config) {
	v := viper.New()
	v.AutomaticEnv()

	cfg.PumpPortalAPIKey = v.GetString("PUMPPORTAL_API_KEY")
	cfg.SolscanAPIKey = v.GetString("SOLSCAN_PRO_API_KEY")
	cfg.PrivateKey = v.GetString("PRIVATE_KEY")
	cfg.TelegramToken = v.GetString("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = v.GetString("TELEGRAM_CHAT_ID")
}
