// Package config loads the engine configuration from YAML.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/paper-trading/internal/engine"
	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultListenAddr is where the HTTP and websocket server binds when the
// config does not say otherwise.
const DefaultListenAddr = ":8080"

// GatewayConfig is the exchange gateway section of the config file.
type GatewayConfig struct {
	ApiKey         string `yaml:"api_key"`
	SecretKey      string `yaml:"secret_key"`
	BaseURL        string `yaml:"base_url"`
	QuoteAsset     string `yaml:"quote_asset"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"gte=0"`
}

// LedgerConfig is the ledger section of the config file.
type LedgerConfig struct {
	SeedBalance float64 `yaml:"seed_balance" validate:"gte=0"`
	CandleLimit int     `yaml:"candle_limit" validate:"gte=0"`
}

// SyncConfig is the market sync section of the config file.
type SyncConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds" validate:"gte=0"`
	TopPairs        int    `yaml:"top_pairs" validate:"gte=0"`
	Timeframe       string `yaml:"timeframe"`
	CandleFetch     int    `yaml:"candle_fetch" validate:"gte=0"`
}

// Config is the full engine configuration.
type Config struct {
	// ListenAddr is the HTTP server bind address.
	ListenAddr string `yaml:"listen_addr"`
	// FeeVenue selects the fee schedule applied to executed trades.
	FeeVenue exchange.Venue `yaml:"fee_venue" validate:"omitempty,oneof=kraken zero_fee"`
	// LiveTrading enables real order placement for live-mode requests.
	LiveTrading bool `yaml:"live_trading"`
	// UseTestnet routes live orders to the exchange testnet.
	UseTestnet bool `yaml:"use_testnet"`

	Gateway GatewayConfig `yaml:"gateway"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Sync    SyncConfig    `yaml:"sync"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		FeeVenue:   exchange.VenueKraken,
		Gateway: GatewayConfig{
			QuoteAsset: "USDT",
		},
	}
}

// Load reads a YAML config file, applying defaults for anything unset.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}

	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}

	if config.FeeVenue == "" {
		config.FeeVenue = exchange.VenueKraken
	}

	if config.Gateway.QuoteAsset == "" {
		config.Gateway.QuoteAsset = "USDT"
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	if c.LiveTrading && !c.UseTestnet && (c.Gateway.ApiKey == "" || c.Gateway.SecretKey == "") {
		return errors.New(errors.ErrCodeInvalidConfiguration, "live trading requires gateway API credentials")
	}

	return nil
}

// GatewayConfig maps the file section onto the exchange gateway config.
func (c *Config) GatewayConfig() exchange.BinanceGatewayConfig {
	return exchange.BinanceGatewayConfig{
		ApiKey:         c.Gateway.ApiKey,
		SecretKey:      c.Gateway.SecretKey,
		BaseURL:        c.Gateway.BaseURL,
		QuoteAsset:     c.Gateway.QuoteAsset,
		RequestTimeout: time.Duration(c.Gateway.TimeoutSeconds) * time.Second,
	}
}

// LedgerConfig maps the file section onto the ledger config.
func (c *Config) LedgerConfig() ledger.MemoryLedgerConfig {
	return ledger.MemoryLedgerConfig{
		SeedBalance: c.Ledger.SeedBalance,
		CandleLimit: c.Ledger.CandleLimit,
	}
}

// SyncConfig maps the file section onto the market sync config.
func (c *Config) SyncConfig() engine.MarketSyncConfig {
	return engine.MarketSyncConfig{
		Interval:    time.Duration(c.Sync.IntervalSeconds) * time.Second,
		TopPairs:    c.Sync.TopPairs,
		Timeframe:   c.Sync.Timeframe,
		CandleFetch: c.Sync.CandleFetch,
	}
}
