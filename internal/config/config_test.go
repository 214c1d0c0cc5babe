package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o600))

	return path
}

func (suite *ConfigTestSuite) TestLoadFullConfig() {
	path := suite.write("config.yaml", `
listen_addr: ":9000"
fee_venue: kraken
live_trading: false
gateway:
  quote_asset: USDT
  timeout_seconds: 5
ledger:
  seed_balance: 250000
  candle_limit: 500
sync:
  interval_seconds: 30
  top_pairs: 10
  timeframe: 15m
`)

	config, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal(":9000", config.ListenAddr)
	suite.Equal(exchange.VenueKraken, config.FeeVenue)

	gateway := config.GatewayConfig()
	suite.Equal("USDT", gateway.QuoteAsset)
	suite.Equal(5*time.Second, gateway.RequestTimeout)

	ledgerConfig := config.LedgerConfig()
	suite.InDelta(250000, ledgerConfig.SeedBalance, 0.01)
	suite.Equal(500, ledgerConfig.CandleLimit)

	sync := config.SyncConfig()
	suite.Equal(30*time.Second, sync.Interval)
	suite.Equal(10, sync.TopPairs)
	suite.Equal("15m", sync.Timeframe)
}

func (suite *ConfigTestSuite) TestLoadAppliesDefaults() {
	path := suite.write("minimal.yaml", `
gateway:
  quote_asset: USDC
`)

	config, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal(DefaultListenAddr, config.ListenAddr)
	suite.Equal(exchange.VenueKraken, config.FeeVenue)
	suite.Equal("USDC", config.Gateway.QuoteAsset)
}

func (suite *ConfigTestSuite) TestDefaultValidates() {
	config := Default()
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.dir, "missing.yaml"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadMalformedYAML() {
	path := suite.write("broken.yaml", "listen_addr: [unclosed")

	_, err := Load(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadRejectsUnknownVenue() {
	path := suite.write("venue.yaml", `
fee_venue: nyse
gateway:
  quote_asset: USDT
`)

	_, err := Load(path)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLiveTradingRequiresCredentials() {
	path := suite.write("live.yaml", `
live_trading: true
gateway:
  quote_asset: USDT
`)

	_, err := Load(path)
	suite.Error(err)
	suite.Contains(err.Error(), "credentials")

	// Testnet does not need real credentials.
	path = suite.write("testnet.yaml", `
live_trading: true
use_testnet: true
gateway:
  quote_asset: USDT
`)

	config, err := Load(path)
	suite.NoError(err)
	suite.True(config.LiveTrading)
}
