package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/internal/logger"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/mocks"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MarketSyncTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	gateway *mocks.MockGateway
	ledger  *ledger.MemoryLedger
	hub     *broadcast.Hub
}

func TestMarketSyncSuite(t *testing.T) {
	suite.Run(t, new(MarketSyncTestSuite))
}

func (suite *MarketSyncTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.gateway = mocks.NewMockGateway(suite.ctrl)
	suite.ledger = ledger.NewMemoryLedger(ledger.MemoryLedgerConfig{})
	suite.hub = broadcast.NewHub(logger.NewNopLogger())
}

func (suite *MarketSyncTestSuite) TearDownTest() {
	suite.hub.Close()
	suite.ctrl.Finish()
}

func (suite *MarketSyncTestSuite) newSync(config MarketSyncConfig) *MarketSync {
	return NewMarketSync(suite.gateway, suite.ledger, suite.hub, logger.NewNopLogger(), config)
}

func (suite *MarketSyncTestSuite) tickers() []types.TradingPair {
	return []types.TradingPair{
		{Symbol: "BTC/USDT", BaseAsset: "BTC", QuoteAsset: "USDT", CurrentPrice: 42000, Volume24h: 1500},
		{Symbol: "ETH/USDT", BaseAsset: "ETH", QuoteAsset: "USDT", CurrentPrice: 2500, Volume24h: 800},
	}
}

func (suite *MarketSyncTestSuite) TestRunOnceCommitsAndBroadcasts() {
	suite.gateway.EXPECT().FetchTickers(gomock.Any()).Return(suite.tickers(), nil)
	suite.gateway.EXPECT().
		FetchOHLCV(gomock.Any(), "BTC/USDT", DefaultTimeframe, DefaultCandleFetch).
		Return([]types.Candle{{Pair: "BTC/USDT", Timestamp: time.Now(), Close: 42000}}, nil)
	suite.gateway.EXPECT().
		FetchOHLCV(gomock.Any(), "ETH/USDT", DefaultTimeframe, DefaultCandleFetch).
		Return([]types.Candle{{Pair: "ETH/USDT", Timestamp: time.Now(), Close: 2500}}, nil)

	sub := suite.hub.Subscribe()
	defer suite.hub.Unsubscribe(sub)

	sync := suite.newSync(MarketSyncConfig{})
	suite.Require().NoError(sync.RunOnce(context.Background()))

	pair, err := suite.ledger.GetPair("BTC/USDT")
	suite.NoError(err)
	suite.InDelta(42000, pair.CurrentPrice, 0.01)

	candles, err := suite.ledger.ListCandles("ETH/USDT", 0)
	suite.NoError(err)
	suite.Len(candles, 1)

	first := <-sub.C
	suite.Equal(broadcast.EventMarketData, first.Type)
	suite.Equal(broadcast.EventPortfolioUpdate, (<-sub.C).Type)
	suite.Equal(broadcast.EventPortfolioUpdate, (<-sub.C).Type)
}

func (suite *MarketSyncTestSuite) TestTickerFailureLeavesStateUntouched() {
	suite.gateway.EXPECT().
		FetchTickers(gomock.Any()).
		Return(nil, errors.New(errors.ErrCodeExchangeUnavailable, "exchange down"))

	sub := suite.hub.Subscribe()
	defer suite.hub.Unsubscribe(sub)

	sync := suite.newSync(MarketSyncConfig{})

	err := sync.RunOnce(context.Background())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeExchangeUnavailable))

	suite.Empty(suite.ledger.ListPairs())
	suite.Zero(len(sub.C))
}

func (suite *MarketSyncTestSuite) TestCandleFailureIsolatedPerPair() {
	suite.gateway.EXPECT().FetchTickers(gomock.Any()).Return(suite.tickers(), nil)
	suite.gateway.EXPECT().
		FetchOHLCV(gomock.Any(), "BTC/USDT", gomock.Any(), gomock.Any()).
		Return(nil, errors.New(errors.ErrCodeExchangeUnavailable, "klines down"))
	suite.gateway.EXPECT().
		FetchOHLCV(gomock.Any(), "ETH/USDT", gomock.Any(), gomock.Any()).
		Return([]types.Candle{{Pair: "ETH/USDT", Timestamp: time.Now(), Close: 2500}}, nil)

	sync := suite.newSync(MarketSyncConfig{})
	suite.Require().NoError(sync.RunOnce(context.Background()))

	// The failed pair still got its ticker upserted, just no candles.
	btcCandles, err := suite.ledger.ListCandles("BTC/USDT", 0)
	suite.NoError(err)
	suite.Empty(btcCandles)

	ethCandles, err := suite.ledger.ListCandles("ETH/USDT", 0)
	suite.NoError(err)
	suite.Len(ethCandles, 1)
}

func (suite *MarketSyncTestSuite) TestTopPairsLimitsCandleFetches() {
	suite.gateway.EXPECT().FetchTickers(gomock.Any()).Return(suite.tickers(), nil)
	// Only the highest-volume pair gets candles with TopPairs of one.
	suite.gateway.EXPECT().
		FetchOHLCV(gomock.Any(), "BTC/USDT", gomock.Any(), gomock.Any()).
		Return([]types.Candle{{Pair: "BTC/USDT", Timestamp: time.Now(), Close: 42000}}, nil)

	sync := suite.newSync(MarketSyncConfig{TopPairs: 1})
	suite.Require().NoError(sync.RunOnce(context.Background()))
}

func (suite *MarketSyncTestSuite) TestRevaluationMarksPositions() {
	err := suite.ledger.Atomically(func(tx ledger.Tx) error {
		portfolio, err := tx.Portfolio(types.TradingModePaper)
		if err != nil {
			return err
		}

		portfolio.AvailableBalance = 58000
		portfolio.Positions["BTC/USDT"] = 1

		return nil
	})
	suite.Require().NoError(err)

	suite.gateway.EXPECT().FetchTickers(gomock.Any()).Return(suite.tickers(), nil)
	suite.gateway.EXPECT().FetchOHLCV(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	sync := suite.newSync(MarketSyncConfig{})
	suite.Require().NoError(sync.RunOnce(context.Background()))

	portfolio, err := suite.ledger.GetPortfolio(types.TradingModePaper)
	suite.Require().NoError(err)
	suite.InDelta(100000, portfolio.TotalBalance, 0.01)
}

func (suite *MarketSyncTestSuite) TestSingleFlightSkipsOverlappingCycle() {
	sync := suite.newSync(MarketSyncConfig{})
	sync.inFlight.Store(true)

	// No gateway expectations: a skipped cycle must not fetch anything.
	suite.NoError(sync.RunOnce(context.Background()))
}

func (suite *MarketSyncTestSuite) TestStartRunsInitialCycleAndStops() {
	done := make(chan struct{})
	suite.gateway.EXPECT().FetchTickers(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]types.TradingPair, error) {
		defer close(done)
		return suite.tickers(), nil
	})
	suite.gateway.EXPECT().FetchOHLCV(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	sync := suite.newSync(MarketSyncConfig{Interval: time.Hour})
	sync.Start(context.Background())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		suite.Fail("initial sync cycle never ran")
	}

	sync.Stop()
	suite.Len(suite.ledger.ListPairs(), 2)
}
