package engine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/internal/logger"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultSyncInterval is the market data refresh cadence.
	DefaultSyncInterval = 60 * time.Second

	// DefaultTopPairs is how many pairs, ranked by 24h quote volume, get
	// candle history appended each cycle.
	DefaultTopPairs = 20

	// DefaultTimeframe is the candle interval fetched each cycle.
	DefaultTimeframe = "1h"

	// DefaultCandleFetch is how many recent candles are fetched per pair per
	// cycle.
	DefaultCandleFetch = 1
)

// MarketSyncConfig contains configuration for the market sync loop.
type MarketSyncConfig struct {
	Interval    time.Duration `json:"interval" yaml:"interval"`
	TopPairs    int           `json:"topPairs" yaml:"top_pairs"`
	Timeframe   string        `json:"timeframe" yaml:"timeframe"`
	CandleFetch int           `json:"candleFetch" yaml:"candle_fetch"`
}

func (c MarketSyncConfig) withDefaults() MarketSyncConfig {
	if c.Interval <= 0 {
		c.Interval = DefaultSyncInterval
	}

	if c.TopPairs <= 0 {
		c.TopPairs = DefaultTopPairs
	}

	if c.Timeframe == "" {
		c.Timeframe = DefaultTimeframe
	}

	if c.CandleFetch <= 0 {
		c.CandleFetch = DefaultCandleFetch
	}

	return c
}

// MarketSync periodically pulls tickers and candles from the exchange into
// the ledger and broadcasts the refreshed market state. Fetches happen
// outside the ledger lock; only the commit holds it.
type MarketSync struct {
	gateway  exchange.Gateway
	ledger   ledger.Ledger
	hub      *broadcast.Hub
	logger   *logger.Logger
	config   MarketSyncConfig
	inFlight atomic.Bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewMarketSync creates a market sync loop. Call Start to run it.
func NewMarketSync(gateway exchange.Gateway, ledger ledger.Ledger, hub *broadcast.Hub, logger *logger.Logger, config MarketSyncConfig) *MarketSync {
	return &MarketSync{
		gateway: gateway,
		ledger:  ledger,
		hub:     hub,
		logger:  logger,
		config:  config.withDefaults(),
	}
}

// Start launches the sync loop. The first cycle runs immediately, then every
// configured interval until the context is canceled or Stop is called.
func (m *MarketSync) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		if err := m.RunOnce(ctx); err != nil {
			m.logger.Warn("initial market sync failed", zap.Error(err))
		}

		ticker := time.NewTicker(m.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := m.RunOnce(ctx); err != nil {
					m.logger.Warn("market sync cycle failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for any in-flight cycle to finish.
func (m *MarketSync) Stop() {
	if m.cancel != nil {
		m.cancel()
	}

	m.wg.Wait()
}

// RunOnce executes a single sync cycle. If a cycle is already running the
// call is skipped. A failed ticker fetch leaves the ledger untouched and
// broadcasts nothing.
func (m *MarketSync) RunOnce(ctx context.Context) (err error) {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.logger.Debug("skipping market sync, previous cycle still running")

		return nil
	}
	defer m.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("market sync panicked", zap.Any("panic", r))
			err = errors.Newf(errors.ErrCodeUnknown, "market sync panicked: %v", r)
		}
	}()

	pairs, err := m.gateway.FetchTickers(ctx)
	if err != nil {
		return err
	}

	top := topByVolume(pairs, m.config.TopPairs)

	// Candle fetches stay outside the ledger lock. A pair that fails is
	// skipped this cycle without aborting the others.
	candlesByPair := make(map[string][]types.Candle, len(top))

	for _, pair := range top {
		candles, err := m.gateway.FetchOHLCV(ctx, pair.Symbol, m.config.Timeframe, m.config.CandleFetch)
		if err != nil {
			m.logger.Warn("failed to fetch candles",
				zap.String("pair", pair.Symbol),
				zap.Error(err),
			)

			continue
		}

		candlesByPair[pair.Symbol] = candles
	}

	commitErr := m.ledger.Atomically(func(tx ledger.Tx) error {
		for _, pair := range pairs {
			tx.UpsertPair(pair)
		}

		for symbol, candles := range candlesByPair {
			tx.AppendCandles(symbol, candles)
		}

		tx.RevaluePortfolios()

		return nil
	})
	if commitErr != nil {
		return commitErr
	}

	m.hub.Publish(broadcast.NewEvent(broadcast.EventMarketData, pairs))
	m.publishPortfolios()

	m.logger.Info("market sync completed",
		zap.Int("pairs", len(pairs)),
		zap.Int("candled_pairs", len(candlesByPair)),
	)

	return nil
}

// publishPortfolios broadcasts both portfolios after a revaluation.
func (m *MarketSync) publishPortfolios() {
	for _, mode := range []types.TradingMode{types.TradingModePaper, types.TradingModeLive} {
		portfolio, err := m.ledger.GetPortfolio(mode)
		if err != nil {
			continue
		}

		m.hub.Publish(broadcast.NewEvent(broadcast.EventPortfolioUpdate, portfolio))
	}
}

// topByVolume returns up to n pairs ranked by 24h quote volume.
func topByVolume(pairs []types.TradingPair, n int) []types.TradingPair {
	sorted := make([]types.TradingPair, len(pairs))
	copy(sorted, pairs)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Volume24h > sorted[j].Volume24h
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}

	return sorted
}
