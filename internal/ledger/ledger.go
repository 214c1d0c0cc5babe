// Package ledger holds the engine's in-memory state: trading pairs, candle
// history, portfolios, the trade log, bot configurations and model state.
package ledger

import (
	"time"

	"github.com/rxtech-lab/paper-trading/internal/types"
)

// Tx is a view of the ledger held under its write lock. Methods on Tx do not
// lock again, so a Tx must never escape the Atomically callback that owns it.
type Tx interface {
	// Pair returns the current snapshot for a trading pair.
	Pair(symbol string) (types.TradingPair, error)
	// UpsertPair replaces the snapshot for a pair, last write wins.
	UpsertPair(pair types.TradingPair)
	// AppendCandles appends candles to a pair's history, evicting the oldest
	// entries once the history cap is reached.
	AppendCandles(pair string, candles []types.Candle)
	// Portfolio returns a mutable portfolio for direct mutation under the lock.
	Portfolio(mode types.TradingMode) (*types.Portfolio, error)
	// Bot returns a mutable bot configuration for direct mutation under the lock.
	Bot(id string) (*types.BotConfig, error)
	// AppendTrade records a trade, assigning its ID and timestamp, and returns
	// the stored trade.
	AppendTrade(trade types.Trade) types.Trade
	// TradedVolume sums the quote-currency total of trades in a mode since the
	// given time. Used for fee tier lookups.
	TradedVolume(mode types.TradingMode, since time.Time) float64
	// AverageEntryPrice returns the volume-weighted average buy price of a
	// bot's trades in a pair, or zero if the bot has no buys there.
	AverageEntryPrice(botID string, pair string) float64
	// RevaluePortfolios recomputes every portfolio's total balance from its
	// available balance and positions marked at current pair prices.
	RevaluePortfolios()
}

// Ledger is the engine's state store. All methods are safe for concurrent use.
type Ledger interface {
	UpsertPairs(pairs []types.TradingPair)
	ListPairs() []types.TradingPair
	GetPair(symbol string) (types.TradingPair, error)

	AppendCandles(pair string, candles []types.Candle)
	ListCandles(pair string, limit int) ([]types.Candle, error)

	GetPortfolio(mode types.TradingMode) (types.Portfolio, error)
	ListTrades(filter types.TradeFilter) []types.Trade

	CreateBot(bot types.BotConfig) (types.BotConfig, error)
	GetBot(id string) (types.BotConfig, error)
	ListBots() []types.BotConfig
	UpdateBot(bot types.BotConfig) (types.BotConfig, error)
	DeleteBot(id string) error
	SetBotStatus(id string, status types.BotStatus) (types.BotConfig, error)

	UpsertModelState(state types.MLModelState)
	GetModelState(botID string) (types.MLModelState, error)
	UpsertMetrics(metrics types.PerformanceMetrics)
	GetMetrics(botID string) (types.PerformanceMetrics, error)

	// Atomically runs fn under the ledger's write lock. If fn returns an
	// error, the caller must not have mutated the view; the ledger itself
	// does not roll back.
	Atomically(fn func(tx Tx) error) error
}
