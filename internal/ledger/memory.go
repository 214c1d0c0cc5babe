package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
)

const (
	// DefaultCandleLimit caps the candle history kept per pair.
	DefaultCandleLimit = 1000

	// DefaultSeedBalance is the starting balance of the paper portfolio.
	DefaultSeedBalance = 100_000
)

// MemoryLedgerConfig contains configuration for the in-memory ledger.
type MemoryLedgerConfig struct {
	// SeedBalance is the paper portfolio's starting balance. The live
	// portfolio always starts at zero and is funded by real fills.
	SeedBalance float64 `json:"seedBalance" yaml:"seed_balance"`
	// CandleLimit caps per-pair candle history. Zero means DefaultCandleLimit.
	CandleLimit int `json:"candleLimit" yaml:"candle_limit"`
}

// balanceMark is a portfolio valuation snapshot used to derive the rolling
// 24h profit and loss.
type balanceMark struct {
	at      time.Time
	balance float64
}

// MemoryLedger is an in-memory Ledger guarded by a single RWMutex.
type MemoryLedger struct {
	mu          sync.RWMutex
	pairs       map[string]types.TradingPair
	candles     map[string][]types.Candle
	portfolios  map[types.TradingMode]*types.Portfolio
	trades      []types.Trade
	bots        map[string]*types.BotConfig
	modelStates map[string]types.MLModelState
	metrics     map[string]types.PerformanceMetrics
	initial     map[types.TradingMode]float64
	dayMark     map[types.TradingMode]*balanceMark
	candleLimit int
	now         func() time.Time
}

// NewMemoryLedger creates a ledger with a seeded paper portfolio and an empty
// live portfolio.
func NewMemoryLedger(config MemoryLedgerConfig) *MemoryLedger {
	if config.CandleLimit <= 0 {
		config.CandleLimit = DefaultCandleLimit
	}

	if config.SeedBalance <= 0 {
		config.SeedBalance = DefaultSeedBalance
	}

	return &MemoryLedger{
		pairs:   make(map[string]types.TradingPair),
		candles: make(map[string][]types.Candle),
		portfolios: map[types.TradingMode]*types.Portfolio{
			types.TradingModePaper: types.NewPortfolio(types.TradingModePaper, config.SeedBalance),
			types.TradingModeLive:  types.NewPortfolio(types.TradingModeLive, 0),
		},
		bots:        make(map[string]*types.BotConfig),
		modelStates: make(map[string]types.MLModelState),
		metrics:     make(map[string]types.PerformanceMetrics),
		initial: map[types.TradingMode]float64{
			types.TradingModePaper: config.SeedBalance,
			types.TradingModeLive:  0,
		},
		dayMark:     make(map[types.TradingMode]*balanceMark),
		candleLimit: config.CandleLimit,
		now:         time.Now,
	}
}

// memoryTx implements Tx against the ledger's maps without locking. The
// caller already holds the write lock.
type memoryTx struct {
	ledger *MemoryLedger
}

func (t *memoryTx) Pair(symbol string) (types.TradingPair, error) {
	pair, ok := t.ledger.pairs[symbol]
	if !ok {
		return types.TradingPair{}, errors.Newf(errors.ErrCodePairNotFound, "trading pair %s not found", symbol)
	}

	return pair, nil
}

func (t *memoryTx) UpsertPair(pair types.TradingPair) {
	t.ledger.pairs[pair.Symbol] = pair
}

func (t *memoryTx) AppendCandles(pair string, candles []types.Candle) {
	history := append(t.ledger.candles[pair], candles...)
	if len(history) > t.ledger.candleLimit {
		history = history[len(history)-t.ledger.candleLimit:]
	}

	t.ledger.candles[pair] = history
}

func (t *memoryTx) Portfolio(mode types.TradingMode) (*types.Portfolio, error) {
	portfolio, ok := t.ledger.portfolios[mode]
	if !ok {
		return nil, errors.Newf(errors.ErrCodePortfolioNotFound, "no portfolio for mode %s", mode)
	}

	return portfolio, nil
}

func (t *memoryTx) Bot(id string) (*types.BotConfig, error) {
	bot, ok := t.ledger.bots[id]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeBotNotFound, "bot %s not found", id)
	}

	return bot, nil
}

func (t *memoryTx) AppendTrade(trade types.Trade) types.Trade {
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}

	if trade.Timestamp.IsZero() {
		trade.Timestamp = t.ledger.now()
	}

	t.ledger.trades = append(t.ledger.trades, trade)

	return trade
}

func (t *memoryTx) TradedVolume(mode types.TradingMode, since time.Time) float64 {
	var volume float64

	for _, trade := range t.ledger.trades {
		if trade.Mode != mode || trade.Timestamp.Before(since) {
			continue
		}

		volume += trade.Total
	}

	return volume
}

func (t *memoryTx) AverageEntryPrice(botID string, pair string) float64 {
	var amount, cost float64

	for _, trade := range t.ledger.trades {
		if trade.BotID != botID || trade.Pair != pair || trade.Side != types.PurchaseTypeBuy {
			continue
		}

		amount += trade.Amount
		cost += trade.Amount * trade.Price
	}

	if amount <= 0 {
		return 0
	}

	return cost / amount
}

func (t *memoryTx) RevaluePortfolios() {
	now := t.ledger.now()

	for mode, portfolio := range t.ledger.portfolios {
		total := portfolio.AvailableBalance

		for symbol, quantity := range portfolio.Positions {
			if pair, ok := t.ledger.pairs[symbol]; ok {
				total += quantity * pair.CurrentPrice
			}
		}

		portfolio.TotalBalance = total
		portfolio.ProfitLossTotal = total - t.ledger.initial[mode]

		mark := t.ledger.dayMark[mode]
		if mark == nil || now.Sub(mark.at) >= 24*time.Hour {
			t.ledger.dayMark[mode] = &balanceMark{at: now, balance: total}
			portfolio.ProfitLoss24h = 0

			continue
		}

		portfolio.ProfitLoss24h = total - mark.balance
	}
}

// Atomically implements Ledger.
func (l *MemoryLedger) Atomically(fn func(tx Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(&memoryTx{ledger: l})
}

// UpsertPairs implements Ledger.
func (l *MemoryLedger) UpsertPairs(pairs []types.TradingPair) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, pair := range pairs {
		l.pairs[pair.Symbol] = pair
	}
}

// ListPairs implements Ledger. Pairs are returned ordered by 24h quote
// volume, highest first.
func (l *MemoryLedger) ListPairs() []types.TradingPair {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pairs := make([]types.TradingPair, 0, len(l.pairs))
	for _, pair := range l.pairs {
		pairs = append(pairs, pair)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Volume24h != pairs[j].Volume24h {
			return pairs[i].Volume24h > pairs[j].Volume24h
		}

		return pairs[i].Symbol < pairs[j].Symbol
	})

	return pairs
}

// GetPair implements Ledger.
func (l *MemoryLedger) GetPair(symbol string) (types.TradingPair, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return (&memoryTx{ledger: l}).Pair(symbol)
}

// AppendCandles implements Ledger.
func (l *MemoryLedger) AppendCandles(pair string, candles []types.Candle) {
	l.mu.Lock()
	defer l.mu.Unlock()

	(&memoryTx{ledger: l}).AppendCandles(pair, candles)
}

// ListCandles implements Ledger. Candles are returned oldest first; limit
// trims to the most recent entries, zero or negative means no trim.
func (l *MemoryLedger) ListCandles(pair string, limit int) ([]types.Candle, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.pairs[pair]; !ok {
		return nil, errors.Newf(errors.ErrCodePairNotFound, "trading pair %s not found", pair)
	}

	history := l.candles[pair]
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}

	out := make([]types.Candle, len(history))
	copy(out, history)

	return out, nil
}

// GetPortfolio implements Ledger. The returned portfolio is a deep copy.
func (l *MemoryLedger) GetPortfolio(mode types.TradingMode) (types.Portfolio, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	portfolio, ok := l.portfolios[mode]
	if !ok {
		return types.Portfolio{}, errors.Newf(errors.ErrCodePortfolioNotFound, "no portfolio for mode %s", mode)
	}

	return *portfolio.Clone(), nil
}

// ListTrades implements Ledger. Trades are returned newest first.
func (l *MemoryLedger) ListTrades(filter types.TradeFilter) []types.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]types.Trade, 0, len(l.trades))

	for i := len(l.trades) - 1; i >= 0; i-- {
		trade := l.trades[i]
		if filter.BotID != "" && trade.BotID != filter.BotID {
			continue
		}

		if filter.Mode != "" && trade.Mode != filter.Mode {
			continue
		}

		out = append(out, trade)

		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}

	return out
}

// CreateBot implements Ledger. A missing ID is assigned, timestamps are set
// and the bot starts stopped with zeroed counters.
func (l *MemoryLedger) CreateBot(bot types.BotConfig) (types.BotConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if bot.ID == "" {
		bot.ID = uuid.New().String()
	}

	if _, exists := l.bots[bot.ID]; exists {
		return types.BotConfig{}, errors.Newf(errors.ErrCodeInvalidConfiguration, "bot %s already exists", bot.ID)
	}

	now := l.now()
	bot.Status = types.BotStatusStopped
	bot.ProfitLoss = 0
	bot.WinRate = 0
	bot.TotalTrades = 0
	bot.SuccessfulTrades = 0
	bot.FailedTrades = 0
	bot.CreatedAt = now
	bot.UpdatedAt = now

	stored := bot
	l.bots[bot.ID] = &stored

	return stored, nil
}

// GetBot implements Ledger.
func (l *MemoryLedger) GetBot(id string) (types.BotConfig, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bot, ok := l.bots[id]
	if !ok {
		return types.BotConfig{}, errors.Newf(errors.ErrCodeBotNotFound, "bot %s not found", id)
	}

	return *bot, nil
}

// ListBots implements Ledger. Bots are returned ordered by creation time,
// oldest first.
func (l *MemoryLedger) ListBots() []types.BotConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bots := make([]types.BotConfig, 0, len(l.bots))
	for _, bot := range l.bots {
		bots = append(bots, *bot)
	}

	sort.Slice(bots, func(i, j int) bool {
		if !bots[i].CreatedAt.Equal(bots[j].CreatedAt) {
			return bots[i].CreatedAt.Before(bots[j].CreatedAt)
		}

		return bots[i].ID < bots[j].ID
	})

	return bots
}

// UpdateBot implements Ledger. Only the configurable fields change; status,
// derived counters and the creation time are preserved.
func (l *MemoryLedger) UpdateBot(bot types.BotConfig) (types.BotConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.bots[bot.ID]
	if !ok {
		return types.BotConfig{}, errors.Newf(errors.ErrCodeBotNotFound, "bot %s not found", bot.ID)
	}

	existing.Name = bot.Name
	existing.Pair = bot.Pair
	existing.StrategyParams = bot.StrategyParams
	existing.UpdatedAt = l.now()

	return *existing, nil
}

// DeleteBot implements Ledger. The bot's model state and metrics go with it;
// its trades stay in the append-only log.
func (l *MemoryLedger) DeleteBot(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.bots[id]; !ok {
		return errors.Newf(errors.ErrCodeBotNotFound, "bot %s not found", id)
	}

	delete(l.bots, id)
	delete(l.modelStates, id)
	delete(l.metrics, id)

	return nil
}

// SetBotStatus implements Ledger.
func (l *MemoryLedger) SetBotStatus(id string, status types.BotStatus) (types.BotConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	bot, ok := l.bots[id]
	if !ok {
		return types.BotConfig{}, errors.Newf(errors.ErrCodeBotNotFound, "bot %s not found", id)
	}

	bot.Status = status
	bot.UpdatedAt = l.now()

	return *bot, nil
}

// UpsertModelState implements Ledger.
func (l *MemoryLedger) UpsertModelState(state types.MLModelState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if state.LastUpdated.IsZero() {
		state.LastUpdated = l.now()
	}

	l.modelStates[state.BotID] = state
}

// GetModelState implements Ledger.
func (l *MemoryLedger) GetModelState(botID string) (types.MLModelState, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state, ok := l.modelStates[botID]
	if !ok {
		return types.MLModelState{}, errors.Newf(errors.ErrCodeDataNotFound, "no model state for bot %s", botID)
	}

	return state, nil
}

// UpsertMetrics implements Ledger.
func (l *MemoryLedger) UpsertMetrics(metrics types.PerformanceMetrics) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if metrics.LastUpdated.IsZero() {
		metrics.LastUpdated = l.now()
	}

	l.metrics[metrics.BotID] = metrics
}

// GetMetrics implements Ledger.
func (l *MemoryLedger) GetMetrics(botID string) (types.PerformanceMetrics, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	metrics, ok := l.metrics[botID]
	if !ok {
		return types.PerformanceMetrics{}, errors.Newf(errors.ErrCodeDataNotFound, "no performance metrics for bot %s", botID)
	}

	return metrics, nil
}
