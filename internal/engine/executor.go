package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/internal/logger"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// feeVolumeWindow is the trailing window of traded volume used to pick the
// fee tier.
const feeVolumeWindow = 30 * 24 * time.Hour

// positionDust is the residual position size below which a position is
// removed after a sell, absorbing float rounding.
const positionDust = 1e-9

// Executor validates trade requests and settles them against the ledger.
// Paper trades settle immediately at the resolved price; live trades settle
// only after the exchange accepts the order.
type Executor struct {
	ledger      ledger.Ledger
	hub         *broadcast.Hub
	gateway     exchange.Gateway
	fees        exchange.FeeSchedule
	logger      *logger.Logger
	liveTrading bool
	now         func() time.Time
}

// NewExecutor creates a trade executor. Live-mode requests are rejected
// unless liveTrading is set; paper trades are always accepted.
func NewExecutor(ledger ledger.Ledger, hub *broadcast.Hub, gateway exchange.Gateway, fees exchange.FeeSchedule, logger *logger.Logger, liveTrading bool) *Executor {
	return &Executor{
		ledger:      ledger,
		hub:         hub,
		gateway:     gateway,
		fees:        fees,
		logger:      logger,
		liveTrading: liveTrading,
		now:         time.Now,
	}
}

// Execute runs a trade request through validation, fee calculation and
// settlement. On success the portfolio update is broadcast before the
// executed trade. A rejected request leaves the ledger untouched.
func (e *Executor) Execute(ctx context.Context, req types.TradeRequest) (types.Trade, error) {
	if err := req.Validate(); err != nil {
		return types.Trade{}, err
	}

	if req.Mode == types.TradingModeLive && !e.liveTrading {
		return types.Trade{}, errors.New(errors.ErrCodeInvalidTradingMode, "live trading is disabled")
	}

	var priced fill

	// Price the request and pre-check funds without holding the lock across
	// any network call.
	err := e.ledger.Atomically(func(tx ledger.Tx) error {
		pair, err := tx.Pair(req.Pair)
		if err != nil {
			return err
		}

		price, err := resolvePrice(req, pair)
		if err != nil {
			return err
		}

		priced = e.priceFill(tx, req, price)

		target, err := tx.Portfolio(req.Mode)
		if err != nil {
			return err
		}

		return checkFunds(target, req, priced)
	})
	if err != nil {
		return types.Trade{}, err
	}

	// Live orders must be accepted by the exchange before the ledger moves.
	// A rejection leaves everything untouched.
	if req.Mode == types.TradingModeLive {
		ack, err := e.gateway.PlaceOrder(ctx, req)
		if err != nil {
			return types.Trade{}, err
		}

		e.logger.Info("live order accepted",
			zap.String("order_id", ack.OrderID),
			zap.String("status", ack.Status),
		)
	}

	var (
		executed  types.Trade
		portfolio types.Portfolio
	)

	err = e.ledger.Atomically(func(tx ledger.Tx) error {
		target, err := tx.Portfolio(req.Mode)
		if err != nil {
			return err
		}

		// Funds may have moved since the pre-check.
		if err := checkFunds(target, req, priced); err != nil {
			return err
		}

		settle(target, req, priced)

		executed = tx.AppendTrade(types.Trade{
			BotID:  req.BotID,
			Pair:   req.Pair,
			Side:   req.Side,
			Type:   req.Type,
			Amount: req.Amount,
			Price:  priced.price,
			Fee:    priced.fee,
			Total:  priced.total,
			Mode:   req.Mode,
		})

		if req.BotID != "" {
			e.recordBotOutcome(tx, executed)
		}

		tx.RevaluePortfolios()
		portfolio = *target.Clone()

		return nil
	})
	if err != nil {
		return types.Trade{}, err
	}

	e.hub.Publish(broadcast.NewEvent(broadcast.EventPortfolioUpdate, portfolio))
	e.hub.Publish(broadcast.NewEvent(broadcast.EventTradeExecuted, executed))

	e.logger.Info("trade executed",
		zap.String("trade_id", executed.ID),
		zap.String("pair", executed.Pair),
		zap.String("side", string(executed.Side)),
		zap.String("mode", string(executed.Mode)),
		zap.Float64("amount", executed.Amount),
		zap.Float64("price", executed.Price),
		zap.Float64("fee", executed.Fee),
	)

	return executed, nil
}

// fill holds the priced-out economics of a request before settlement.
type fill struct {
	price    float64
	subtotal float64
	fee      float64
	total    float64
}

// resolvePrice picks the execution price: the current market price for
// market orders, the caller's limit price for limit orders.
func resolvePrice(req types.TradeRequest, pair types.TradingPair) (float64, error) {
	if req.Type == types.OrderTypeLimit {
		return req.Price.Unwrap(), nil
	}

	if pair.CurrentPrice <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidOrderParameters, "no market price available for %s", req.Pair)
	}

	return pair.CurrentPrice, nil
}

// priceFill computes subtotal, fee and total for a request at the given
// price. The fee tier comes from the mode's trailing 30-day traded volume.
func (e *Executor) priceFill(tx ledger.Tx, req types.TradeRequest, price float64) fill {
	volume := tx.TradedVolume(req.Mode, e.now().Add(-feeVolumeWindow))
	rates := e.fees.Rates(volume)

	rate := rates.Taker
	if req.Maker {
		rate = rates.Maker
	}

	subtotal := decimal.NewFromFloat(req.Amount).Mul(decimal.NewFromFloat(price))
	fee := subtotal.Mul(decimal.NewFromFloat(rate))

	total := subtotal.Add(fee)
	if req.Side == types.PurchaseTypeSell {
		total = subtotal.Sub(fee)
	}

	return fill{
		price:    price,
		subtotal: subtotal.InexactFloat64(),
		fee:      fee.InexactFloat64(),
		total:    total.InexactFloat64(),
	}
}

// checkFunds rejects a buy the portfolio cannot pay for and a sell larger
// than the held position.
func checkFunds(portfolio *types.Portfolio, req types.TradeRequest, fill fill) error {
	if req.Side == types.PurchaseTypeBuy {
		if fill.total > portfolio.AvailableBalance {
			return errors.Newf(errors.ErrCodeInsufficientBalance,
				"order cost (%.2f) exceeds available balance (%.2f)", fill.total, portfolio.AvailableBalance)
		}

		return nil
	}

	held := portfolio.Positions[req.Pair]
	if req.Amount > held {
		return errors.Newf(errors.ErrCodeInsufficientPosition,
			"sell amount (%.8f) exceeds held position (%.8f) in %s", req.Amount, held, req.Pair)
	}

	return nil
}

// settle applies the fill to the portfolio.
func settle(portfolio *types.Portfolio, req types.TradeRequest, fill fill) {
	if req.Side == types.PurchaseTypeBuy {
		portfolio.AvailableBalance -= fill.total
		portfolio.Positions[req.Pair] += req.Amount

		return
	}

	portfolio.AvailableBalance += fill.total

	remaining := portfolio.Positions[req.Pair] - req.Amount
	if remaining <= positionDust {
		delete(portfolio.Positions, req.Pair)
	} else {
		portfolio.Positions[req.Pair] = remaining
	}
}

// recordBotOutcome bumps the owning bot's derived counters. Buys only count
// toward the trade total; sells realize PnL against the bot's average entry
// price and feed the win rate.
func (e *Executor) recordBotOutcome(tx ledger.Tx, trade types.Trade) {
	bot, err := tx.Bot(trade.BotID)
	if err != nil {
		// The bot may have been deleted between placing and settling.
		e.logger.Warn("trade references unknown bot",
			zap.String("bot_id", trade.BotID),
			zap.String("trade_id", trade.ID),
		)

		return
	}

	bot.TotalTrades++
	bot.UpdatedAt = e.now()

	if trade.Side != types.PurchaseTypeSell {
		return
	}

	entry := tx.AverageEntryPrice(trade.BotID, trade.Pair)
	realized := (trade.Price-entry)*trade.Amount - trade.Fee

	bot.ProfitLoss += realized
	if realized > 0 {
		bot.SuccessfulTrades++
	} else {
		bot.FailedTrades++
	}

	if closed := bot.SuccessfulTrades + bot.FailedTrades; closed > 0 {
		bot.WinRate = float64(bot.SuccessfulTrades) / float64(closed)
	}
}
