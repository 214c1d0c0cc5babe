package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
)

type PurchaseType string

type OrderType string

const (
	PurchaseTypeBuy  PurchaseType = "BUY"
	PurchaseTypeSell PurchaseType = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Trade is one executed fill. Trades are immutable once created; the ledger
// assigns ID and Timestamp at append time.
type Trade struct {
	ID        string       `json:"id" yaml:"id"`
	BotID     string       `json:"bot_id,omitempty" yaml:"bot_id,omitempty"`
	Pair      string       `json:"pair" yaml:"pair"`
	Side      PurchaseType `json:"side" yaml:"side"`
	Type      OrderType    `json:"type" yaml:"type"`
	Amount    float64      `json:"amount" yaml:"amount"`
	Price     float64      `json:"price" yaml:"price"`
	Fee       float64      `json:"fee" yaml:"fee"`
	Total     float64      `json:"total" yaml:"total"`
	Mode      TradingMode  `json:"mode" yaml:"mode"`
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
}

// TradeRequest is an inbound order to execute against a portfolio.
type TradeRequest struct {
	Mode   TradingMode  `json:"mode" validate:"required,oneof=paper live"`
	Pair   string       `json:"pair" validate:"required"`
	Side   PurchaseType `json:"side" validate:"required,oneof=BUY SELL"`
	Type   OrderType    `json:"type" validate:"required,oneof=MARKET LIMIT"`
	Amount float64      `json:"amount" validate:"required,gt=0"`
	// Price is required for limit orders and ignored for market orders.
	Price optional.Option[float64] `json:"price,omitempty" validate:"-"`
	// Maker marks the order as liquidity-adding so the maker fee rate applies.
	// Orders are priced at the taker rate unless the caller sets this.
	Maker bool `json:"maker,omitempty"`
	// BotID attributes the trade to a bot so its derived counters are updated.
	BotID string `json:"bot_id,omitempty"`
}

// TradeFilter is used to filter trades when querying trade history.
type TradeFilter struct {
	// BotID filters trades by bot (empty string means no filter)
	BotID string `json:"bot_id"`
	// Mode filters trades by trading mode (empty means no filter)
	Mode TradingMode `json:"mode"`
	// Limit limits the number of trades returned (0 means no limit)
	Limit int `json:"limit"`
}

// Validate validates the TradeRequest struct.
func (r *TradeRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderParameters, "invalid trade request", err)
	}

	if r.Type == OrderTypeLimit {
		if r.Price.IsNone() {
			return errors.New(errors.ErrCodeInvalidOrderParameters, "limit order requires a price")
		}

		if r.Price.Unwrap() <= 0 {
			return errors.Newf(errors.ErrCodeInvalidOrderParameters, "limit order price must be greater than zero: %f", r.Price.Unwrap())
		}
	}

	return nil
}
