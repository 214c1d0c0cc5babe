package types

import "time"

// TradingPair is the latest market snapshot for a single symbol.
// It is overwritten wholesale on every sync cycle; no history is kept here.
type TradingPair struct {
	Symbol       string  `json:"symbol" yaml:"symbol"`
	BaseAsset    string  `json:"base_asset" yaml:"base_asset"`
	QuoteAsset   string  `json:"quote_asset" yaml:"quote_asset"`
	CurrentPrice float64 `json:"current_price" yaml:"current_price"`
	Change24h    float64 `json:"change_24h" yaml:"change_24h"`
	Volume24h    float64 `json:"volume_24h" yaml:"volume_24h"`
	High24h      float64 `json:"high_24h" yaml:"high_24h"`
	Low24h       float64 `json:"low_24h" yaml:"low_24h"`
}

// Candle is a single OHLCV sample for a pair.
type Candle struct {
	Pair      string    `json:"pair" yaml:"pair"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Open      float64   `json:"open" yaml:"open"`
	High      float64   `json:"high" yaml:"high"`
	Low       float64   `json:"low" yaml:"low"`
	Close     float64   `json:"close" yaml:"close"`
	Volume    float64   `json:"volume" yaml:"volume"`
}

// OrderBookLevel is one price level of an order book side.
type OrderBookLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBook is a depth snapshot for a pair.
type OrderBook struct {
	Pair string           `json:"pair"`
	Bids []OrderBookLevel `json:"bids"`
	Asks []OrderBookLevel `json:"asks"`
}
