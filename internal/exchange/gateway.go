package exchange

import (
	"context"

	"github.com/rxtech-lab/paper-trading/internal/types"
)

// OrderAck is the exchange's acknowledgement of a placed order.
type OrderAck struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// Gateway is the capability interface over an exchange client. The core never
// depends on the underlying client library's types, so the interface must be
// implementable against any exchange SDK.
//
// All methods may block on network I/O and must respect ctx cancellation.
// Transport failures surface as errors with code ErrCodeExchangeUnavailable;
// order refusals as ErrCodeExchangeRejected.
type Gateway interface {
	// FetchTickers returns the latest 24h snapshot for all watched pairs.
	FetchTickers(ctx context.Context) ([]types.TradingPair, error)
	// FetchOHLCV returns up to limit candles for the pair at the given timeframe.
	FetchOHLCV(ctx context.Context, pair string, timeframe string, limit int) ([]types.Candle, error)
	// FetchOrderBook returns a depth snapshot for the pair.
	FetchOrderBook(ctx context.Context, pair string) (types.OrderBook, error)
	// PlaceOrder submits a live order to the exchange. Paper trades never call this.
	PlaceOrder(ctx context.Context, req types.TradeRequest) (OrderAck, error)
}
