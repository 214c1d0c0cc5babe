package exchange

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
)

const (
	// DefaultRequestTimeout bounds every gateway call so a hung exchange
	// request is indistinguishable from any other transient failure.
	DefaultRequestTimeout = 10 * time.Second

	// BinanceDecimalPrecision is a default decimal precision used when
	// formatting order quantities. 8 decimals allows satoshi-level precision.
	BinanceDecimalPrecision = 8

	orderBookDepth = 10
)

// defaultQuoteAssets are the quote currencies recognized when splitting a
// Binance symbol like "BTCUSDT" back into base and quote assets.
var defaultQuoteAssets = []string{"USDT", "USDC", "FDUSD", "BUSD", "BTC", "ETH", "BNB"}

// Service interfaces for mocking the Binance API

// PriceStatsService interface for fetching 24h ticker statistics.
type PriceStatsService interface {
	Do(ctx context.Context) ([]*binance.PriceChangeStats, error)
}

// KlinesService interface for fetching candlestick data.
type KlinesService interface {
	Symbol(symbol string) KlinesService
	Interval(interval string) KlinesService
	Limit(limit int) KlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// DepthService interface for fetching order book depth.
type DepthService interface {
	Symbol(symbol string) DepthService
	Limit(limit int) DepthService
	Do(ctx context.Context) (*binance.DepthResponse, error)
}

// CreateOrderService interface for creating orders.
type CreateOrderService interface {
	Symbol(symbol string) CreateOrderService
	Side(side binance.SideType) CreateOrderService
	Type(orderType binance.OrderType) CreateOrderService
	Quantity(quantity string) CreateOrderService
	Price(price string) CreateOrderService
	TimeInForce(tif binance.TimeInForceType) CreateOrderService
	Do(ctx context.Context) (*binance.CreateOrderResponse, error)
}

// BinanceClient interface abstracts the Binance client for testing.
type BinanceClient interface {
	NewListPriceChangeStatsService() PriceStatsService
	NewKlinesService() KlinesService
	NewDepthService() DepthService
	NewCreateOrderService() CreateOrderService
}

// realBinanceClient wraps the actual binance.Client.
type realBinanceClient struct {
	client *binance.Client
}

func (r *realBinanceClient) NewListPriceChangeStatsService() PriceStatsService {
	return &realPriceStatsService{service: r.client.NewListPriceChangeStatsService()}
}

func (r *realBinanceClient) NewKlinesService() KlinesService {
	return &realKlinesService{service: r.client.NewKlinesService()}
}

func (r *realBinanceClient) NewDepthService() DepthService {
	return &realDepthService{service: r.client.NewDepthService()}
}

func (r *realBinanceClient) NewCreateOrderService() CreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

// Real service wrappers

type realPriceStatsService struct {
	service *binance.ListPriceChangeStatsService
}

func (s *realPriceStatsService) Do(ctx context.Context) ([]*binance.PriceChangeStats, error) {
	return s.service.Do(ctx)
}

type realKlinesService struct {
	service *binance.KlinesService
}

func (s *realKlinesService) Symbol(symbol string) KlinesService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realKlinesService) Interval(interval string) KlinesService {
	s.service = s.service.Interval(interval)

	return s
}

func (s *realKlinesService) Limit(limit int) KlinesService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

type realDepthService struct {
	service *binance.DepthService
}

func (s *realDepthService) Symbol(symbol string) DepthService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realDepthService) Limit(limit int) DepthService {
	s.service = s.service.Limit(limit)

	return s
}

func (s *realDepthService) Do(ctx context.Context) (*binance.DepthResponse, error) {
	return s.service.Do(ctx)
}

type realCreateOrderService struct {
	service *binance.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) CreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side binance.SideType) CreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType binance.OrderType) CreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) CreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Price(price string) CreateOrderService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOrderService) TimeInForce(tif binance.TimeInForceType) CreateOrderService {
	s.service = s.service.TimeInForce(tif)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*binance.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

// BinanceGatewayConfig contains configuration for the Binance gateway.
// API credentials are only needed when live order placement is enabled.
type BinanceGatewayConfig struct {
	ApiKey    string `json:"apiKey" yaml:"api_key"`
	SecretKey string `json:"secretKey" yaml:"secret_key"`
	BaseURL   string `json:"baseUrl" yaml:"base_url"`
	// QuoteAsset restricts ticker fetches to pairs quoted in this asset.
	QuoteAsset string `json:"quoteAsset" yaml:"quote_asset" validate:"required"`
	// RequestTimeout bounds each network call. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration `json:"requestTimeout" yaml:"request_timeout"`
}

// Validate validates the BinanceGatewayConfig struct.
func (c *BinanceGatewayConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid binance gateway config", err)
	}

	return nil
}

// BinanceGateway implements Gateway against the Binance spot API.
// It is stateless - all data is fetched directly from the exchange.
type BinanceGateway struct {
	client  BinanceClient
	config  BinanceGatewayConfig
	timeout time.Duration
}

// NewBinanceGateway creates a new Binance gateway.
// If useTestnet is true, connects to the Binance testnet.
// If config.BaseURL is set, it takes precedence over useTestnet.
func NewBinanceGateway(config BinanceGatewayConfig, useTestnet bool) (*BinanceGateway, error) {
	if config.QuoteAsset == "" {
		config.QuoteAsset = "USDT"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if useTestnet {
		binance.UseTestnet = true
	}

	client := binance.NewClient(config.ApiKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &BinanceGateway{
		client:  &realBinanceClient{client: client},
		config:  config,
		timeout: timeout,
	}, nil
}

// newBinanceGatewayWithClient creates a gateway with a custom client.
// This is used for testing with mock clients.
func newBinanceGatewayWithClient(client BinanceClient, config BinanceGatewayConfig) *BinanceGateway {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	if config.QuoteAsset == "" {
		config.QuoteAsset = "USDT"
	}

	return &BinanceGateway{
		client:  client,
		config:  config,
		timeout: timeout,
	}
}

// FetchTickers implements Gateway.
func (g *BinanceGateway) FetchTickers(ctx context.Context) ([]types.TradingPair, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	stats, err := g.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to fetch tickers from Binance", err)
	}

	pairs := make([]types.TradingPair, 0, len(stats))

	for _, stat := range stats {
		base, quote, ok := splitSymbol(stat.Symbol, g.config.QuoteAsset)
		if !ok || quote != g.config.QuoteAsset {
			continue
		}

		pairs = append(pairs, types.TradingPair{
			Symbol:       base + "/" + quote,
			BaseAsset:    base,
			QuoteAsset:   quote,
			CurrentPrice: parseFloat(stat.LastPrice),
			Change24h:    parseFloat(stat.PriceChangePercent),
			Volume24h:    parseFloat(stat.QuoteVolume),
			High24h:      parseFloat(stat.HighPrice),
			Low24h:       parseFloat(stat.LowPrice),
		})
	}

	return pairs, nil
}

// FetchOHLCV implements Gateway.
func (g *BinanceGateway) FetchOHLCV(ctx context.Context, pair string, timeframe string, limit int) ([]types.Candle, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	klines, err := g.client.NewKlinesService().
		Symbol(ToBinanceSymbol(pair)).
		Interval(timeframe).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch klines for %s from Binance", pair)
	}

	candles := make([]types.Candle, 0, len(klines))
	for _, kline := range klines {
		candles = append(candles, types.Candle{
			Pair:      pair,
			Timestamp: time.UnixMilli(kline.OpenTime),
			Open:      parseFloat(kline.Open),
			High:      parseFloat(kline.High),
			Low:       parseFloat(kline.Low),
			Close:     parseFloat(kline.Close),
			Volume:    parseFloat(kline.Volume),
		})
	}

	return candles, nil
}

// FetchOrderBook implements Gateway.
func (g *BinanceGateway) FetchOrderBook(ctx context.Context, pair string) (types.OrderBook, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	depth, err := g.client.NewDepthService().
		Symbol(ToBinanceSymbol(pair)).
		Limit(orderBookDepth).
		Do(ctx)
	if err != nil {
		return types.OrderBook{}, errors.Wrapf(errors.ErrCodeExchangeUnavailable, err, "failed to fetch order book for %s from Binance", pair)
	}

	book := types.OrderBook{
		Pair: pair,
		Bids: make([]types.OrderBookLevel, 0, len(depth.Bids)),
		Asks: make([]types.OrderBookLevel, 0, len(depth.Asks)),
	}

	for _, bid := range depth.Bids {
		book.Bids = append(book.Bids, types.OrderBookLevel{
			Price:    parseFloat(bid.Price),
			Quantity: parseFloat(bid.Quantity),
		})
	}

	for _, ask := range depth.Asks {
		book.Asks = append(book.Asks, types.OrderBookLevel{
			Price:    parseFloat(ask.Price),
			Quantity: parseFloat(ask.Quantity),
		})
	}

	return book, nil
}

// PlaceOrder implements Gateway. Only live-mode trades reach this method.
func (g *BinanceGateway) PlaceOrder(ctx context.Context, req types.TradeRequest) (OrderAck, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var side binance.SideType

	switch req.Side {
	case types.PurchaseTypeBuy:
		side = binance.SideTypeBuy
	case types.PurchaseTypeSell:
		side = binance.SideTypeSell
	default:
		return OrderAck{}, errors.Newf(errors.ErrCodeInvalidOrderParameters, "unsupported order side: %s", req.Side)
	}

	var orderType binance.OrderType

	switch req.Type {
	case types.OrderTypeMarket:
		orderType = binance.OrderTypeMarket
	case types.OrderTypeLimit:
		orderType = binance.OrderTypeLimit
	default:
		return OrderAck{}, errors.Newf(errors.ErrCodeInvalidOrderParameters, "unsupported order type: %s", req.Type)
	}

	orderService := g.client.NewCreateOrderService().
		Symbol(ToBinanceSymbol(req.Pair)).
		Side(side).
		Type(orderType).
		Quantity(strconv.FormatFloat(req.Amount, 'f', BinanceDecimalPrecision, 64))

	if req.Type == types.OrderTypeLimit {
		orderService = orderService.
			Price(strconv.FormatFloat(req.Price.Unwrap(), 'f', -1, 64)).
			TimeInForce(binance.TimeInForceTypeGTC)
	}

	resp, err := orderService.Do(ctx)
	if err != nil {
		if common.IsAPIError(err) {
			return OrderAck{}, errors.Wrap(errors.ErrCodeExchangeRejected, "Binance rejected the order", err)
		}

		return OrderAck{}, errors.Wrap(errors.ErrCodeExchangeUnavailable, "failed to place order on Binance", err)
	}

	return OrderAck{
		OrderID: strconv.FormatInt(resp.OrderID, 10),
		Status:  string(resp.Status),
	}, nil
}

// ToBinanceSymbol converts a pair like "BTC/USDT" to the Binance symbol "BTCUSDT".
func ToBinanceSymbol(pair string) string {
	return strings.ReplaceAll(pair, "/", "")
}

// splitSymbol splits a Binance symbol into base and quote assets, trying the
// preferred quote before the known quote-asset suffixes. Returns false if no
// quote matches.
func splitSymbol(symbol string, preferredQuote string) (base string, quote string, ok bool) {
	quotes := defaultQuoteAssets
	if preferredQuote != "" {
		quotes = append([]string{preferredQuote}, defaultQuoteAssets...)
	}

	for _, q := range quotes {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return strings.TrimSuffix(symbol, q), q, true
		}
	}

	return "", "", false
}

func parseFloat(s string) float64 {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return value
}
