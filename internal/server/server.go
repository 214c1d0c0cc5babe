// Package server exposes the engine over HTTP: a REST API for market data,
// portfolios, trades and bots, plus a websocket stream of state changes.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/engine"
	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/internal/logger"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"go.uber.org/zap"
)

// Server hosts the REST API and the websocket event stream.
type Server struct {
	ledger   ledger.Ledger
	executor *engine.Executor
	sync     *engine.MarketSync
	gateway  exchange.Gateway
	hub      *broadcast.Hub
	logger   *logger.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server wired to the engine's components.
func NewServer(ledger ledger.Ledger, executor *engine.Executor, sync *engine.MarketSync, gateway exchange.Gateway, hub *broadcast.Hub, logger *logger.Logger) *Server {
	return &Server{
		ledger:   ledger,
		executor: executor,
		sync:     sync,
		gateway:  gateway,
		hub:      hub,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	router.HandleFunc("/api/markets", s.handleListMarkets).Methods("GET")
	router.HandleFunc("/api/markets/{symbol}/history", s.handleMarketHistory).Methods("GET")
	router.HandleFunc("/api/markets/{symbol}/orderbook", s.handleOrderBook).Methods("GET")
	router.HandleFunc("/api/markets/sync", s.handleSyncNow).Methods("POST")

	router.HandleFunc("/api/portfolio/{mode}", s.handleGetPortfolio).Methods("GET")

	router.HandleFunc("/api/trades", s.handleListTrades).Methods("GET")
	router.HandleFunc("/api/trades", s.handleCreateTrade).Methods("POST")
	router.HandleFunc("/api/trades/schema", s.handleTradeSchema).Methods("GET")

	router.HandleFunc("/api/bots", s.handleListBots).Methods("GET")
	router.HandleFunc("/api/bots", s.handleCreateBot).Methods("POST")
	router.HandleFunc("/api/bots/{id}", s.handleGetBot).Methods("GET")
	router.HandleFunc("/api/bots/{id}", s.handleUpdateBot).Methods("PUT")
	router.HandleFunc("/api/bots/{id}", s.handleDeleteBot).Methods("DELETE")
	router.HandleFunc("/api/bots/{id}/start", s.handleStartBot).Methods("POST")
	router.HandleFunc("/api/bots/{id}/stop", s.handleStopBot).Methods("POST")
	router.HandleFunc("/api/bots/{id}/model", s.handleGetModelState).Methods("GET")
	router.HandleFunc("/api/bots/{id}/model", s.handlePutModelState).Methods("PUT")
	router.HandleFunc("/api/bots/{id}/performance", s.handleGetMetrics).Methods("GET")
	router.HandleFunc("/api/bots/{id}/performance", s.handlePutMetrics).Methods("PUT")

	router.HandleFunc("/ws", s.handleWebSocket)

	return router
}

// Start begins serving on the given address. If address is empty or ":0", a
// random available port is used.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	s.logger.Info("server listening", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// pairFromPath converts a URL-safe symbol like "BTC-USDT" to "BTC/USDT".
func pairFromPath(symbol string) string {
	return strings.ReplaceAll(symbol, "-", "/")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, httpStatus(code), map[string]any{
		"error": err.Error(),
		"code":  code,
	})
}

// httpStatus maps error codes onto HTTP status codes.
func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidOrderParameters,
		errors.ErrCodeInvalidConfiguration,
		errors.ErrCodeInvalidTradingMode,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInsufficientBalance,
		errors.ErrCodeInsufficientPosition:
		return http.StatusBadRequest
	case errors.ErrCodePairNotFound,
		errors.ErrCodeBotNotFound,
		errors.ErrCodeDataNotFound,
		errors.ErrCodePortfolioNotFound:
		return http.StatusNotFound
	case errors.ErrCodeExchangeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeExchangeRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
