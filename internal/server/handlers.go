package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/internal/version"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"github.com/rxtech-lab/paper-trading/pkg/utils"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     version.Version,
		"subscribers": s.hub.SubscriberCount(),
	})
}

func (s *Server) handleListMarkets(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.ListPairs())
}

func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	pair := pairFromPath(mux.Vars(r)["symbol"])

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidOrderParameters, "invalid limit: %s", raw))

			return
		}

		limit = parsed
	}

	candles, err := s.ledger.ListCandles(pair, limit)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, candles)
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	pair := pairFromPath(mux.Vars(r)["symbol"])

	if s.gateway == nil {
		s.writeError(w, errors.New(errors.ErrCodeExchangeUnavailable, "no exchange gateway configured"))

		return
	}

	book, err := s.gateway.FetchOrderBook(r.Context(), pair)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, book)
}

func (s *Server) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		s.writeError(w, errors.New(errors.ErrCodeExchangeUnavailable, "market sync is not configured"))

		return
	}

	if err := s.sync.RunOnce(r.Context()); err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	mode := types.TradingMode(mux.Vars(r)["mode"])
	if !mode.IsValid() {
		s.writeError(w, errors.Newf(errors.ErrCodeInvalidTradingMode, "unknown trading mode: %s", mode))

		return
	}

	portfolio, err := s.ledger.GetPortfolio(mode)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, portfolio)
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := types.TradeFilter{
		BotID: query.Get("bot_id"),
	}

	if raw := query.Get("mode"); raw != "" {
		mode := types.TradingMode(raw)
		if !mode.IsValid() {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidTradingMode, "unknown trading mode: %s", raw))

			return
		}

		filter.Mode = mode
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, errors.Newf(errors.ErrCodeInvalidOrderParameters, "invalid limit: %s", raw))

			return
		}

		filter.Limit = limit
	}

	s.writeJSON(w, http.StatusOK, s.ledger.ListTrades(filter))
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req types.TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidOrderParameters, "invalid trade request body", err))

		return
	}

	trade, err := s.executor.Execute(r.Context(), req)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleTradeSchema(w http.ResponseWriter, _ *http.Request) {
	schema, err := utils.GetSchemaFromStruct(types.TradeRequest{})
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeUnknown, "failed to build trade request schema", err))

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write([]byte(schema)); err != nil {
		s.logger.Warn("failed to write schema response")
	}
}

func (s *Server) handleListBots(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ledger.ListBots())
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	var bot types.BotConfig
	if err := json.NewDecoder(r.Body).Decode(&bot); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid bot body", err))

		return
	}

	if bot.Name == "" {
		s.writeError(w, errors.New(errors.ErrCodeMissingParameter, "bot name is required"))

		return
	}

	if bot.Pair == "" {
		s.writeError(w, errors.New(errors.ErrCodeMissingParameter, "bot pair is required"))

		return
	}

	created, err := s.ledger.CreateBot(bot)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.hub.Publish(broadcast.NewEvent(broadcast.EventBotCreated, created))
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetBot(w http.ResponseWriter, r *http.Request) {
	bot, err := s.ledger.GetBot(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, bot)
}

func (s *Server) handleUpdateBot(w http.ResponseWriter, r *http.Request) {
	var bot types.BotConfig
	if err := json.NewDecoder(r.Body).Decode(&bot); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid bot body", err))

		return
	}

	bot.ID = mux.Vars(r)["id"]

	updated, err := s.ledger.UpdateBot(bot)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.hub.Publish(broadcast.NewEvent(broadcast.EventBotUpdated, updated))
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.ledger.DeleteBot(id); err != nil {
		s.writeError(w, err)

		return
	}

	s.hub.Publish(broadcast.NewEvent(broadcast.EventBotDeleted, map[string]string{"id": id}))
	s.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleStartBot(w http.ResponseWriter, r *http.Request) {
	s.setBotStatus(w, mux.Vars(r)["id"], types.BotStatusRunning)
}

func (s *Server) handleStopBot(w http.ResponseWriter, r *http.Request) {
	s.setBotStatus(w, mux.Vars(r)["id"], types.BotStatusStopped)
}

func (s *Server) setBotStatus(w http.ResponseWriter, id string, status types.BotStatus) {
	bot, err := s.ledger.SetBotStatus(id, status)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.hub.Publish(broadcast.NewEvent(broadcast.EventBotStatusChanged, bot))
	s.writeJSON(w, http.StatusOK, bot)
}

func (s *Server) handleGetModelState(w http.ResponseWriter, r *http.Request) {
	state, err := s.ledger.GetModelState(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePutModelState(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// The bot must exist before any state can be attached to it.
	if _, err := s.ledger.GetBot(id); err != nil {
		s.writeError(w, err)

		return
	}

	var body struct {
		State json.RawMessage `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid model state body", err))

		return
	}

	s.ledger.UpsertModelState(types.MLModelState{BotID: id, State: body.State})

	state, err := s.ledger.GetModelState(id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.ledger.GetMetrics(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handlePutMetrics(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := s.ledger.GetBot(id); err != nil {
		s.writeError(w, err)

		return
	}

	var body struct {
		Metrics json.RawMessage `json:"metrics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid metrics body", err))

		return
	}

	s.ledger.UpsertMetrics(types.PerformanceMetrics{BotID: id, Metrics: body.Metrics})

	metrics, err := s.ledger.GetMetrics(id)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, metrics)
}
