package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/types"
	"github.com/rxtech-lab/paper-trading/internal/version"
	"github.com/rxtech-lab/paper-trading/pkg/errors"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
)

// handleWebSocket upgrades the connection and streams hub events to the
// client. The client may pass its own version as a "version" query parameter;
// incompatible clients are rejected before the upgrade.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientVersion := r.URL.Query().Get("version")
	if err := version.CheckClientCompatibility(version.Version, clientVersion); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible client version", err))

		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))

		return
	}

	clientID := uuid.New().String()
	sub := s.hub.Subscribe()

	s.logger.Info("websocket client connected",
		zap.String("client_id", clientID),
		zap.String("client_version", clientVersion))

	go s.writePump(conn, sub, clientID)

	// Read loop exists only to observe the close; inbound frames are ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.hub.Unsubscribe(sub)
	conn.Close()

	s.logger.Info("websocket client disconnected", zap.String("client_id", clientID))
}

// sendSnapshot pushes the current market and portfolio state to a freshly
// connected client so it does not have to wait for the next sync cycle.
func (s *Server) sendSnapshot(conn *websocket.Conn) {
	events := []broadcast.Event{
		broadcast.NewEvent(broadcast.EventMarketData, s.ledger.ListPairs()),
	}

	for _, mode := range []types.TradingMode{types.TradingModePaper, types.TradingModeLive} {
		portfolio, err := s.ledger.GetPortfolio(mode)
		if err != nil {
			continue
		}

		events = append(events, broadcast.NewEvent(broadcast.EventPortfolioUpdate, portfolio))
	}

	for _, event := range events {
		if err := s.writeEvent(conn, event); err != nil {
			return
		}
	}
}

// writePump owns all writes on the connection: the initial snapshot first,
// then every hub event until the subscription closes, with periodic pings to
// keep intermediaries from dropping idle connections.
func (s *Server) writePump(conn *websocket.Conn, sub *broadcast.Subscription, clientID string) {
	defer conn.Close()

	s.sendSnapshot(conn)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return
			}

			if err := s.writeEvent(conn, event); err != nil {
				s.logger.Debug("websocket write failed",
					zap.String("client_id", clientID),
					zap.Error(err))

				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, event broadcast.Event) error {
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	return conn.WriteMessage(websocket.TextMessage, payload)
}
