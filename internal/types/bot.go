package types

import (
	"encoding/json"
	"time"
)

type BotStatus string

const (
	BotStatusStopped BotStatus = "stopped"
	BotStatusRunning BotStatus = "running"
)

// BotConfig is the configuration and derived performance counters for one
// strategy bot. The counters are maintained by the ledger whenever a trade
// references the bot; strategy parameters are opaque to the core.
type BotConfig struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Pair             string          `json:"pair" yaml:"pair"`
	Status           BotStatus       `json:"status" yaml:"status"`
	StrategyParams   json.RawMessage `json:"strategy_params,omitempty" yaml:"strategy_params,omitempty"`
	ProfitLoss       float64         `json:"profit_loss" yaml:"profit_loss"`
	WinRate          float64         `json:"win_rate" yaml:"win_rate"`
	TotalTrades      int             `json:"total_trades" yaml:"total_trades"`
	SuccessfulTrades int             `json:"successful_trades" yaml:"successful_trades"`
	FailedTrades     int             `json:"failed_trades" yaml:"failed_trades"`
	CreatedAt        time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" yaml:"updated_at"`
}

// MLModelState is an opaque per-bot model snapshot. At most one live state
// exists per bot; saving again replaces it in place and bumps LastUpdated.
type MLModelState struct {
	BotID       string          `json:"bot_id"`
	State       json.RawMessage `json:"state"`
	LastUpdated time.Time       `json:"last_updated"`
}

// PerformanceMetrics is an opaque per-bot metrics snapshot with the same
// upsert semantics as MLModelState.
type PerformanceMetrics struct {
	BotID       string          `json:"bot_id"`
	Metrics     json.RawMessage `json:"metrics"`
	LastUpdated time.Time       `json:"last_updated"`
}
