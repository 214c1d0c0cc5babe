package types

// TradingMode distinguishes simulated portfolios from the live pass-through one.
type TradingMode string

const (
	TradingModePaper TradingMode = "paper"
	TradingModeLive  TradingMode = "live"
)

// IsValid reports whether the mode is one of the known trading modes.
func (m TradingMode) IsValid() bool {
	return m == TradingModePaper || m == TradingModeLive
}

// Portfolio holds balances and open positions for one trading mode.
// Positions map the pair symbol (e.g. "BTC/USDT") to the held base quantity.
type Portfolio struct {
	Mode             TradingMode        `json:"mode" yaml:"mode"`
	TotalBalance     float64            `json:"total_balance" yaml:"total_balance"`
	AvailableBalance float64            `json:"available_balance" yaml:"available_balance"`
	Positions        map[string]float64 `json:"positions" yaml:"positions"`
	ProfitLoss24h    float64            `json:"profit_loss_24h" yaml:"profit_loss_24h"`
	ProfitLossTotal  float64            `json:"profit_loss_total" yaml:"profit_loss_total"`
}

// NewPortfolio creates a portfolio for the given mode seeded with the given balance.
func NewPortfolio(mode TradingMode, seedBalance float64) *Portfolio {
	return &Portfolio{
		Mode:             mode,
		TotalBalance:     seedBalance,
		AvailableBalance: seedBalance,
		Positions:        make(map[string]float64),
		ProfitLoss24h:    0,
		ProfitLossTotal:  0,
	}
}

// Clone returns a deep copy of the portfolio. Broadcast payloads and read
// accessors hand out clones so subscribers can never mutate ledger state.
func (p *Portfolio) Clone() *Portfolio {
	positions := make(map[string]float64, len(p.Positions))
	for asset, qty := range p.Positions {
		positions[asset] = qty
	}

	return &Portfolio{
		Mode:             p.Mode,
		TotalBalance:     p.TotalBalance,
		AvailableBalance: p.AvailableBalance,
		Positions:        positions,
		ProfitLoss24h:    p.ProfitLoss24h,
		ProfitLossTotal:  p.ProfitLossTotal,
	}
}
