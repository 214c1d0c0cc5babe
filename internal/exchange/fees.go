package exchange

// FeeRate is the maker/taker rate pair for one volume tier.
type FeeRate struct {
	Maker float64 `json:"maker"`
	Taker float64 `json:"taker"`
}

// FeeSchedule resolves the fee rates for a trailing 30-day notional volume.
// Implementations must be pure lookups - no I/O, no side effects - because
// the trade executor calls them inside its validation critical section. The
// lookup must be total over volume in [0, +inf).
type FeeSchedule interface {
	Rates(volumeUSD float64) FeeRate
}

type Venue string

const (
	VenueKraken Venue = "kraken"
	VenueZero   Venue = "zero_fee"
)

var AllVenues = []any{
	VenueKraken,
	VenueZero,
}

// GetFeeSchedule returns the fee schedule for a venue. Unknown venues fall
// back to the zero-fee schedule.
func GetFeeSchedule(venue Venue) FeeSchedule {
	switch venue {
	case VenueKraken:
		return NewKrakenFeeSchedule()
	case VenueZero:
		return NewZeroFeeSchedule()
	default:
		return NewZeroFeeSchedule()
	}
}

// krakenTier is one row of the Kraken spot schedule. Boundaries are
// inclusive-low/exclusive-high; MaxVolume of 0 marks the open-ended top tier.
type krakenTier struct {
	MaxVolume float64
	Rate      FeeRate
}

// KrakenFeeSchedule implements the Kraken spot maker/taker schedule keyed by
// trailing 30-day volume in USD.
type KrakenFeeSchedule struct {
	tiers []krakenTier
}

// NewKrakenFeeSchedule creates the standard Kraken spot fee schedule.
func NewKrakenFeeSchedule() FeeSchedule {
	return &KrakenFeeSchedule{
		tiers: []krakenTier{
			{MaxVolume: 50_000, Rate: FeeRate{Maker: 0.0016, Taker: 0.0026}},
			{MaxVolume: 100_000, Rate: FeeRate{Maker: 0.0014, Taker: 0.0024}},
			{MaxVolume: 250_000, Rate: FeeRate{Maker: 0.0012, Taker: 0.0022}},
			{MaxVolume: 500_000, Rate: FeeRate{Maker: 0.0010, Taker: 0.0020}},
			{MaxVolume: 1_000_000, Rate: FeeRate{Maker: 0.0008, Taker: 0.0018}},
			{MaxVolume: 2_500_000, Rate: FeeRate{Maker: 0.0006, Taker: 0.0016}},
			{MaxVolume: 5_000_000, Rate: FeeRate{Maker: 0.0004, Taker: 0.0014}},
			{MaxVolume: 10_000_000, Rate: FeeRate{Maker: 0.0002, Taker: 0.0012}},
			{MaxVolume: 0, Rate: FeeRate{Maker: 0.0000, Taker: 0.0010}},
		},
	}
}

// Rates implements FeeSchedule.
func (k *KrakenFeeSchedule) Rates(volumeUSD float64) FeeRate {
	for _, tier := range k.tiers {
		if tier.MaxVolume == 0 {
			return tier.Rate
		}

		if volumeUSD < tier.MaxVolume {
			return tier.Rate
		}
	}

	// The open-ended tier above makes this unreachable.
	return k.tiers[len(k.tiers)-1].Rate
}

// ZeroFeeSchedule implements FeeSchedule with zero fees for any volume.
type ZeroFeeSchedule struct{}

// NewZeroFeeSchedule creates a new zero fee schedule.
func NewZeroFeeSchedule() FeeSchedule {
	return &ZeroFeeSchedule{}
}

// Rates returns zero rates for any volume.
func (z *ZeroFeeSchedule) Rates(volumeUSD float64) FeeRate {
	return FeeRate{Maker: 0, Taker: 0}
}
