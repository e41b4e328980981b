package strategy

// Side is the direction of a signal or position.
type Side int

const (
	SideNone Side = iota
	SideLong
	SideShort
)

func (s Side) String() string {
	switch s {
	case SideLong:
		return "LONG"
	case SideShort:
		return "SHORT"
	default:
		return "NONE"
	}
}

// RejectReason explains why no signal was produced. Rejections are expected
// outcomes, never errors.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectInsufficientData
	RejectMarketRegime
	RejectPriceNotInZone
	RejectVolatilityFilter
	RejectScoreTooLow
	RejectDailyLimit
	RejectAgainstMacroTrend
	RejectNoSignal
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectInsufficientData:
		return "insufficient_data"
	case RejectMarketRegime:
		return "market_regime"
	case RejectPriceNotInZone:
		return "price_not_in_zone"
	case RejectVolatilityFilter:
		return "volatility_filter"
	case RejectScoreTooLow:
		return "score_too_low"
	case RejectDailyLimit:
		return "daily_limit"
	case RejectAgainstMacroTrend:
		return "against_macro_trend"
	case RejectNoSignal:
		return "no_signal"
	default:
		return "unknown"
	}
}

// AllRejectReasons enumerates every reason once, for reporting.
func AllRejectReasons() []RejectReason {
	return []RejectReason{
		RejectNone,
		RejectInsufficientData,
		RejectMarketRegime,
		RejectPriceNotInZone,
		RejectVolatilityFilter,
		RejectScoreTooLow,
		RejectDailyLimit,
		RejectAgainstMacroTrend,
		RejectNoSignal,
	}
}

// Category identifies which sub-strategy produced a trade.
type Category int

const (
	CategoryTrend Category = iota
	CategoryGrid
	CategoryBox
)

func (c Category) String() string {
	switch c {
	case CategoryTrend:
		return "trend"
	case CategoryGrid:
		return "grid"
	default:
		return "box"
	}
}
