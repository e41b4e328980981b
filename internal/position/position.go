package position

import (
	"time"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
)

// Phase is the pyramiding stage of an open position.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseBatch1
	PhaseBatch2
	PhaseBatch3
)

func (p Phase) String() string {
	switch p {
	case PhaseBatch1:
		return "batch1"
	case PhaseBatch2:
		return "batch2"
	case PhaseBatch3:
		return "batch3"
	default:
		return "none"
	}
}

// ExitReason records what closed a trade.
type ExitReason int

const (
	ExitStopLoss ExitReason = iota
	ExitTakeProfit
	ExitEndOfData
)

func (e ExitReason) String() string {
	switch e {
	case ExitStopLoss:
		return "stop_loss"
	case ExitTakeProfit:
		return "take_profit"
	default:
		return "end_of_data"
	}
}

// Position is one open trade. Size is the remaining notional, Qty the
// remaining quantity; Realized accumulates partial take-profit proceeds net
// of fees.
type Position struct {
	Key          string
	Symbol       string
	Side         strategy.Side
	Category     strategy.Category
	MacroAtEntry regime.MacroTrend

	Entry    float64
	Size     float64
	Qty      float64
	FullSize float64
	Cost     float64

	Stop        float64
	InitialStop float64
	Target      float64
	RiskDist    float64
	ATR         float64

	Phase       Phase
	PartialDone bool
	TrailingOn  bool

	High float64
	Low  float64

	Realized float64

	EntryTime time.Time
	EntryBar  int
}

// Favorable returns the signed move from entry to price in the position's
// direction, in price units.
func (p *Position) Favorable(price float64) float64 {
	if p.Side == strategy.SideShort {
		return p.Entry - price
	}
	return price - p.Entry
}

// R converts a price into the position's R-multiple against the initial
// stop distance.
func (p *Position) R(price float64) float64 {
	if p.RiskDist <= 0 {
		return 0
	}
	return p.Favorable(price) / p.RiskDist
}

// TradeRecord is the immutable result of one closed trade.
type TradeRecord struct {
	ID           string
	Symbol       string
	Side         strategy.Side
	Category     strategy.Category
	MacroAtEntry regime.MacroTrend

	Entry float64
	Exit  float64
	Qty   float64
	Cost  float64

	NetPnL    float64
	TotalPnL  float64
	TotalPct  float64
	RMultiple float64

	Reason ExitReason
	Phase  Phase

	EntryTime time.Time
	ExitTime  time.Time
}
