package position

import (
	"math"
	mathrand "math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

// Manager tracks open positions by key and walks each through its lifecycle:
// open, optional pyramiding adds, one partial take profit, trailing, close.
// Trade IDs are ULIDs stamped from the exit time with a seeded entropy
// source, so replaying the same bars yields the same records.
type Manager struct {
	cfg       *config.Config
	positions map[string]*Position
	entropy   *ulid.MonotonicEntropy
}

// NewManager creates an empty position manager.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg:       cfg,
		positions: make(map[string]*Position),
		entropy:   ulid.Monotonic(mathrand.New(mathrand.NewSource(0)), 0),
	}
}

// Open creates a position and returns it with the cash cost to charge the
// pool (notional plus entry fee). A non-positive size opens nothing.
func (m *Manager) Open(key, symbol string, side strategy.Side, cat strategy.Category, macro regime.MacroTrend,
	entry, size, stop, target, atr float64, ts time.Time, barIdx int) (*Position, float64) {

	if size <= 0 || entry <= 0 {
		return nil, 0
	}

	fee := size * m.cfg.TradingFee
	fullSize := size
	if m.cfg.Batch1Ratio > 0 {
		fullSize = size / m.cfg.Batch1Ratio
	}

	p := &Position{
		Key:          key,
		Symbol:       symbol,
		Side:         side,
		Category:     cat,
		MacroAtEntry: macro,
		Entry:        entry,
		Size:         size,
		Qty:          size / entry,
		FullSize:     fullSize,
		Cost:         size + fee,
		Stop:         stop,
		InitialStop:  stop,
		Target:       target,
		RiskDist:     math.Abs(entry - stop),
		ATR:          atr,
		Phase:        PhaseBatch1,
		High:         entry,
		Low:          entry,
		EntryTime:    ts,
		EntryBar:     barIdx,
	}
	m.positions[key] = p
	return p, size + fee
}

// Get returns the position under key, or nil.
func (m *Manager) Get(key string) *Position {
	return m.positions[key]
}

// Keys returns the open position keys in sorted order.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.positions))
	for k := range m.positions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of open positions.
func (m *Manager) Len() int {
	return len(m.positions)
}

// AddBatch pyramids into the position at price when the move from entry is
// favorable by at least the configured threshold. freeCash caps the add at
// 95% of what the pool has left. It returns the cash cost and whether an add
// happened.
func (m *Manager) AddBatch(key string, price, freeCash float64) (float64, bool) {
	p := m.positions[key]
	if p == nil || p.Phase >= PhaseBatch3 {
		return 0, false
	}

	movePct := p.Favorable(price) / p.Entry * 100
	if movePct < m.cfg.AddThresholdPct {
		return 0, false
	}

	ratio := m.cfg.Batch2Ratio
	next := PhaseBatch2
	if p.Phase == PhaseBatch2 {
		ratio = m.cfg.Batch3Ratio
		next = PhaseBatch3
	}
	if ratio <= 0 {
		return 0, false
	}

	addSize := math.Min(p.FullSize*ratio, freeCash*0.95)
	if addSize <= 0 {
		return 0, false
	}

	newSize := p.Size + addSize
	newEntry := (p.Entry*p.Size + price*addSize) / newSize
	p.Qty += addSize / price
	p.Size = newSize
	p.Entry = newEntry
	p.Phase = next

	fee := addSize * m.cfg.TradingFee
	p.Cost += addSize + fee

	// Tighten the stop toward the new blended entry, never loosen it.
	if p.Side == strategy.SideLong {
		p.Stop = math.Max(p.Stop, newEntry-p.RiskDist)
	} else {
		p.Stop = math.Min(p.Stop, newEntry+p.RiskDist)
	}

	return addSize + fee, true
}

// PartialTP realizes the configured fraction once the position reaches the
// partial R multiple, and moves the stop to break-even. It returns the cash
// released and whether it fired. It can fire at most once per position.
func (m *Manager) PartialTP(key string, price float64) (float64, bool) {
	p := m.positions[key]
	if p == nil || p.PartialDone || m.cfg.PartialTPRatio <= 0 {
		return 0, false
	}
	if p.R(price) < m.cfg.PartialTPRMultiple {
		return 0, false
	}

	closeSize := p.Size * m.cfg.PartialTPRatio
	closeQty := p.Qty * m.cfg.PartialTPRatio

	pnl := (price - p.Entry) * closeQty
	if p.Side == strategy.SideShort {
		pnl = -pnl
	}
	fee := closeSize * m.cfg.TradingFee
	net := pnl - fee

	p.Size -= closeSize
	p.Qty -= closeQty
	p.Realized += net
	p.PartialDone = true

	// Move to break-even, but never loosen a stop trailing already tightened.
	if p.Side == strategy.SideLong {
		p.Stop = math.Max(p.Stop, p.Entry)
	} else {
		p.Stop = math.Min(p.Stop, p.Entry)
	}

	return closeSize + net, true
}

// UpdateTrailing arms the trailing stop once the close reaches the
// activation R multiple, then ratchets the stop behind the favorable
// watermark at a fixed distance of the entry ATR. The stop only ever
// tightens.
func (m *Manager) UpdateTrailing(key string, close float64) {
	p := m.positions[key]
	if p == nil {
		return
	}

	if close > p.High {
		p.High = close
	}
	if close < p.Low {
		p.Low = close
	}

	if !p.TrailingOn && p.R(close) >= m.cfg.TrailingActivateR {
		p.TrailingOn = true
	}
	if !p.TrailingOn {
		return
	}

	dist := p.ATR * m.cfg.TrailingDistATR
	if p.Side == strategy.SideLong {
		if s := p.High - dist; s > p.Stop {
			p.Stop = s
		}
	} else {
		if s := p.Low + dist; s < p.Stop {
			p.Stop = s
		}
	}
}

// StopHit reports whether the bar's adverse extreme reached the stop.
func (m *Manager) StopHit(key string, barHigh, barLow float64) bool {
	p := m.positions[key]
	if p == nil {
		return false
	}
	if p.Side == strategy.SideLong {
		return barLow <= p.Stop
	}
	return barHigh >= p.Stop
}

// TargetHit reports whether the bar's favorable extreme reached the target.
func (m *Manager) TargetHit(key string, barHigh, barLow float64) bool {
	p := m.positions[key]
	if p == nil || p.Target <= 0 {
		return false
	}
	if p.Side == strategy.SideLong {
		return barHigh >= p.Target
	}
	return barLow <= p.Target
}

// Close realizes the remainder of the position at price and removes it,
// returning the trade record and the cash released to the pool.
func (m *Manager) Close(key string, price float64, reason ExitReason, ts time.Time) (TradeRecord, float64) {
	p := m.positions[key]
	if p == nil {
		return TradeRecord{}, 0
	}
	delete(m.positions, key)

	pnl := (price - p.Entry) * p.Qty
	if p.Side == strategy.SideShort {
		pnl = -pnl
	}
	fee := p.Size * m.cfg.TradingFee
	net := pnl - fee
	cash := p.Size + net

	total := p.Realized + net
	totalPct := 0.0
	if p.Cost > 0 {
		totalPct = total / p.Cost * 100
	}

	rec := TradeRecord{
		ID:           ulid.MustNew(ulid.Timestamp(ts), m.entropy).String(),
		Symbol:       p.Symbol,
		Side:         p.Side,
		Category:     p.Category,
		MacroAtEntry: p.MacroAtEntry,
		Entry:        p.Entry,
		Exit:         price,
		Qty:          p.Qty,
		Cost:         p.Cost,
		NetPnL:       net,
		TotalPnL:     total,
		TotalPct:     totalPct,
		RMultiple:    p.R(price),
		Reason:       reason,
		Phase:        p.Phase,
		EntryTime:    p.EntryTime,
		ExitTime:     ts,
	}
	return rec, cash
}

// MarkToMarket values the position at price: remaining notional plus
// unrealized PnL.
func (m *Manager) MarkToMarket(key string, price float64) float64 {
	p := m.positions[key]
	if p == nil {
		return 0
	}
	pnl := (price - p.Entry) * p.Qty
	if p.Side == strategy.SideShort {
		pnl = -pnl
	}
	return p.Size + pnl
}
