package risk

import (
	"math"
	"time"

	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

// Metrics tracks the rolling per-day trading limits.
type Metrics struct {
	DailyTrades       int
	DailyPnLPct       float64
	ConsecutiveLosses int
	LastTrade         time.Time
	TradeDate         string
}

// Manager owns position sizing, protective price levels, and the daily
// trading limits.
type Manager struct {
	cfg     *config.Config
	metrics Metrics
}

// NewManager creates a risk manager.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// Size computes the notional for a new position from the distance to its
// stop. A zero stop distance sizes to zero: no trade, not an error. The
// result is capped at the symbol tier's share of the balance.
func (m *Manager) Size(balance, entry, stop float64, tier config.Tier, side strategy.Side) float64 {
	if entry <= 0 || balance <= 0 {
		return 0
	}

	slPct := math.Abs(entry-stop) / entry
	if slPct <= 0 {
		return 0
	}

	riskMult := m.cfg.LongRiskMult
	if side == strategy.SideShort {
		riskMult = m.cfg.ShortRiskMult
	}

	risk := balance * m.cfg.RiskPerTradePct / 100 * riskMult
	size := risk / slPct

	maxSize := balance * m.cfg.TierMaxPositionPct(tier) / 100
	return math.Min(size, maxSize)
}

// StopPrice returns the initial protective stop for an entry.
func (m *Manager) StopPrice(entry, atr float64, side strategy.Side) float64 {
	dist := atr * m.cfg.StopLossATRMult
	if side == strategy.SideShort {
		return entry + dist
	}
	return entry - dist
}

// TargetPrice returns the full take-profit level for an entry, the stop
// distance times the configured R multiple away.
func (m *Manager) TargetPrice(entry, atr float64, side strategy.Side) float64 {
	dist := atr * m.cfg.StopLossATRMult * m.cfg.FullTPRMultiple
	if side == strategy.SideShort {
		return entry - dist
	}
	return entry + dist
}

// CheckLimits reports whether a new trade may open at ts. Crossing a
// calendar date resets the daily counters first. Trading is blocked by the
// daily trade cap, the daily loss cap, and a cooldown after a run of
// consecutive losses; the loss streak resets once the cooldown expires.
func (m *Manager) CheckLimits(ts time.Time) bool {
	date := ts.Format("2006-01-02")
	if date != m.metrics.TradeDate {
		m.metrics.TradeDate = date
		m.metrics.DailyTrades = 0
		m.metrics.DailyPnLPct = 0
	}

	if m.metrics.DailyTrades >= m.cfg.MaxDailyTrades {
		return false
	}
	if m.metrics.DailyPnLPct <= -m.cfg.MaxDailyLossPct {
		return false
	}

	if m.metrics.ConsecutiveLosses >= m.cfg.MaxConsecutiveLosses {
		if m.metrics.LastTrade.IsZero() {
			return true
		}
		cooldown := time.Duration(m.cfg.CooldownHours * float64(time.Hour))
		if ts.Before(m.metrics.LastTrade.Add(cooldown)) {
			return false
		}
		m.metrics.ConsecutiveLosses = 0
	}

	return true
}

// Update records one closed trade's result.
func (m *Manager) Update(pnlPct float64, ts time.Time) {
	date := ts.Format("2006-01-02")
	if date != m.metrics.TradeDate {
		m.metrics.TradeDate = date
		m.metrics.DailyTrades = 0
		m.metrics.DailyPnLPct = 0
	}

	m.metrics.DailyTrades++
	m.metrics.DailyPnLPct += pnlPct
	m.metrics.LastTrade = ts

	if pnlPct < 0 {
		m.metrics.ConsecutiveLosses++
	} else {
		m.metrics.ConsecutiveLosses = 0
	}
}

// Metrics returns a copy of the current limit counters.
func (m *Manager) Metrics() Metrics {
	return m.metrics
}
