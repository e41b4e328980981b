package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/lehoangvu92/box-regime-bot/internal/indicators"
	"github.com/lehoangvu92/box-regime-bot/internal/position"
	"github.com/lehoangvu92/box-regime-bot/internal/rangebox"
	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/internal/risk"
	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// EquitySample is one point on the equity curve: total account value at a
// bar's close, with the two cash pools broken out.
type EquitySample struct {
	Timestamp time.Time
	Equity    float64
	TrendCash float64
	GridCash  float64
}

type pendingSignal struct {
	side     strategy.Side
	category strategy.Category
}

// Engine replays bars through the regime classifier and the three signal
// generators, managing two capital pools: one for trend and box trades, one
// for the grid. A signal generated on bar i fills at bar i+1's open.
//
// The same ProcessBar path serves historical replay and live streaming, so a
// replay of identical bars produces identical decisions, trades, and IDs.
type Engine struct {
	cfg *config.Config
	log *log.Logger

	rm         *risk.Manager
	trendPM    *position.Manager
	gridPM     *position.Manager
	trendGen   *strategy.TrendGenerator
	gridGen    *strategy.GridGenerator
	boxGen     *strategy.BoxGenerator
	classifier *regime.Classifier
	tracker    *rangebox.Tracker

	base *indicators.Cache
	mid  *indicators.Cache
	long *indicators.Cache

	initialBalance float64
	trendBalance   float64
	gridBalance    float64

	gridOpen map[int]bool

	pending *pendingSignal

	curRegime regime.Regime
	curMacro  regime.MacroTrend
	boxHigh   float64
	boxLow    float64

	equity     []EquitySample
	trades     []position.TradeRecord
	rejections map[strategy.RejectReason]int

	barIndex int
	minBar   int
	lastTS   time.Time
	lastMid  time.Time
	lastLong time.Time
}

// New creates an engine with the starting balance split evenly between the
// trend and grid pools. logger may be nil to silence the engine.
func New(cfg *config.Config, balance float64, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if balance <= 0 {
		return nil, fmt.Errorf("starting balance must be positive, got: %f", balance)
	}
	if logger == nil {
		logger = log.New(discard{}, "", 0)
	}

	minBar := cfg.BoxLookback
	if cfg.ATRPercentilePeriod > minBar {
		minBar = cfg.ATRPercentilePeriod
	}
	if cfg.EMASlowPeriod > minBar {
		minBar = cfg.EMASlowPeriod
	}
	minBar += 10

	return &Engine{
		cfg:        cfg,
		log:        logger,
		rm:         risk.NewManager(cfg),
		trendPM:    position.NewManager(cfg),
		gridPM:     position.NewManager(cfg),
		trendGen:   strategy.NewTrendGenerator(cfg),
		gridGen:    strategy.NewGridGenerator(cfg),
		boxGen:     strategy.NewBoxGenerator(cfg),
		classifier: regime.NewClassifier(cfg.EMASlowPeriod, cfg.MacroSlowPeriod, cfg.TrendConfirmationBars),
		tracker:    rangebox.New(cfg.BoxLookback, cfg.BoxEscapeATRMul, cfg.BoxEscapeBars, cfg.UseStickyRange),
		base: indicators.NewCache(indicators.CacheConfig{
			ATRPeriod:        cfg.ATRPeriod,
			PercentileWindow: cfg.ATRPercentilePeriod,
			TrackReversals:   true,
		}),
		mid: indicators.NewCache(indicators.CacheConfig{
			EMAFastPeriod: cfg.EMAFastPeriod,
			EMASlowPeriod: cfg.EMASlowPeriod,
			TrackCross:    true,
		}),
		long: indicators.NewCache(indicators.CacheConfig{
			EMAFastPeriod:   cfg.EMAFastPeriod,
			MacroFastPeriod: cfg.MacroFastPeriod,
			MacroSlowPeriod: cfg.MacroSlowPeriod,
		}),
		initialBalance: balance,
		trendBalance:   balance / 2,
		gridBalance:    balance / 2,
		gridOpen:       make(map[int]bool),
		rejections:     make(map[strategy.RejectReason]int),
		minBar:         minBar,
	}, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// AddMidBar feeds one mid-timeframe bar. Bars must arrive in time order.
func (e *Engine) AddMidBar(bar types.OHLCV) error {
	if !bar.Valid() {
		return fmt.Errorf("invalid mid bar at %s", bar.Timestamp.Format(time.RFC3339))
	}
	if !e.lastMid.IsZero() && !bar.Timestamp.After(e.lastMid) {
		return fmt.Errorf("non-monotonic mid bar at %s", bar.Timestamp.Format(time.RFC3339))
	}
	e.lastMid = bar.Timestamp
	e.mid.Append(bar)
	return nil
}

// AddLongBar feeds one long-timeframe bar. Bars must arrive in time order.
func (e *Engine) AddLongBar(bar types.OHLCV) error {
	if !bar.Valid() {
		return fmt.Errorf("invalid long bar at %s", bar.Timestamp.Format(time.RFC3339))
	}
	if !e.lastLong.IsZero() && !bar.Timestamp.After(e.lastLong) {
		return fmt.Errorf("non-monotonic long bar at %s", bar.Timestamp.Format(time.RFC3339))
	}
	e.lastLong = bar.Timestamp
	e.long.Append(bar)
	return nil
}

// ProcessBar advances the simulation by one base-timeframe bar.
func (e *Engine) ProcessBar(bar types.OHLCV) error {
	if !bar.Valid() {
		return fmt.Errorf("invalid bar at %s", bar.Timestamp.Format(time.RFC3339))
	}
	if !e.lastTS.IsZero() && !bar.Timestamp.After(e.lastTS) {
		return fmt.Errorf("non-monotonic timestamp at %s", bar.Timestamp.Format(time.RFC3339))
	}
	e.lastTS = bar.Timestamp

	e.base.Append(bar)
	atr := e.base.ATRVals[e.base.Len()-1]
	e.boxHigh, e.boxLow = e.tracker.Update(bar, atr)

	i := e.barIndex
	e.barIndex++

	if i < e.minBar {
		return nil
	}

	e.sampleEquity(bar)
	e.manageGridExits(bar)

	if trendOpen := e.manageTrendPosition(bar); trendOpen {
		return nil
	}

	e.executePending(bar, atr)
	e.classify(bar)
	e.generate(bar, atr)
	return nil
}

// Run replays full series through the streaming path, feeding each higher
// timeframe bar as soon as its timestamp is reached.
func (e *Engine) Run(base, mid, long []types.OHLCV) (*Stats, error) {
	mi, li := 0, 0
	for _, bar := range base {
		for mi < len(mid) && !mid[mi].Timestamp.After(bar.Timestamp) {
			if err := e.AddMidBar(mid[mi]); err != nil {
				return nil, err
			}
			mi++
		}
		for li < len(long) && !long[li].Timestamp.After(bar.Timestamp) {
			if err := e.AddLongBar(long[li]); err != nil {
				return nil, err
			}
			li++
		}
		if err := e.ProcessBar(bar); err != nil {
			return nil, err
		}
	}
	return e.Stats(), nil
}

func (e *Engine) sampleEquity(bar types.OHLCV) {
	equity := e.trendBalance + e.gridBalance
	for _, key := range e.trendPM.Keys() {
		equity += e.trendPM.MarkToMarket(key, bar.Close)
	}
	for _, key := range e.gridPM.Keys() {
		equity += e.gridPM.MarkToMarket(key, bar.Close)
	}
	e.equity = append(e.equity, EquitySample{
		Timestamp: bar.Timestamp,
		Equity:    equity,
		TrendCash: e.trendBalance,
		GridCash:  e.gridBalance,
	})
}

func (e *Engine) gridKey(idx int) string {
	return fmt.Sprintf("%s-L%d", e.cfg.Symbol, idx)
}

// manageGridExits walks open grid layers in ascending index order, taking
// profits before stops.
func (e *Engine) manageGridExits(bar types.OHLCV) {
	for idx := 0; idx < e.cfg.GridMaxLayers; idx++ {
		if !e.gridOpen[idx] {
			continue
		}
		key := e.gridKey(idx)
		p := e.gridPM.Get(key)
		if p == nil {
			delete(e.gridOpen, idx)
			continue
		}

		switch {
		case e.gridPM.TargetHit(key, bar.High, bar.Low):
			e.closeGrid(idx, key, p.Target, position.ExitTakeProfit, bar.Timestamp)
		case e.gridPM.StopHit(key, bar.High, bar.Low):
			e.closeGrid(idx, key, p.Stop, position.ExitStopLoss, bar.Timestamp)
		}
	}
}

func (e *Engine) closeGrid(idx int, key string, price float64, reason position.ExitReason, ts time.Time) {
	rec, cash := e.gridPM.Close(key, price, reason, ts)
	e.gridBalance += cash
	delete(e.gridOpen, idx)
	e.rm.Update(rec.TotalPct, ts)
	e.trades = append(e.trades, rec)
	e.log.Printf("grid layer %d closed (%s) at %.4f, pnl %.2f", idx, reason, price, rec.TotalPnL)
}

// manageTrendPosition runs the exit ladder for the open trend/box position.
// It returns true while a position remains open, which ends the bar.
func (e *Engine) manageTrendPosition(bar types.OHLCV) bool {
	key := e.cfg.Symbol
	p := e.trendPM.Get(key)
	if p == nil {
		return false
	}

	if e.trendPM.StopHit(key, bar.High, bar.Low) {
		e.closeTrend(key, p.Stop, position.ExitStopLoss, bar.Timestamp)
		return false
	}
	if e.trendPM.TargetHit(key, bar.High, bar.Low) {
		e.closeTrend(key, p.Target, position.ExitTakeProfit, bar.Timestamp)
		return false
	}

	// Take-profit checks use the bar's favorable extreme, so a high that
	// touches the partial level intrabar fires even if the close falls back.
	tpPrice := bar.High
	if p.Side == strategy.SideShort {
		tpPrice = bar.Low
	}
	if cash, ok := e.trendPM.PartialTP(key, tpPrice); ok {
		e.trendBalance += cash
		e.log.Printf("partial take profit at %.4f, released %.2f", tpPrice, cash)
	}
	e.trendPM.UpdateTrailing(key, bar.Close)

	if p.Category == strategy.CategoryBox {
		if cost, ok := e.trendPM.AddBatch(key, bar.Close, e.trendBalance); ok {
			e.trendBalance -= cost
			e.log.Printf("pyramided into %s at %.4f, cost %.2f", key, bar.Close, cost)
		}
	}

	return true
}

func (e *Engine) closeTrend(key string, price float64, reason position.ExitReason, ts time.Time) {
	rec, cash := e.trendPM.Close(key, price, reason, ts)
	e.trendBalance += cash
	e.rm.Update(rec.TotalPct, ts)
	e.trades = append(e.trades, rec)
	e.log.Printf("%s position closed (%s) at %.4f, pnl %.2f", rec.Category, reason, price, rec.TotalPnL)
}

// executePending fills the signal pended on the previous bar at this bar's
// open, re-validating everything against the current state.
func (e *Engine) executePending(bar types.OHLCV, atr float64) {
	if e.pending == nil {
		return
	}
	pend := *e.pending
	e.pending = nil

	if !e.rm.CheckLimits(bar.Timestamp) {
		e.rejections[strategy.RejectDailyLimit]++
		return
	}
	if atr <= 0 {
		return
	}

	price := bar.Open
	if pend.category == strategy.CategoryGrid {
		e.fillGrid(price, atr, bar)
		return
	}
	e.fillTrend(pend, price, atr, bar)
}

func (e *Engine) fillGrid(price, atr float64, bar types.OHLCV) {
	layout := e.gridGen.Layout(e.boxHigh, e.boxLow, price, atr, e.curMacro, e.gridBalance)
	layer, ok := e.gridGen.Entry(price, e.boxHigh, e.boxLow, layout, e.gridOpen)
	if !ok {
		return
	}
	if layer.Size*(1+e.cfg.TradingFee) > e.gridBalance {
		return
	}

	key := e.gridKey(layer.Index)
	p, cost := e.gridPM.Open(key, e.cfg.Symbol, layer.Side, strategy.CategoryGrid, e.curMacro,
		layer.Price, layer.Size, layer.StopLoss, layer.TakeProfit, atr, bar.Timestamp, e.barIndex-1)
	if p == nil {
		return
	}
	e.gridBalance -= cost
	e.gridOpen[layer.Index] = true
	e.log.Printf("grid layer %d opened %s at %.4f, size %.2f", layer.Index, layer.Side, layer.Price, layer.Size)
}

func (e *Engine) fillTrend(pend pendingSignal, price, atr float64, bar types.OHLCV) {
	tier := e.cfg.TierFor(e.cfg.Symbol)
	stop := e.rm.StopPrice(price, atr, pend.side)
	target := e.rm.TargetPrice(price, atr, pend.side)

	size := e.rm.Size(e.trendBalance, price, stop, tier, pend.side)
	size *= e.cfg.Batch1Ratio
	if size <= 0 {
		return
	}
	if size*(1+e.cfg.TradingFee) > e.trendBalance {
		size = e.trendBalance / (1 + e.cfg.TradingFee)
	}

	p, cost := e.trendPM.Open(e.cfg.Symbol, e.cfg.Symbol, pend.side, pend.category, e.curMacro,
		price, size, stop, target, atr, bar.Timestamp, e.barIndex-1)
	if p == nil {
		return
	}
	e.trendBalance -= cost
	e.log.Printf("%s position opened %s at %.4f, size %.2f, stop %.4f", pend.category, pend.side, price, size, stop)
}

func (e *Engine) classify(bar types.OHLCV) {
	n := e.long.Len()
	if n == 0 {
		e.curMacro = regime.MacroNeutral
		e.curRegime = regime.Uncertain
		return
	}
	idx := n - 1
	e.curMacro = e.classifier.MacroTrend(e.long.MacroFast[idx], e.long.MacroSlow[idx], idx)
	e.curRegime = e.classifier.Classify(e.long.Bars, e.long.EMAFast, idx, e.boxHigh, e.boxLow)
}

// generate pends at most one signal per bar for the next bar's open. A bar
// that just opened a trend position generates nothing.
func (e *Engine) generate(bar types.OHLCV, atr float64) {
	if e.trendPM.Len() > 0 {
		return
	}
	if !e.rm.CheckLimits(bar.Timestamp) {
		e.rejections[strategy.RejectDailyLimit]++
		return
	}

	switch e.curRegime {
	case regime.RangeBound:
		if e.cfg.EnableGrid {
			layout := e.gridGen.Layout(e.boxHigh, e.boxLow, bar.Close, atr, e.curMacro, e.gridBalance)
			if _, ok := e.gridGen.Entry(bar.Close, e.boxHigh, e.boxLow, layout, e.gridOpen); ok {
				e.pending = &pendingSignal{category: strategy.CategoryGrid}
				return
			}
		}
		e.generateBox(bar, atr)

	case regime.TrendingUp, regime.TrendingDown:
		midIdx := e.mid.Len() - 1
		if midIdx < 0 {
			e.rejections[strategy.RejectInsufficientData]++
			return
		}
		side, reason := e.trendGen.Generate(e.curRegime, midIdx, e.mid.Golden[midIdx], e.mid.Death[midIdx])
		if side == strategy.SideNone {
			e.rejections[reason]++
			return
		}
		e.pending = &pendingSignal{side: side, category: strategy.CategoryTrend}

	default:
		e.rejections[strategy.RejectMarketRegime]++
	}
}

func (e *Engine) generateBox(bar types.OHLCV, atr float64) {
	midIdx := e.mid.Len() - 1
	if midIdx < 0 {
		e.rejections[strategy.RejectInsufficientData]++
		return
	}

	baseIdx := e.base.Len() - 1
	pricePos := indicators.PricePosition(bar.Close, e.boxHigh, e.boxLow)

	side, _, reason := e.boxGen.Generate(
		bar.Close, e.boxHigh, e.boxLow, pricePos,
		e.base.BullRev[baseIdx], e.base.BearRev[baseIdx],
		e.base.ATRRank[baseIdx],
		e.mid.EMAFast[midIdx], e.mid.EMASlow[midIdx],
		e.curMacro,
	)
	if side == strategy.SideNone {
		e.rejections[reason]++
		return
	}
	e.pending = &pendingSignal{side: side, category: strategy.CategoryBox}
}

// Equity returns the sampled equity curve.
func (e *Engine) Equity() []EquitySample {
	return e.equity
}

// Trades returns every closed trade in close order.
func (e *Engine) Trades() []position.TradeRecord {
	return e.trades
}

// Rejections returns the rejection counts by reason.
func (e *Engine) Rejections() map[strategy.RejectReason]int {
	out := make(map[strategy.RejectReason]int, len(e.rejections))
	for k, v := range e.rejections {
		out[k] = v
	}
	return out
}

// Channel returns the current trading channel bounds.
func (e *Engine) Channel() (high, low float64) {
	return e.tracker.Bounds()
}

// Regime returns the latest classified regime.
func (e *Engine) Regime() regime.Regime {
	return e.curRegime
}

// Macro returns the latest macro trend.
func (e *Engine) Macro() regime.MacroTrend {
	return e.curMacro
}

// Balances returns the current cash in the trend and grid pools.
func (e *Engine) Balances() (trend, grid float64) {
	return e.trendBalance, e.gridBalance
}
