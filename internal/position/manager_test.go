package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/internal/strategy"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.TradingFee = 0 // keep the arithmetic exact where fees don't matter
	return cfg
}

func openLong(m *Manager, entry, size, stop, target float64) *Position {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p, _ := m.Open("BTCUSDT", "BTCUSDT", strategy.SideLong, strategy.CategoryTrend,
		regime.MacroBullish, entry, size, stop, target, 2.0, ts, 100)
	return p
}

func TestOpenChargesNotionalPlusFee(t *testing.T) {
	cfg := config.Default()
	cfg.TradingFee = 0.001
	m := NewManager(cfg)

	ts := time.Now()
	p, cost := m.Open("k", "BTCUSDT", strategy.SideLong, strategy.CategoryTrend,
		regime.MacroNeutral, 100, 1000, 95, 125, 2, ts, 0)
	require.NotNil(t, p)
	assert.InDelta(t, 1001.0, cost, 1e-9)
	assert.InDelta(t, 10.0, p.Qty, 1e-9)
	assert.Equal(t, PhaseBatch1, p.Phase)
}

func TestOpenRejectsNonPositiveSize(t *testing.T) {
	m := NewManager(testConfig())
	p, cost := m.Open("k", "S", strategy.SideLong, strategy.CategoryTrend,
		regime.MacroNeutral, 100, 0, 95, 125, 2, time.Now(), 0)
	assert.Nil(t, p)
	assert.Equal(t, 0.0, cost)
	assert.Equal(t, 0, m.Len())
}

func TestPartialTPFiresOnce(t *testing.T) {
	cfg := testConfig() // partial at 2.5R, ratio 0.3
	m := NewManager(cfg)
	p := openLong(m, 100, 1000, 95, 125) // risk dist 5

	// 1R is not enough.
	cash, ok := m.PartialTP("BTCUSDT", 105)
	assert.False(t, ok)
	assert.Equal(t, 0.0, cash)

	// 3R fires: 30% of the position realized at +15.
	cash, ok = m.PartialTP("BTCUSDT", 115)
	require.True(t, ok)
	// closeSize 300, closeQty 3, pnl 45.
	assert.InDelta(t, 345.0, cash, 1e-9)
	assert.InDelta(t, 700.0, p.Size, 1e-9)
	assert.InDelta(t, 7.0, p.Qty, 1e-9)
	assert.InDelta(t, 100.0, p.Stop, 1e-9) // break-even
	assert.True(t, p.PartialDone)

	// Never twice.
	_, ok = m.PartialTP("BTCUSDT", 120)
	assert.False(t, ok)
}

func TestTrailingStopOnlyTightens(t *testing.T) {
	cfg := testConfig() // activate at 2R, trail 1.5 ATR
	m := NewManager(cfg)
	p := openLong(m, 100, 1000, 95, 0) // risk dist 5, ATR 2

	m.UpdateTrailing("BTCUSDT", 105) // 1R, not armed
	assert.False(t, p.TrailingOn)
	assert.InDelta(t, 95.0, p.Stop, 1e-9)

	m.UpdateTrailing("BTCUSDT", 110) // 2R arms, stop = 110 - 3
	assert.True(t, p.TrailingOn)
	assert.InDelta(t, 107.0, p.Stop, 1e-9)

	// Pullback never loosens the stop.
	m.UpdateTrailing("BTCUSDT", 108)
	assert.InDelta(t, 107.0, p.Stop, 1e-9)

	// New watermark ratchets it up.
	m.UpdateTrailing("BTCUSDT", 115)
	assert.InDelta(t, 112.0, p.Stop, 1e-9)
}

func TestTrailingDistanceFixedAtEntryATR(t *testing.T) {
	m := NewManager(testConfig())
	ts := time.Now()
	p, _ := m.Open("k", "BTCUSDT", strategy.SideLong, strategy.CategoryTrend,
		regime.MacroBullish, 100, 1000, 95, 0, 4.0, ts, 0)
	require.NotNil(t, p)

	// The trail distance comes from the ATR stored at entry (4.0 * 1.5), not
	// from whatever the market's volatility is when the stop ratchets.
	m.UpdateTrailing("k", 112) // 2.4R arms
	assert.True(t, p.TrailingOn)
	assert.InDelta(t, 106.0, p.Stop, 1e-9)

	m.UpdateTrailing("k", 120)
	assert.InDelta(t, 114.0, p.Stop, 1e-9)
}

func TestStopAndTargetHits(t *testing.T) {
	m := NewManager(testConfig())
	openLong(m, 100, 1000, 95, 125)

	assert.False(t, m.StopHit("BTCUSDT", 104, 96))
	assert.True(t, m.StopHit("BTCUSDT", 104, 95))
	assert.False(t, m.TargetHit("BTCUSDT", 124, 96))
	assert.True(t, m.TargetHit("BTCUSDT", 125, 96))
}

func TestCloseEmitsRecordAndFreesCash(t *testing.T) {
	m := NewManager(testConfig())
	openLong(m, 100, 1000, 95, 125)

	ts := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	rec, cash := m.Close("BTCUSDT", 125, ExitTakeProfit, ts)

	assert.Equal(t, 0, m.Len())
	assert.InDelta(t, 1250.0, cash, 1e-9) // 1000 + 10*25
	assert.InDelta(t, 250.0, rec.TotalPnL, 1e-9)
	assert.InDelta(t, 25.0, rec.TotalPct, 1e-9)
	assert.InDelta(t, 5.0, rec.RMultiple, 1e-9)
	assert.Equal(t, ExitTakeProfit, rec.Reason)
	assert.NotEmpty(t, rec.ID)

	// Closing again is a no-op: terminal transitions happen exactly once.
	rec2, cash2 := m.Close("BTCUSDT", 125, ExitTakeProfit, ts)
	assert.Equal(t, 0.0, cash2)
	assert.Empty(t, rec2.ID)
}

func TestCloseShortSide(t *testing.T) {
	m := NewManager(testConfig())
	ts := time.Now()
	m.Open("k", "ETHUSDT", strategy.SideShort, strategy.CategoryGrid,
		regime.MacroBearish, 100, 1000, 105, 90, 2, ts, 0)

	rec, cash := m.Close("k", 90, ExitTakeProfit, ts.Add(time.Hour))
	assert.InDelta(t, 1100.0, cash, 1e-9)
	assert.InDelta(t, 100.0, rec.TotalPnL, 1e-9)
	assert.InDelta(t, 2.0, rec.RMultiple, 1e-9)
}

func TestPyramidingAdd(t *testing.T) {
	cfg := testConfig()
	cfg.Batch1Ratio = 0.5
	cfg.Batch2Ratio = 0.3
	cfg.AddThresholdPct = 2.0
	m := NewManager(cfg)

	p := openLong(m, 100, 1000, 95, 0) // full size 2000
	assert.InDelta(t, 2000.0, p.FullSize, 1e-9)

	// Move below the threshold: no add.
	_, ok := m.AddBatch("BTCUSDT", 101, 100000)
	assert.False(t, ok)

	// +3% triggers batch 2: add 600 at 103.
	cost, ok := m.AddBatch("BTCUSDT", 103, 100000)
	require.True(t, ok)
	assert.InDelta(t, 600.0, cost, 1e-9)
	assert.Equal(t, PhaseBatch2, p.Phase)
	assert.InDelta(t, 1600.0, p.Size, 1e-9)
	// Weighted entry: (100*1000 + 103*600) / 1600.
	assert.InDelta(t, 101.125, p.Entry, 1e-9)
	// Stop tightened to blended entry minus the original risk distance.
	assert.InDelta(t, 96.125, p.Stop, 1e-9)
}

func TestPyramidingAddCappedByFreeCash(t *testing.T) {
	cfg := testConfig()
	cfg.Batch1Ratio = 0.5
	cfg.Batch2Ratio = 0.5
	cfg.AddThresholdPct = 1.0
	m := NewManager(cfg)

	openLong(m, 100, 1000, 95, 0)
	cost, ok := m.AddBatch("BTCUSDT", 102, 100)
	require.True(t, ok)
	assert.InDelta(t, 95.0, cost, 1e-9) // 95% of the free cash
}

func TestMarkToMarket(t *testing.T) {
	m := NewManager(testConfig())
	openLong(m, 100, 1000, 95, 0)
	assert.InDelta(t, 1100.0, m.MarkToMarket("BTCUSDT", 110), 1e-9)

	ts := time.Now()
	m.Open("s", "ETHUSDT", strategy.SideShort, strategy.CategoryGrid,
		regime.MacroBearish, 100, 1000, 105, 90, 2, ts, 0)
	assert.InDelta(t, 1050.0, m.MarkToMarket("s", 95), 1e-9)
}

func TestDeterministicTradeIDs(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	run := func() []string {
		m := NewManager(testConfig())
		var ids []string
		for i := 0; i < 3; i++ {
			m.Open("k", "BTCUSDT", strategy.SideLong, strategy.CategoryTrend,
				regime.MacroNeutral, 100, 1000, 95, 125, 2, ts, i)
			rec, _ := m.Close("k", 110, ExitTakeProfit, ts.Add(time.Duration(i)*time.Hour))
			ids = append(ids, rec.ID)
		}
		return ids
	}

	assert.Equal(t, run(), run())
}
