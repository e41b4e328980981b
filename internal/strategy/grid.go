package strategy

import (
	"math"

	"github.com/lehoangvu92/box-regime-bot/internal/regime"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
)

// GridLayer is one rung of the grid: an entry price with its own size, take
// profit, and stop.
type GridLayer struct {
	Index      int
	Side       Side
	Price      float64
	Size       float64
	TakeProfit float64
	StopLoss   float64
}

// GridGenerator lays out and triggers grid entries inside the channel under
// a range-bound regime. The macro trend picks the side: long grids fill the
// lower 80% of the channel, short grids the upper 80%.
type GridGenerator struct {
	cfg *config.Config
}

// NewGridGenerator creates a grid generator.
func NewGridGenerator(cfg *config.Config) *GridGenerator {
	return &GridGenerator{cfg: cfg}
}

// Layout computes the grid for the current channel, or nil when no grid is
// tradable. pool is the capital backing the grid; layer sizes are notional.
func (g *GridGenerator) Layout(boxHigh, boxLow, price, atr float64, macro regime.MacroTrend, pool float64) []GridLayer {
	if boxLow <= 0 || boxHigh <= boxLow || price <= 0 {
		return nil
	}

	rangePct := (boxHigh - boxLow) / boxLow * 100
	if rangePct < g.cfg.GridMinRangePct {
		return nil
	}

	boxRange := boxHigh - boxLow
	var side Side
	var zoneLow, zoneHigh float64
	switch macro {
	case regime.MacroBullish:
		side = SideLong
		zoneLow = boxLow
		zoneHigh = boxLow + boxRange*0.8
	case regime.MacroBearish:
		side = SideShort
		zoneLow = boxLow + boxRange*0.2
		zoneHigh = boxHigh
	default:
		return nil
	}

	if price < zoneLow || price > zoneHigh {
		return nil
	}

	zoneWidth := zoneHigh - zoneLow
	zonePct := zoneWidth / price * 100

	byLayers := zonePct / float64(g.cfg.GridMaxLayers)
	minInterval := math.Max(g.cfg.GridMinSpacingPct, atr*0.5/price*100)
	maxReasonable := zonePct / 2
	if minInterval > maxReasonable {
		return nil
	}

	spacingPct := math.Min(math.Max(byLayers, minInterval), maxReasonable)
	spacing := price * spacingPct / 100

	count := int(zoneWidth/spacing+1e-9) + 1
	if count > g.cfg.GridMaxLayers {
		count = g.cfg.GridMaxLayers
	}
	if count < 2 {
		return nil
	}

	slPct := spacingPct * g.cfg.GridStopMultiplier / 100
	riskMult := g.cfg.LongRiskMult
	if side == SideShort {
		riskMult = g.cfg.ShortRiskMult
	}
	layerRisk := pool * g.cfg.GridRiskPerLayerPct / 100 * riskMult
	layerSize := layerRisk / slPct

	layers := make([]GridLayer, 0, count)
	for i := 0; i < count; i++ {
		var lp, tp, sl float64
		if side == SideLong {
			lp = zoneLow + float64(i)*spacing
			tp = math.Min(lp+spacing, zoneHigh)
			sl = lp * (1 - slPct)
		} else {
			lp = zoneHigh - float64(i)*spacing
			tp = math.Max(lp-spacing, zoneLow)
			sl = lp * (1 + slPct)
		}
		layers = append(layers, GridLayer{
			Index:      i,
			Side:       side,
			Price:      lp,
			Size:       layerSize,
			TakeProfit: tp,
			StopLoss:   sl,
		})
	}

	// Aggregate risk across all layers stays within the configured share of
	// the pool; each layer otherwise loses exactly its risk budget at its stop.
	maxRisk := pool * g.cfg.GridMaxPositionPct / 100
	totalRisk := layerRisk * float64(count)
	if totalRisk > maxRisk && totalRisk > 0 {
		scale := maxRisk / totalRisk
		for i := range layers {
			layers[i].Size *= scale
		}
	}

	return layers
}

// Entry returns the layer the current price triggers, if any. The price must
// sit inside the channel, the layer must be unoccupied, and the price must be
// within 1% of the layer price. The first matching layer in ascending index
// order wins.
func (g *GridGenerator) Entry(price, boxHigh, boxLow float64, layers []GridLayer, occupied map[int]bool) (GridLayer, bool) {
	if price < boxLow || price > boxHigh {
		return GridLayer{}, false
	}
	for _, layer := range layers {
		if occupied[layer.Index] {
			continue
		}
		if math.Abs(price-layer.Price) <= layer.Price*0.01 {
			return layer, true
		}
	}
	return GridLayer{}, false
}
