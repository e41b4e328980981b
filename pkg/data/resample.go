package data

import (
	"fmt"
	"time"

	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// Resample aggregates a base series into a coarser timeframe: first open,
// max high, min low, last close, summed volume per aligned bucket. Buckets
// align to the epoch, so a 4h series breaks at 00:00, 04:00, and so on.
func Resample(bars []types.OHLCV, tf string) ([]types.OHLCV, error) {
	interval, err := ParseTimeframe(tf)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to resample")
	}

	var out []types.OHLCV
	var cur types.OHLCV
	var curBucket time.Time
	started := false

	for _, bar := range bars {
		bucket := bar.Timestamp.Truncate(interval)
		if !started || !bucket.Equal(curBucket) {
			if started {
				out = append(out, cur)
			}
			cur = bar
			cur.Timestamp = bucket
			curBucket = bucket
			started = true
			continue
		}
		if bar.High > cur.High {
			cur.High = bar.High
		}
		if bar.Low < cur.Low {
			cur.Low = bar.Low
		}
		cur.Close = bar.Close
		cur.Volume += bar.Volume
	}
	out = append(out, cur)

	return out, nil
}
