package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// LoadCSV reads an OHLCV series from a CSV file. The header row maps the
// columns; timestamp, open, high, low, close are required, volume is
// optional. Timestamps may be RFC3339, "2006-01-02 15:04:05", or epoch
// milliseconds.
func LoadCSV(path string) ([]types.OHLCV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("data file %s has no data rows", path)
	}

	cols, err := mapColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	bars := make([]types.OHLCV, 0, len(rows)-1)
	for i, row := range rows[1:] {
		bar, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+2, err)
		}
		bars = append(bars, bar)
	}

	if err := Validate(bars); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

type columnMap struct {
	timestamp int
	open      int
	high      int
	low       int
	close     int
	volume    int
}

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{timestamp: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time", "date", "open_time":
			cols.timestamp = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.close = i
		case "volume", "vol":
			cols.volume = i
		}
	}
	if cols.timestamp < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.close < 0 {
		return cols, fmt.Errorf("header missing required columns (timestamp/open/high/low/close)")
	}
	return cols, nil
}

func parseRow(row []string, cols columnMap) (types.OHLCV, error) {
	var bar types.OHLCV

	ts, err := parseTimestamp(row[cols.timestamp])
	if err != nil {
		return bar, err
	}
	bar.Timestamp = ts

	fields := []struct {
		idx int
		dst *float64
	}{
		{cols.open, &bar.Open},
		{cols.high, &bar.High},
		{cols.low, &bar.Low},
		{cols.close, &bar.Close},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.idx]), 64)
		if err != nil {
			return bar, fmt.Errorf("bad price value %q", row[f.idx])
		}
		*f.dst = v
	}

	if cols.volume >= 0 && cols.volume < len(row) {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[cols.volume]), 64)
		if err == nil {
			bar.Volume = v
		}
	}

	return bar, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms > 1e12 {
			return time.UnixMilli(ms).UTC(), nil
		}
		return time.Unix(ms, 0).UTC(), nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// Validate checks a loaded series for fatal problems: invalid prices or
// timestamps out of order.
func Validate(bars []types.OHLCV) error {
	for i, bar := range bars {
		if !bar.Valid() {
			return fmt.Errorf("invalid OHLC at bar %d (%s)", i, bar.Timestamp.Format(time.RFC3339))
		}
		if i > 0 && !bar.Timestamp.After(bars[i-1].Timestamp) {
			return fmt.Errorf("non-monotonic timestamp at bar %d (%s)", i, bar.Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
