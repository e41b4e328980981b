package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
	"github.com/lehoangvu92/box-regime-bot/internal/monitoring"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
	"github.com/lehoangvu92/box-regime-bot/pkg/data"
	"github.com/lehoangvu92/box-regime-bot/pkg/reporting"
	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

// live-sim replays a historical series through the engine's streaming API at
// a configurable pace, exposing Prometheus metrics and a health endpoint
// while it runs. The decisions are identical to a plain backtest over the
// same bars.
func main() {
	var (
		configFile = flag.String("config", "", "Path to JSON strategy config")
		dataFile   = flag.String("data", "", "Path to base-timeframe OHLCV CSV (required)")
		symbol     = flag.String("symbol", "", "Trading symbol override")
		balance    = flag.Float64("balance", 10000, "Starting balance")
		listen     = flag.String("listen", ":9090", "Listen address for /metrics and /healthz")
		pace       = flag.Duration("pace", 100*time.Millisecond, "Delay between bars")
		envFile    = flag.String("env", ".env", "Env file to load before parsing")
		verbose    = flag.Bool("verbose", false, "Log every trade and signal")
	)
	flag.Parse()

	_ = godotenv.Load(*envFile)

	if *dataFile == "" {
		log.Fatal("❌ -data is required")
	}
	if err := run(*configFile, *dataFile, *symbol, *balance, *listen, *pace, *verbose); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(configFile, dataFile, symbol string, balance float64, listen string, pace time.Duration, verbose bool) error {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if symbol != "" {
		cfg.Symbol = symbol
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	base, err := data.LoadCSV(dataFile)
	if err != nil {
		return err
	}
	mid, err := data.Resample(base, cfg.MidTimeframe)
	if err != nil {
		return err
	}
	long, err := data.Resample(base, cfg.LongTimeframe)
	if err != nil {
		return err
	}

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stdout, "[engine] ", log.LstdFlags)
	}
	eng, err := engine.New(cfg, balance, logger)
	if err != nil {
		return err
	}

	health := monitoring.NewHealthChecker(cfg.Symbol)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health.Handler())
	go func() {
		log.Printf("Serving /metrics and /healthz on %s", listen)
		if err := http.ListenAndServe(listen, mux); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	log.Printf("Replaying %d bars for %s at one bar per %s", len(base), cfg.Symbol, pace)

	mi, li := 0, 0
	tradesSeen := 0
	rejectionsSeen := make(map[string]int)

	for _, bar := range base {
		for mi < len(mid) && !mid[mi].Timestamp.After(bar.Timestamp) {
			if err := eng.AddMidBar(mid[mi]); err != nil {
				return err
			}
			mi++
		}
		for li < len(long) && !long[li].Timestamp.After(bar.Timestamp) {
			if err := eng.AddLongBar(long[li]); err != nil {
				return err
			}
			li++
		}
		if err := eng.ProcessBar(bar); err != nil {
			return err
		}

		observe(eng, bar, health, &tradesSeen, rejectionsSeen)
		time.Sleep(pace)
	}

	stats := eng.Stats()
	reporting.PrintSummary(os.Stdout, cfg.Symbol, stats)
	return nil
}

// observe pushes the engine's outputs after one bar into the monitoring
// package. The engine itself never touches the metrics.
func observe(eng *engine.Engine, bar types.OHLCV, health *monitoring.HealthChecker, tradesSeen *int, rejectionsSeen map[string]int) {
	trend, grid := eng.Balances()
	equity := trend + grid
	if samples := eng.Equity(); len(samples) > 0 {
		equity = samples[len(samples)-1].Equity
	}

	boxHigh, boxLow := eng.Channel()
	monitoring.RecordBar(bar.Close, equity, trend, grid, boxHigh, boxLow, eng.Regime().String())
	health.Update(bar.Timestamp, eng.Regime().String(), equity)

	trades := eng.Trades()
	for _, tr := range trades[*tradesSeen:] {
		monitoring.RecordTrade(tr.Category.String(), tr.Side.String(), tr.TotalPnL)
	}
	*tradesSeen = len(trades)

	for reason, n := range eng.Rejections() {
		if d := n - rejectionsSeen[reason.String()]; d > 0 {
			for i := 0; i < d; i++ {
				monitoring.RecordRejection(reason.String())
			}
			rejectionsSeen[reason.String()] = n
		}
	}
}
