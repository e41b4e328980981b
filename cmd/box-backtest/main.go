package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/lehoangvu92/box-regime-bot/internal/engine"
	"github.com/lehoangvu92/box-regime-bot/pkg/config"
	"github.com/lehoangvu92/box-regime-bot/pkg/data"
	"github.com/lehoangvu92/box-regime-bot/pkg/reporting"
	"github.com/lehoangvu92/box-regime-bot/pkg/types"
)

func main() {
	flags := parseFlags()

	// Optional env file, same as the other tools.
	_ = godotenv.Load(flags.EnvFile)

	if err := flags.validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := run(flags); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(flags *BacktestFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	base, err := data.LoadCSV(flags.DataFile)
	if err != nil {
		return err
	}
	mid, err := loadOrResample(flags.MidFile, base, cfg.MidTimeframe)
	if err != nil {
		return err
	}
	long, err := loadOrResample(flags.LongFile, base, cfg.LongTimeframe)
	if err != nil {
		return err
	}

	if len(base) < cfg.MinDataBars {
		return fmt.Errorf("need at least %d bars, got %d", cfg.MinDataBars, len(base))
	}

	log.Printf("Loaded %d base bars (%d mid, %d long) for %s", len(base), len(mid), len(long), cfg.Symbol)

	var logger *log.Logger
	if flags.Verbose {
		logger = log.New(os.Stdout, "[engine] ", log.LstdFlags)
	} else {
		logger = log.New(io.Discard, "", 0)
	}

	eng, err := engine.New(cfg, flags.Balance, logger)
	if err != nil {
		return err
	}
	stats, err := eng.Run(base, mid, long)
	if err != nil {
		return err
	}

	reporting.PrintSummary(os.Stdout, cfg.Symbol, stats)

	tradesPath := filepath.Join(flags.OutputDir, fmt.Sprintf("%s_trades.csv", cfg.Symbol))
	if err := reporting.WriteTradesCSV(tradesPath, eng.Trades()); err != nil {
		return err
	}
	equityPath := filepath.Join(flags.OutputDir, fmt.Sprintf("%s_equity.csv", cfg.Symbol))
	if err := reporting.WriteEquityCSV(equityPath, eng.Equity()); err != nil {
		return err
	}
	log.Printf("Reports written to %s", flags.OutputDir)

	if flags.Excel {
		excelPath := filepath.Join(flags.OutputDir, fmt.Sprintf("%s_report.xlsx", cfg.Symbol))
		if err := reporting.WriteExcel(excelPath, cfg.Symbol, stats, eng.Trades(), eng.Equity()); err != nil {
			return err
		}
		log.Printf("Workbook written to %s", excelPath)
	}

	return nil
}

func loadConfig(flags *BacktestFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.ConfigFile != "" {
		loaded, err := config.Load(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.Symbol != "" {
		cfg.Symbol = flags.Symbol
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadOrResample(path string, base []types.OHLCV, tf string) ([]types.OHLCV, error) {
	if path != "" {
		return data.LoadCSV(path)
	}
	return data.Resample(base, tf)
}
