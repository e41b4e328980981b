package main

import (
	"flag"
	"fmt"
)

// BacktestFlags holds the parsed command line configuration.
type BacktestFlags struct {
	ConfigFile string
	DataFile   string
	MidFile    string
	LongFile   string
	Symbol     string
	Balance    float64
	OutputDir  string
	Excel      bool
	Verbose    bool
	EnvFile    string
}

func parseFlags() *BacktestFlags {
	flags := &BacktestFlags{}

	flag.StringVar(&flags.ConfigFile, "config", "", "Path to JSON strategy config (defaults apply when empty)")
	flag.StringVar(&flags.DataFile, "data", "", "Path to base-timeframe OHLCV CSV (required)")
	flag.StringVar(&flags.MidFile, "mid-data", "", "Path to mid-timeframe CSV (resampled from base when empty)")
	flag.StringVar(&flags.LongFile, "long-data", "", "Path to long-timeframe CSV (resampled from base when empty)")
	flag.StringVar(&flags.Symbol, "symbol", "", "Trading symbol override")
	flag.Float64Var(&flags.Balance, "balance", 10000, "Starting balance")
	flag.StringVar(&flags.OutputDir, "output", "results", "Output directory for reports")
	flag.BoolVar(&flags.Excel, "excel", false, "Also write an Excel workbook")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Log every trade and signal")
	flag.StringVar(&flags.EnvFile, "env", ".env", "Env file to load before parsing")

	flag.Parse()
	return flags
}

func (f *BacktestFlags) validate() error {
	if f.DataFile == "" {
		return fmt.Errorf("-data is required")
	}
	if f.Balance <= 0 {
		return fmt.Errorf("-balance must be positive")
	}
	return nil
}
