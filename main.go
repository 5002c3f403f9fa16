package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	configFile     string
	runs           int
	years          int
	seed           uint64
	workers        int
	runTax         bool
	runSensitivity bool
	runCapacity    bool
	webMode        bool
	pdfFile        string
	jsonOutput     bool
	showDetails    bool
	logLevel       string
	addr           string
	saveDefault    string
	initFile       string
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Family Office Legacy Forecast

Monte Carlo simulation of a family office: an investment portfolio, the
charitable vehicles it funds and the family that depends on it. Reports
family wealth, philanthropic impact, perpetuity and sunset probabilities,
successor readiness and the sustainable withdrawal rate of the primary
charitable vehicle.

MODES:
  LEGACY (default)   Portfolio, charitable vehicles and succession together
  TAX (-tax)         Best entity/jurisdiction structure and loss harvesting
  SENSITIVITY        Sustainability across shifts to expected returns
  CAPACITY           Highest family spending at the target confidence

Usage:
  %s [options]

Options:
`, os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  %s                           Run the embedded sample family office
  %s -config office.yaml       Use a custom configuration (YAML or TOML)
  %s -seed 42 -runs 2000       Reproducible run with more paths
  %s -tax -json                Tax structuring result as JSON
  %s -pdf report.pdf -tax      Legacy and tax results as a PDF report
  %s -web -addr :8080          JSON API server
  %s -init office.yaml         Answer a few questions to build a configuration

Environment:
  FOF_SEED, FOF_WORKERS, FOF_RUNS, FOF_LOG_LEVEL, FOF_ADDR
  Flags take precedence over the environment.
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0], os.Args[0])
	}

	rtEnv, err := LoadRuntimeEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var opts cliOptions
	flag.StringVar(&opts.configFile, "config", "config.yaml", "Path to YAML or TOML configuration file (missing = embedded sample)")
	flag.IntVar(&opts.runs, "runs", 0, "Number of Monte Carlo trials (overrides config)")
	flag.IntVar(&opts.years, "years", 0, "Simulation horizon in years (overrides config)")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed for reproducible runs (0 = config, then random)")
	flag.IntVar(&opts.workers, "workers", 0, "Parallel workers (0 = one per CPU)")
	flag.BoolVar(&opts.runTax, "tax", false, "Run the tax structuring simulation")
	flag.BoolVar(&opts.runSensitivity, "sensitivity", false, "Run the return-shift sensitivity grid")
	flag.BoolVar(&opts.runCapacity, "capacity", false, "Find the highest sustainable family spending")
	flag.BoolVar(&opts.webMode, "web", false, "Start the JSON API server")
	flag.StringVar(&opts.pdfFile, "pdf", "", "Write a PDF report to this path")
	flag.BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON instead of tables")
	flag.BoolVar(&opts.showDetails, "details", false, "Show the mean year-by-year path")
	flag.StringVar(&opts.logLevel, "log-level", rtEnv.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&opts.addr, "addr", rtEnv.Addr, "Web server address (for -web mode)")
	flag.StringVar(&opts.saveDefault, "save-default", "", "Write the sample configuration to this path (.yaml or .toml) and exit")
	flag.StringVar(&opts.initFile, "init", "", "Build a configuration interactively, save it to this path and exit")
	flag.Parse()

	if err := run(opts, rtEnv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts cliOptions, rtEnv RuntimeEnv) error {
	logger := NewLogger(opts.logLevel)

	if opts.saveDefault != "" {
		config, err := LoadDefaultConfig()
		if err != nil {
			return err
		}
		if err := SaveConfig(config, opts.saveDefault); err != nil {
			return err
		}
		fmt.Printf("Sample configuration saved to %s\n", opts.saveDefault)
		return nil
	}

	if opts.initFile != "" {
		builder, err := NewInteractiveConfigBuilder(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		config, err := builder.Build()
		if err != nil {
			return err
		}
		if err := SaveConfig(config, opts.initFile); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to %s\n", opts.initFile)
		return nil
	}

	config, err := loadConfigOrDefault(opts.configFile, logger)
	if err != nil {
		return err
	}
	rtEnv.ApplyTo(config)
	if opts.runs > 0 {
		config.Simulation.Runs = opts.runs
	}
	if opts.years > 0 {
		config.Simulation.Years = opts.years
	}
	if opts.seed != 0 {
		config.Simulation.Seed = opts.seed
	}
	if opts.workers > 0 {
		config.Simulation.Workers = opts.workers
	}

	if opts.webMode {
		return NewWebServer(config, opts.addr, logger).Start()
	}

	seed := config.Simulation.Seed
	if seed == 0 {
		seed = RandomSeed()
	}
	runOpts := RunOptions{
		Seed:    seed,
		Workers: config.Simulation.Workers,
		RunID:   uuid.NewString(),
		Logger:  logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !opts.jsonOutput {
		PrintHeader(os.Stdout, config)
	}

	switch {
	case opts.runSensitivity:
		analysis, err := RunSensitivityAnalysis(ctx, config, runOpts)
		if err != nil {
			return err
		}
		return emit(opts, analysis, func() { PrintSensitivityGrid(os.Stdout, analysis) })

	case opts.runCapacity:
		capacity, err := CalculateSpendingCapacity(ctx, config, runOpts)
		if err != nil {
			return err
		}
		return emit(opts, capacity, func() { PrintSpendingCapacity(os.Stdout, capacity) })
	}

	var result *SimulationResult
	var tax *TaxSimulationResult

	// -tax alone skips the legacy batch unless a report needs it
	if !opts.runTax || opts.pdfFile != "" {
		if result, err = RunLegacySimulation(ctx, config, runOpts); err != nil {
			return err
		}
	}
	if opts.runTax {
		if tax, err = RunTaxSimulation(ctx, config, runOpts); err != nil {
			return err
		}
	}

	if opts.pdfFile != "" {
		pdfBytes, err := GenerateLegacyPDFReport(config, result, tax)
		if err != nil {
			return fmt.Errorf("generate pdf: %w", err)
		}
		if err := os.WriteFile(opts.pdfFile, pdfBytes, 0644); err != nil {
			return err
		}
		logger.Info().Str("run_id", runOpts.RunID).Str("file", opts.pdfFile).Msg("PDF report written")
	}

	if opts.jsonOutput {
		out := map[string]any{"run_id": runOpts.RunID}
		if result != nil {
			out["legacy"] = result
		}
		if tax != nil {
			out["tax"] = tax
		}
		return writeJSON(out)
	}

	if result != nil {
		PrintLegacyResult(os.Stdout, result)
		if opts.showDetails {
			PrintMeanPath(os.Stdout, result.MeanPath)
		}
	}
	if tax != nil {
		PrintTaxResult(os.Stdout, tax)
	}
	fmt.Printf("Run %s finished at %s\n", runOpts.RunID, time.Now().Format(time.RFC3339))
	return nil
}

// loadConfigOrDefault falls back to the embedded sample when the file is missing
func loadConfigOrDefault(path string, logger *Logger) (*Config, error) {
	config, err := LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	logger.Info().Str("config", path).Msg("Config file not found, using embedded sample")
	return LoadDefaultConfig()
}

func emit(opts cliOptions, v any, print func()) error {
	if opts.jsonOutput {
		return writeJSON(v)
	}
	print()
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
