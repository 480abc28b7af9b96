// wearsim simulates a wearable sensor and writes windowed rollups of its
// readings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/xtxerr/wearsim/internal/errors"
	"github.com/xtxerr/wearsim/internal/logging"
	"github.com/xtxerr/wearsim/internal/pipeline"
	"github.com/xtxerr/wearsim/internal/storage/config"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// CLI flags
	cfgPath := flag.String("config", "config.yaml", "config file path")
	output := flag.String("output", "", "output directory (overrides config)")
	duration := flag.Int("duration", 0, "simulated seconds (overrides config)")
	window := flag.Int("window", 0, "fine window size in seconds (overrides config)")
	group := flag.Int("group", 0, "fine windows per rollup (overrides config)")
	seed := flag.Uint64("seed", 0, "random seed (overrides config)")
	identity := flag.String("identity", "", "sensor identity (overrides config)")
	start := flag.Int64("start", 0, "start timestamp in Unix seconds (overrides config)")
	handoff := flag.String("handoff", "", "segment handoff: file or memory (overrides config)")
	withParquet := flag.Bool("parquet", false, "write Parquet tiers")
	tiers := flag.String("tiers", "", "comma-separated Parquet tiers: raw, segment, rollup (overrides config)")
	withWorkbook := flag.Bool("xlsx", false, "write the XLSX workbook")
	withQuery := flag.Bool("query", false, "run the DuckDB cross check (implies -parquet)")
	withPercentiles := flag.Bool("percentiles", false, "track heart-rate percentiles per window")
	planOnly := flag.Bool("plan", false, "print the run plan and exit")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "", "log format: auto, text, json")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wearsim %s\n", Version)
		return errors.ExitOK
	}

	// Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.DefaultConfig()
		} else {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return errors.ExitCode(err)
		}
	}

	// CLI overrides
	if *output != "" {
		cfg.OutputDir = *output
	}
	if *duration != 0 {
		cfg.Simulation.DurationSec = *duration
	}
	if *window != 0 {
		cfg.Aggregation.WindowSizeSec = *window
	}
	if *group != 0 {
		cfg.Aggregation.GroupSize = *group
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *identity != "" {
		cfg.Simulation.Identity = *identity
	}
	if *start != 0 {
		cfg.Simulation.StartTimestamp = *start
	}
	if *handoff != "" {
		cfg.Export.Handoff = *handoff
	}
	if *withParquet || *withQuery {
		cfg.Export.Parquet.Enabled = true
	}
	if *tiers != "" {
		cfg.Export.Parquet.Tiers = strings.Split(*tiers, ",")
	}
	if *withWorkbook {
		cfg.Export.Workbook.Enabled = true
	}
	if *withQuery {
		cfg.Query.Enabled = true
	}
	if *withPercentiles {
		cfg.Aggregation.Percentile.Enabled = true
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}

	logging.Init(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	log := logging.Component("main")

	if *planOnly {
		if err := cfg.Validate(); err != nil {
			log.Error("invalid config", "error", err)
			return errors.ExitCode(err)
		}
		plan := cfg.CalculatePlan()
		fmt.Print(plan.FormatPlan())
		return errors.ExitOK
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		log.Error("invalid config", "error", err)
		return errors.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("wearsim starting", "version", Version, "output_dir", cfg.OutputDir)

	res, err := p.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err)
		return errors.ExitCode(err)
	}

	log.Info("wearsim finished",
		"run_id", res.RunID,
		"identity", res.Identity,
		"windows", len(res.Segments),
		"rollups", len(res.Rollups),
		"tier_rows", res.Storage.RowsWritten,
		"elapsed", res.Elapsed)

	return errors.ExitOK
}
