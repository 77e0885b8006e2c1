package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/runner"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, or time-based if that is 0 too)")
	agents := flag.Int("agents", 0, "Agent count override (0 = use config)")
	maxTicks := flag.Int("max-ticks", 1000, "Stop after N ticks")
	statsWindow := flag.Int("stats-window", 0, "Stats window size in ticks (0 = use config)")
	logStats := flag.Bool("log-stats", true, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	writePositions := flag.Bool("write-positions", false, "Write final agent positions to positions.csv")
	writeConfig := flag.String("write-config", "", "Write the effective config to this path and exit")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *agents > 0 {
		cfg.World.Agents = *agents
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			slog.Error("failed to write config", "error", err)
			os.Exit(1)
		}
		slog.Info("config written", "path", *writeConfig)
		return
	}

	// Set up seed: flag beats config, wall clock when both are zero
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = cfg.World.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	r, err := runner.New(runner.Options{
		Seed:           rngSeed,
		MaxTicks:       *maxTicks,
		StatsWindow:    int32(*statsWindow),
		OutputDir:      *outputDir,
		LogStats:       *logStats,
		WritePositions: *writePositions,
	})
	if err != nil {
		slog.Error("failed to start simulation", "error", err)
		os.Exit(1)
	}

	slog.Info("starting headless simulation",
		"seed", rngSeed,
		"agents", cfg.World.Agents,
		"max_ticks", *maxTicks,
	)

	r.Run()

	if err := r.Close(); err != nil {
		slog.Error("failed to close outputs", "error", err)
		os.Exit(1)
	}
}
