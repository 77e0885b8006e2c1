// Package main sweeps a 2D grid over two flocking rule parameters, running
// one headless simulation per grid cell and recording the end-state flock
// statistics for each run.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dgravesa/go-parallel/parallel"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/runner"
	"github.com/pthm-cable/flock/telemetry"
)

// axisSpec describes one sweepable rule parameter.
type axisSpec struct {
	min, max float64
	set      func(*config.Config, float64)
}

// axes maps parameter names to their sweep ranges and config setters.
var axes = map[string]axisSpec{
	"separation_fov": {0.5, 12.0, func(c *config.Config, v float64) { c.Rules.SeparationFOV = v }},
	"separation_mag": {0.0, 2.0, func(c *config.Config, v float64) { c.Rules.SeparationMag = v }},
	"alignment_fov":  {0.5, 18.0, func(c *config.Config, v float64) { c.Rules.AlignmentFOV = v }},
	"alignment_mag":  {0.0, 1.5, func(c *config.Config, v float64) { c.Rules.AlignmentMag = v }},
	"cohesion_fov":   {1.0, 30.0, func(c *config.Config, v float64) { c.Rules.CohesionFOV = v }},
	"cohesion_mag":   {0.0, 0.5, func(c *config.Config, v float64) { c.Rules.CohesionMag = v }},
}

// SweepRecord is one grid cell's result row in sweep.csv.
type SweepRecord struct {
	RunID        string  `csv:"run_id"`
	XName        string  `csv:"x_name"`
	XValue       float64 `csv:"x_value"`
	YName        string  `csv:"y_name"`
	YValue       float64 `csv:"y_value"`
	Polarization float64 `csv:"polarization_mean"`
	Spread       float64 `csv:"spread_mean"`
	SpeedMean    float64 `csv:"speed_mean"`
	SpeedP90     float64 `csv:"speed_p90"`
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	xName := flag.String("x", "cohesion_mag", "Parameter swept on the x axis")
	yName := flag.String("y", "alignment_mag", "Parameter swept on the y axis")
	steps := flag.Int("steps", 8, "Grid resolution per axis")
	maxTicks := flag.Int("max-ticks", 600, "Ticks per grid cell run")
	seed := flag.Int64("seed", 42, "RNG seed shared by every cell")
	workers := flag.Int("workers", 0, "Concurrent cell runs (0 = GOMAXPROCS)")
	outputDir := flag.String("output", "", "Output directory for sweep.csv")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *steps < 2 {
		log.Fatal("--steps must be at least 2")
	}
	xAxis, ok := axes[*xName]
	if !ok {
		log.Fatalf("unknown x axis parameter %q", *xName)
	}
	yAxis, ok := axes[*yName]
	if !ok {
		log.Fatalf("unknown y axis parameter %q", *yName)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	// Build the grid
	type cell struct{ x, y float64 }
	n := *steps
	cells := make([]cell, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			cells = append(cells, cell{
				x: xAxis.min + float64(i)*(xAxis.max-xAxis.min)/float64(n-1),
				y: yAxis.min + float64(j)*(yAxis.max-yAxis.min)/float64(n-1),
			})
		}
	}

	nWorkers := *workers
	if nWorkers <= 0 {
		nWorkers = runtime.GOMAXPROCS(0)
	}

	fmt.Printf("Sweeping %s x %s over %d cells with %d workers\n",
		*xName, *yName, len(cells), nWorkers)

	// Run one simulation per cell in parallel
	records := make([]SweepRecord, len(cells))
	start := time.Now()

	parallel.WithNumGoroutines(nWorkers).For(len(cells), func(i, _ int) {
		c := cells[i]
		records[i] = runCell(baseCfg, *xName, c.x, xAxis, *yName, c.y, yAxis, *seed, *maxTicks)
	})

	// Write results
	path := filepath.Join(*outputDir, "sweep.csv")
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("failed to create sweep.csv: %v", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		log.Fatalf("failed to write sweep results: %v", err)
	}

	fmt.Printf("Swept %d cells in %s, results in %s\n",
		len(cells), time.Since(start).Round(time.Second), path)
}

// runCell runs one headless simulation for a grid cell and reports the last
// full stats window.
func runCell(base *config.Config, xName string, x float64, xAxis axisSpec, yName string, y float64, yAxis axisSpec, seed int64, maxTicks int) SweepRecord {
	// Config holds only scalar fields, so a value copy is independent.
	cfg := *base
	xAxis.set(&cfg, x)
	yAxis.set(&cfg, y)

	var last telemetry.WindowStats
	r, err := runner.New(runner.Options{
		Seed:     seed,
		MaxTicks: maxTicks,
		Config:   &cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			last = stats
		},
	})
	if err != nil {
		log.Fatalf("failed to start cell run: %v", err)
	}

	r.Run()
	r.Close()

	return SweepRecord{
		RunID:        uuid.NewString()[:8],
		XName:        xName,
		XValue:       x,
		YName:        yName,
		YValue:       y,
		Polarization: last.PolarizationMean,
		Spread:       last.SpreadMean,
		SpeedMean:    last.SpeedMean,
		SpeedP90:     last.SpeedP90,
	}
}
