package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/runner"
	"github.com/pthm-cable/flock/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow int32

	mu        sync.Mutex
	lastScore float64 // score from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 60, // 60 ticks per window
	}
}

// LastScore returns the flock score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated flock score averaged across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(x, s)
			results[idx] = fe.computeScore(windows)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, score := range results {
		total += score
	}
	avgScore := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastScore = avgScore
	fe.mu.Unlock()

	return -avgScore
}

// runSimulation executes a single headless run and collects its window stats.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) []telemetry.WindowStats {
	// Create a fresh config copy and apply parameters
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.WindowStats
	r, err := runner.New(runner.Options{
		Seed:        seed,
		MaxTicks:    fe.maxTicks,
		StatsWindow: fe.statsWindow,
		Config:      cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		slog.Error("evaluation run failed", "seed", seed, "error", err)
		return nil
	}

	r.Run()
	r.Close()
	return windows
}

// copyConfig creates an independent copy of the base config. Config holds
// only scalar fields, so a value copy is a deep copy.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Score component weights.
const (
	scoreWeightAlignment   = 0.40
	scoreWeightCompactness = 0.30
	scoreWeightSteadiness  = 0.30

	scoreWarmupWindows = 3 // skip first N windows (transient)
)

// computeScore computes flock quality ∈ [0, 1] from window stats.
// A good flock is aligned, holds a spread near half the spawn extent, and
// keeps a steady pace across windows.
func (fe *FitnessEvaluator) computeScore(windows []telemetry.WindowStats) float64 {
	if len(windows) <= scoreWarmupWindows {
		return 0
	}

	valid := windows[scoreWarmupWindows:]

	var polSum, spreadSum float64
	speedMeans := make([]float64, 0, len(valid))
	for _, w := range valid {
		polSum += w.PolarizationMean
		spreadSum += w.SpreadMean
		speedMeans = append(speedMeans, w.SpeedMean)
	}
	n := float64(len(valid))

	// 1. Alignment: window-averaged polarization is already in [0, 1]
	alignScore := polSum / n

	// 2. Compactness: log-ratio of mean spread to the target spread
	compactScore := 0.0
	targetSpread := 0.5 * fe.baseConfig.World.Extent
	if spreadMean := spreadSum / n; spreadMean > 0 && targetSpread > 0 {
		logErr := math.Log(spreadMean / targetSpread)
		compactScore = math.Exp(-logErr * logErr)
	}

	// 3. Steadiness: pace that neither decays to zero nor blows up
	steadyScore := 0.0
	if len(speedMeans) >= 2 {
		c := cv(speedMeans)
		steadyScore = math.Exp(-c * c)
	}

	score := scoreWeightAlignment*alignScore +
		scoreWeightCompactness*compactScore +
		scoreWeightSteadiness*steadyScore

	return clamp01(score)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	n := float64(len(values))
	if n == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff/n) / mean
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
